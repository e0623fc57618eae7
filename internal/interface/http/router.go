package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yanqian/ai-summarizer/internal/infra/config"
	"github.com/yanqian/ai-summarizer/internal/infra/ratelimit"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler, limiter ratelimit.Limiter, gatherer prometheus.Gatherer) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestID(),
		requestLogger(handler.logger),
		corsMiddleware(cfg.HTTP.CORSOrigins),
		errorHandlingMiddleware(handler.logger),
	)

	router.GET("/", handler.Root)
	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	limited := router.Group("/", rateLimitMiddleware(limiter, handler.logger))
	{
		limited.POST("/summarize", handler.SummarizeFile)
		limited.POST("/summarize-text", handler.SummarizeText)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
