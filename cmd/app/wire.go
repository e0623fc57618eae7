//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yanqian/ai-summarizer/internal/bootstrap"
	"github.com/yanqian/ai-summarizer/internal/domain/summarizer"
	"github.com/yanqian/ai-summarizer/internal/infra/chunker"
	"github.com/yanqian/ai-summarizer/internal/infra/config"
	"github.com/yanqian/ai-summarizer/internal/infra/llm"
	"github.com/yanqian/ai-summarizer/internal/infra/loader"
	httpiface "github.com/yanqian/ai-summarizer/internal/interface/http"
	"github.com/yanqian/ai-summarizer/pkg/logger"
	"github.com/yanqian/ai-summarizer/pkg/metrics"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideSummaryConfig,
		provideUploadConfig,
		provideRegistry,
		provideMetrics,
		provideChatGPTClient,
		provideTokenCounter,
		provideGateway,
		provideChunker,
		provideRateLimiter,
		loader.NewPDFLoader,
		summarizer.NewService,
		wire.Bind(new(summarizer.Completer), new(*llm.Gateway)),
		wire.Bind(new(summarizer.Chunker), new(*chunker.RecursiveChunker)),
		wire.Bind(new(summarizer.Recorder), new(*metrics.Prometheus)),
		wire.Bind(new(summarizer.DocumentLoader), new(*loader.PDFLoader)),
		wire.Bind(new(prometheus.Gatherer), new(*prometheus.Registry)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
