package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/ai-summarizer/internal/domain/summarizer"
	"github.com/yanqian/ai-summarizer/internal/infra/chunker"
	"github.com/yanqian/ai-summarizer/internal/infra/config"
	"github.com/yanqian/ai-summarizer/internal/infra/llm"
	"github.com/yanqian/ai-summarizer/internal/infra/llm/chatgpt"
	"github.com/yanqian/ai-summarizer/internal/infra/ratelimit"
	"github.com/yanqian/ai-summarizer/internal/infra/tokens"
	httpiface "github.com/yanqian/ai-summarizer/internal/interface/http"
	"github.com/yanqian/ai-summarizer/pkg/metrics"
)

func provideSummaryConfig(cfg *config.Config) summarizer.Config {
	return summarizer.Config{
		DefaultWordCount: cfg.Summary.DefaultWordCount,
		WordsPerPage:     cfg.Summary.WordsPerPage,
		MaxConcurrency:   cfg.Summary.MaxConcurrency,
		FailurePolicy:    summarizer.FailurePolicy(cfg.Summary.FailurePolicy),
	}
}

func provideUploadConfig(cfg *config.Config) httpiface.UploadConfig {
	return httpiface.UploadConfig{
		MaxBytes: cfg.Summary.MaxUploadBytes,
		TempDir:  cfg.Summary.TempDir,
	}
}

func provideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func provideMetrics(reg *prometheus.Registry) *metrics.Prometheus {
	return metrics.NewPrometheus(reg)
}

func provideChatGPTClient(cfg *config.Config) (*chatgpt.Client, error) {
	return chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Timeout)
}

func provideTokenCounter(cfg *config.Config, logger *slog.Logger) *tokens.Counter {
	return tokens.NewCounter(cfg.LLM.Model, logger)
}

func provideGateway(cfg *config.Config, client *chatgpt.Client, counter *tokens.Counter, recorder *metrics.Prometheus, logger *slog.Logger) *llm.Gateway {
	return llm.NewGateway(llm.Config{
		Model:             cfg.LLM.Model,
		Temperature:       cfg.LLM.Temperature,
		MaxTokens:         cfg.LLM.MaxTokens,
		SystemPrompt:      cfg.LLM.SystemPrompt,
		RequestsPerSecond: cfg.LLM.RequestsPerSecond,
		Burst:             cfg.LLM.Burst,
		Retry: llm.RetryConfig{
			MaxAttempts:    cfg.LLM.Retry.MaxAttempts,
			InitialDelay:   cfg.LLM.Retry.InitialDelay,
			MaxDelay:       cfg.LLM.Retry.MaxDelay,
			JitterFraction: cfg.LLM.Retry.JitterFraction,
		},
		Breaker: llm.BreakerConfig{
			MaxRequests:      cfg.LLM.Breaker.MaxRequests,
			Interval:         cfg.LLM.Breaker.Interval,
			Timeout:          cfg.LLM.Breaker.Timeout,
			FailureThreshold: cfg.LLM.Breaker.FailureThreshold,
			MinRequests:      cfg.LLM.Breaker.MinRequests,
		},
	}, client, counter, recorder, logger)
}

func provideChunker(cfg *config.Config) *chunker.RecursiveChunker {
	return chunker.NewRecursiveChunker(cfg.Summary.ChunkSize, cfg.Summary.ChunkOverlap)
}

func provideRateLimiter(cfg *config.Config, logger *slog.Logger) ratelimit.Limiter {
	rl := cfg.HTTP.RateLimit
	if !rl.Enabled {
		return ratelimit.Unlimited{}
	}
	memory := ratelimit.NewMemoryLimiter(rl.RequestsPerMinute, rl.Burst)
	if rl.Backend != "valkey" {
		return memory
	}
	opt, err := buildValkeyOptions(rl.ValkeyAddr)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory rate limiter", "error", err)
		return memory
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory rate limiter", "error", err)
		return memory
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory rate limiter", "error", err)
		client.Close()
		return memory
	}
	logger.Info("valkey rate limiter enabled", "addr", rl.ValkeyAddr)
	return ratelimit.NewValkeyLimiter(client, rl.KeyPrefix, rl.RequestsPerMinute, time.Minute)
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}
