package llm

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/yanqian/ai-summarizer/internal/domain/summarizer"
	"github.com/yanqian/ai-summarizer/internal/infra/llm/chatgpt"
	apperrors "github.com/yanqian/ai-summarizer/pkg/errors"
	"github.com/yanqian/ai-summarizer/pkg/metrics"
)

// ChatClient is the subset of the chat API the gateway needs.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
}

// TokenCounter estimates usage when the provider omits it.
type TokenCounter interface {
	Count(text string) int
}

// CallRecorder observes every gateway call.
type CallRecorder interface {
	ObserveLLMCall(outcome string, d time.Duration)
}

// Config configures the gateway.
type Config struct {
	Model             string
	Temperature       float32
	MaxTokens         int
	SystemPrompt      string
	RequestsPerSecond float64
	Burst             int
	Retry             RetryConfig
	Breaker           BreakerConfig
}

// Gateway turns one prompt into one completion. It is safe for concurrent
// use; rate limiting, retries and the circuit breaker stay behind it so the
// orchestrator only sees success, blank output or a terminal llm_error.
type Gateway struct {
	cfg      Config
	client   ChatClient
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker
	counter  TokenCounter
	recorder CallRecorder
	logger   *slog.Logger
}

// NewGateway constructs the gateway.
func NewGateway(cfg Config, client ChatClient, counter TokenCounter, recorder CallRecorder, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	logger = logger.With("component", "llm.gateway")
	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return &Gateway{
		cfg:      cfg,
		client:   client,
		limiter:  limiter,
		breaker:  newBreaker(cfg.Breaker, logger),
		counter:  counter,
		recorder: recorder,
		logger:   logger,
	}
}

// Complete sends prompt as a single user turn.
func (g *Gateway) Complete(ctx context.Context, prompt string) (summarizer.Completion, error) {
	start := time.Now()
	resp, err := g.call(ctx, g.buildRequest(prompt))
	elapsed := time.Since(start)
	if err != nil {
		g.recorder.ObserveLLMCall(callOutcome(err), elapsed)
		if errors.Is(err, gobreaker.ErrOpenState) {
			return summarizer.Completion{}, apperrors.Wrap(apperrors.CodeLLMError, "llm endpoint unavailable: circuit breaker open", err)
		}
		return summarizer.Completion{}, apperrors.Wrap(apperrors.CodeLLMError, "llm completion failed", err)
	}

	var text string
	if len(resp.Choices) > 0 {
		text = resp.Choices[0].Message.Content
	}
	outcome := "success"
	if strings.TrimSpace(text) == "" {
		outcome = "blank"
		g.logger.Warn("llm returned blank completion", "model", g.cfg.Model, "choices", len(resp.Choices))
	}
	g.recorder.ObserveLLMCall(outcome, elapsed)
	g.logger.Debug("llm completion received", "model", g.cfg.Model, "latency_ms", elapsed.Milliseconds(), "chars", len(text))

	return summarizer.Completion{Text: text, Usage: g.usage(resp.Usage, prompt, text)}, nil
}

func (g *Gateway) call(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error) {
	var resp chatgpt.ChatCompletionResponse
	err := withBackoff(ctx, g.cfg.Retry, g.logger, func(ctx context.Context) error {
		if g.limiter != nil {
			if err := g.limiter.Wait(ctx); err != nil {
				return err
			}
		}
		out, err := g.breaker.Execute(func() (interface{}, error) {
			return g.client.CreateChatCompletion(ctx, req)
		})
		if err != nil {
			return err
		}
		resp = out.(chatgpt.ChatCompletionResponse)
		return nil
	})
	return resp, err
}

func (g *Gateway) buildRequest(prompt string) chatgpt.ChatCompletionRequest {
	messages := make([]chatgpt.Message, 0, 2)
	if system := strings.TrimSpace(g.cfg.SystemPrompt); system != "" {
		messages = append(messages, chatgpt.Message{Role: "system", Content: system})
	}
	messages = append(messages, chatgpt.Message{Role: "user", Content: prompt})
	return chatgpt.ChatCompletionRequest{
		Model:       g.cfg.Model,
		Messages:    messages,
		Temperature: g.cfg.Temperature,
		MaxTokens:   g.cfg.MaxTokens,
	}
}

func (g *Gateway) usage(reported *chatgpt.Usage, prompt, completion string) metrics.TokenUsage {
	if reported != nil && reported.TotalTokens > 0 {
		return metrics.TokenUsage{
			PromptTokens:     reported.PromptTokens,
			CompletionTokens: reported.CompletionTokens,
			TotalTokens:      reported.TotalTokens,
		}
	}
	if g.counter == nil {
		return metrics.TokenUsage{}
	}
	promptTokens := g.counter.Count(prompt)
	completionTokens := g.counter.Count(completion)
	return metrics.TokenUsage{
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		TotalTokens:      promptTokens + completionTokens,
	}
}

func callOutcome(err error) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "circuit_open"
	default:
		return "error"
	}
}

var _ summarizer.Completer = (*Gateway)(nil)
