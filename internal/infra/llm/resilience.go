package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/sony/gobreaker"

	"github.com/yanqian/ai-summarizer/internal/infra/llm/chatgpt"
)

// RetryConfig holds the backoff settings for transient failures.
type RetryConfig struct {
	MaxAttempts    int
	InitialDelay   time.Duration
	MaxDelay       time.Duration
	JitterFraction float64
}

// BreakerConfig configures the circuit breaker guarding the model endpoint.
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

func newBreaker(cfg BreakerConfig, logger *slog.Logger) *gobreaker.CircuitBreaker {
	if cfg.Name == "" {
		cfg.Name = "llm-api"
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "circuit", name, "from", from.String(), "to", to.String())
		},
		// a sibling cancelled by the orchestrator says nothing about endpoint health
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
}

const defaultInitialDelay = 200 * time.Millisecond

// newBackoff doubles from InitialDelay, capped at MaxDelay, with optional
// jitter, and allows MaxAttempts-1 retries.
func newBackoff(cfg RetryConfig) retry.Backoff {
	base := cfg.InitialDelay
	if base <= 0 {
		base = defaultInitialDelay
	}
	backoff := retry.NewExponential(base)
	if cfg.MaxDelay > 0 {
		backoff = retry.WithCappedDuration(cfg.MaxDelay, backoff)
	}
	if percent := jitterPercent(cfg.JitterFraction); percent > 0 {
		backoff = retry.WithJitterPercent(percent, backoff)
	}
	retries := uint64(maxAttempts(cfg) - 1) // #nosec G115 -- maxAttempts is at least 1
	return retry.WithMaxRetries(retries, backoff)
}

// withBackoff runs fn until it succeeds, fails permanently or attempts run out.
func withBackoff(ctx context.Context, cfg RetryConfig, logger *slog.Logger, fn func(ctx context.Context) error) error {
	attempts := maxAttempts(cfg)
	attempt := 0
	var lastErr error
	err := retry.Do(ctx, newBackoff(cfg), func(ctx context.Context) error {
		attempt++
		lastErr = fn(ctx)
		if lastErr == nil {
			if attempt > 1 {
				logger.Info("llm call succeeded after retry", "attempt", attempt)
			}
			return nil
		}
		if isRetryable(lastErr) && attempt < attempts {
			logger.Warn("llm call failed, retrying", "attempt", attempt, "max_attempts", attempts, "error", lastErr)
			return retry.RetryableError(lastErr)
		}
		return lastErr
	})
	if err == nil {
		return nil
	}
	if ctx.Err() != nil && !errors.Is(err, lastErr) {
		return fmt.Errorf("retry aborted: %w", err)
	}
	if attempts > 1 && isRetryable(err) {
		return fmt.Errorf("max retry attempts (%d) exceeded: %w", attempts, err)
	}
	return err
}

func maxAttempts(cfg RetryConfig) int {
	if cfg.MaxAttempts <= 0 {
		return 1
	}
	return cfg.MaxAttempts
}

func jitterPercent(fraction float64) uint64 {
	if fraction <= 0 {
		return 0
	}
	if fraction > 1 {
		fraction = 1
	}
	return uint64(fraction * 100)
}

// isRetryable reports whether err is worth another attempt.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}
	var statusErr *chatgpt.StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode >= http.StatusInternalServerError:
			return true
		case statusErr.StatusCode == http.StatusTooManyRequests, statusErr.StatusCode == http.StatusRequestTimeout:
			return true
		default:
			return false
		}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}
