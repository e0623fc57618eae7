package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus records summarization and LLM gateway metrics.
type Prometheus struct {
	summaries       *prometheus.CounterVec
	summaryDuration *prometheus.HistogramVec
	chunks          prometheus.Histogram
	llmCalls        *prometheus.CounterVec
	llmDuration     prometheus.Histogram
}

// NewPrometheus registers the collectors against reg. Collectors that are
// already registered are reused so repeated construction is safe.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &Prometheus{
		summaries: registerOrReuse(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "summarizer_requests_total",
			Help: "Summarization requests by strategy and outcome.",
		}, []string{"strategy", "outcome"})),
		summaryDuration: registerOrReuse(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "summarizer_request_duration_seconds",
			Help:    "End to end summarization latency by strategy.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80, 160},
		}, []string{"strategy"})),
		chunks: registerOrReuse(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "summarizer_map_chunks",
			Help:    "Number of chunks fanned out per map-reduce summarization.",
			Buckets: []float64{1, 2, 4, 8, 16, 32, 64, 128},
		})),
		llmCalls: registerOrReuse(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "summarizer_llm_calls_total",
			Help: "LLM completion calls by outcome.",
		}, []string{"outcome"})),
		llmDuration: registerOrReuse(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "summarizer_llm_call_duration_seconds",
			Help:    "Latency of single LLM completion calls, retries included.",
			Buckets: prometheus.DefBuckets,
		})),
	}
}

// ObserveSummarization records one finished orchestrator run.
func (p *Prometheus) ObserveSummarization(strategy, outcome string, chunks int, d time.Duration) {
	p.summaries.WithLabelValues(strategy, outcome).Inc()
	p.summaryDuration.WithLabelValues(strategy).Observe(d.Seconds())
	if chunks > 0 {
		p.chunks.Observe(float64(chunks))
	}
}

// ObserveLLMCall records one gateway call.
func (p *Prometheus) ObserveLLMCall(outcome string, d time.Duration) {
	p.llmCalls.WithLabelValues(outcome).Inc()
	p.llmDuration.Observe(d.Seconds())
}

// SummaryCounter exposes the request counter for assertions.
func (p *Prometheus) SummaryCounter() *prometheus.CounterVec {
	return p.summaries
}

// LLMCallCounter exposes the gateway counter for assertions.
func (p *Prometheus) LLMCallCounter() *prometheus.CounterVec {
	return p.llmCalls
}

func registerOrReuse[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}

// Nop discards every observation.
type Nop struct{}

// ObserveSummarization implements the summarizer recorder.
func (Nop) ObserveSummarization(string, string, int, time.Duration) {}

// ObserveLLMCall implements the gateway recorder.
func (Nop) ObserveLLMCall(string, time.Duration) {}
