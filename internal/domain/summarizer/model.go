package summarizer

import "github.com/yanqian/ai-summarizer/pkg/metrics"

const (
	// DefaultChunkSize is the chunk length in characters used for the map phase.
	DefaultChunkSize = 4000
	// DefaultChunkOverlap is shared between neighbouring chunks.
	DefaultChunkOverlap = 200
	// DefaultWordCount applies when a direct request omits word_count.
	DefaultWordCount = 150
	// DefaultWordsPerPage converts page_limit into a reduce word target.
	DefaultWordsPerPage = 250
)

// Strategy names the path the orchestrator took.
type Strategy string

const (
	StrategyDirect    Strategy = "direct"
	StrategyMapReduce Strategy = "map_reduce"
)

// FailurePolicy decides what a failed map call does to its siblings.
type FailurePolicy string

const (
	// FailurePolicyAbort cancels the batch and reports the first error.
	FailurePolicyAbort FailurePolicy = "abort"
	// FailurePolicyDrop treats a failed chunk like a blank one.
	FailurePolicyDrop FailurePolicy = "drop"
)

// Config configures the orchestrator.
type Config struct {
	DefaultWordCount int
	WordsPerPage     int
	// MaxConcurrency caps in-flight map calls; zero means one goroutine per chunk.
	MaxConcurrency int
	FailurePolicy  FailurePolicy
}

// Request is a single summarization job.
type Request struct {
	Text      string `json:"text"`
	WordCount int    `json:"word_count,omitempty"`
	PageLimit int    `json:"page_limit,omitempty"`
}

// Response is returned to the transport layer.
type Response struct {
	Filename    string              `json:"filename,omitempty"`
	Summary     string              `json:"summary"`
	Strategy    Strategy            `json:"strategy"`
	Chunks      int                 `json:"chunks,omitempty"`
	TargetWords int                 `json:"targetWords"`
	DurationMs  int64               `json:"durationMs,omitempty"`
	TokenUsage  *metrics.TokenUsage `json:"tokenUsage,omitempty"`
}

// Chunk is an ordered slice of the source document.
type Chunk struct {
	Index   int
	Content string
}

// Completion is one model answer.
type Completion struct {
	Text  string
	Usage metrics.TokenUsage
}
