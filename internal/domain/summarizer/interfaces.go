package summarizer

import (
	"context"
	"time"
)

// Completer sends one prompt to the language model. Implementations must be
// safe for concurrent use; the map phase calls Complete from many goroutines.
type Completer interface {
	Complete(ctx context.Context, prompt string) (Completion, error)
}

// Chunker splits a document into ordered, overlapping chunks.
type Chunker interface {
	Split(text string) []Chunk
}

// DocumentLoader extracts plain text from a file on disk.
type DocumentLoader interface {
	Load(ctx context.Context, path string) (string, error)
}

// Recorder receives one observation per orchestrator run.
type Recorder interface {
	ObserveSummarization(strategy, outcome string, chunks int, d time.Duration)
}
