package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/tmc/langchaingo/textsplitter"

	domain "github.com/yanqian/ai-summarizer/internal/domain/summarizer"
)

// RecursiveChunker splits on paragraph, line and word boundaries before
// falling back to raw character cuts.
type RecursiveChunker struct {
	Size     int
	Overlap  int
	splitter textsplitter.RecursiveCharacter
}

// NewRecursiveChunker constructs a chunker with defaults.
func NewRecursiveChunker(size, overlap int) *RecursiveChunker {
	if size <= 0 {
		size = domain.DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 10
	}
	return &RecursiveChunker{
		Size:    size,
		Overlap: overlap,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithSeparators([]string{"\n\n", "\n", " ", ""}),
			textsplitter.WithChunkSize(size),
			textsplitter.WithChunkOverlap(overlap),
			textsplitter.WithLenFunc(utf8.RuneCountInString),
		),
	}
}

// Split returns the ordered chunks of text. Short input yields one chunk.
func (c *RecursiveChunker) Split(text string) []domain.Chunk {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if utf8.RuneCountInString(text) <= c.Size {
		return []domain.Chunk{{Index: 0, Content: text}}
	}

	segments, err := c.splitter.SplitText(text)
	if err != nil || len(segments) == 0 {
		segments = windows(text, c.Size, c.Overlap)
	}

	out := make([]domain.Chunk, 0, len(segments))
	for _, segment := range segments {
		content := strings.TrimSpace(segment)
		if content == "" {
			continue
		}
		out = append(out, domain.Chunk{Index: len(out), Content: content})
	}
	if len(out) == 0 {
		return []domain.Chunk{{Index: 0, Content: text}}
	}
	return out
}

// windows cuts fixed rune windows that step by size-overlap.
func windows(text string, size, overlap int) []string {
	runes := []rune(text)
	step := size - overlap
	if step <= 0 {
		step = size
	}
	var out []string
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return out
}

var _ domain.Chunker = (*RecursiveChunker)(nil)
