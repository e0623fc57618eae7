package tokens

import (
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

const fallbackEncoding = "cl100k_base"

// Counter estimates prompt and completion sizes when the provider does not
// report usage. The BPE ranks are loaded once, on first use.
type Counter struct {
	model  string
	logger *slog.Logger
	load   func(model string) (*tiktoken.Tiktoken, error)

	once sync.Once
	enc  *tiktoken.Tiktoken
}

// NewCounter builds a counter for the given model name.
func NewCounter(model string, logger *slog.Logger) *Counter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Counter{
		model:  model,
		logger: logger.With("component", "tokens.counter"),
		load:   loadEncoding,
	}
}

// Count returns the number of tokens in text.
func (c *Counter) Count(text string) int {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	c.once.Do(func() {
		enc, err := c.load(c.model)
		if err != nil {
			c.logger.Warn("tiktoken encoding unavailable, using heuristic estimate", "model", c.model, "error", err)
			return
		}
		c.enc = enc
	})
	if c.enc == nil {
		return estimate(text)
	}
	return len(c.enc.Encode(text, nil, nil))
}

func loadEncoding(model string) (*tiktoken.Tiktoken, error) {
	if enc, err := tiktoken.EncodingForModel(model); err == nil {
		return enc, nil
	}
	return tiktoken.GetEncoding(fallbackEncoding)
}

// estimate approximates tokens as a quarter of the runes, never fewer than the word count.
func estimate(text string) int {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0
	}
	words := len(strings.Fields(trimmed))
	tokens := utf8.RuneCountInString(trimmed) / 4
	if tokens < words {
		tokens = words
	}
	if tokens == 0 {
		tokens = 1
	}
	return tokens
}
