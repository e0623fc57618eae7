package chunker

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	domain "github.com/yanqian/ai-summarizer/internal/domain/summarizer"
)

func TestSplitShortInputIsSingleChunk(t *testing.T) {
	c := NewRecursiveChunker(domain.DefaultChunkSize, domain.DefaultChunkOverlap)
	text := "A short document.\n\nWith two paragraphs."

	chunks := c.Split(text)
	require.Equal(t, []domain.Chunk{{Index: 0, Content: text}}, chunks)
}

func TestSplitEmptyInput(t *testing.T) {
	c := NewRecursiveChunker(100, 10)
	require.Empty(t, c.Split("  \n\t "))
}

func TestSplitRespectsSizeAndOrder(t *testing.T) {
	text := numberedWords(2400)
	c := NewRecursiveChunker(domain.DefaultChunkSize, domain.DefaultChunkOverlap)

	chunks := c.Split(text)
	require.Len(t, chunks, 4)
	for i, chunk := range chunks {
		require.Equal(t, i, chunk.Index)
		require.LessOrEqual(t, utf8.RuneCountInString(chunk.Content), domain.DefaultChunkSize)
		require.NotEmpty(t, chunk.Content)
	}
	require.True(t, strings.HasPrefix(text, chunks[0].Content))
	require.True(t, strings.HasSuffix(text, chunks[len(chunks)-1].Content))
}

func TestSplitNeighboursOverlap(t *testing.T) {
	text := numberedWords(2400)
	chunks := NewRecursiveChunker(domain.DefaultChunkSize, domain.DefaultChunkOverlap).Split(text)
	require.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		prevWords := strings.Fields(chunks[i-1].Content)
		lastWord := prevWords[len(prevWords)-1]
		require.Contains(t, chunks[i].Content, lastWord, "chunk %d should repeat the tail of chunk %d", i, i-1)
	}
}

func TestSplitParagraphsLargerThanOverlapDoNotRepeat(t *testing.T) {
	paragraphs := make([]string, 0, 24)
	for i := 0; i < 24; i++ {
		head := fmt.Sprintf("p%02d ", i)
		paragraphs = append(paragraphs, head+strings.Repeat("x", 500-len(head)))
	}
	text := strings.Join(paragraphs, "\n\n")

	chunks := NewRecursiveChunker(domain.DefaultChunkSize, domain.DefaultChunkOverlap).Split(text)
	require.Len(t, chunks, 4)

	// every paragraph exceeds the overlap budget, so merging drops it from the carry-over
	contents := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		require.LessOrEqual(t, utf8.RuneCountInString(chunk.Content), domain.DefaultChunkSize)
		contents = append(contents, chunk.Content)
	}
	require.Equal(t, text, strings.Join(contents, "\n\n"))
}

func TestSplitIsDeterministic(t *testing.T) {
	text := strings.Repeat("Paragraph with several words in it.\n\n", 400)
	c := NewRecursiveChunker(domain.DefaultChunkSize, domain.DefaultChunkOverlap)
	require.Equal(t, c.Split(text), c.Split(text))
	require.Equal(t, c.Split(text), NewRecursiveChunker(domain.DefaultChunkSize, domain.DefaultChunkOverlap).Split(text))
}

func TestSplitPrefersParagraphBoundaries(t *testing.T) {
	para := strings.Repeat("x", 60)
	text := para + "\n\n" + para + "\n\n" + para
	chunks := NewRecursiveChunker(130, 0).Split(text)
	require.Equal(t, []domain.Chunk{
		{Index: 0, Content: para + "\n\n" + para},
		{Index: 1, Content: para},
	}, chunks)
}

func TestNewRecursiveChunkerSanitizesSettings(t *testing.T) {
	c := NewRecursiveChunker(0, -5)
	require.Equal(t, domain.DefaultChunkSize, c.Size)
	require.Equal(t, 0, c.Overlap)

	c = NewRecursiveChunker(100, 100)
	require.Equal(t, 10, c.Overlap)
}

func TestWindows(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		size    int
		overlap int
		want    []string
	}{
		{name: "exact fit", text: "abcdef", size: 6, overlap: 2, want: []string{"abcdef"}},
		{name: "overlapping", text: "abcdefghij", size: 4, overlap: 1, want: []string{"abcd", "defg", "ghij"}},
		{name: "multibyte", text: "ääääää", size: 4, overlap: 2, want: []string{"ääää", "ääää"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, windows(tt.text, tt.size, tt.overlap))
		})
	}
}

func numberedWords(n int) string {
	words := make([]string, 0, n)
	for i := 0; i < n; i++ {
		words = append(words, fmt.Sprintf("w%03d", i%1000))
	}
	return strings.Join(words, " ")
}
