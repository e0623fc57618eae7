package loader

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/yanqian/ai-summarizer/internal/domain/summarizer"
	apperrors "github.com/yanqian/ai-summarizer/pkg/errors"
)

// PDFLoader extracts plain text from PDF files on disk.
type PDFLoader struct {
	logger *slog.Logger
}

// NewPDFLoader constructs a PDF loader.
func NewPDFLoader(logger *slog.Logger) *PDFLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFLoader{logger: logger.With("component", "loader.pdf")}
}

// Load returns the text of every page joined by newlines.
func (l *PDFLoader) Load(ctx context.Context, path string) (text string, err error) {
	// the parser panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			l.logger.Warn("pdf parser panicked", "path", path, "panic", r)
			text = ""
			err = apperrors.Wrap(apperrors.CodeLoaderError, "failed to parse pdf", fmt.Errorf("%v", r))
		}
	}()

	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeLoaderError, "failed to open pdf", err)
	}
	defer file.Close()

	total := reader.NumPage()
	pages := make([]string, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", apperrors.Wrap(apperrors.CodeLoaderError, fmt.Sprintf("failed to read page %d", i), err)
		}
		pages = append(pages, content)
	}

	text = strings.Join(pages, "\n")
	if strings.TrimSpace(text) == "" {
		return "", apperrors.Wrap(apperrors.CodeLoaderError, "document contains no extractable text", nil)
	}
	l.logger.Debug("pdf loaded", "pages", total, "chars", len(text))
	return text, nil
}

var _ summarizer.DocumentLoader = (*PDFLoader)(nil)
