package summarizer

import (
	"errors"

	apperrors "github.com/yanqian/ai-summarizer/pkg/errors"
)

// ErrEmptySummary is matched by every blank-output failure.
var ErrEmptySummary = errors.New("empty summary")

func emptySummaryError(message string) error {
	return apperrors.Wrap(apperrors.CodeEmptySummary, message, ErrEmptySummary)
}

func llmError(err error) error {
	if apperrors.CodeOf(err) != "" {
		return err
	}
	return apperrors.Wrap(apperrors.CodeLLMError, "llm completion failed", err)
}

func invalidInput(message string) error {
	return apperrors.Wrap(apperrors.CodeInvalidInput, message, nil)
}
