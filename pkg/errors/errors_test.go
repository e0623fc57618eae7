package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapFormatsMessage(t *testing.T) {
	cause := stderrors.New("boom")
	err := Wrap(CodeLLMError, "completion failed", cause)
	require.EqualError(t, err, "completion failed: boom")
	require.ErrorIs(t, err, cause)

	bare := Wrap(CodeInvalidInput, "text cannot be empty", nil)
	require.EqualError(t, bare, "text cannot be empty")
}

func TestIsCodeAndCodeOf(t *testing.T) {
	err := fmt.Errorf("handler: %w", Wrap(CodeEmptySummary, "empty", nil))
	require.True(t, IsCode(err, CodeEmptySummary))
	require.False(t, IsCode(err, CodeLLMError))
	require.Equal(t, CodeEmptySummary, CodeOf(err))
	require.Equal(t, "", CodeOf(stderrors.New("plain")))
}

func TestMessageOfDropsCause(t *testing.T) {
	err := fmt.Errorf("map: %w", Wrap(CodeLLMError, "llm completion failed", stderrors.New("status=500 body=<html>...")))
	require.Equal(t, "llm completion failed", MessageOf(err))
	require.Equal(t, "", MessageOf(stderrors.New("plain")))
}
