package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yanqian/ai-summarizer/pkg/errors"
)

// HTTPError captures the metadata required to serialize an error response consistently.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes the underlying failure.
func (e *HTTPError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewHTTPError is a helper to build an HTTPError instance.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

// fromAppError maps domain failures onto HTTP statuses.
func fromAppError(err error) *HTTPError {
	code := apperrors.CodeOf(err)
	switch code {
	case apperrors.CodeInvalidInput, apperrors.CodeLoaderError:
		return NewHTTPError(http.StatusBadRequest, code, errMessage(err), err)
	case apperrors.CodeLLMError, apperrors.CodeEmptySummary:
		// upstream bodies stay in the log
		return NewHTTPError(http.StatusBadGateway, code, apperrors.MessageOf(err), err)
	}
	return asHTTPError(err)
}

func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: "something went wrong",
		Err:     err,
	}
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
