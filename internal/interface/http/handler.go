package http

import (
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yanqian/ai-summarizer/internal/domain/summarizer"
	apperrors "github.com/yanqian/ai-summarizer/pkg/errors"
)

// UploadConfig bounds file uploads.
type UploadConfig struct {
	MaxBytes int64
	// TempDir holds uploads while they are parsed; empty means os.TempDir.
	TempDir string
}

// Handler wires the HTTP transport to the summarizer.
type Handler struct {
	summarizerSvc summarizer.Service
	loader        summarizer.DocumentLoader
	upload        UploadConfig
	logger        *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(summarySvc summarizer.Service, loader summarizer.DocumentLoader, upload UploadConfig, logger *slog.Logger) *Handler {
	return &Handler{
		summarizerSvc: summarySvc,
		loader:        loader,
		upload:        upload,
		logger:        logger.With("component", "http.handler"),
	}
}

type textRequest struct {
	Text string `json:"text"`
}

// Root reports liveness.
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "AI summarizer service is running"})
}

// SummarizeFile summarizes an uploaded PDF.
func (h *Handler) SummarizeFile(c *gin.Context) {
	if h.upload.MaxBytes > 0 {
		// room for the multipart envelope around the file itself
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.upload.MaxBytes+1<<20)
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			abortWithError(c, NewHTTPError(http.StatusRequestEntityTooLarge, "file_too_large", "uploaded file is too large", err))
			return
		}
		abortWithError(c, NewHTTPError(http.StatusBadRequest, apperrors.CodeInvalidInput, "file is required", err))
		return
	}
	if h.upload.MaxBytes > 0 && fileHeader.Size > h.upload.MaxBytes {
		abortWithError(c, NewHTTPError(http.StatusRequestEntityTooLarge, "file_too_large", "uploaded file is too large", nil))
		return
	}
	wordCount, pageLimit, httpErr := parseLengthParams(c.PostForm("word_count"), c.PostForm("page_limit"))
	if httpErr != nil {
		abortWithError(c, httpErr)
		return
	}

	path, cleanup, err := h.saveUpload(fileHeader)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "upload_failed", "failed to store upload", err))
		return
	}
	defer cleanup()

	ctx := c.Request.Context()
	text, err := h.loader.Load(ctx, path)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}

	resp, err := h.summarizerSvc.Summarize(ctx, summarizer.Request{Text: text, WordCount: wordCount, PageLimit: pageLimit})
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	resp.Filename = fileHeader.Filename
	c.JSON(http.StatusOK, resp)
}

// SummarizeText summarizes raw text sent as JSON.
func (h *Handler) SummarizeText(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, apperrors.CodeInvalidInput, errMessage(err), err))
		return
	}
	wordCount, pageLimit, httpErr := parseLengthParams(c.Query("word_count"), c.Query("page_limit"))
	if httpErr != nil {
		abortWithError(c, httpErr)
		return
	}

	resp, err := h.summarizerSvc.Summarize(c.Request.Context(), summarizer.Request{Text: req.Text, WordCount: wordCount, PageLimit: pageLimit})
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// saveUpload copies the upload to a temp file. The returned cleanup removes
// it and must be called on every path once the file is no longer needed.
func (h *Handler) saveUpload(fileHeader *multipart.FileHeader) (string, func(), error) {
	src, err := fileHeader.Open()
	if err != nil {
		return "", nil, err
	}
	defer src.Close()

	dst, err := os.CreateTemp(h.upload.TempDir, "upload-"+uuid.NewString()+"-*.pdf")
	if err != nil {
		return "", nil, err
	}
	path := dst.Name()
	cleanup := func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			h.logger.Warn("failed to remove temp upload", "path", path, "error", err)
		}
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		cleanup()
		return "", nil, err
	}
	if err := dst.Close(); err != nil {
		cleanup()
		return "", nil, err
	}
	return path, cleanup, nil
}

func parseLengthParams(wordCount, pageLimit string) (int, int, *HTTPError) {
	words, err := parseOptionalInt(wordCount)
	if err != nil {
		return 0, 0, NewHTTPError(http.StatusBadRequest, apperrors.CodeInvalidInput, "word_count must be an integer", err)
	}
	pages, err := parseOptionalInt(pageLimit)
	if err != nil {
		return 0, 0, NewHTTPError(http.StatusBadRequest, apperrors.CodeInvalidInput, "page_limit must be an integer", err)
	}
	return words, pages, nil
}

func parseOptionalInt(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
