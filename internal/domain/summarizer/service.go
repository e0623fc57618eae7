package summarizer

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/yanqian/ai-summarizer/pkg/errors"
	"github.com/yanqian/ai-summarizer/pkg/metrics"
)

// Service exposes summarization capabilities.
type Service interface {
	Summarize(ctx context.Context, req Request) (Response, error)
}

type service struct {
	cfg       Config
	completer Completer
	chunker   Chunker
	recorder  Recorder
	logger    *slog.Logger
}

// NewService is a wire provider for the summarizer domain.
func NewService(cfg Config, completer Completer, chunker Chunker, recorder Recorder, logger *slog.Logger) Service {
	if cfg.DefaultWordCount <= 0 {
		cfg.DefaultWordCount = DefaultWordCount
	}
	if cfg.WordsPerPage <= 0 {
		cfg.WordsPerPage = DefaultWordsPerPage
	}
	if cfg.FailurePolicy == "" {
		cfg.FailurePolicy = FailurePolicyAbort
	}
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &service{
		cfg:       cfg,
		completer: completer,
		chunker:   chunker,
		recorder:  recorder,
		logger:    logger.With("component", "summarizer.service"),
	}
}

// Summarize picks the direct or map-reduce strategy and returns a non-blank summary.
func (s *service) Summarize(ctx context.Context, req Request) (Response, error) {
	start := time.Now()
	text := normalize(req.Text)
	if text == "" {
		return Response{}, invalidInput("text cannot be empty")
	}
	if req.WordCount < 0 {
		return Response{}, invalidInput("word_count cannot be negative")
	}
	if req.PageLimit < 0 {
		return Response{}, invalidInput("page_limit cannot be negative")
	}

	var (
		resp Response
		err  error
	)
	if req.PageLimit > 0 {
		resp, err = s.summarizeMapReduce(ctx, text, req.PageLimit)
	} else {
		resp, err = s.summarizeDirect(ctx, text, req.WordCount)
	}
	elapsed := time.Since(start)

	strategy := StrategyDirect
	if req.PageLimit > 0 {
		strategy = StrategyMapReduce
	}
	s.recorder.ObserveSummarization(string(strategy), outcomeOf(err), resp.Chunks, elapsed)
	if err != nil {
		s.logger.Warn("summarization failed", "strategy", strategy, "chars", len(text), "error", err)
		return Response{}, err
	}

	resp.DurationMs = elapsed.Milliseconds()
	s.logger.Info("summarization complete", "strategy", strategy, "chars", len(text), "chunks", resp.Chunks, "target_words", resp.TargetWords, "duration_ms", resp.DurationMs)
	return resp, nil
}

func (s *service) summarizeDirect(ctx context.Context, text string, wordCount int) (Response, error) {
	if wordCount == 0 {
		wordCount = s.cfg.DefaultWordCount
	}
	completion, err := s.complete(ctx, DirectPrompt(text, wordCount))
	if err != nil {
		return Response{}, err
	}
	summary, err := validateFinal(completion.Text)
	if err != nil {
		return Response{}, err
	}
	return Response{
		Summary:     summary,
		Strategy:    StrategyDirect,
		TargetWords: wordCount,
		TokenUsage:  usagePtr(completion.Usage),
	}, nil
}

func (s *service) summarizeMapReduce(ctx context.Context, text string, pageLimit int) (Response, error) {
	chunks := s.chunker.Split(text)
	if len(chunks) == 0 {
		return Response{}, invalidInput("document produced no chunks")
	}
	s.logger.Debug("map phase start", "chunks", len(chunks), "page_limit", pageLimit)

	partials, err := s.mapChunks(ctx, chunks)
	if err != nil {
		return Response{Chunks: len(chunks)}, err
	}

	var usage metrics.TokenUsage
	survivors := make([]string, 0, len(partials))
	for i, partial := range partials {
		usage = usage.Add(partial.Usage)
		content := strings.TrimSpace(partial.Text)
		if content == "" {
			s.logger.Debug("blank intermediate summary dropped", "chunk", chunks[i].Index)
			continue
		}
		survivors = append(survivors, content)
	}
	if len(survivors) == 0 {
		return Response{Chunks: len(chunks)}, emptySummaryError("no intermediate summaries")
	}

	target := pageLimit * s.cfg.WordsPerPage
	completion, err := s.complete(ctx, ReducePrompt(strings.Join(survivors, "\n\n"), target))
	if err != nil {
		return Response{Chunks: len(chunks)}, err
	}
	summary, err := validateFinal(completion.Text)
	if err != nil {
		return Response{Chunks: len(chunks)}, err
	}
	return Response{
		Summary:     summary,
		Strategy:    StrategyMapReduce,
		Chunks:      len(chunks),
		TargetWords: target,
		TokenUsage:  usagePtr(usage.Add(completion.Usage)),
	}, nil
}

// mapChunks summarizes every chunk concurrently. Each goroutine owns its
// result slot, so results come back in chunk order whatever the completion
// order. Wait returns only after every dispatched call has settled.
func (s *service) mapChunks(ctx context.Context, chunks []Chunk) ([]Completion, error) {
	results := make([]Completion, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	if s.cfg.MaxConcurrency > 0 {
		g.SetLimit(s.cfg.MaxConcurrency)
	}
	for i, chunk := range chunks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return llmError(err)
			}
			completion, err := s.complete(gctx, MapPrompt(chunk.Content))
			if err != nil {
				if s.cfg.FailurePolicy == FailurePolicyDrop && ctx.Err() == nil {
					s.logger.Warn("map call failed, dropping chunk", "chunk", chunk.Index, "error", err)
					return nil
				}
				return err
			}
			results[i] = completion
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *service) complete(ctx context.Context, prompt string) (Completion, error) {
	completion, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		return Completion{}, llmError(err)
	}
	return completion, nil
}

func validateFinal(text string) (string, error) {
	summary := strings.TrimSpace(text)
	if summary == "" {
		return "", emptySummaryError("model returned an empty summary")
	}
	return summary, nil
}

func usagePtr(usage metrics.TokenUsage) *metrics.TokenUsage {
	if usage.IsZero() {
		return nil
	}
	return &usage
}

func outcomeOf(err error) string {
	if err == nil {
		return "success"
	}
	if code := apperrors.CodeOf(err); code != "" {
		return code
	}
	return "error"
}

func normalize(text string) string {
	text = strings.TrimSpace(text)
	// form feeds are PDF page breaks; other control runes except whitespace are dropped
	text = strings.Map(func(r rune) rune {
		switch r {
		case '\f':
			return '\n'
		case '\n', '\t', '\r':
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, text)
	return text
}
