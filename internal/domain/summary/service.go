package summary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/mliu/tubebrief/internal/infra/llm/chatgpt"
	apperrors "github.com/mliu/tubebrief/pkg/errors"
	"github.com/mliu/tubebrief/pkg/metrics"
)

const (
	defaultChunkTokens   = 6000
	defaultMaxConcurrent = 4
	titleTemperature     = 0.7
	titleMaxTokens       = 50
)

// ChatClient is the slice of the LLM client the orchestrator needs.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
}

// Service drives the chunk/map/reduce summarization pipeline. It is the only
// component that talks to the generation service; chunking and budgets are
// pure functions underneath it.
type Service struct {
	cfg    Config
	client ChatClient
	logger *slog.Logger
	sem    *semaphore
}

// NewService constructs the orchestrator.
func NewService(cfg Config, client ChatClient, logger *slog.Logger) *Service {
	if cfg.ChunkTokens <= 0 {
		cfg.ChunkTokens = defaultChunkTokens
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = defaultMaxConcurrent
	}
	if cfg.Profiles == nil {
		cfg.Profiles = DefaultProfiles()
	}
	if cfg.TitleModel == "" {
		cfg.TitleModel = cfg.Model
	}
	return &Service{
		cfg:    cfg,
		client: client,
		logger: logger.With("component", "summary.service"),
		sem:    newSemaphore(cfg.MaxConcurrent),
	}
}

// Summarize produces one summary per requested style. Styles run as
// independent pipelines: a generation failure aborts only its own style, and
// the successful styles are still returned alongside the joined error.
// Unknown styles are rejected before any external call.
func (s *Service) Summarize(ctx context.Context, text string, styles []Style) (Result, error) {
	for _, style := range styles {
		if !style.Valid() {
			return nil, apperrors.Wrap("invalid_config", fmt.Sprintf("unknown summary style %q", style), nil)
		}
		if _, ok := s.cfg.Profiles[style]; !ok {
			return nil, apperrors.Wrap("invalid_config", fmt.Sprintf("no budget profile for style %q", style), nil)
		}
	}

	result := make(Result, len(styles))
	if strings.TrimSpace(text) == "" {
		return result, nil
	}

	chunks := Chunk(text, s.cfg.ChunkTokens)
	s.logger.Debug("input chunked", "chunks", len(chunks), "estimated_tokens", EstimateTokens(text))

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		failures []error
	)
	for _, style := range styles {
		wg.Add(1)
		go func(style Style) {
			defer wg.Done()
			out, usage, err := s.summarizeStyle(ctx, style, text, chunks)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, fmt.Errorf("style %s: %w", style, err))
				return
			}
			if !usage.IsZero() {
				s.logger.Info("style summarized", "style", style,
					"prompt_tokens", usage.PromptTokens, "completion_tokens", usage.CompletionTokens)
			}
			result[style] = out
		}(style)
	}
	wg.Wait()

	if len(failures) > 0 {
		return result, errors.Join(failures...)
	}
	return result, nil
}

// summarizeStyle runs one style's pipeline over pre-computed chunks. Chunk
// boundaries are shared across styles; only budgets and instructions differ.
func (s *Service) summarizeStyle(ctx context.Context, style Style, fullText string, chunks []string) (string, metrics.TokenUsage, error) {
	profile := s.cfg.Profiles[style]

	if len(chunks) == 1 {
		// the single call is the only output, so it gets the final budget
		return s.generate(ctx, s.cfg.Model, style.Instruction(), chunks[0], s.cfg.Temperature, maxOutputTokens(fullText, profile, true))
	}

	partials := make([]string, len(chunks))
	mapCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
		usage    metrics.TokenUsage
	)
	for i, chunk := range chunks {
		wg.Add(1)
		go func(i int, chunk string) {
			defer wg.Done()
			out, callUsage, err := s.generate(mapCtx, s.cfg.Model, style.Instruction(), chunk, s.cfg.Temperature, maxOutputTokens(chunk, profile, false))
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
					cancel()
				}
				return
			}
			usage = usage.Add(callUsage)
			partials[i] = out
		}(i, chunk)
	}
	wg.Wait()
	if firstErr != nil {
		return "", metrics.TokenUsage{}, firstErr
	}

	// the reduce budget reflects the original input's magnitude, not the
	// already-compressed partials
	combined := strings.Join(partials, " ")
	out, reduceUsage, err := s.generate(ctx, s.cfg.Model, combineInstruction, combined, s.cfg.Temperature, maxOutputTokens(fullText, profile, true))
	if err != nil {
		return "", metrics.TokenUsage{}, err
	}
	return out, usage.Add(reduceUsage), nil
}

// Title produces a short descriptive title for content, typically a concise
// summary or a transcript excerpt.
func (s *Service) Title(ctx context.Context, content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", apperrors.Wrap("invalid_input", "title content cannot be empty", nil)
	}
	const instruction = "Generate a concise, descriptive title (max 100 characters) for this content. Return only the title, no quotes or extra text."
	title, _, err := s.generate(ctx, s.cfg.TitleModel, instruction, content, titleTemperature, titleMaxTokens)
	if err != nil {
		return "", err
	}
	return strings.Trim(title, "\"'"), nil
}

func (s *Service) generate(ctx context.Context, model, instruction, input string, temperature float32, maxTokens int) (string, metrics.TokenUsage, error) {
	if err := s.sem.acquire(ctx); err != nil {
		return "", metrics.TokenUsage{}, apperrors.Wrap("llm_error", "generation canceled", err)
	}
	defer s.sem.release()

	resp, err := s.client.CreateChatCompletion(ctx, chatgpt.ChatCompletionRequest{
		Model:       model,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Messages: []chatgpt.Message{
			{Role: "system", Content: instruction},
			{Role: "user", Content: input},
		},
	})
	if err != nil {
		return "", metrics.TokenUsage{}, apperrors.Wrap("llm_error", "generation request failed", err)
	}
	if len(resp.Choices) == 0 {
		return "", metrics.TokenUsage{}, apperrors.Wrap("llm_error", "generation returned no choices", nil)
	}
	usage := metrics.TokenUsage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
	s.logger.Debug("generation complete", "model", model, "max_tokens", maxTokens, "usage_total", usage.TotalTokens)
	return strings.TrimSpace(resp.Choices[0].Message.Content), usage, nil
}

// semaphore bounds concurrent generation calls across all styles so the
// external service's rate limits are respected.
type semaphore struct {
	ch chan struct{}
}

func newSemaphore(capacity int) *semaphore {
	return &semaphore{ch: make(chan struct{}, capacity)}
}

func (s *semaphore) acquire(ctx context.Context) error {
	select {
	case s.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *semaphore) release() {
	<-s.ch
}
