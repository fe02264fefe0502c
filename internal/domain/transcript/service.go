package transcript

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/mliu/tubebrief/internal/domain/summary"
	"github.com/mliu/tubebrief/internal/infra/llm/chatgpt"
	apperrors "github.com/mliu/tubebrief/pkg/errors"
	"github.com/mliu/tubebrief/pkg/util"
)

const (
	defaultWhisperModel   = "whisper-1"
	defaultMaxUploadBytes = 25 << 20
	titleInputLimit       = 2000
)

// allowedAudioExtensions mirrors what the transcription endpoint accepts.
var allowedAudioExtensions = map[string]string{
	".mp3":  "audio/mpeg",
	".mp4":  "audio/mp4",
	".mpeg": "audio/mpeg",
	".mpga": "audio/mpeg",
	".m4a":  "audio/mp4",
	".wav":  "audio/wav",
	".webm": "audio/webm",
}

// Transcriber converts uploaded audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, model, filename string, audio []byte) (chatgpt.Transcription, error)
}

// Summarizer is the slice of the summarization pipeline this service uses.
type Summarizer interface {
	Summarize(ctx context.Context, text string, styles []summary.Style) (summary.Result, error)
	Title(ctx context.Context, content string) (string, error)
}

// Config tunes source ingestion.
type Config struct {
	WhisperModel   string
	MaxUploadBytes int64
}

// Service owns the transcript library: fetching captions, ingesting audio
// uploads, running summarization over stored text, and semantic search.
type Service struct {
	cfg        Config
	repo       Repository
	captions   CaptionFetcher
	audioStore AudioStore
	cache      SummaryCache
	embedder   Embedder
	transcribe Transcriber
	summarizer Summarizer
	logger     *slog.Logger
}

// NewService wires the transcript service.
func NewService(
	cfg Config,
	repo Repository,
	captions CaptionFetcher,
	audioStore AudioStore,
	cache SummaryCache,
	embedder Embedder,
	transcriber Transcriber,
	summarizer Summarizer,
	logger *slog.Logger,
) *Service {
	if cfg.WhisperModel == "" {
		cfg.WhisperModel = defaultWhisperModel
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}
	return &Service{
		cfg:        cfg,
		repo:       repo,
		captions:   captions,
		audioStore: audioStore,
		cache:      cache,
		embedder:   embedder,
		transcribe: transcriber,
		summarizer: summarizer,
		logger:     logger.With("component", "transcript.service"),
	}
}

// GetOrFetch resolves a YouTube URL to a stored transcript, fetching and
// persisting the captions on first sight of the video.
func (s *Service) GetOrFetch(ctx context.Context, rawURL string) (*Record, error) {
	videoID, err := ExtractVideoID(rawURL)
	if err != nil {
		return nil, err
	}

	record, err := s.repo.GetBySourceID(ctx, videoID)
	if err == nil {
		return record, nil
	}
	if !apperrors.IsCode(err, "not_found") {
		return nil, err
	}

	text, err := s.captions.Fetch(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.Wrap("captions_unavailable", fmt.Sprintf("video %s has empty captions", videoID), nil)
	}

	record = &Record{
		SourceType: SourceTypeYouTube,
		SourceID:   videoID,
		Text:       text,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}
	s.logger.Info("captions stored", "video_id", videoID, "chars", len(text))
	return record, nil
}

// IngestAudio validates an uploaded file, transcribes it, archives the blob,
// and persists the resulting transcript under a generated source ID.
func (s *Service) IngestAudio(ctx context.Context, filename string, data []byte) (*Record, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	contentType, ok := allowedAudioExtensions[ext]
	if !ok {
		return nil, apperrors.Wrap("invalid_input", fmt.Sprintf("unsupported audio format %q", ext), nil)
	}
	if len(data) == 0 {
		return nil, apperrors.Wrap("invalid_input", "audio upload is empty", nil)
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, apperrors.Wrap("invalid_input", fmt.Sprintf("audio upload exceeds %d bytes", s.cfg.MaxUploadBytes), nil)
	}

	result, err := s.transcribe.Transcribe(ctx, s.cfg.WhisperModel, filename, data)
	if err != nil {
		return nil, apperrors.Wrap("transcription_failed", "audio transcription failed", err)
	}
	if strings.TrimSpace(result.Text) == "" {
		return nil, apperrors.Wrap("transcription_failed", "transcription produced no text", nil)
	}

	sourceID := uuid.NewString()
	storageKey := fmt.Sprintf("audio/%s%s", sourceID, ext)
	if err := s.audioStore.Put(ctx, storageKey, data, contentType); err != nil {
		// the transcript is still usable without the archived blob
		s.logger.Warn("audio blob not archived", "key", storageKey, "error", err)
		storageKey = ""
	}

	record := &Record{
		SourceType:       SourceTypeAudio,
		SourceID:         sourceID,
		Text:             result.Text,
		OriginalFilename: filepath.Base(filename),
		StorageKey:       storageKey,
		SourceDuration:   result.Duration,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}
	s.logger.Info("audio ingested", "source_id", sourceID, "duration", result.Duration, "chars", len(result.Text))
	return record, nil
}

// SummarizeSource generates (or serves cached) summaries of a stored
// transcript in the requested styles and persists each fresh one. With force
// set, cached summaries are ignored and regenerated.
func (s *Service) SummarizeSource(ctx context.Context, sourceID string, styles []summary.Style, force bool) (summary.Result, error) {
	record, err := s.repo.GetBySourceID(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	if len(styles) == 0 {
		styles = summary.Styles()
	}

	result := make(summary.Result, len(styles))
	missing := make([]summary.Style, 0, len(styles))
	for _, style := range styles {
		if !force {
			cached, hit, err := s.cache.Get(ctx, cacheKey(sourceID, style))
			if err != nil {
				s.logger.Warn("summary cache read failed", "source_id", sourceID, "style", style, "error", err)
			}
			if hit {
				result[style] = cached
				continue
			}
		}
		missing = append(missing, style)
	}
	if len(missing) == 0 {
		return result, nil
	}

	fresh, genErr := s.summarizer.Summarize(ctx, record.Text, missing)
	for style, content := range fresh {
		result[style] = content
		s.persistSummary(ctx, record, style, content)
	}
	if genErr != nil {
		return result, genErr
	}
	return result, nil
}

// persistSummary stores a generated summary, caches it, and attaches a
// search embedding. Storage is authoritative; cache and embedding failures
// only degrade lookups and are logged, not surfaced.
func (s *Service) persistSummary(ctx context.Context, record *Record, style summary.Style, content string) {
	summaryRecord := &SummaryRecord{
		TranscriptID: record.ID,
		Style:        style,
		Content:      content,
		CreatedAt:    util.NowUTC(),
	}
	if err := s.repo.UpsertSummary(ctx, summaryRecord); err != nil {
		s.logger.Error("summary not persisted", "source_id", record.SourceID, "style", style, "error", err)
		return
	}
	if err := s.cache.Set(ctx, cacheKey(record.SourceID, style), content); err != nil {
		s.logger.Warn("summary cache write failed", "source_id", record.SourceID, "style", style, "error", err)
	}
	vector, err := s.embedder.Embed(ctx, content)
	if err != nil {
		s.logger.Warn("summary embedding failed", "source_id", record.SourceID, "style", style, "error", err)
		return
	}
	if err := s.repo.SetSummaryEmbedding(ctx, summaryRecord.ID.String(), vector); err != nil {
		s.logger.Warn("summary embedding not stored", "source_id", record.SourceID, "style", style, "error", err)
	}
}

// GenerateTitle derives and stores a title for a transcript. An existing
// concise summary is preferred as title input; the raw text is the fallback.
func (s *Service) GenerateTitle(ctx context.Context, sourceID string) (string, error) {
	record, err := s.repo.GetBySourceID(ctx, sourceID)
	if err != nil {
		return "", err
	}

	content := record.Text
	if len(content) > titleInputLimit {
		content = content[:titleInputLimit]
	}
	if cached, hit, err := s.cache.Get(ctx, cacheKey(sourceID, summary.StyleConcise)); err == nil && hit {
		content = cached
	}

	title, err := s.summarizer.Title(ctx, content)
	if err != nil {
		return "", err
	}
	if err := s.repo.UpdateTitle(ctx, sourceID, title); err != nil {
		return "", err
	}
	return title, nil
}

// Get returns one stored transcript with its persisted summaries.
func (s *Service) Get(ctx context.Context, sourceID string) (*Record, []SummaryRecord, error) {
	record, err := s.repo.GetBySourceID(ctx, sourceID)
	if err != nil {
		return nil, nil, err
	}
	summaries, err := s.repo.ListSummaries(ctx, record.ID.String())
	if err != nil {
		return nil, nil, err
	}
	return record, summaries, nil
}

// List returns stored transcripts, newest first, optionally filtered by
// source type.
func (s *Service) List(ctx context.Context, sourceType SourceType, limit int) ([]Record, error) {
	if sourceType != "" && !sourceType.Valid() {
		return nil, apperrors.Wrap("invalid_input", fmt.Sprintf("unknown source type %q", sourceType), nil)
	}
	if limit <= 0 {
		limit = 50
	}
	return s.repo.List(ctx, sourceType, limit)
}

// Search runs semantic search over stored summaries.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperrors.Wrap("invalid_input", "search query cannot be empty", nil)
	}
	if limit <= 0 {
		limit = 10
	}
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap("llm_error", "query embedding failed", err)
	}
	return s.repo.SearchSummaries(ctx, vector, limit)
}

func cacheKey(sourceID string, style summary.Style) string {
	return fmt.Sprintf("summary:%s:%s", sourceID, style)
}
