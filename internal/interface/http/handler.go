package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mliu/tubebrief/internal/domain/summary"
	"github.com/mliu/tubebrief/internal/domain/transcript"
	apperrors "github.com/mliu/tubebrief/pkg/errors"
)

// TranscriptService is the application surface the HTTP transport exposes.
type TranscriptService interface {
	GetOrFetch(ctx context.Context, rawURL string) (*transcript.Record, error)
	IngestAudio(ctx context.Context, filename string, data []byte) (*transcript.Record, error)
	SummarizeSource(ctx context.Context, sourceID string, styles []summary.Style, force bool) (summary.Result, error)
	GenerateTitle(ctx context.Context, sourceID string) (string, error)
	Get(ctx context.Context, sourceID string) (*transcript.Record, []transcript.SummaryRecord, error)
	List(ctx context.Context, sourceType transcript.SourceType, limit int) ([]transcript.Record, error)
	Search(ctx context.Context, query string, limit int) ([]transcript.SearchResult, error)
}

// Handler wires the HTTP transport to the transcript service.
type Handler struct {
	svc            TranscriptService
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(svc TranscriptService, maxUploadBytes int64, logger *slog.Logger) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 25 << 20
	}
	return &Handler{
		svc:            svc,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With("component", "http.handler"),
	}
}

type summarizeRequest struct {
	URL    string   `json:"url" binding:"required"`
	Styles []string `json:"styles"`
	Force  bool     `json:"force"`
}

type summarizeResponse struct {
	SourceID   string            `json:"source_id"`
	SourceType string            `json:"source_type"`
	Title      string            `json:"title,omitempty"`
	Summaries  map[string]string `json:"summaries"`
	Partial    string            `json:"partial_error,omitempty"`
}

// Summarize resolves a video URL to a transcript and returns summaries in
// the requested styles.
func (h *Handler) Summarize(c *gin.Context) {
	var req summarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	styles, err := summary.ParseStyles(req.Styles)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	record, err := h.svc.GetOrFetch(c.Request.Context(), req.URL)
	if err != nil {
		abortWithError(c, httpErrorFor("summarize_failed", err))
		return
	}

	result, err := h.svc.SummarizeSource(c.Request.Context(), record.SourceID, styles, req.Force)
	h.writeSummarizeResponse(c, record, result, err)
}

// IngestAudio accepts a multipart audio upload, transcribes it, and returns
// summaries of the transcription.
func (h *Handler) IngestAudio(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "multipart field \"file\" is required", err))
		return
	}
	if fileHeader.Size > h.maxUploadBytes {
		abortWithError(c, NewHTTPError(http.StatusRequestEntityTooLarge, "invalid_request", "uploaded file is too large", nil))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "uploaded file is unreadable", err))
		return
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "uploaded file is unreadable", err))
		return
	}
	if int64(len(data)) > h.maxUploadBytes {
		abortWithError(c, NewHTTPError(http.StatusRequestEntityTooLarge, "invalid_request", "uploaded file is too large", nil))
		return
	}

	styles, err := summary.ParseStyles(c.PostFormArray("styles"))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	record, err := h.svc.IngestAudio(c.Request.Context(), fileHeader.Filename, data)
	if err != nil {
		abortWithError(c, httpErrorFor("ingest_failed", err))
		return
	}

	// a fresh upload has nothing cached yet
	result, err := h.svc.SummarizeSource(c.Request.Context(), record.SourceID, styles, false)
	h.writeSummarizeResponse(c, record, result, err)
}

func (h *Handler) writeSummarizeResponse(c *gin.Context, record *transcript.Record, result summary.Result, err error) {
	if err != nil && len(result) == 0 {
		abortWithError(c, httpErrorFor("summarize_failed", err))
		return
	}
	resp := summarizeResponse{
		SourceID:   record.SourceID,
		SourceType: string(record.SourceType),
		Title:      record.Title,
		Summaries:  make(map[string]string, len(result)),
	}
	for style, content := range result {
		resp.Summaries[string(style)] = content
	}
	if err != nil {
		// some styles failed; the caller still gets the rest
		resp.Partial = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

type transcriptDTO struct {
	SourceID         string  `json:"source_id"`
	SourceType       string  `json:"source_type"`
	Title            string  `json:"title,omitempty"`
	OriginalFilename string  `json:"original_filename,omitempty"`
	SourceDuration   float64 `json:"source_duration,omitempty"`
	CreatedAt        string  `json:"created_at"`
}

func toTranscriptDTO(record transcript.Record) transcriptDTO {
	return transcriptDTO{
		SourceID:         record.SourceID,
		SourceType:       string(record.SourceType),
		Title:            record.Title,
		OriginalFilename: record.OriginalFilename,
		SourceDuration:   record.SourceDuration,
		CreatedAt:        record.CreatedAt.Format(time.RFC3339),
	}
}

// ListTranscripts returns the stored library, newest first.
func (h *Handler) ListTranscripts(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "limit must be an integer", err))
			return
		}
		limit = parsed
	}

	records, err := h.svc.List(c.Request.Context(), transcript.SourceType(c.Query("type")), limit)
	if err != nil {
		abortWithError(c, httpErrorFor("list_failed", err))
		return
	}

	items := make([]transcriptDTO, 0, len(records))
	for _, record := range records {
		items = append(items, toTranscriptDTO(record))
	}
	c.JSON(http.StatusOK, gin.H{"transcripts": items})
}

// GetTranscript returns one transcript with its stored summaries.
func (h *Handler) GetTranscript(c *gin.Context) {
	record, summaries, err := h.svc.Get(c.Request.Context(), c.Param("sourceID"))
	if err != nil {
		abortWithError(c, httpErrorFor("get_failed", err))
		return
	}

	out := make(map[string]string, len(summaries))
	for _, s := range summaries {
		out[string(s.Style)] = s.Content
	}
	c.JSON(http.StatusOK, gin.H{
		"transcript": toTranscriptDTO(*record),
		"text":       record.Text,
		"summaries":  out,
	})
}

// GenerateTitle derives and stores a title for a transcript.
func (h *Handler) GenerateTitle(c *gin.Context) {
	title, err := h.svc.GenerateTitle(c.Request.Context(), c.Param("sourceID"))
	if err != nil {
		abortWithError(c, httpErrorFor("title_failed", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"title": title})
}

type searchRequest struct {
	Query string `json:"query" binding:"required"`
	Limit int    `json:"limit"`
}

// Search runs semantic search over stored summaries.
func (h *Handler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	results, err := h.svc.Search(c.Request.Context(), req.Query, req.Limit)
	if err != nil {
		abortWithError(c, httpErrorFor("search_failed", err))
		return
	}

	items := make([]gin.H, 0, len(results))
	for _, result := range results {
		items = append(items, gin.H{
			"transcript": toTranscriptDTO(result.Transcript),
			"style":      string(result.Style),
			"content":    result.Content,
			"distance":   result.Distance,
		})
	}
	c.JSON(http.StatusOK, gin.H{"results": items})
}

// httpErrorFor maps domain error codes onto HTTP statuses.
func httpErrorFor(fallbackCode string, err error) *HTTPError {
	status := http.StatusInternalServerError
	code := fallbackCode
	switch apperrors.CodeOf(err) {
	case "invalid_input", "invalid_config":
		status = http.StatusBadRequest
		code = "invalid_request"
	case "not_found":
		status = http.StatusNotFound
		code = "not_found"
	case "conflict":
		status = http.StatusConflict
		code = "conflict"
	case "captions_unavailable":
		status = http.StatusUnprocessableEntity
		code = "captions_unavailable"
	case "transcription_failed", "llm_error":
		status = http.StatusBadGateway
	}
	return NewHTTPError(status, code, errMessage(err), err)
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
