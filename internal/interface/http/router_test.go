package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mliu/tubebrief/internal/domain/summary"
	"github.com/mliu/tubebrief/internal/domain/transcript"
	"github.com/mliu/tubebrief/internal/infra/config"
	apperrors "github.com/mliu/tubebrief/pkg/errors"
)

func TestRouter_SummarizeSuccess(t *testing.T) {
	record := testRecord("dQw4w9WgXcQ", transcript.SourceTypeYouTube)
	svc := &stubService{
		getOrFetchFn: func(_ context.Context, rawURL string) (*transcript.Record, error) {
			require.Equal(t, "https://youtu.be/dQw4w9WgXcQ", rawURL)
			return record, nil
		},
		summarizeSourceFn: func(_ context.Context, sourceID string, styles []summary.Style, force bool) (summary.Result, error) {
			require.Equal(t, "dQw4w9WgXcQ", sourceID)
			require.Equal(t, []summary.Style{summary.StyleConcise}, styles)
			require.False(t, force)
			return summary.Result{summary.StyleConcise: "short and sweet"}, nil
		},
	}

	rec := performJSON(t, newRouterUnderTest(t, svc), http.MethodPost, "/api/v1/summaries",
		`{"url":"https://youtu.be/dQw4w9WgXcQ","styles":["concise"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got summarizeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "dQw4w9WgXcQ", got.SourceID)
	require.Equal(t, "youtube", got.SourceType)
	require.Equal(t, map[string]string{"concise": "short and sweet"}, got.Summaries)
	require.Empty(t, got.Partial)
}

func TestRouter_SummarizePartialFailure(t *testing.T) {
	record := testRecord("dQw4w9WgXcQ", transcript.SourceTypeYouTube)
	svc := &stubService{
		getOrFetchFn: func(context.Context, string) (*transcript.Record, error) { return record, nil },
		summarizeSourceFn: func(context.Context, string, []summary.Style, bool) (summary.Result, error) {
			return summary.Result{summary.StyleConcise: "ok"},
				apperrors.Wrap("llm_error", "detailed style failed", nil)
		},
	}

	rec := performJSON(t, newRouterUnderTest(t, svc), http.MethodPost, "/api/v1/summaries",
		`{"url":"https://youtu.be/dQw4w9WgXcQ"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got summarizeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "ok", got.Summaries["concise"])
	require.Contains(t, got.Partial, "detailed style failed")
}

func TestRouter_SummarizeForceBypassesCache(t *testing.T) {
	record := testRecord("dQw4w9WgXcQ", transcript.SourceTypeYouTube)
	svc := &stubService{
		getOrFetchFn: func(context.Context, string) (*transcript.Record, error) { return record, nil },
		summarizeSourceFn: func(_ context.Context, _ string, _ []summary.Style, force bool) (summary.Result, error) {
			require.True(t, force)
			return summary.Result{summary.StyleConcise: "regenerated"}, nil
		},
	}

	rec := performJSON(t, newRouterUnderTest(t, svc), http.MethodPost, "/api/v1/summaries",
		`{"url":"https://youtu.be/dQw4w9WgXcQ","styles":["concise"],"force":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_SummarizeInvalidJSON(t *testing.T) {
	rec := performJSON(t, newRouterUnderTest(t, &stubService{}), http.MethodPost, "/api/v1/summaries", `{"url":123}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	errBody := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, "invalid_request", errBody["error"]["code"])
	require.NotEmpty(t, errBody["error"]["message"])
}

func TestRouter_SummarizeUnknownStyle(t *testing.T) {
	rec := performJSON(t, newRouterUnderTest(t, &stubService{}), http.MethodPost, "/api/v1/summaries",
		`{"url":"https://youtu.be/dQw4w9WgXcQ","styles":["haiku"]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_SummarizeCaptionsUnavailable(t *testing.T) {
	svc := &stubService{
		getOrFetchFn: func(context.Context, string) (*transcript.Record, error) {
			return nil, apperrors.Wrap("captions_unavailable", "no caption tracks", nil)
		},
	}

	rec := performJSON(t, newRouterUnderTest(t, svc), http.MethodPost, "/api/v1/summaries",
		`{"url":"https://youtu.be/dQw4w9WgXcQ"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	errBody := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, "captions_unavailable", errBody["error"]["code"])
}

func TestRouter_IngestAudioSuccess(t *testing.T) {
	record := testRecord("b2f9e0aa-0000-4000-8000-000000000000", transcript.SourceTypeAudio)
	svc := &stubService{
		ingestAudioFn: func(_ context.Context, filename string, data []byte) (*transcript.Record, error) {
			require.Equal(t, "talk.mp3", filename)
			require.Equal(t, []byte("fake audio bytes"), data)
			return record, nil
		},
		summarizeSourceFn: func(context.Context, string, []summary.Style, bool) (summary.Result, error) {
			return summary.Result{summary.StyleKeyPoints: "- a point"}, nil
		},
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "talk.mp3")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake audio bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.WriteField("styles", "key_points"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/audio", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	newRouterUnderTest(t, svc).Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got summarizeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "audio", got.SourceType)
	require.Equal(t, "- a point", got.Summaries["key_points"])
}

func TestRouter_IngestAudioMissingFile(t *testing.T) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("styles", "concise"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/audio", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	newRouterUnderTest(t, &stubService{}).Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_ListTranscripts(t *testing.T) {
	svc := &stubService{
		listFn: func(_ context.Context, sourceType transcript.SourceType, limit int) ([]transcript.Record, error) {
			require.Equal(t, transcript.SourceTypeYouTube, sourceType)
			require.Equal(t, 5, limit)
			return []transcript.Record{*testRecord("dQw4w9WgXcQ", transcript.SourceTypeYouTube)}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transcripts?type=youtube&limit=5", nil)
	rec := httptest.NewRecorder()
	newRouterUnderTest(t, svc).Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Transcripts []transcriptDTO `json:"transcripts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Transcripts, 1)
	require.Equal(t, "dQw4w9WgXcQ", got.Transcripts[0].SourceID)
}

func TestRouter_GetTranscriptNotFound(t *testing.T) {
	svc := &stubService{
		getFn: func(context.Context, string) (*transcript.Record, []transcript.SummaryRecord, error) {
			return nil, nil, apperrors.Wrap("not_found", "transcript missing not found", nil)
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transcripts/missing", nil)
	rec := httptest.NewRecorder()
	newRouterUnderTest(t, svc).Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	errBody := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, "not_found", errBody["error"]["code"])
}

func TestRouter_GenerateTitle(t *testing.T) {
	svc := &stubService{
		generateTitleFn: func(_ context.Context, sourceID string) (string, error) {
			require.Equal(t, "dQw4w9WgXcQ", sourceID)
			return "A Fitting Title", nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transcripts/dQw4w9WgXcQ/title", nil)
	rec := httptest.NewRecorder()
	newRouterUnderTest(t, svc).Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"title":"A Fitting Title"}`, rec.Body.String())
}

func TestRouter_Search(t *testing.T) {
	svc := &stubService{
		searchFn: func(_ context.Context, query string, limit int) ([]transcript.SearchResult, error) {
			require.Equal(t, "rocket launches", query)
			require.Equal(t, 3, limit)
			return []transcript.SearchResult{{
				Transcript: *testRecord("dQw4w9WgXcQ", transcript.SourceTypeYouTube),
				Style:      summary.StyleConcise,
				Content:    "about rockets",
				Distance:   0.21,
			}}, nil
		},
	}

	rec := performJSON(t, newRouterUnderTest(t, svc), http.MethodPost, "/api/v1/search",
		`{"query":"rocket launches","limit":3}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Results []struct {
			Style    string  `json:"style"`
			Content  string  `json:"content"`
			Distance float64 `json:"distance"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Results, 1)
	require.Equal(t, "concise", got.Results[0].Style)
	require.Equal(t, "about rockets", got.Results[0].Content)
}

func TestRouter_SearchMissingQuery(t *testing.T) {
	rec := performJSON(t, newRouterUnderTest(t, &stubService{}), http.MethodPost, "/api/v1/search", `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func performJSON(t *testing.T, server *http.Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeErrorBody(t *testing.T, body []byte) map[string]map[string]string {
	t.Helper()
	var out map[string]map[string]string
	require.NoError(t, json.Unmarshal(body, &out))
	require.Contains(t, out, "error")
	return out
}

func newRouterUnderTest(t *testing.T, svc TranscriptService) *http.Server {
	t.Helper()
	handler := NewHandler(svc, 0, newTestLogger())
	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Address:      ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
	}
	return NewRouter(cfg, handler)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRecord(sourceID string, sourceType transcript.SourceType) *transcript.Record {
	return &transcript.Record{
		ID:         uuid.New(),
		SourceType: sourceType,
		SourceID:   sourceID,
		Text:       "transcript text",
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
}

type stubService struct {
	getOrFetchFn      func(ctx context.Context, rawURL string) (*transcript.Record, error)
	ingestAudioFn     func(ctx context.Context, filename string, data []byte) (*transcript.Record, error)
	summarizeSourceFn func(ctx context.Context, sourceID string, styles []summary.Style, force bool) (summary.Result, error)
	generateTitleFn   func(ctx context.Context, sourceID string) (string, error)
	getFn             func(ctx context.Context, sourceID string) (*transcript.Record, []transcript.SummaryRecord, error)
	listFn            func(ctx context.Context, sourceType transcript.SourceType, limit int) ([]transcript.Record, error)
	searchFn          func(ctx context.Context, query string, limit int) ([]transcript.SearchResult, error)
}

func (s *stubService) GetOrFetch(ctx context.Context, rawURL string) (*transcript.Record, error) {
	if s.getOrFetchFn != nil {
		return s.getOrFetchFn(ctx, rawURL)
	}
	return nil, fmt.Errorf("unexpected GetOrFetch call")
}

func (s *stubService) IngestAudio(ctx context.Context, filename string, data []byte) (*transcript.Record, error) {
	if s.ingestAudioFn != nil {
		return s.ingestAudioFn(ctx, filename, data)
	}
	return nil, fmt.Errorf("unexpected IngestAudio call")
}

func (s *stubService) SummarizeSource(ctx context.Context, sourceID string, styles []summary.Style, force bool) (summary.Result, error) {
	if s.summarizeSourceFn != nil {
		return s.summarizeSourceFn(ctx, sourceID, styles, force)
	}
	return nil, fmt.Errorf("unexpected SummarizeSource call")
}

func (s *stubService) GenerateTitle(ctx context.Context, sourceID string) (string, error) {
	if s.generateTitleFn != nil {
		return s.generateTitleFn(ctx, sourceID)
	}
	return "", fmt.Errorf("unexpected GenerateTitle call")
}

func (s *stubService) Get(ctx context.Context, sourceID string) (*transcript.Record, []transcript.SummaryRecord, error) {
	if s.getFn != nil {
		return s.getFn(ctx, sourceID)
	}
	return nil, nil, fmt.Errorf("unexpected Get call")
}

func (s *stubService) List(ctx context.Context, sourceType transcript.SourceType, limit int) ([]transcript.Record, error) {
	if s.listFn != nil {
		return s.listFn(ctx, sourceType, limit)
	}
	return nil, fmt.Errorf("unexpected List call")
}

func (s *stubService) Search(ctx context.Context, query string, limit int) ([]transcript.SearchResult, error) {
	if s.searchFn != nil {
		return s.searchFn(ctx, query, limit)
	}
	return nil, fmt.Errorf("unexpected Search call")
}

var _ TranscriptService = (*stubService)(nil)
