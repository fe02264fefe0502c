package captions

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/mliu/tubebrief/internal/domain/transcript"
	apperrors "github.com/mliu/tubebrief/pkg/errors"
)

const defaultBaseURL = "https://www.youtube.com"

// captionTracksRe extracts the caption track list embedded in the watch
// page's player response.
var captionTracksRe = regexp.MustCompile(`"captionTracks":(\[.*?\])`)

// YouTubeFetcher retrieves caption text by scraping the watch page for its
// caption track list and downloading the track in json3 form.
type YouTubeFetcher struct {
	baseURL    string
	httpClient *http.Client
}

// NewYouTubeFetcher builds a fetcher. baseURL is overridable for tests.
func NewYouTubeFetcher(baseURL string) *YouTubeFetcher {
	url := strings.TrimSpace(baseURL)
	if url == "" {
		url = defaultBaseURL
	}
	return &YouTubeFetcher{
		baseURL: strings.TrimRight(url, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

// Fetch downloads the caption text of one video.
func (f *YouTubeFetcher) Fetch(ctx context.Context, videoID string) (string, error) {
	page, err := f.get(ctx, fmt.Sprintf("%s/watch?v=%s", f.baseURL, videoID))
	if err != nil {
		return "", apperrors.Wrap("captions_unavailable", fmt.Sprintf("watch page for %s not reachable", videoID), err)
	}

	match := captionTracksRe.FindSubmatch(page)
	if match == nil {
		return "", apperrors.Wrap("captions_unavailable", fmt.Sprintf("video %s has no caption tracks", videoID), nil)
	}
	var tracks []captionTrack
	if err := json.Unmarshal(match[1], &tracks); err != nil {
		return "", apperrors.Wrap("captions_unavailable", "caption track list is malformed", err)
	}
	if len(tracks) == 0 {
		return "", apperrors.Wrap("captions_unavailable", fmt.Sprintf("video %s has no caption tracks", videoID), nil)
	}

	track := pickTrack(tracks)
	body, err := f.get(ctx, track.BaseURL+"&fmt=json3")
	if err != nil {
		return "", apperrors.Wrap("captions_unavailable", "caption track download failed", err)
	}
	text, err := decodeJSON3(body)
	if err != nil {
		return "", apperrors.Wrap("captions_unavailable", "caption track is malformed", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", apperrors.Wrap("captions_unavailable", fmt.Sprintf("video %s captions are empty", videoID), nil)
	}
	return text, nil
}

// pickTrack prefers manually authored English captions, then any English
// track, then the first track of any language.
func pickTrack(tracks []captionTrack) captionTrack {
	best := tracks[0]
	bestScore := score(best)
	for _, track := range tracks[1:] {
		if s := score(track); s > bestScore {
			best, bestScore = track, s
		}
	}
	return best
}

func score(track captionTrack) int {
	s := 0
	if strings.HasPrefix(track.LanguageCode, "en") {
		s += 2
	}
	if track.Kind != "asr" {
		s++
	}
	return s
}

type json3Payload struct {
	Events []struct {
		Segs []struct {
			UTF8 string `json:"utf8"`
		} `json:"segs"`
	} `json:"events"`
}

// decodeJSON3 flattens a json3 caption document into plain text with single
// spaces between segments.
func decodeJSON3(body []byte) (string, error) {
	var payload json3Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", err
	}
	var builder strings.Builder
	for _, event := range payload.Events {
		for _, seg := range event.Segs {
			piece := strings.TrimSpace(seg.UTF8)
			if piece == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteByte(' ')
			}
			builder.WriteString(piece)
		}
	}
	return builder.String(), nil
}

func (f *YouTubeFetcher) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build caption request: %w", err)
	}
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("caption request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("caption request error: status=%d body=%s", resp.StatusCode, string(payload))
	}
	return io.ReadAll(resp.Body)
}

var _ transcript.CaptionFetcher = (*YouTubeFetcher)(nil)
