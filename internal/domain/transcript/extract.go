package transcript

import (
	"fmt"
	"regexp"
	"strings"

	apperrors "github.com/mliu/tubebrief/pkg/errors"
)

// videoIDRe matches the eleven character video ID in watch URLs and
// youtu.be short links.
var videoIDRe = regexp.MustCompile(`(?:v=|youtu\.be/)([a-zA-Z0-9_-]{11})`)

// bareVideoIDRe accepts an ID passed directly instead of a URL.
var bareVideoIDRe = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)

// ExtractVideoID pulls the video ID out of a YouTube URL. A bare eleven
// character ID is accepted as-is.
func ExtractVideoID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", apperrors.Wrap("invalid_input", "video url cannot be empty", nil)
	}
	if m := videoIDRe.FindStringSubmatch(raw); m != nil {
		return m[1], nil
	}
	if bareVideoIDRe.MatchString(raw) {
		return raw, nil
	}
	return "", apperrors.Wrap("invalid_input", fmt.Sprintf("could not extract a video id from %q", raw), nil)
}
