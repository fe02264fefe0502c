package transcript

import (
	"time"

	"github.com/google/uuid"

	"github.com/mliu/tubebrief/internal/domain/summary"
)

// SourceType distinguishes where a transcript's text came from.
type SourceType string

const (
	SourceTypeYouTube SourceType = "youtube"
	SourceTypeAudio   SourceType = "audio"
)

// Valid reports whether the source type is a known member of the enumeration.
func (s SourceType) Valid() bool {
	return s == SourceTypeYouTube || s == SourceTypeAudio
}

// Record is a stored transcript. SourceID is unique across the library: the
// eleven character video ID for YouTube sources, a generated UUID string for
// uploaded audio.
type Record struct {
	ID               uuid.UUID
	SourceType       SourceType
	SourceID         string
	Title            string
	Text             string
	OriginalFilename string
	StorageKey       string
	SourceDuration   float64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// SummaryRecord is one generated summary of a transcript in one style.
type SummaryRecord struct {
	ID           uuid.UUID
	TranscriptID uuid.UUID
	Style        summary.Style
	Content      string
	CreatedAt    time.Time
}

// SearchResult pairs a matching summary with its transcript and the vector
// distance of the match. Lower distance means closer.
type SearchResult struct {
	Transcript Record
	Style      summary.Style
	Content    string
	Distance   float64
}
