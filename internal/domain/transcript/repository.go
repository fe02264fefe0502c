package transcript

import (
	"context"
)

// Repository persists transcripts and their summaries.
type Repository interface {
	// Create stores a new transcript record, filling ID and timestamps.
	Create(ctx context.Context, record *Record) error
	// GetBySourceID returns the transcript for a source identifier, or an
	// error with code "not_found".
	GetBySourceID(ctx context.Context, sourceID string) (*Record, error)
	// List returns the newest transcripts first. A zero sourceType matches
	// every source; limit bounds the result size.
	List(ctx context.Context, sourceType SourceType, limit int) ([]Record, error)
	// UpdateTitle replaces the title of an existing transcript.
	UpdateTitle(ctx context.Context, sourceID, title string) error
	// UpsertSummary stores a summary, replacing any previous one for the
	// same transcript and style.
	UpsertSummary(ctx context.Context, record *SummaryRecord) error
	// ListSummaries returns every stored summary of one transcript.
	ListSummaries(ctx context.Context, transcriptID string) ([]SummaryRecord, error)
	// SetSummaryEmbedding attaches a search vector to a stored summary.
	SetSummaryEmbedding(ctx context.Context, summaryID string, embedding []float32) error
	// SearchSummaries returns the summaries closest to the query vector.
	SearchSummaries(ctx context.Context, embedding []float32, limit int) ([]SearchResult, error)
}

// CaptionFetcher retrieves the caption text of a hosted video.
type CaptionFetcher interface {
	// Fetch returns the full caption text for a video ID. Videos without
	// retrievable captions yield an error with code "captions_unavailable".
	Fetch(ctx context.Context, videoID string) (string, error)
}

// AudioStore keeps uploaded audio blobs for later reference.
type AudioStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// SummaryCache is a fast lookaside for generated summaries keyed by source
// and style. A miss is not an error.
type SummaryCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Embedder turns text into a vector for semantic search.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
