package transcriptrepo

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/mliu/tubebrief/internal/domain/transcript"
	apperrors "github.com/mliu/tubebrief/pkg/errors"
	"github.com/mliu/tubebrief/pkg/util"
)

// MemoryRepository is an in-process transcript.Repository for tests and
// local runs. Search uses Euclidean distance over stored embeddings, matching
// the <-> operator of the Postgres implementation.
type MemoryRepository struct {
	mu         sync.RWMutex
	records    map[string]*transcript.Record
	summaries  map[string]*transcript.SummaryRecord
	embeddings map[string][]float32
}

// NewMemoryRepository constructs an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		records:    make(map[string]*transcript.Record),
		summaries:  make(map[string]*transcript.SummaryRecord),
		embeddings: make(map[string][]float32),
	}
}

func (r *MemoryRepository) Create(_ context.Context, record *transcript.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.records[record.SourceID]; exists {
		return apperrors.Wrap("conflict", fmt.Sprintf("source %s already stored", record.SourceID), nil)
	}
	record.ID = uuid.New()
	record.CreatedAt = util.NowUTC()
	record.UpdatedAt = record.CreatedAt
	clone := *record
	r.records[record.SourceID] = &clone
	return nil
}

func (r *MemoryRepository) GetBySourceID(_ context.Context, sourceID string) (*transcript.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[sourceID]
	if !ok {
		return nil, apperrors.Wrap("not_found", fmt.Sprintf("transcript %s not found", sourceID), nil)
	}
	clone := *record
	return &clone, nil
}

func (r *MemoryRepository) List(_ context.Context, sourceType transcript.SourceType, limit int) ([]transcript.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []transcript.Record
	for _, record := range r.records {
		if sourceType != "" && record.SourceType != sourceType {
			continue
		}
		out = append(out, *record)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepository) UpdateTitle(_ context.Context, sourceID, title string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[sourceID]
	if !ok {
		return apperrors.Wrap("not_found", fmt.Sprintf("transcript %s not found", sourceID), nil)
	}
	record.Title = title
	record.UpdatedAt = util.NowUTC()
	return nil
}

func (r *MemoryRepository) UpsertSummary(_ context.Context, record *transcript.SummaryRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := record.TranscriptID.String() + "/" + string(record.Style)
	if existing, ok := r.summaries[key]; ok {
		record.ID = existing.ID
	} else if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	record.CreatedAt = util.NowUTC()
	clone := *record
	r.summaries[key] = &clone
	return nil
}

func (r *MemoryRepository) ListSummaries(_ context.Context, transcriptID string) ([]transcript.SummaryRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []transcript.SummaryRecord
	for _, record := range r.summaries {
		if record.TranscriptID.String() == transcriptID {
			out = append(out, *record)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Style < out[j].Style })
	return out, nil
}

func (r *MemoryRepository) SetSummaryEmbedding(_ context.Context, summaryID string, embedding []float32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	buf := make([]float32, len(embedding))
	copy(buf, embedding)
	r.embeddings[summaryID] = buf
	return nil
}

func (r *MemoryRepository) SearchSummaries(_ context.Context, embedding []float32, limit int) ([]transcript.SearchResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []transcript.SearchResult
	for _, record := range r.summaries {
		stored, ok := r.embeddings[record.ID.String()]
		if !ok {
			continue
		}
		parent := r.recordByID(record.TranscriptID)
		if parent == nil {
			continue
		}
		out = append(out, transcript.SearchResult{
			Transcript: *parent,
			Style:      record.Style,
			Content:    record.Content,
			Distance:   euclidean(embedding, stored),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepository) recordByID(id uuid.UUID) *transcript.Record {
	for _, record := range r.records {
		if record.ID == id {
			return record
		}
	}
	return nil
}

func euclidean(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

var _ transcript.Repository = (*MemoryRepository)(nil)
