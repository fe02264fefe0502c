package transcriptrepo

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mliu/tubebrief/internal/domain/summary"
	"github.com/mliu/tubebrief/internal/domain/transcript"
	apperrors "github.com/mliu/tubebrief/pkg/errors"
)

func TestMemoryRepositoryCreateAndGet(t *testing.T) {
	t.Parallel()
	repo := NewMemoryRepository()
	ctx := context.Background()

	record := &transcript.Record{
		SourceType: transcript.SourceTypeYouTube,
		SourceID:   "dQw4w9WgXcQ",
		Text:       "caption text",
	}
	require.NoError(t, repo.Create(ctx, record))
	require.NotEqual(t, uuid.Nil, record.ID)
	require.False(t, record.CreatedAt.IsZero())

	got, err := repo.GetBySourceID(ctx, "dQw4w9WgXcQ")
	require.NoError(t, err)
	require.Equal(t, record.ID, got.ID)
	require.Equal(t, "caption text", got.Text)

	// duplicate sources are rejected
	err = repo.Create(ctx, &transcript.Record{SourceType: transcript.SourceTypeYouTube, SourceID: "dQw4w9WgXcQ", Text: "again"})
	require.True(t, apperrors.IsCode(err, "conflict"))
}

func TestMemoryRepositoryGetMissing(t *testing.T) {
	t.Parallel()
	repo := NewMemoryRepository()

	_, err := repo.GetBySourceID(context.Background(), "nope")
	require.True(t, apperrors.IsCode(err, "not_found"))
}

func TestMemoryRepositoryListFiltersBySourceType(t *testing.T) {
	t.Parallel()
	repo := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &transcript.Record{SourceType: transcript.SourceTypeYouTube, SourceID: "video000001", Text: "a"}))
	require.NoError(t, repo.Create(ctx, &transcript.Record{SourceType: transcript.SourceTypeAudio, SourceID: "upload-1", Text: "b"}))

	all, err := repo.List(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, all, 2)

	audio, err := repo.List(ctx, transcript.SourceTypeAudio, 10)
	require.NoError(t, err)
	require.Len(t, audio, 1)
	require.Equal(t, "upload-1", audio[0].SourceID)

	limited, err := repo.List(ctx, "", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
}

func TestMemoryRepositoryUpdateTitle(t *testing.T) {
	t.Parallel()
	repo := NewMemoryRepository()
	ctx := context.Background()

	require.True(t, apperrors.IsCode(repo.UpdateTitle(ctx, "missing", "x"), "not_found"))

	record := &transcript.Record{SourceType: transcript.SourceTypeYouTube, SourceID: "video000001", Text: "a"}
	require.NoError(t, repo.Create(ctx, record))
	require.NoError(t, repo.UpdateTitle(ctx, "video000001", "A Better Title"))

	got, err := repo.GetBySourceID(ctx, "video000001")
	require.NoError(t, err)
	require.Equal(t, "A Better Title", got.Title)
}

func TestMemoryRepositoryUpsertSummaryReplaces(t *testing.T) {
	t.Parallel()
	repo := NewMemoryRepository()
	ctx := context.Background()

	parent := &transcript.Record{SourceType: transcript.SourceTypeYouTube, SourceID: "video000001", Text: "a"}
	require.NoError(t, repo.Create(ctx, parent))

	first := &transcript.SummaryRecord{TranscriptID: parent.ID, Style: summary.StyleConcise, Content: "v1"}
	require.NoError(t, repo.UpsertSummary(ctx, first))
	require.NotEqual(t, uuid.Nil, first.ID)

	second := &transcript.SummaryRecord{TranscriptID: parent.ID, Style: summary.StyleConcise, Content: "v2"}
	require.NoError(t, repo.UpsertSummary(ctx, second))
	require.Equal(t, first.ID, second.ID, "upsert must keep the original summary id")

	summaries, err := repo.ListSummaries(ctx, parent.ID.String())
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	require.Equal(t, "v2", summaries[0].Content)
}

func TestMemoryRepositorySearchOrdersByDistance(t *testing.T) {
	t.Parallel()
	repo := NewMemoryRepository()
	ctx := context.Background()

	parent := &transcript.Record{SourceType: transcript.SourceTypeYouTube, SourceID: "video000001", Text: "a"}
	require.NoError(t, repo.Create(ctx, parent))

	near := &transcript.SummaryRecord{TranscriptID: parent.ID, Style: summary.StyleConcise, Content: "near"}
	require.NoError(t, repo.UpsertSummary(ctx, near))
	require.NoError(t, repo.SetSummaryEmbedding(ctx, near.ID.String(), []float32{1, 0, 0}))

	far := &transcript.SummaryRecord{TranscriptID: parent.ID, Style: summary.StyleDetailed, Content: "far"}
	require.NoError(t, repo.UpsertSummary(ctx, far))
	require.NoError(t, repo.SetSummaryEmbedding(ctx, far.ID.String(), []float32{0, 5, 5}))

	// summaries without embeddings never match
	plain := &transcript.SummaryRecord{TranscriptID: parent.ID, Style: summary.StyleKeyPoints, Content: "plain"}
	require.NoError(t, repo.UpsertSummary(ctx, plain))

	results, err := repo.SearchSummaries(ctx, []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "near", results[0].Content)
	require.Equal(t, "far", results[1].Content)
	require.Less(t, results[0].Distance, results[1].Distance)

	top, err := repo.SearchSummaries(ctx, []float32{1, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	require.Equal(t, "near", top[0].Content)
}
