package transcriptrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/mliu/tubebrief/internal/domain/summary"
	"github.com/mliu/tubebrief/internal/domain/transcript"
	apperrors "github.com/mliu/tubebrief/pkg/errors"
)

// PostgresRepository implements transcript.Repository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const transcriptColumns = `id, source_type, source_id, title, transcript_text,
	original_filename, storage_key, source_duration, created_at, updated_at`

func (r *PostgresRepository) Create(ctx context.Context, record *transcript.Record) error {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO transcripts (source_type, source_id, title, transcript_text, original_filename, storage_key, source_duration)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING %s
	`, transcriptColumns),
		record.SourceType, record.SourceID, record.Title, record.Text,
		record.OriginalFilename, record.StorageKey, record.SourceDuration)
	stored, err := scanRecord(row)
	if err != nil {
		return fmt.Errorf("insert transcript: %w", err)
	}
	*record = stored
	return nil
}

func (r *PostgresRepository) GetBySourceID(ctx context.Context, sourceID string) (*transcript.Record, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM transcripts WHERE source_id = $1
	`, transcriptColumns), sourceID)
	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.Wrap("not_found", fmt.Sprintf("transcript %s not found", sourceID), nil)
		}
		return nil, fmt.Errorf("query transcript: %w", err)
	}
	return &record, nil
}

func (r *PostgresRepository) List(ctx context.Context, sourceType transcript.SourceType, limit int) ([]transcript.Record, error) {
	query := fmt.Sprintf(`SELECT %s FROM transcripts`, transcriptColumns)
	args := []any{}
	if sourceType != "" {
		query += ` WHERE source_type = $1 ORDER BY created_at DESC LIMIT $2`
		args = append(args, sourceType, limit)
	} else {
		query += ` ORDER BY created_at DESC LIMIT $1`
		args = append(args, limit)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transcripts: %w", err)
	}
	defer rows.Close()

	var out []transcript.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) UpdateTitle(ctx context.Context, sourceID, title string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE transcripts SET title = $2, updated_at = now() WHERE source_id = $1
	`, sourceID, title)
	if err != nil {
		return fmt.Errorf("update title: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.Wrap("not_found", fmt.Sprintf("transcript %s not found", sourceID), nil)
	}
	return nil
}

func (r *PostgresRepository) UpsertSummary(ctx context.Context, record *transcript.SummaryRecord) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO summaries (transcript_id, style, content)
		VALUES ($1, $2, $3)
		ON CONFLICT (transcript_id, style)
		DO UPDATE SET content = EXCLUDED.content, created_at = now()
		RETURNING id, created_at
	`, record.TranscriptID, record.Style, record.Content)
	if err := row.Scan(&record.ID, &record.CreatedAt); err != nil {
		return fmt.Errorf("upsert summary: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListSummaries(ctx context.Context, transcriptID string) ([]transcript.SummaryRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, transcript_id, style, content, created_at
		FROM summaries
		WHERE transcript_id = $1
		ORDER BY style
	`, transcriptID)
	if err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}
	defer rows.Close()

	var out []transcript.SummaryRecord
	for rows.Next() {
		var record transcript.SummaryRecord
		var style string
		if err := rows.Scan(&record.ID, &record.TranscriptID, &style, &record.Content, &record.CreatedAt); err != nil {
			return nil, err
		}
		record.Style = summary.Style(style)
		out = append(out, record)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) SetSummaryEmbedding(ctx context.Context, summaryID string, embedding []float32) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE summaries SET embedding = $2 WHERE id = $1
	`, summaryID, pgvector.NewVector(embedding))
	if err != nil {
		return fmt.Errorf("set summary embedding: %w", err)
	}
	return nil
}

func (r *PostgresRepository) SearchSummaries(ctx context.Context, embedding []float32, limit int) ([]transcript.SearchResult, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT s.style, s.content, s.embedding <-> $1 AS distance, %s
		FROM summaries s
		JOIN transcripts t ON t.id = s.transcript_id
		WHERE s.embedding IS NOT NULL
		ORDER BY s.embedding <-> $1
		LIMIT $2
	`, prefixColumns("t")), pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, fmt.Errorf("search summaries: %w", err)
	}
	defer rows.Close()

	var out []transcript.SearchResult
	for rows.Next() {
		var (
			result transcript.SearchResult
			style  string
		)
		args := []any{&style, &result.Content, &result.Distance}
		args = append(args, recordScanArgs(&result.Transcript)...)
		if err := rows.Scan(args...); err != nil {
			return nil, err
		}
		result.Style = summary.Style(style)
		out = append(out, result)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (transcript.Record, error) {
	var record transcript.Record
	if err := row.Scan(recordScanArgs(&record)...); err != nil {
		return transcript.Record{}, err
	}
	return record, nil
}

func recordScanArgs(record *transcript.Record) []any {
	return []any{
		&record.ID, &record.SourceType, &record.SourceID, &record.Title, &record.Text,
		&record.OriginalFilename, &record.StorageKey, &record.SourceDuration,
		&record.CreatedAt, &record.UpdatedAt,
	}
}

func prefixColumns(alias string) string {
	return fmt.Sprintf(`%[1]s.id, %[1]s.source_type, %[1]s.source_id, %[1]s.title, %[1]s.transcript_text,
	%[1]s.original_filename, %[1]s.storage_key, %[1]s.source_duration, %[1]s.created_at, %[1]s.updated_at`, alias)
}

var _ transcript.Repository = (*PostgresRepository)(nil)
