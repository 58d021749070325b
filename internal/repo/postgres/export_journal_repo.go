package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ExportJournalRepo keeps one metadata row per export attempt. Document
// bytes are never stored.
type ExportJournalRepo struct {
	pool *pgxpool.Pool
}

type ExportJournalRecord struct {
	ID         string
	FileName   string
	Rows       int
	Columns    []string
	SizeBytes  int64
	Duration   time.Duration
	Status     string
	Client     string
	OccurredAt time.Time
}

func NewExportJournalRepo(pool *pgxpool.Pool) *ExportJournalRepo {
	return &ExportJournalRepo{pool: pool}
}

func (r *ExportJournalRepo) Insert(ctx context.Context, entry ExportJournalRecord) error {
	if r == nil || r.pool == nil {
		return nil
	}
	if entry.ID == "" {
		return fmt.Errorf("export journal id is required")
	}

	const query = `
INSERT INTO export_journal (
	id,
	file_name,
	rows_count,
	columns,
	size_bytes,
	duration_ms,
	status,
	client,
	occurred_at
) VALUES (
	$1::uuid,
	$2,
	$3,
	$4::jsonb,
	$5,
	$6,
	$7,
	NULLIF($8, ''),
	$9
)
ON CONFLICT (id) DO NOTHING
`

	columns := entry.Columns
	if columns == nil {
		columns = []string{}
	}
	payload, err := json.Marshal(columns)
	if err != nil {
		return fmt.Errorf("marshal export columns: %w", err)
	}

	occurredAt := entry.OccurredAt.UTC()
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	if _, err := r.pool.Exec(ctx, query,
		entry.ID,
		entry.FileName,
		entry.Rows,
		string(payload),
		entry.SizeBytes,
		entry.Duration.Milliseconds(),
		entry.Status,
		entry.Client,
		occurredAt,
	); err != nil {
		return fmt.Errorf("insert export journal entry: %w", err)
	}

	return nil
}
