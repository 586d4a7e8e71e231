package postgres

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/bryanwahyu/automaton-a11y/internal/domain/audit"
)

const schema = `
CREATE TABLE IF NOT EXISTS accessibility_analysis (
  id         TEXT PRIMARY KEY,
  run_id     TEXT NOT NULL,
  file       TEXT NOT NULL,
  analysis   TEXT NOT NULL,
  status     TEXT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_analysis_run ON accessibility_analysis (run_id);
CREATE INDEX IF NOT EXISTS idx_analysis_created ON accessibility_analysis (created_at);`

type RecordRepository struct {
	db *sql.DB
}

func NewRecordRepository(db *sql.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// Migrate creates the table when missing.
func (r *RecordRepository) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

// Save inserts or updates an analysis record
func (r *RecordRepository) Save(ctx context.Context, rec *domain.Record) error {
	const q = `
INSERT INTO accessibility_analysis
  (id, run_id, file, analysis, status, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (id) DO UPDATE SET
  analysis=EXCLUDED.analysis,
  status=EXCLUDED.status;
`
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		rec.ID, stringOrDash(string(rec.RunID)), stringOrDash(rec.File), rec.Analysis, stringOrDash(string(rec.Status)), createdAt)
	return err
}

// ListByRun returns the records of one run in processing order.
func (r *RecordRepository) ListByRun(ctx context.Context, run domain.RunID) ([]*domain.Record, error) {
	const q = `
SELECT id, run_id, file, analysis, status, created_at
FROM accessibility_analysis
WHERE run_id=$1
ORDER BY created_at ASC, id ASC;`
	rows, err := r.db.QueryContext(ctx, q, run)
	if err != nil {
		return nil, err
	}
	return scanRecords(rows)
}

// Paginate returns a page of records ordered by created_at desc
func (r *RecordRepository) Paginate(ctx context.Context, page, pageSize int) ([]*domain.Record, error) {
	limit, offset := normalizePage(page, pageSize)
	const q = `
SELECT id, run_id, file, analysis, status, created_at
FROM accessibility_analysis
ORDER BY created_at DESC, id DESC
LIMIT $1 OFFSET $2;`
	rows, err := r.db.QueryContext(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]*domain.Record, error) {
	defer rows.Close()

	var out []*domain.Record
	for rows.Next() {
		var rec domain.Record
		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.File, &rec.Analysis, &rec.Status, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}
