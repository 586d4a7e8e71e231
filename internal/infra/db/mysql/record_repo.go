package mysql

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/bryanwahyu/automaton-a11y/internal/domain/audit"
)

const schema = `
CREATE TABLE IF NOT EXISTS accessibility_analysis (
  id         VARCHAR(64)  NOT NULL PRIMARY KEY,
  run_id     VARCHAR(64)  NOT NULL,
  file       VARCHAR(512) NOT NULL,
  analysis   LONGTEXT     NOT NULL,
  status     VARCHAR(32)  NOT NULL,
  created_at DATETIME(6)  NOT NULL,
  INDEX idx_analysis_run (run_id),
  INDEX idx_analysis_created (created_at)
) CHARACTER SET utf8mb4;`

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

// Save inserts an analysis record
func (r *RecordRepository) Save(ctx context.Context, rec *domain.Record) error {
	const q = `
INSERT INTO accessibility_analysis
  (id, run_id, file, analysis, status, created_at)
VALUES (?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
  analysis=VALUES(analysis), status=VALUES(status);
`
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		rec.ID, stringOrDash(string(rec.RunID)), stringOrDash(rec.File), rec.Analysis, stringOrDash(string(rec.Status)), createdAt.UTC())
	return err
}

// ListByRun returns the records of one run in processing order.
func (r *RecordRepository) ListByRun(ctx context.Context, run domain.RunID) ([]*domain.Record, error) {
	const q = `
SELECT id, run_id, file, analysis, status, created_at
FROM accessibility_analysis
WHERE run_id=?
ORDER BY created_at ASC, id ASC;
`
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
LIMIT ? OFFSET ?;
`
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
