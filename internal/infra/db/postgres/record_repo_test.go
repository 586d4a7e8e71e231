package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/automaton-a11y/internal/domain/audit"
)

const (
	saveSQL      = `INSERT INTO accessibility_analysis (id, run_id, file, analysis, status, created_at) VALUES ($1,$2,$3,$4,$5,$6) ON CONFLICT (id) DO UPDATE SET analysis=EXCLUDED.analysis, status=EXCLUDED.status;`
	listByRunSQL = `SELECT id, run_id, file, analysis, status, created_at FROM accessibility_analysis WHERE run_id=$1 ORDER BY created_at ASC, id ASC;`
	paginateSQL  = `SELECT id, run_id, file, analysis, status, created_at FROM accessibility_analysis ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2;`
)

var recordColumns = []string{"id", "run_id", "file", "analysis", "status", "created_at"}

func newMockRepo(t *testing.T) (*RecordRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewRecordRepository(db), mock
}

func TestRecordRepository_Save(t *testing.T) {
	repo, mock := newMockRepo(t)
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(saveSQL).
		WithArgs("rec-1", "run-1", "page.html", "## Report", "success", at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Save(context.Background(), &domain.Record{
		ID: "rec-1", RunID: "run-1", File: "page.html", Analysis: "## Report",
		Status: domain.StatusSuccess, CreatedAt: at,
	})
	require.NoError(t, err)
}

func TestRecordRepository_SaveFillsBlanks(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(saveSQL).
		WithArgs("rec-2", "-", "-", "", "-", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Save(context.Background(), &domain.Record{ID: "rec-2"}))
}

func TestRecordRepository_SaveError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(saveSQL).WillReturnError(errors.New("connection reset"))

	err := repo.Save(context.Background(), &domain.Record{ID: "rec-3", CreatedAt: time.Now()})
	require.EqualError(t, err, "connection reset")
}

func TestRecordRepository_ListByRun(t *testing.T) {
	repo, mock := newMockRepo(t)
	t1 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Second)

	mock.ExpectQuery(listByRunSQL).
		WithArgs("run-1").
		WillReturnRows(sqlmock.NewRows(recordColumns).
			AddRow("rec-1", "run-1", "a.html", "first", "mock", t1).
			AddRow("rec-2", "run-1", "b.html", "API Error 404: not found", "api_error", t2))

	got, err := repo.ListByRun(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, &domain.Record{
		ID: "rec-1", RunID: "run-1", File: "a.html", Analysis: "first",
		Status: domain.StatusMock, CreatedAt: t1,
	}, got[0])
	assert.Equal(t, domain.RecordID("rec-2"), got[1].ID)
	assert.Equal(t, domain.Status(domain.FailureAPI), got[1].Status)
	assert.Equal(t, t2, got[1].CreatedAt)
}

func TestRecordRepository_ListByRunEmpty(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(listByRunSQL).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(recordColumns))

	got, err := repo.ListByRun(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRecordRepository_Paginate(t *testing.T) {
	repo, mock := newMockRepo(t)
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	// page 3 of 10 -> LIMIT 10 OFFSET 20
	mock.ExpectQuery(paginateSQL).
		WithArgs(10, 20).
		WillReturnRows(sqlmock.NewRows(recordColumns).
			AddRow("rec-9", "run-2", "c.html", "text", "success", at))

	got, err := repo.Paginate(context.Background(), 3, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c.html", got[0].File)
	assert.Equal(t, domain.RunID("run-2"), got[0].RunID)
}

func TestRecordRepository_PaginateDefaults(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(paginateSQL).
		WithArgs(20, 0).
		WillReturnRows(sqlmock.NewRows(recordColumns))

	_, err := repo.Paginate(context.Background(), 0, 0)
	require.NoError(t, err)
}

func TestRecordRepository_ScanError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(listByRunSQL).
		WithArgs("run-1").
		WillReturnRows(sqlmock.NewRows(recordColumns).
			AddRow("rec-1", "run-1", "a.html", "x", "success", "not a time"))

	_, err := repo.ListByRun(context.Background(), "run-1")
	require.Error(t, err)
}

func TestRecordRepository_Migrate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS accessibility_analysis").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, NewRecordRepository(db).Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
