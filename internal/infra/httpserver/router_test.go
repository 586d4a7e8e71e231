package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appaudit "github.com/bryanwahyu/automaton-a11y/internal/application/audit"
	"github.com/bryanwahyu/automaton-a11y/internal/domain/ai"
	domain "github.com/bryanwahyu/automaton-a11y/internal/domain/audit"
)

type fixedClock struct{}

func (fixedClock) Now() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

type clientFunc func(ctx context.Context, p string) (string, error)

func (f clientFunc) Complete(ctx context.Context, p string) (string, error) { return f(ctx, p) }

type memRepo struct {
	mu      sync.Mutex
	records []*domain.Record
}

func (m *memRepo) Save(_ context.Context, r *domain.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, r)
	return nil
}

func (m *memRepo) ListByRun(_ context.Context, id domain.RunID) ([]*domain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Record
	for _, r := range m.records {
		if r.RunID == id {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memRepo) Paginate(_ context.Context, page, size int) ([]*domain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if page < 1 {
		page = 1
	}
	start := (page - 1) * size
	if start >= len(m.records) {
		return nil, nil
	}
	return m.records[start:min(start+size, len(m.records))], nil
}

func mockRouter(repo domain.Repository) http.Handler {
	svc := appaudit.NewService(nil, false, io.Discard)
	return NewRouter(svc, repo, fixedClock{}, 1<<10)
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAnalyze_MockModePersists(t *testing.T) {
	repo := &memRepo{}
	h := mockRouter(repo)

	rec := do(t, h, http.MethodPost, "/v1/audits", `{"file":"page.html","content":"<img src=x><a href=y>"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got domain.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "page.html", got.File)
	assert.Equal(t, domain.StatusMock, got.Status)
	assert.Contains(t, got.Analysis, "page.html")
	assert.NotEmpty(t, got.RunID)
	assert.WithinDuration(t, fixedClock{}.Now(), got.CreatedAt, 0)

	require.Len(t, repo.records, 1)
	assert.Equal(t, got.ID, repo.records[0].ID)
}

func TestAnalyze_KeepsGivenRunID(t *testing.T) {
	repo := &memRepo{}
	h := mockRouter(repo)

	for _, f := range []string{"a.html", "b.html"} {
		rec := do(t, h, http.MethodPost, "/v1/audits", `{"file":"`+f+`","content":"x","run_id":"nightly-1"}`)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := do(t, h, http.MethodGet, "/v1/runs/nightly-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []domain.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "a.html", list[0].File)
	assert.Equal(t, "b.html", list[1].File)
}

func TestAnalyze_RejectsBadInput(t *testing.T) {
	h := mockRouter(&memRepo{})

	cases := map[string]struct {
		body string
		code int
	}{
		"malformed json": {`{"file":`, http.StatusBadRequest},
		"empty file":     {`{"file":"","content":"x"}`, http.StatusBadRequest},
		"path":           {`{"file":"../etc/passwd","content":"x"}`, http.StatusBadRequest},
		"bad run id":     {`{"file":"a.html","content":"x","run_id":"a/b"}`, http.StatusBadRequest},
		"too large":      {`{"file":"a.html","content":"` + strings.Repeat("x", 2048) + `"}`, http.StatusRequestEntityTooLarge},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/v1/audits", tc.body)
			assert.Equal(t, tc.code, rec.Code, rec.Body.String())
		})
	}
}

func TestAnalyze_QuotaExceededMapsTo429(t *testing.T) {
	svc := appaudit.NewService(clientFunc(func(context.Context, string) (string, error) {
		return "", &ai.StatusError{StatusCode: http.StatusTooManyRequests, Body: `{"error":"quota"}`}
	}), true, io.Discard)
	h := NewRouter(svc, nil, fixedClock{}, 0)

	rec := do(t, h, http.MethodPost, "/v1/audits", `{"file":"a.html","content":"<p>"}`)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	var got domain.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, `API Error 429: {"error":"quota"}`, got.Analysis)
	assert.Equal(t, domain.Status(domain.FailureAPI), got.Status)
}

func TestAnalyze_RemoteFailureStillOK(t *testing.T) {
	svc := appaudit.NewService(clientFunc(func(context.Context, string) (string, error) {
		return "", &ai.StatusError{StatusCode: http.StatusNotFound, Body: "not found"}
	}), true, io.Discard)
	h := NewRouter(svc, nil, fixedClock{}, 0)

	rec := do(t, h, http.MethodPost, "/v1/audits", `{"file":"a.html","content":"<p>"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "API Error 404: not found")
}

func TestList_Paginates(t *testing.T) {
	repo := &memRepo{}
	h := mockRouter(repo)
	for _, f := range []string{"a.html", "b.html", "c.html"} {
		require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/v1/audits", `{"file":"`+f+`","content":""}`).Code)
	}

	rec := do(t, h, http.MethodGet, "/v1/audits?page=2&page_size=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []domain.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "c.html", list[0].File)

	rec = do(t, h, http.MethodGet, "/v1/audits?page=9", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestRun_NotFound(t *testing.T) {
	rec := do(t, mockRouter(&memRepo{}), http.MethodGet, "/v1/runs/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListing_WithoutRepository(t *testing.T) {
	h := mockRouter(nil)

	assert.Equal(t, http.StatusServiceUnavailable, do(t, h, http.MethodGet, "/v1/audits", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, h, http.MethodGet, "/v1/runs/abc", "").Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/v1/audits", `{"file":"a.html","content":""}`).Code)
}
