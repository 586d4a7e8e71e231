package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bryanwahyu/automaton-a11y/internal/application"
	appaudit "github.com/bryanwahyu/automaton-a11y/internal/application/audit"
	aiport "github.com/bryanwahyu/automaton-a11y/internal/domain/ai"
	domain "github.com/bryanwahyu/automaton-a11y/internal/domain/audit"
	"github.com/bryanwahyu/automaton-a11y/internal/middleware"
)

type Router struct {
	svc     *appaudit.Service
	records domain.Repository
	clock   application.Clock
	maxBody int64
}

// NewRouter mounts the audit API. records may be nil: analyses are then returned
// but not stored, and the listing endpoints answer 503.
func NewRouter(svc *appaudit.Service, records domain.Repository, clock application.Clock, maxBody int64) http.Handler {
	if clock == nil {
		clock = application.SystemClock{}
	}
	r := &Router{svc: svc, records: records, clock: clock, maxBody: maxBody}
	mux := chi.NewRouter()

	mux.Route("/v1", func(rt chi.Router) {
		rt.Post("/audits", r.wrap(r.handleAnalyze))
		rt.Get("/audits", r.wrap(r.handleList))
		rt.Get("/runs/{id}", r.wrap(r.handleRun))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

type badRequest struct{ error }

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			var br badRequest
			var tooLarge *http.MaxBytesError
			switch {
			case errors.As(err, &tooLarge):
				http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			case errors.As(err, &br):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, domain.ErrNoRepository):
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
			default:
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
		}
	}
}

type analyzeRequest struct {
	File    string `json:"file"`
	Content string `json:"content"`
	RunID   string `json:"run_id"`
}

// POST /v1/audits
// Body: {"file": "<name>", "content": "<html>", "run_id": "<optional>"}
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	if r.maxBody > 0 {
		req.Body = http.MaxBytesReader(w, req.Body, r.maxBody)
	}
	var body analyzeRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return badRequest{fmt.Errorf("invalid body: %w", err)}
	}
	body.File = middleware.SanitizeString(body.File)
	if err := middleware.ValidateFilename(body.File); err != nil {
		return badRequest{err}
	}
	if body.RunID != "" {
		if err := middleware.ValidateRunID(body.RunID); err != nil {
			return badRequest{err}
		}
	} else {
		body.RunID = uuid.NewString()
	}

	res := r.svc.Analyze(req.Context(), domain.AnalysisRequest{Filename: body.File, Content: body.Content})
	middleware.RecordAudit(res)

	rec := domain.NewRecord(domain.RecordID(uuid.NewString()), domain.RunID(body.RunID), res, r.clock.Now())
	if r.records != nil {
		if err := r.records.Save(req.Context(), rec); err != nil {
			return err
		}
	}

	status := http.StatusOK
	if res.Failure != nil && errors.Is(res.Failure, aiport.ErrQuotaExceeded) {
		status = http.StatusTooManyRequests
	}
	return writeJSON(w, status, rec)
}

// GET /v1/audits?page=&page_size=
func (r *Router) handleList(w http.ResponseWriter, req *http.Request) error {
	if r.records == nil {
		return domain.ErrNoRepository
	}
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))

	list, err := r.records.Paginate(req.Context(), page, middleware.ValidateLimit(size))
	if err != nil {
		return err
	}
	if list == nil {
		list = []*domain.Record{}
	}
	return writeJSON(w, http.StatusOK, list)
}

// GET /v1/runs/{id}
func (r *Router) handleRun(w http.ResponseWriter, req *http.Request) error {
	if r.records == nil {
		return domain.ErrNoRepository
	}
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateRunID(id); err != nil {
		return badRequest{err}
	}
	list, err := r.records.ListByRun(req.Context(), domain.RunID(id))
	if err != nil {
		return err
	}
	if len(list) == 0 {
		http.Error(w, "not found", http.StatusNotFound)
		return nil
	}
	return writeJSON(w, http.StatusOK, list)
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
