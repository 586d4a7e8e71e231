package middleware

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	domain "github.com/bryanwahyu/automaton-a11y/internal/domain/audit"
)

// Metrics holds process-wide counters exposed on /metrics.
type Metrics struct {
	RequestsTotal      atomic.Uint64
	RequestsInProgress atomic.Int64
	RequestsSuccess    atomic.Uint64
	RequestsFailed     atomic.Uint64
	AuditsTotal        atomic.Uint64
	AuditsMock         atomic.Uint64
	AuditsFailed       atomic.Uint64
	AuditsRateLimited  atomic.Uint64
	StartTime          time.Time
}

var globalMetrics = &Metrics{StartTime: time.Now()}

// RecordAudit counts one analysis by its outcome.
func RecordAudit(res domain.AnalysisResult) {
	globalMetrics.AuditsTotal.Add(1)
	switch {
	case res.Mock:
		globalMetrics.AuditsMock.Add(1)
	case res.Failure != nil:
		globalMetrics.AuditsFailed.Add(1)
		if res.Failure.StatusCode == http.StatusTooManyRequests {
			globalMetrics.AuditsRateLimited.Add(1)
		}
	}
}

// GetMetrics returns a snapshot of the counters and runtime stats.
func GetMetrics() map[string]any {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return map[string]any{
		"requests_total":       globalMetrics.RequestsTotal.Load(),
		"requests_in_progress": globalMetrics.RequestsInProgress.Load(),
		"requests_success":     globalMetrics.RequestsSuccess.Load(),
		"requests_failed":      globalMetrics.RequestsFailed.Load(),
		"audits_total":         globalMetrics.AuditsTotal.Load(),
		"audits_mock":          globalMetrics.AuditsMock.Load(),
		"audits_failed":        globalMetrics.AuditsFailed.Load(),
		"audits_rate_limited":  globalMetrics.AuditsRateLimited.Load(),
		"uptime_seconds":       time.Since(globalMetrics.StartTime).Seconds(),
		"memory": map[string]any{
			"alloc_bytes": m.Alloc,
			"sys_bytes":   m.Sys,
			"num_gc":      m.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}
}

func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		globalMetrics.RequestsTotal.Add(1)
		globalMetrics.RequestsInProgress.Add(1)
		defer globalMetrics.RequestsInProgress.Add(-1)

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		if wrapped.statusCode < 400 {
			globalMetrics.RequestsSuccess.Add(1)
		} else {
			globalMetrics.RequestsFailed.Add(1)
		}
	})
}

func MetricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(GetMetrics())
}
