package audit

import (
	"time"
)

// RunID identifies one generator run (or one API call).
type RunID string

// RecordID identifies a persisted analysis record.
type RecordID string

// AnalysisRequest is the raw input of one analysis.
type AnalysisRequest struct {
	Filename string
	Content  string
}

// FailureKind enum
type FailureKind string

const (
	FailureRead       FailureKind = "read_error"
	FailureCredential FailureKind = "credential_error"
	FailureAPI        FailureKind = "api_error"
	FailureTransport  FailureKind = "transport_error"
)

// Failure explains why an AnalysisResult holds an error message instead of an analysis.
type Failure struct {
	Kind       FailureKind
	StatusCode int
	Err        error
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return string(f.Kind)
	}
	return string(f.Kind) + ": " + f.Err.Error()
}

func (f *Failure) Unwrap() error { return f.Err }

// AnalysisResult is the {file, analysis} pair written to the reports.
// Mock and Failure stay in memory; only File and Analysis are serialized.
type AnalysisResult struct {
	File     string   `json:"file"`
	Analysis string   `json:"analysis"`
	Mock     bool     `json:"-"`
	Failure  *Failure `json:"-"`
}

// OK reports whether the analysis text came from the model or the mock template.
func (r AnalysisResult) OK() bool { return r.Failure == nil }

// Status is the label stored alongside persisted records.
func (r AnalysisResult) Status() Status {
	switch {
	case r.Failure != nil:
		return Status(r.Failure.Kind)
	case r.Mock:
		return StatusMock
	default:
		return StatusSuccess
	}
}

// Status enum
type Status string

const (
	StatusSuccess Status = "success"
	StatusMock    Status = "mock"
)

// Run is everything the report renderers need.
type Run struct {
	ID        RunID
	StartedAt time.Time
	Remote    bool
	Model     string
	Results   []AnalysisResult
}

// Record is an AnalysisResult persisted for auditing and retrieval.
type Record struct {
	ID        RecordID  `json:"id"`
	RunID     RunID     `json:"run_id"`
	File      string    `json:"file"`
	Analysis  string    `json:"analysis"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// NewRecord copies a result into a Record.
func NewRecord(id RecordID, run RunID, res AnalysisResult, at time.Time) *Record {
	return &Record{
		ID:        id,
		RunID:     run,
		File:      res.File,
		Analysis:  res.Analysis,
		Status:    res.Status(),
		CreatedAt: at,
	}
}
