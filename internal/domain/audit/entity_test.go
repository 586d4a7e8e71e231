package audit

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAnalysisResultStatus(t *testing.T) {
	assert.Equal(t, StatusSuccess, AnalysisResult{File: "a.html", Analysis: "ok"}.Status())
	assert.Equal(t, StatusMock, AnalysisResult{File: "a.html", Mock: true}.Status())

	failed := AnalysisResult{File: "a.html", Failure: &Failure{Kind: FailureAPI, StatusCode: 500}}
	assert.Equal(t, Status("api_error"), failed.Status())
	assert.False(t, failed.OK())
}

func TestFailureUnwrap(t *testing.T) {
	cause := errors.New("boom")
	f := &Failure{Kind: FailureTransport, Err: cause}

	assert.ErrorIs(t, f, cause)
	assert.Equal(t, "transport_error: boom", f.Error())
	assert.Equal(t, "read_error", (&Failure{Kind: FailureRead}).Error())
}

func TestNewRecord(t *testing.T) {
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	rec := NewRecord("rec-1", "run-1", AnalysisResult{File: "x.html", Analysis: "text", Mock: true}, at)

	assert.Equal(t, RecordID("rec-1"), rec.ID)
	assert.Equal(t, RunID("run-1"), rec.RunID)
	assert.Equal(t, "x.html", rec.File)
	assert.Equal(t, "text", rec.Analysis)
	assert.Equal(t, StatusMock, rec.Status)
	assert.Equal(t, at, rec.CreatedAt)
}
