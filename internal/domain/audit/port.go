package audit

import (
	"context"
	"errors"
	"time"
)

// ErrNoAxeResults is returned by an AxeRenderer when none of its input files exist.
var ErrNoAxeResults = errors.New("no axe results found")

// ErrNoRepository is returned when persistence was requested but is not configured.
var ErrNoRepository = errors.New("record repository not configured")

// Repository port (persisting analysis records)
type Repository interface {
	Save(ctx context.Context, r *Record) error
	ListByRun(ctx context.Context, run RunID) ([]*Record, error)
	Paginate(ctx context.Context, page, pageSize int) ([]*Record, error)
}

// ArtifactStore port (uploading written reports)
type ArtifactStore interface {
	Upload(ctx context.Context, localPath, key string) (string, error)
}

// ReportWriter renders a finished run into one output file.
type ReportWriter interface {
	Filename() string
	Render(run *Run) ([]byte, error)
}

// AxeRenderer renders the axe-core results report.
type AxeRenderer interface {
	Filename() string
	Render(generatedAt time.Time) ([]byte, error)
}
