package audit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/bryanwahyu/automaton-a11y/internal/application"
	domain "github.com/bryanwahyu/automaton-a11y/internal/domain/audit"
)

// Generator is the report driver: one sequential pass over Inputs.
// Artifacts, Records and Axe are optional.
type Generator struct {
	Analyzer  *Service
	Inputs    []string
	OutDir    string
	Writers   []domain.ReportWriter
	Axe       domain.AxeRenderer
	Artifacts domain.ArtifactStore
	Records   domain.Repository
	Clock     application.Clock
	Out       io.Writer
	Model     string
}

// Summary describes what a run produced.
type Summary struct {
	RunID    domain.RunID
	Results  []domain.AnalysisResult
	Skipped  []string
	Outputs  []string
	Uploaded []string
}

// Run analyzes every existing input and writes the reports. Per-file failures
// end up inside the reports; only an output write failure is returned.
func (g *Generator) Run(ctx context.Context) (Summary, error) {
	out := g.Out
	if out == nil {
		out = io.Discard
	}
	clock := g.Clock
	if clock == nil {
		clock = application.SystemClock{}
	}

	run := &domain.Run{
		ID:        domain.RunID(uuid.NewString()),
		StartedAt: clock.Now(),
		Remote:    g.Analyzer.Remote,
		Model:     g.Model,
	}
	sum := Summary{RunID: run.ID}

	fmt.Fprintln(out, "AI Accessibility Analyzer Starting...")
	fmt.Fprintln(out, strings.Repeat("=", 50))
	if run.Remote {
		fmt.Fprintln(out, "MODELS_TOKEN found - running real AI analysis")
	} else {
		fmt.Fprintln(out, "MODELS_TOKEN not found - running in mock mode")
		fmt.Fprintln(out, "   To get real AI analysis:")
		fmt.Fprintln(out, "   1. Get token from: https://github.com/marketplace/models")
		fmt.Fprintln(out, "   2. Set environment variable: MODELS_TOKEN=your_token")
	}
	fmt.Fprintln(out)

	for _, name := range g.Inputs {
		if _, err := os.Stat(name); err != nil {
			fmt.Fprintf(out, "File %s not found, skipping...\n", name)
			sum.Skipped = append(sum.Skipped, name)
			continue
		}
		fmt.Fprintf(out, "Analyzing %s...\n", name)
		res := g.Analyzer.AnalyzeFile(ctx, name)
		run.Results = append(run.Results, res)
		if res.Failure != nil {
			log.Printf("analysis failed file=%s kind=%s err=%v", name, res.Failure.Kind, res.Failure.Err)
		}
		fmt.Fprintf(out, "Completed analysis of %s\n", name)
	}
	sum.Results = run.Results

	if len(run.Results) == 0 {
		fmt.Fprintln(out, "No HTML files found to analyze!")
		return sum, nil
	}

	fmt.Fprintln(out, "\nSaving results...")
	outDir := g.OutDir
	if outDir == "" {
		outDir = "."
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return sum, fmt.Errorf("create output dir %s: %w", outDir, err)
	}

	for _, w := range g.Writers {
		data, err := w.Render(run)
		if err != nil {
			return sum, fmt.Errorf("render %s: %w", w.Filename(), err)
		}
		p := filepath.Join(outDir, w.Filename())
		if err := os.WriteFile(p, data, 0o644); err != nil {
			return sum, fmt.Errorf("write %s: %w", p, err)
		}
		sum.Outputs = append(sum.Outputs, p)
		fmt.Fprintf(out, "Saved %s\n", p)
	}

	if g.Axe != nil {
		p, err := g.writeAxeReport(outDir, run)
		switch {
		case errors.Is(err, domain.ErrNoAxeResults):
			log.Printf("axe report skipped: %v", err)
		case err != nil:
			return sum, err
		default:
			sum.Outputs = append(sum.Outputs, p)
			fmt.Fprintf(out, "HTML report generated at %s\n", p)
		}
	}

	g.persist(ctx, run)
	sum.Uploaded = g.upload(ctx, run.ID, sum.Outputs)

	fmt.Fprintln(out, "\nAI accessibility analysis complete!")
	fmt.Fprintf(out, "Analyzed %d files\n", len(run.Results))
	for _, p := range sum.Outputs {
		if strings.HasSuffix(p, ".md") {
			fmt.Fprintf(out, "Check %s for detailed results\n", p)
		}
	}
	return sum, nil
}

func (g *Generator) writeAxeReport(outDir string, run *domain.Run) (string, error) {
	data, err := g.Axe.Render(run.StartedAt)
	if err != nil {
		return "", err
	}
	p := filepath.Join(outDir, g.Axe.Filename())
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", p, err)
	}
	return p, nil
}

// persist stores every result; a failing database never fails the run.
func (g *Generator) persist(ctx context.Context, run *domain.Run) {
	if g.Records == nil {
		return
	}
	for _, res := range run.Results {
		rec := domain.NewRecord(domain.RecordID(uuid.NewString()), run.ID, res, run.StartedAt)
		if err := g.Records.Save(ctx, rec); err != nil {
			log.Printf("persist record failed run=%s file=%s err=%v", run.ID, res.File, err)
		}
	}
}

// upload pushes written outputs under runs/<run-id>/; failures are logged only.
func (g *Generator) upload(ctx context.Context, id domain.RunID, paths []string) []string {
	if g.Artifacts == nil {
		return nil
	}
	var urls []string
	for _, p := range paths {
		key := path.Join("runs", string(id), filepath.Base(p))
		url, err := g.Artifacts.Upload(ctx, p, key)
		if err != nil {
			log.Printf("upload failed path=%s key=%s err=%v", p, key, err)
			continue
		}
		urls = append(urls, url)
	}
	return urls
}
