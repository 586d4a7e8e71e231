package report

import (
	"fmt"
	"strings"

	domain "github.com/bryanwahyu/automaton-a11y/internal/domain/audit"
)

const (
	markdownTitle   = "# AI-Powered Accessibility Analysis Report"
	mockProvenance  = "*Mock analysis - configure MODELS_TOKEN for real AI analysis*"
	markdownPreface = "This report provides accessibility analysis based on WCAG 2.1 AA guidelines."
)

// MarkdownWriter renders the human-readable digest, one section per result in run order.
type MarkdownWriter struct {
	Name string
}

func (w MarkdownWriter) Filename() string { return w.Name }

func (w MarkdownWriter) Render(run *domain.Run) ([]byte, error) {
	var b strings.Builder
	b.WriteString(markdownTitle + "\n\n")
	b.WriteString(Provenance(run) + "\n\n")
	b.WriteString(markdownPreface + "\n\n")
	for _, res := range run.Results {
		fmt.Fprintf(&b, "## Analysis: %s\n\n", res.File)
		fmt.Fprintf(&b, "%s\n\n", res.Analysis)
		b.WriteString("---\n\n")
	}
	return []byte(b.String()), nil
}

// Provenance is the line telling readers whether a model produced the report.
func Provenance(run *domain.Run) string {
	if !run.Remote {
		return mockProvenance
	}
	model := run.Model
	if model == "" {
		model = "the configured model"
	}
	return fmt.Sprintf("*Analysis performed by %s via GitHub Models*", model)
}
