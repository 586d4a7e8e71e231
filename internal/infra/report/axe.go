package report

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"os"
	"time"

	domain "github.com/bryanwahyu/automaton-a11y/internal/domain/audit"
)

//go:embed templates/axe_report.html.tmpl
var axeTemplateText string

var axeTemplate = template.Must(template.New("axe").Parse(axeTemplateText))

// AxeResults is the subset of an axe-core results document the report shows.
type AxeResults struct {
	Violations []AxeViolation    `json:"violations"`
	Passes     []json.RawMessage `json:"passes"`
	Incomplete []json.RawMessage `json:"incomplete"`
}

type AxeViolation struct {
	ID          string    `json:"id"`
	Impact      string    `json:"impact"`
	Description string    `json:"description"`
	Help        string    `json:"help"`
	HelpURL     string    `json:"helpUrl"`
	Nodes       []AxeNode `json:"nodes"`
}

type AxeNode struct {
	HTML           string `json:"html"`
	FailureSummary string `json:"failureSummary"`
}

// AxePage is one tab of the report.
type AxePage struct {
	ID          string
	Tab         string
	Title       string
	ResultsPath string
}

// AxeHTML renders axe-core results for the demo pages into a tabbed HTML page.
type AxeHTML struct {
	Name  string
	Pages []AxePage
}

// NewAxeHTML builds the issues/fixed two-tab report.
func NewAxeHTML(name, issuesResults, fixedResults string) *AxeHTML {
	return &AxeHTML{
		Name: name,
		Pages: []AxePage{
			{ID: "issues", Tab: "Issues Demo", Title: "Issues Demo Page", ResultsPath: issuesResults},
			{ID: "fixed", Tab: "Fixed Demo", Title: "Fixed Demo Page", ResultsPath: fixedResults},
		},
	}
}

func (a *AxeHTML) Filename() string { return a.Name }

type axePageView struct {
	AxePage
	Results AxeResults
	Active  bool
}

// Render returns domain.ErrNoAxeResults when no results file exists. A missing or
// unreadable file for a single page renders that page as empty.
func (a *AxeHTML) Render(generatedAt time.Time) ([]byte, error) {
	views := make([]axePageView, 0, len(a.Pages))
	found := false
	for i, p := range a.Pages {
		res, err := LoadAxeResults(p.ResultsPath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			log.Printf("axe results unreadable path=%s err=%v", p.ResultsPath, err)
			found = true
		default:
			found = true
		}
		views = append(views, axePageView{AxePage: p, Results: res, Active: i == 0})
	}
	if !found {
		return nil, domain.ErrNoAxeResults
	}

	var buf bytes.Buffer
	err := axeTemplate.Execute(&buf, map[string]any{
		"Date":  generatedAt.Format("2006-01-02"),
		"Pages": views,
	})
	if err != nil {
		return nil, fmt.Errorf("render axe report: %w", err)
	}
	return buf.Bytes(), nil
}

// LoadAxeResults reads one axe-core results file.
func LoadAxeResults(path string) (AxeResults, error) {
	var res AxeResults
	data, err := os.ReadFile(path)
	if err != nil {
		return res, err
	}
	if err := json.Unmarshal(data, &res); err != nil {
		return AxeResults{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return res, nil
}
