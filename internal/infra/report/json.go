package report

import (
	"bytes"
	"encoding/json"

	domain "github.com/bryanwahyu/automaton-a11y/internal/domain/audit"
)

// JSONWriter renders the results as a pretty-printed array of {file, analysis}.
// Non-ASCII and HTML characters are kept literally.
type JSONWriter struct {
	Name string
}

func (w JSONWriter) Filename() string { return w.Name }

func (w JSONWriter) Render(run *domain.Run) ([]byte, error) {
	results := run.Results
	if results == nil {
		results = []domain.AnalysisResult{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return nil, err
	}
	return unescapeLineSeparators(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

// unescapeLineSeparators turns the \u2028 and \u2029 escapes encoding/json always
// emits back into the literal characters. An escaped backslash followed by
// "u2028" is source text and is copied unchanged.
func unescapeLineSeparators(b []byte) []byte {
	if !bytes.Contains(b, []byte(`\u202`)) {
		return b
	}
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		if b[i] != '\\' || i+1 >= len(b) {
			out = append(out, b[i])
			continue
		}
		if rest := b[i+1:]; bytes.HasPrefix(rest, []byte("u2028")) || bytes.HasPrefix(rest, []byte("u2029")) {
			if rest[4] == '8' {
				out = append(out, "\u2028"...)
			} else {
				out = append(out, "\u2029"...)
			}
			i += 5
			continue
		}
		// any other escape pair, including "\\", is copied as a unit
		out = append(out, b[i], b[i+1])
		i++
	}
	return out
}

// ParseResults reads back a document written by JSONWriter.
func ParseResults(data []byte) ([]domain.AnalysisResult, error) {
	var out []domain.AnalysisResult
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
