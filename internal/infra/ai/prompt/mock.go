package prompt

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// TagCounts are literal substring counts, not parsed elements.
// "<imgfoo" counts as an image and "<A href" is not a link.
type TagCounts struct {
	Images  int
	Inputs  int
	Buttons int
	Links   int
}

// CountTags counts non-overlapping occurrences of the marker substrings.
func CountTags(html string) TagCounts {
	return TagCounts{
		Images:  strings.Count(html, "<img"),
		Inputs:  strings.Count(html, "<input"),
		Buttons: strings.Count(html, "<button"),
		Links:   strings.Count(html, "<a "),
	}
}

// MockAnalysis returns the placeholder report used when no credential is configured.
// It is a pure function of its inputs.
func MockAnalysis(filename, html string) string {
	c := CountTags(html)
	return fmt.Sprintf(`# Mock Accessibility Analysis for %s

## Summary
This is a mock analysis showing what the AI would analyze. To get real AI analysis, configure the MODELS_TOKEN environment variable with your GitHub Models API token.

## What would be analyzed:
- **File size**: %d characters
- **HTML structure**: Would analyze semantic structure and heading hierarchy
- **Forms and inputs**: Would check for proper labels and accessibility
- **Images**: Would verify alt text and decorative vs informative usage
- **Color and contrast**: Would assess WCAG compliance
- **Keyboard navigation**: Would verify tab order and focus management
- **ARIA implementation**: Would check for proper ARIA usage

## Next steps:
1. Get a GitHub Models API token from: https://github.com/marketplace/models
2. Set the MODELS_TOKEN environment variable
3. Run the script again for full AI analysis

## Basic HTML Structure Found:
- Contains %d image tags
- Contains %d input elements
- Contains %d button elements
- Contains %d link elements
`, filename, utf8.RuneCountInString(html), c.Images, c.Inputs, c.Buttons, c.Links)
}
