package prompt

import "fmt"

// GetSystemPrompt sets the model up as an accessibility consultant.
func GetSystemPrompt() string {
	return "You are an expert web accessibility consultant with deep knowledge of WCAG 2.1 AA guidelines, Section 508 compliance, and modern accessibility best practices. Provide detailed, actionable feedback on HTML accessibility issues."
}

// GetUserPrompt wraps the raw HTML in the audit instructions.
// The document is embedded verbatim: no escaping and no size limit.
func GetUserPrompt(html string) string {
	return fmt.Sprintf(`Perform a comprehensive accessibility audit of this HTML code. Analyze it against WCAG 2.1 AA guidelines and provide detailed findings.

Focus on these critical areas:
1. Semantic HTML Structure: Proper heading hierarchy, landmark elements, semantic tags
2. Images & Media: Alt text quality, decorative vs informative images, complex images
3. Forms & Interactive Elements: Labels, fieldsets, error handling, focus management
4. Keyboard Navigation: Tab order, focus indicators, keyboard traps, skip links
5. Color & Contrast: Text contrast ratios, color-only information conveyance
6. ARIA Implementation: Proper ARIA attributes, roles, states, and properties
7. Document Structure: Language attributes, page titles, meta information
8. Dynamic Content: Live regions, status updates, progressive enhancement

For each issue found, provide:
- Severity: Critical/High/Medium/Low
- WCAG Guideline: Specific guideline reference
- Issue Description: Clear explanation of the problem
- Code Location: Specific HTML elements affected
- Remediation: Exact code fixes with before/after examples
- User Impact: How this affects users with disabilities

HTML Code to Analyze:
%s

Provide your analysis in a structured format with clear sections and actionable recommendations.`, html)
}
