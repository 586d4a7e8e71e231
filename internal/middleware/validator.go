package middleware

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	filenamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._ -]{0,254}$`)
	runIDPattern    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

// ValidateFilename accepts a bare file name as reported back in results.
// Directories, traversal and control characters are rejected.
func ValidateFilename(name string) error {
	if name == "" {
		return fmt.Errorf("file cannot be empty")
	}
	if strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return fmt.Errorf("file must be a bare name, not a path")
	}
	if strings.Contains(name, "..") {
		return fmt.Errorf("path traversal detected")
	}
	if !filenamePattern.MatchString(name) {
		return fmt.Errorf("invalid file name %q", name)
	}
	return nil
}

// ValidateRunID allows uuids and other short slug-like identifiers.
func ValidateRunID(id string) error {
	if id == "" {
		return fmt.Errorf("run ID cannot be empty")
	}
	if !runIDPattern.MatchString(id) {
		return fmt.Errorf("invalid run ID format (alphanumeric, dash, underscore only, max 64 chars)")
	}
	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")

	var b strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// ValidateLimit clamps a page size to 1..100, defaulting to 20.
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return limit
}
