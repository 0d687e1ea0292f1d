package validate

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reID       = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reSlugSkip = regexp.MustCompile(`[^a-z0-9]+`)
	reQ        = regexp.MustCompile(`^[\p{L}\p{N} _'\-.]{1,50}$`)
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 100
	maxNameLen      = 200
	maxTextLen      = 5000
)

// ID validates a simple resource identifier (category/product ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Name validates a displayable name.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > maxNameLen {
		return "", false
	}
	return s, true
}

// Text trims free text and enforces a length cap.
func Text(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, len(s) <= maxTextLen
}

// Slug lowercases s and collapses everything outside [a-z0-9] into single dashes.
func Slug(s string) string {
	s = reSlugSkip.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-")
	s = strings.Trim(s, "-")
	if len(s) > 80 {
		s = strings.Trim(s[:80], "-")
	}
	return s
}

// Q validates a search query: trims, enforces allowed characters and max length.
// An empty query is valid and means "no filter".
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", true
	}
	if len(s) > 50 {
		s = s[:50]
	}
	return s, reQ.MatchString(s)
}

// Page parses a 1-based page number; junk and values below 1 become 1.
func Page(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// PageSize parses a page size, falling back to the default and clamping to the max.
func PageSize(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return DefaultPageSize
	}
	if n > MaxPageSize {
		return MaxPageSize
	}
	return n
}

// Int parses a non-negative integer form field.
func Int(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	return n, err == nil && n >= 0
}

// Price parses a non-negative decimal form field.
func Price(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f, err == nil && f >= 0
}
