package parser

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// TimestampExtractor parses the delimiter text produced by one grammar.
type TimestampExtractor struct {
	pattern *regexp.Regexp
	layout  string
}

// NewTimestampExtractor creates a new timestamp extractor.
// Every non-empty capture group of pattern is joined with a single space and
// parsed with layout.
func NewTimestampExtractor(pattern *regexp.Regexp, layout string) *TimestampExtractor {
	return &TimestampExtractor{
		pattern: pattern,
		layout:  layout,
	}
}

// Extract parses a timestamp from delimiter text.
// Returns zero time and error if the pattern doesn't match or parsing fails.
func (e *TimestampExtractor) Extract(text string) (time.Time, error) {
	matches := e.pattern.FindStringSubmatch(text)
	if len(matches) < 2 {
		return time.Time{}, fmt.Errorf("timestamp pattern did not match %q", text)
	}

	parts := make([]string, 0, len(matches)-1)
	for _, m := range matches[1:] {
		if m != "" {
			parts = append(parts, m)
		}
	}
	// Layouts spell the meridiem "PM"; exports use any case.
	tsStr := strings.ToUpper(strings.Join(parts, " "))

	ts, err := time.Parse(e.layout, tsStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", tsStr, err)
	}

	return ts, nil
}
