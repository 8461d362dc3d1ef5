package analyzer

import (
	"github.com/ccollicutt/chatlens/pkg/parser"
)

// Collector accumulates one family of statistics over a record stream.
// Each statistic (top stats, words, timelines, emoji) implements this interface.
type Collector interface {
	// Name identifies the collector in error messages.
	Name() string

	// Process handles a single record that passed the user filter.
	Process(rec *parser.MessageRecord)

	// Finalize writes the collected statistics into result.
	// Called after all records have been processed.
	Finalize(result *AnalysisResult)

	// Reset clears internal state for reuse.
	Reset()
}
