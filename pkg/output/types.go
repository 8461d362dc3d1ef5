// Package output provides formatting and output generation for analysis results.
package output

import (
	"time"

	"github.com/google/uuid"

	"github.com/ccollicutt/chatlens/pkg/analyzer"
)

// Report is the complete analysis output.
type Report struct {
	// Summary provides the headline numbers.
	Summary Summary `json:"summary"`

	// Result holds every computed statistic.
	Result *analyzer.AnalysisResult `json:"result"`

	// Metadata provides context about the analysis.
	Metadata Metadata `json:"metadata"`
}

// Summary provides aggregate statistics.
type Summary struct {
	User     string `json:"user"`
	Messages int    `json:"messages"`
	Words    int    `json:"words"`
	Media    int    `json:"media"`
	Links    int    `json:"links"`

	// Skipped is the number of messages dropped for unparseable timestamps.
	Skipped int `json:"skipped"`
}

// Metadata provides context about the analysis run.
type Metadata struct {
	// RunID identifies this run in webhook payloads.
	RunID string `json:"run_id"`

	// ConfigFile is the path to the configuration file used, if any.
	ConfigFile string `json:"config_file,omitempty"`

	// Sources lists the export files that were analyzed.
	Sources []string `json:"sources"`

	// Grammar is the timestamp grammar that matched the first export.
	Grammar string `json:"grammar"`

	RecordsParsed  int `json:"records_parsed"`
	RecordsSkipped int `json:"records_skipped"`

	// AnalyzedAt is when the analysis was performed.
	AnalyzedAt time.Time `json:"analyzed_at"`

	// Duration is how long parsing and analysis took.
	Duration time.Duration `json:"duration"`
}

// NewReport creates a Report from analysis results. A RunID is generated
// when meta does not carry one.
func NewReport(result *analyzer.AnalysisResult, meta Metadata) *Report {
	if result == nil {
		result = &analyzer.AnalysisResult{User: analyzer.Overall}
	}
	if meta.RunID == "" {
		meta.RunID = uuid.NewString()
	}
	if meta.AnalyzedAt.IsZero() {
		meta.AnalyzedAt = time.Now().UTC()
	}

	return &Report{
		Result:   result,
		Metadata: meta,
		Summary: Summary{
			User:     result.User,
			Messages: result.Top.Messages,
			Words:    result.Top.Words,
			Media:    result.Top.Media,
			Links:    result.Top.Links,
			Skipped:  meta.RecordsSkipped,
		},
	}
}

// HasData returns true if any messages were analyzed.
func (r *Report) HasData() bool {
	return r.Summary.Messages > 0
}
