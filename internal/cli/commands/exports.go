package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ccollicutt/chatlens/pkg/parser"
)

// exportSet is the merged outcome of loading one or more exports.
type exportSet struct {
	Files   []string
	Records []parser.MessageRecord

	// Grammar is the grammar of the first recognized export.
	Grammar string

	Skipped int

	// Unrecognized lists files in which no grammar matched.
	Unrecognized []string
}

// loadExports expands patterns, reads and parses every export, and merges
// the records chronologically.
func loadExports(ctx context.Context, logger *slog.Logger, patterns []string) (*exportSet, error) {
	files, err := parser.ExpandGlobs(patterns)
	if err != nil {
		return nil, fmt.Errorf("expanding export paths: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no export files matched: %v", patterns)
	}

	set := &exportSet{Files: files}
	sources := make([][]parser.MessageRecord, 0, len(files))

	for _, file := range files {
		text, err := parser.ReadExport(ctx, file)
		if err != nil {
			return nil, err
		}

		result, err := parser.Parse(text)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", file, err)
		}

		if !result.Recognized() {
			logger.Debug("no grammar matched", "file", file)
			set.Unrecognized = append(set.Unrecognized, file)
			continue
		}

		logger.Debug("parsed export",
			"file", file,
			"grammar", result.Grammar,
			"records", len(result.Records),
			"skipped", len(result.Skipped))

		for _, s := range result.Skipped {
			logger.Debug("skipped message",
				"file", file,
				"index", s.Index,
				"timestamp", s.Timestamp,
				"error", s.Err)
		}

		if set.Grammar == "" {
			set.Grammar = result.Grammar
		}
		set.Skipped += len(result.Skipped)
		sources = append(sources, result.Records)
	}

	set.Records = parser.Merge(sources...)
	return set, nil
}
