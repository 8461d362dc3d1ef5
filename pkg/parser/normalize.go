package parser

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/ccollicutt/chatlens/pkg/detector"
)

// ErrFormatUnrecognized means no grammar matched the input.
var ErrFormatUnrecognized = errors.New("no supported timestamp format found")

// senderPattern matches the first ": " that follows at least one character
// of the body's first line. A display name never spans lines.
var senderPattern = regexp.MustCompile(`^([^\n]+?): `)

// SkippedRecord describes a segment whose timestamp could not be parsed.
type SkippedRecord struct {
	// Index is the 0-based position of the segment in the split output.
	Index int

	// Timestamp is the delimiter text that failed to parse.
	Timestamp string

	// Err is the parse failure.
	Err error
}

// Result is the outcome of normalizing an export.
type Result struct {
	// Grammar is the name of the grammar that matched, empty if none did.
	Grammar string

	// Records holds the parsed messages in source order.
	Records []MessageRecord

	// Skipped lists segments dropped because their timestamp did not parse.
	Skipped []SkippedRecord
}

// Recognized returns true if a grammar matched the input.
func (r *Result) Recognized() bool {
	return r.Grammar != ""
}

// Err returns ErrFormatUnrecognized for unrecognized input, nil otherwise.
// An empty but recognized result is not an error.
func (r *Result) Err() error {
	if !r.Recognized() {
		return ErrFormatUnrecognized
	}
	return nil
}

// Parse splits raw with the built-in grammars and normalizes the segments.
// Unrecognized input yields an empty Result and a nil error; the error is
// reserved for splitter defects.
func Parse(raw string) (*Result, error) {
	segments, err := detector.Split(raw)
	if err != nil {
		return nil, fmt.Errorf("splitting export: %w", err)
	}
	return Normalize(segments), nil
}

// Normalize converts segments into message records. A segment whose
// timestamp fails to parse is recorded in Result.Skipped and the rest of
// the batch continues.
func Normalize(segments []detector.RawSegment) *Result {
	result := &Result{
		Records: make([]MessageRecord, 0, len(segments)),
	}
	if len(segments) == 0 {
		return result
	}

	extractors := make(map[*detector.Grammar]*TimestampExtractor)

	for i, seg := range segments {
		g := seg.Grammar
		if g == nil {
			result.Skipped = append(result.Skipped, SkippedRecord{
				Index:     i,
				Timestamp: seg.Timestamp,
				Err:       errors.New("segment has no grammar"),
			})
			continue
		}
		if result.Grammar == "" {
			result.Grammar = g.Name
		}

		extractor, ok := extractors[g]
		if !ok {
			extractor = NewTimestampExtractor(g.Pattern, g.Layout)
			extractors[g] = extractor
		}

		ts, err := extractor.Extract(seg.Timestamp)
		if err != nil {
			result.Skipped = append(result.Skipped, SkippedRecord{
				Index:     i,
				Timestamp: seg.Timestamp,
				Err:       err,
			})
			continue
		}

		sender, body := SplitSender(seg.Body)
		result.Records = append(result.Records, MessageRecord{
			ParsedTimestamp: NewParsedTimestamp(ts),
			Sender:          sender,
			Body:            body,
		})
	}

	return result
}

// SplitSender separates "Name: text" into its sender and message. A body
// without a sender prefix is attributed to GroupNotification unchanged.
func SplitSender(body string) (sender, message string) {
	loc := senderPattern.FindStringSubmatchIndex(body)
	if loc == nil {
		return GroupNotification, body
	}
	return body[loc[2]:loc[3]], body[loc[1]:]
}
