// Package detector identifies which timestamp grammar a chat export uses
// and splits the export into timestamped segments.
package detector

import (
	"errors"
	"fmt"
)

// ErrSegmentMismatch is returned when splitting produces a different number
// of bodies than timestamp matches. It indicates a bug, not bad input.
var ErrSegmentMismatch = errors.New("segment count does not match timestamp count")

// RawSegment is one timestamp delimiter and the message text that follows it.
type RawSegment struct {
	// Timestamp is the delimiter text exactly as matched.
	Timestamp string

	// Body is the text up to the next delimiter or end of input.
	Body string

	// Grammar is the grammar that produced this segment.
	Grammar *Grammar
}

// DetectionResult holds the outcome of running every grammar over a text.
type DetectionResult struct {
	Grammar  *Grammar       // First grammar in order with at least one match, nil if none
	Matches  []GrammarMatch // One entry per grammar, in try order
	Segments int            // Number of segments the winning grammar yields
}

// GrammarMatch records how a single grammar fared against the text.
type GrammarMatch struct {
	Grammar    *Grammar
	MatchCount int
	Sample     string // First matched delimiter, empty if none
}

// Detector applies an ordered list of grammars to chat export text.
type Detector struct {
	grammars []*Grammar
}

// Option configures the Detector.
type Option func(*Detector)

// WithGrammars replaces the grammars to try, in order.
func WithGrammars(gs ...*Grammar) Option {
	return func(d *Detector) {
		if len(gs) > 0 {
			d.grammars = gs
		}
	}
}

// New creates a new Detector with the built-in grammars.
func New(opts ...Option) *Detector {
	d := &Detector{
		grammars: Grammars(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

var defaultDetector = New()

// Split splits raw text using the built-in grammars.
// See (*Detector).Split.
func Split(raw string) ([]RawSegment, error) {
	return defaultDetector.Split(raw)
}

// Split tries each grammar in order and splits raw on the first one that
// matches at least once. Text before the first match is discarded.
// Unrecognized input yields an empty slice and a nil error.
func (d *Detector) Split(raw string) ([]RawSegment, error) {
	for _, g := range d.grammars {
		segments, err := splitWith(g, raw)
		if err != nil {
			return nil, err
		}
		if len(segments) > 0 {
			return segments, nil
		}
	}
	return nil, nil
}

// Detect reports the match count of every grammar and which one Split
// would use.
func (d *Detector) Detect(raw string) *DetectionResult {
	result := &DetectionResult{
		Matches: make([]GrammarMatch, 0, len(d.grammars)),
	}

	for _, g := range d.grammars {
		locs := g.Pattern.FindAllStringIndex(raw, -1)
		match := GrammarMatch{
			Grammar:    g,
			MatchCount: len(locs),
		}
		if len(locs) > 0 {
			match.Sample = raw[locs[0][0]:locs[0][1]]
			if result.Grammar == nil {
				result.Grammar = g
				result.Segments = len(locs)
			}
		}
		result.Matches = append(result.Matches, match)
	}

	return result
}

// HasMatch returns true if any grammar matched.
func (r *DetectionResult) HasMatch() bool {
	return r.Grammar != nil
}

// Competing returns the grammars other than the winner that also matched.
// A non-empty result usually means the export mixes devices or locales.
func (r *DetectionResult) Competing() []GrammarMatch {
	var out []GrammarMatch
	for _, m := range r.Matches {
		if m.MatchCount > 0 && m.Grammar != r.Grammar {
			out = append(out, m)
		}
	}
	return out
}

func splitWith(g *Grammar, raw string) ([]RawSegment, error) {
	locs := g.Pattern.FindAllStringIndex(raw, -1)
	if len(locs) == 0 {
		return nil, nil
	}

	timestamps := make([]string, 0, len(locs))
	bodies := make([]string, 0, len(locs))
	for i, loc := range locs {
		end := len(raw)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		timestamps = append(timestamps, raw[loc[0]:loc[1]])
		bodies = append(bodies, raw[loc[1]:end])
	}

	if len(timestamps) != len(bodies) {
		return nil, fmt.Errorf("grammar %s: %d timestamps, %d bodies: %w",
			g.Name, len(timestamps), len(bodies), ErrSegmentMismatch)
	}

	segments := make([]RawSegment, len(timestamps))
	for i := range timestamps {
		segments[i] = RawSegment{
			Timestamp: timestamps[i],
			Body:      bodies[i],
			Grammar:   g,
		}
	}
	return segments, nil
}
