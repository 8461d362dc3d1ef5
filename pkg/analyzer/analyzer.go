package analyzer

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"

	"mvdan.cc/xurls/v2"

	"github.com/ccollicutt/chatlens/pkg/config"
	"github.com/ccollicutt/chatlens/pkg/parser"
)

// Analyzer computes statistics over parsed records.
type Analyzer struct {
	stopWords         map[string]bool
	mediaPlaceholders []string
	topWords          int
	topUsers          int
	urls              *regexp.Regexp
}

// AnalyzerOption configures analyzer behavior.
type AnalyzerOption func(*Analyzer)

// WithStopWords replaces the stop-word list used for common words.
func WithStopWords(words []string) AnalyzerOption {
	return func(a *Analyzer) {
		a.stopWords = wordSet(words)
	}
}

// WithMediaPlaceholders replaces the bodies counted as media messages.
func WithMediaPlaceholders(placeholders []string) AnalyzerOption {
	return func(a *Analyzer) {
		a.mediaPlaceholders = append([]string(nil), placeholders...)
	}
}

// WithTopWords sets how many common words are kept.
func WithTopWords(n int) AnalyzerOption {
	return func(a *Analyzer) {
		a.topWords = n
	}
}

// WithTopUsers sets how many active users are kept.
func WithTopUsers(n int) AnalyzerOption {
	return func(a *Analyzer) {
		a.topUsers = n
	}
}

// WithURLMatcher replaces the pattern used to find shared links.
func WithURLMatcher(re *regexp.Regexp) AnalyzerOption {
	return func(a *Analyzer) {
		a.urls = re
	}
}

// NewAnalyzer creates an analyzer from configuration. Options override
// the configured values.
func NewAnalyzer(cfg *config.Config, opts ...AnalyzerOption) *Analyzer {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	a := &Analyzer{
		stopWords:         wordSet(cfg.ActiveStopWords()),
		mediaPlaceholders: append([]string(nil), cfg.MediaPlaceholders...),
		topWords:          cfg.TopWords,
		topUsers:          cfg.TopUsers,
		urls:              xurls.Relaxed(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

func wordSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// collectors builds a fresh collector set for one analysis run.
func (a *Analyzer) collectors() []Collector {
	return []Collector{
		newTopStatsCollector(a.mediaPlaceholders, a.urls),
		newWordsCollector(a.stopWords, a.mediaPlaceholders, a.topWords),
		newTimelineCollector(),
		newActivityCollector(),
		newEmojiCollector(),
	}
}

// Analyze computes every statistic for user over records. Pass Overall to
// include all senders. An unknown user yields an empty result, not an error.
func (a *Analyzer) Analyze(ctx context.Context, records []parser.MessageRecord, user string) (*AnalysisResult, error) {
	if user == "" {
		user = Overall
	}

	result := &AnalysisResult{User: user}
	collectors := a.collectors()

	for i := range records {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("analyzing records: %w", ctx.Err())
		default:
		}

		rec := &records[i]
		if user != Overall && rec.Sender != user {
			continue
		}

		for _, c := range collectors {
			c.Process(rec)
		}
	}

	for _, c := range collectors {
		c.Finalize(result)
	}

	if user == Overall {
		result.ActiveUsers, result.UserShares = MostActiveUsers(records, a.topUsers)
	}

	return result, nil
}

// Users returns the selectable users: Overall followed by every distinct
// sender in sorted order. The group notification sentinel is included.
func Users(records []parser.MessageRecord) []string {
	seen := make(map[string]bool)
	names := make([]string, 0)
	for i := range records {
		s := records[i].Sender
		if !seen[s] {
			seen[s] = true
			names = append(names, s)
		}
	}
	sort.Strings(names)
	return append([]string{Overall}, names...)
}

// HasUser reports whether user is Overall or a sender in records.
func HasUser(records []parser.MessageRecord, user string) bool {
	if user == Overall {
		return true
	}
	for i := range records {
		if records[i].Sender == user {
			return true
		}
	}
	return false
}

// Filter returns the records sent by user, or all records for Overall.
func Filter(records []parser.MessageRecord, user string) []parser.MessageRecord {
	if user == Overall || user == "" {
		return records
	}
	out := make([]parser.MessageRecord, 0)
	for i := range records {
		if records[i].Sender == user {
			out = append(out, records[i])
		}
	}
	return out
}

// MostActiveUsers returns the top senders by message count and the share
// of every sender as a percentage of all records, rounded to two decimals.
func MostActiveUsers(records []parser.MessageRecord, limit int) (top, shares []UserShare) {
	senders := newCounter()
	for i := range records {
		senders.add(records[i].Sender)
	}

	total := len(records)
	all := senders.top(0)
	shares = make([]UserShare, 0, len(all))
	for _, c := range all {
		shares = append(shares, UserShare{
			Name:    c.Key,
			Count:   c.Count,
			Percent: percent(c.Count, total),
		})
	}

	top = shares
	if limit > 0 && len(top) > limit {
		top = top[:limit]
	}
	return append([]UserShare(nil), top...), shares
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(n)/float64(total)*100*100) / 100
}
