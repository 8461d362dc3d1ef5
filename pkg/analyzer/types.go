// Package analyzer computes chat statistics from parsed message records.
package analyzer

import (
	"sort"
)

// Overall selects every sender instead of a single user.
const Overall = "Overall"

// TopStats are the headline numbers for a selection of records.
type TopStats struct {
	Messages int `json:"messages"`
	Words    int `json:"words"`
	Media    int `json:"media"`
	Links    int `json:"links"`
}

// UserShare is a sender's message count and share of all messages.
type UserShare struct {
	Name    string  `json:"name"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// Count is a labelled frequency.
type Count struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// MonthBucket is one point of the monthly timeline.
type MonthBucket struct {
	Year     int    `json:"year"`
	MonthNum int    `json:"month_num"`
	Month    string `json:"month"`
	Label    string `json:"time"` // "Month-Year"
	Count    int    `json:"count"`
}

// Heatmap counts messages by weekday and hour bucket.
type Heatmap struct {
	// Days lists weekday names that have messages, Monday first.
	Days []string `json:"days"`

	// Periods lists hour bucket labels that have messages, by hour.
	Periods []string `json:"periods"`

	Cells map[string]map[string]int `json:"cells"`
}

// At returns the count for day and period, zero when absent.
func (h *Heatmap) At(day, period string) int {
	return h.Cells[day][period]
}

// Max returns the largest cell count.
func (h *Heatmap) Max() int {
	highest := 0
	for _, row := range h.Cells {
		for _, n := range row {
			if n > highest {
				highest = n
			}
		}
	}
	return highest
}

// AnalysisResult contains every statistic for one user selection.
type AnalysisResult struct {
	// User is the selection the statistics were computed for.
	User string `json:"user"`

	Top TopStats `json:"top"`

	// ActiveUsers holds the busiest senders. Only set for Overall.
	ActiveUsers []UserShare `json:"active_users,omitempty"`

	// UserShares holds every sender's share. Only set for Overall.
	UserShares []UserShare `json:"user_shares,omitempty"`

	CommonWords   []Count       `json:"common_words"`
	Monthly       []MonthBucket `json:"monthly_timeline"`
	Daily         []Count       `json:"daily_timeline"`
	WeekActivity  []Count       `json:"week_activity"`
	MonthActivity []Count       `json:"month_activity"`
	Heatmap       Heatmap       `json:"heatmap"`
	Emojis        []Count       `json:"emojis"`
}

// HasData reports whether any record contributed to the result.
func (r *AnalysisResult) HasData() bool {
	return r.Top.Messages > 0
}

// counter tallies keys and remembers the order they first appeared in.
type counter struct {
	order  []string
	counts map[string]int
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(key string) {
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

// top returns up to limit entries by descending count. Ties keep first
// appearance order. A limit <= 0 returns everything.
func (c *counter) top(limit int) []Count {
	out := make([]Count, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, Count{Key: k, Count: c.counts[k]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (c *counter) reset() {
	c.order = nil
	c.counts = make(map[string]int)
}
