package analyzer

import (
	"regexp"
	"strings"

	"github.com/ccollicutt/chatlens/pkg/parser"
)

// isMedia reports whether body is one of the attachment placeholders.
func isMedia(body string, placeholders []string) bool {
	trimmed := strings.TrimRight(body, "\n")
	for _, p := range placeholders {
		if trimmed == p {
			return true
		}
	}
	return false
}

// topStatsCollector counts messages, words, media messages and unique links.
type topStatsCollector struct {
	placeholders []string
	urls         *regexp.Regexp

	stats TopStats
	links map[string]bool
}

func newTopStatsCollector(placeholders []string, urls *regexp.Regexp) *topStatsCollector {
	return &topStatsCollector{
		placeholders: placeholders,
		urls:         urls,
		links:        make(map[string]bool),
	}
}

func (c *topStatsCollector) Name() string { return "top-stats" }

func (c *topStatsCollector) Process(rec *parser.MessageRecord) {
	c.stats.Messages++
	c.stats.Words += len(strings.Fields(rec.Body))

	if isMedia(rec.Body, c.placeholders) {
		c.stats.Media++
	}

	if c.urls != nil {
		for _, link := range c.urls.FindAllString(rec.Body, -1) {
			c.links[link] = true
		}
	}
}

func (c *topStatsCollector) Finalize(result *AnalysisResult) {
	result.Top = c.stats
	result.Top.Links = len(c.links)
}

func (c *topStatsCollector) Reset() {
	c.stats = TopStats{}
	c.links = make(map[string]bool)
}
