package analyzer

import (
	"strings"

	"github.com/ccollicutt/chatlens/pkg/parser"
)

// wordsCollector finds the most common words. Notifications and media
// placeholders are ignored, words are lower-cased and stop-words dropped.
type wordsCollector struct {
	stopWords    map[string]bool
	placeholders []string
	limit        int

	words *counter
}

func newWordsCollector(stopWords map[string]bool, placeholders []string, limit int) *wordsCollector {
	return &wordsCollector{
		stopWords:    stopWords,
		placeholders: placeholders,
		limit:        limit,
		words:        newCounter(),
	}
}

func (c *wordsCollector) Name() string { return "common-words" }

func (c *wordsCollector) Process(rec *parser.MessageRecord) {
	if rec.IsNotification() || isMedia(rec.Body, c.placeholders) {
		return
	}

	for _, w := range strings.Fields(strings.ToLower(rec.Body)) {
		if !c.stopWords[w] {
			c.words.add(w)
		}
	}
}

func (c *wordsCollector) Finalize(result *AnalysisResult) {
	result.CommonWords = c.words.top(c.limit)
}

func (c *wordsCollector) Reset() {
	c.words.reset()
}
