package analyzer

import (
	"github.com/forPelevin/gomoji"
	"github.com/rivo/uniseg"

	"github.com/ccollicutt/chatlens/pkg/parser"
)

// emojiCollector counts every emoji occurrence. Emoji are matched per
// grapheme cluster so skin tones, flags and ZWJ sequences count once.
type emojiCollector struct {
	emojis *counter
}

func newEmojiCollector() *emojiCollector {
	return &emojiCollector{emojis: newCounter()}
}

func (c *emojiCollector) Name() string { return "emoji" }

func (c *emojiCollector) Process(rec *parser.MessageRecord) {
	for _, e := range Emojis(rec.Body) {
		c.emojis.add(e)
	}
}

func (c *emojiCollector) Finalize(result *AnalysisResult) {
	result.Emojis = c.emojis.top(0)
}

func (c *emojiCollector) Reset() {
	c.emojis.reset()
}

// Emojis returns every emoji in s in order of appearance, duplicates kept.
func Emojis(s string) []string {
	var out []string
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		cluster := gr.Str()
		if len(cluster) == 1 {
			continue
		}
		if gomoji.ContainsEmoji(cluster) {
			out = append(out, cluster)
		}
	}
	return out
}
