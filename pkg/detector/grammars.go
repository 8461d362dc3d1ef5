package detector

import "regexp"

// sep matches one separator between timestamp fields. Newer phone exports
// put U+202F (or U+00A0) before the meridiem instead of a plain space.
const sep = `[\s\x{00A0}\x{202F}]`

// Grammar describes one timestamp-prefix convention used to delimit
// messages in a chat export.
type Grammar struct {
	Name       string         // Stable identifier
	Pattern    *regexp.Regexp // Compiled delimiter regex
	PatternStr string         // Pattern source, for display
	Layout     string         // Go time layout for the canonical timestamp
	Bracketed  bool           // True if the delimiter is wrapped in [ ]
	Examples   []string       // Example delimiters
}

// Capture groups in every pattern, in order: date, time, and (optionally)
// meridiem. The parser joins them with single spaces before applying Layout.
var grammars = compile([]*Grammar{
	// 24-hour clock, two-digit year
	{
		Name:       "24h-2digit-year",
		PatternStr: `(\d{2}/\d{2}/\d{2}),` + sep + `(\d{1,2}:\d{2})` + sep + `-` + sep,
		Layout:     "02/01/06 15:04",
		Examples:   []string{"01/02/23, 14:05 - "},
	},
	// 12-hour clock, four-digit year
	{
		Name:       "12h-4digit-year",
		PatternStr: `(\d{2}/\d{2}/\d{4}),` + sep + `(\d{1,2}:\d{2})` + sep + `([AaPp][Mm])` + sep + `-` + sep,
		Layout:     "02/01/2006 3:04 PM",
		Examples:   []string{"01/02/2023, 2:05 PM - ", "01/02/2023, 11:30 am - "},
	},
	// Bracketed, 12-hour clock with seconds, two-digit year
	{
		Name:       "bracketed-seconds",
		PatternStr: `\[(\d{2}/\d{2}/\d{2}),` + sep + `(\d{1,2}:\d{2}:\d{2})` + sep + `([AaPp][Mm])\]` + sep,
		Layout:     "02/01/06 3:04:05 PM",
		Bracketed:  true,
		Examples:   []string{"[01/02/23, 2:05:09 PM] "},
	},
})

func compile(gs []*Grammar) []*Grammar {
	for _, g := range gs {
		g.Pattern = regexp.MustCompile(g.PatternStr)
	}
	return gs
}

// Grammars returns the built-in grammars in the order they are tried.
func Grammars() []*Grammar {
	out := make([]*Grammar, len(grammars))
	copy(out, grammars)
	return out
}

// Lookup returns the built-in grammar with the given name, or nil.
func Lookup(name string) *Grammar {
	for _, g := range grammars {
		if g.Name == name {
			return g
		}
	}
	return nil
}
