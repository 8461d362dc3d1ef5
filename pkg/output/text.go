package output

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ccollicutt/chatlens/pkg/analyzer"
)

// TextFormatter formats reports as human-readable text.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text.
func (f *TextFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	st := newStyles(w, f.opts.Color)
	if f.opts.Quiet {
		return f.formatQuiet(report, st, w)
	}
	return f.formatFull(report, st, w)
}

func (f *TextFormatter) formatQuiet(report *Report, st styles, w io.Writer) error {
	s := report.Summary
	_, err := fmt.Fprintf(w, "ChatLens: %s messages, %s words, %s media, %s links (%s)\n",
		st.value(strconv.Itoa(s.Messages)),
		st.value(strconv.Itoa(s.Words)),
		st.value(strconv.Itoa(s.Media)),
		st.value(strconv.Itoa(s.Links)),
		s.User)
	return err
}

func (f *TextFormatter) formatFull(report *Report, st styles, w io.Writer) error {
	res := report.Result
	if res == nil {
		res = &analyzer.AnalysisResult{User: report.Summary.User}
	}

	tw := &textWriter{w: w, st: st}

	tw.line(st.title("=== ChatLens Report: " + res.User + " ==="))
	tw.blank()

	tw.section("Top Statistics")
	tw.table([]row{
		{key: "Messages", value: strconv.Itoa(res.Top.Messages)},
		{key: "Words", value: strconv.Itoa(res.Top.Words)},
		{key: "Media shared", value: strconv.Itoa(res.Top.Media)},
		{key: "Links shared", value: strconv.Itoa(res.Top.Links)},
	}, false)

	if len(res.ActiveUsers) > 0 {
		tw.section("Most Active Users")
		rows := make([]row, 0, len(res.ActiveUsers))
		for _, u := range res.ActiveUsers {
			rows = append(rows, row{
				key:   u.Name,
				value: strconv.Itoa(u.Count),
				extra: fmt.Sprintf("%.2f%%", u.Percent),
				count: u.Count,
			})
		}
		tw.table(rows, true)
	}

	tw.section("Most Common Words")
	tw.counts(res.CommonWords)

	tw.section("Monthly Timeline")
	monthly := make([]row, 0, len(res.Monthly))
	for _, m := range res.Monthly {
		monthly = append(monthly, row{key: m.Label, value: strconv.Itoa(m.Count), count: m.Count})
	}
	tw.table(monthly, true)

	if f.opts.Verbose {
		tw.section("Daily Timeline")
		tw.counts(res.Daily)
	}

	tw.section("Busiest Days")
	tw.counts(res.WeekActivity)

	tw.section("Busiest Months")
	tw.counts(res.MonthActivity)

	tw.section("Activity Heatmap")
	tw.heatmap(&res.Heatmap)

	tw.section("Emoji")
	tw.counts(res.Emojis)

	tw.line("---")
	tw.line(fmt.Sprintf("Summary: %s messages from %d export(s), %d skipped",
		st.value(strconv.Itoa(report.Summary.Messages)),
		len(report.Metadata.Sources),
		report.Summary.Skipped))

	if f.opts.Verbose {
		tw.line(st.dim("Grammar: " + report.Metadata.Grammar))
		tw.line(st.dim(fmt.Sprintf("Records parsed: %d", report.Metadata.RecordsParsed)))
		tw.line(st.dim("Run ID: " + report.Metadata.RunID))
		tw.line(st.dim(fmt.Sprintf("Duration: %s", report.Metadata.Duration.Round(1e6))))
	}

	return tw.err
}

type row struct {
	key   string
	value string
	extra string
	count int
}

// textWriter writes aligned sections and keeps the first write error.
type textWriter struct {
	w   io.Writer
	st  styles
	err error
}

func (t *textWriter) line(s string) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintln(t.w, s)
}

func (t *textWriter) blank() {
	t.line("")
}

func (t *textWriter) section(title string) {
	t.line(t.st.section(title))
}

func (t *textWriter) counts(counts []analyzer.Count) {
	rows := make([]row, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, row{key: c.Key, value: strconv.Itoa(c.Count), count: c.Count})
	}
	t.table(rows, true)
}

// table prints rows with the key column padded to the widest key.
func (t *textWriter) table(rows []row, bars bool) {
	if len(rows) == 0 {
		t.line(t.st.dim("  (none)"))
		t.blank()
		return
	}

	keyWidth, valueWidth, highest := 0, 0, 0
	for _, r := range rows {
		keyWidth = max(keyWidth, displayWidth(r.key))
		valueWidth = max(valueWidth, len(r.value))
		highest = max(highest, r.count)
	}

	for _, r := range rows {
		var b strings.Builder
		b.WriteString("  ")
		b.WriteString(t.st.key(r.key))
		b.WriteString(strings.Repeat(" ", keyWidth-displayWidth(r.key)+2))
		b.WriteString(padLeft(r.value, valueWidth))
		if r.extra != "" {
			b.WriteString("  ")
			b.WriteString(padLeft(r.extra, 7))
		}
		if bars {
			if bar := barFor(r.count, highest); bar != "" {
				b.WriteString("  ")
				b.WriteString(t.st.bar(bar))
			}
		}
		t.line(b.String())
	}
	t.blank()
}

// heatmap prints weekdays as rows and hour buckets as columns.
func (t *textWriter) heatmap(h *analyzer.Heatmap) {
	if len(h.Days) == 0 {
		t.line(t.st.dim("  (none)"))
		t.blank()
		return
	}

	dayWidth := 0
	for _, d := range h.Days {
		dayWidth = max(dayWidth, displayWidth(d))
	}

	widths := make([]int, len(h.Periods))
	var header strings.Builder
	header.WriteString("  ")
	header.WriteString(strings.Repeat(" ", dayWidth))
	for i, p := range h.Periods {
		widths[i] = max(len(p), 3)
		header.WriteString(" ")
		header.WriteString(padLeft(p, widths[i]))
	}
	t.line(t.st.dim(header.String()))

	highest := h.Max()
	for _, d := range h.Days {
		var b strings.Builder
		b.WriteString("  ")
		b.WriteString(t.st.key(padRight(d, dayWidth)))
		for i, p := range h.Periods {
			n := h.At(d, p)
			cell := padLeft(strconv.Itoa(n), widths[i])
			if n > 0 && n == highest {
				cell = t.st.bar(cell)
			}
			b.WriteString(" ")
			b.WriteString(cell)
		}
		t.line(b.String())
	}
	t.blank()
}
