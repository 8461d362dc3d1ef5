package output

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// JSONFormatter writes reports as indented JSON. Quiet output is the
// Summary object on its own.
type JSONFormatter struct {
	opts FormatOptions
}

// NewJSONFormatter creates a JSON formatter.
func NewJSONFormatter(opts FormatOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Name returns "json".
func (f *JSONFormatter) Name() string { return "json" }

// Format encodes report to w. Placeholders such as "<Media omitted>" and
// links are written as-is rather than HTML-escaped.
func (f *JSONFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var v any = report
	if f.opts.Quiet {
		v = report.Summary
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding %s report: %w", report.Summary.User, err)
	}
	return nil
}
