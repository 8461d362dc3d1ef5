package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/chatlens/pkg/config"
	"github.com/ccollicutt/chatlens/pkg/detector"
	"github.com/ccollicutt/chatlens/pkg/parser"
)

// DetectOptions holds command-line options for the detect command.
type DetectOptions struct {
	Output      string
	ShowAll     bool
	WriteConfig string
}

// NewDetectCommand creates the detect command.
func NewDetectCommand() *cobra.Command {
	opts := &DetectOptions{}

	cmd := &cobra.Command{
		Use:   "detect <export>",
		Short: "Detect the timestamp grammar of a chat export",
		Long: `Run every supported timestamp grammar over a chat export and report
which one the parser will use.

Grammars are tried in order and the first one with at least one match
wins. Other grammars that also match are reported, since that usually
means the export mixes phones or locales.

Optionally generates a starter config file with --write-config.

Supports:
  - 24-hour clock, two-digit year     (01/02/23, 14:05 - )
  - 12-hour clock, four-digit year    (01/02/2023, 2:05 PM - )
  - Bracketed 12-hour with seconds    ([01/02/23, 2:05:09 PM] )

Example:
  chatlens detect "WhatsApp Chat with Family.txt"
  chatlens detect --all chat.zip
  chatlens detect -w chatlens.yaml chat.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().BoolVar(&opts.ShowAll, "all", false, "Show every grammar tried, not just the ones that matched")
	cmd.Flags().StringVarP(&opts.WriteConfig, "write-config", "w", "", "Write starter config to file (will not overwrite)")

	return cmd
}

func runDetect(cmd *cobra.Command, args []string, opts *DetectOptions) error {
	exportFile := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if _, err := os.Stat(exportFile); os.IsNotExist(err) {
		return fmt.Errorf("export file not found: %s", exportFile)
	}

	text, err := parser.ReadExport(ctx, exportFile)
	if err != nil {
		return fmt.Errorf("reading export: %w", err)
	}

	result := detector.New().Detect(text)

	w := cmd.OutOrStdout()

	if opts.WriteConfig != "" {
		if err := writeStarterConfig(w, result, exportFile, opts.WriteConfig); err != nil {
			return err
		}
	}

	switch opts.Output {
	case "json":
		return outputDetectJSON(w, result, exportFile, opts)
	case "text", "":
		return outputDetectText(w, result, exportFile, opts)
	default:
		return fmt.Errorf("unknown output format %q (use text or json)", opts.Output)
	}
}

func outputDetectText(w io.Writer, result *detector.DetectionResult, exportFile string, opts *DetectOptions) error {
	p := &printer{w: w}

	p.println("=== Timestamp Grammar Detection ===")
	p.println()
	p.printf("File: %s\n", exportFile)
	p.println()

	if !result.HasMatch() {
		p.println("No supported timestamp grammar detected.")
		p.println()
		p.println("Tip: Re-export the chat from the phone without media, and check that")
		p.println("the first lines start with a date and time like \"01/02/23, 14:05 - \".")
		return p.err
	}

	best := matchFor(result, result.Grammar)
	p.printf("Detected Grammar: %s\n", result.Grammar.Name)
	p.printf("Messages delimited: %d\n", result.Segments)
	p.println()
	p.printf("Sample match:\n  %s\n", strings.TrimSpace(best.Sample))
	if ts, err := parser.NewTimestampExtractor(result.Grammar.Pattern, result.Grammar.Layout).Extract(best.Sample); err == nil {
		p.printf("Parsed as: %s\n", ts.Format("2006-01-02 15:04:05 Monday"))
	}
	p.println()

	if competing := result.Competing(); len(competing) > 0 {
		p.println("WARNING: Other grammars also match this export.")
		for _, m := range competing {
			p.printf("  - %s (%d matches, ignored)\n", m.Grammar.Name, m.MatchCount)
		}
		p.println("Only messages in the detected grammar will be parsed.")
		p.println()
	}

	if opts.ShowAll {
		p.println("--- All grammars, in the order they are tried ---")
		for i, m := range result.Matches {
			p.printf("%d. %s (%d matches)\n", i+1, m.Grammar.Name, m.MatchCount)
			p.printf("   pattern: '%s'\n", m.Grammar.PatternStr)
			p.printf("   layout: \"%s\"\n", m.Grammar.Layout)
		}
		p.println()
	}

	return p.err
}

func matchFor(result *detector.DetectionResult, g *detector.Grammar) detector.GrammarMatch {
	for _, m := range result.Matches {
		if m.Grammar == g {
			return m
		}
	}
	return detector.GrammarMatch{Grammar: g}
}

// JSONMatch represents a grammar match in JSON output.
type JSONMatch struct {
	Name       string `json:"name"`
	Pattern    string `json:"pattern"`
	Layout     string `json:"layout"`
	MatchCount int    `json:"match_count"`
	Sample     string `json:"sample,omitempty"`
	Selected   bool   `json:"selected"`
}

// JSONOutput represents the full JSON output.
type JSONOutput struct {
	File      string      `json:"file"`
	Grammar   string      `json:"grammar"`
	Segments  int         `json:"segments"`
	Competing []string    `json:"competing,omitempty"`
	Matches   []JSONMatch `json:"matches"`
}

func outputDetectJSON(w io.Writer, result *detector.DetectionResult, exportFile string, opts *DetectOptions) error {
	out := JSONOutput{
		File:     exportFile,
		Segments: result.Segments,
		Matches:  make([]JSONMatch, 0, len(result.Matches)),
	}
	if result.HasMatch() {
		out.Grammar = result.Grammar.Name
	}
	for _, m := range result.Competing() {
		out.Competing = append(out.Competing, m.Grammar.Name)
	}

	for _, m := range result.Matches {
		if m.MatchCount == 0 && !opts.ShowAll {
			continue
		}
		out.Matches = append(out.Matches, JSONMatch{
			Name:       m.Grammar.Name,
			Pattern:    m.Grammar.PatternStr,
			Layout:     m.Grammar.Layout,
			MatchCount: m.MatchCount,
			Sample:     m.Sample,
			Selected:   m.Grammar == result.Grammar,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

// writeStarterConfig generates a starter config file for an export whose
// grammar was detected.
func writeStarterConfig(w io.Writer, result *detector.DetectionResult, exportFile, configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s (will not overwrite)", configPath)
	}

	if !result.HasMatch() {
		return fmt.Errorf("cannot generate config: no timestamp grammar detected")
	}

	content := generateStarterConfig(exportFile, result.Grammar)

	// #nosec G306 - config file doesn't need restrictive permissions
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	_, err := fmt.Fprintf(w, "Wrote starter config to: %s\n\n", configPath)
	return err
}

// generateStarterConfig creates a YAML config template.
func generateStarterConfig(exportFile string, g *detector.Grammar) string {
	return fmt.Sprintf(`# ChatLens Configuration
# Generated by: chatlens detect %s
# Detected grammar: %s
#
# Use with: chatlens analyze -c <this file> <export>...

# Restrict statistics to one sender. "%s" means everyone.
user: %q

# Table sizes.
top_words: %d
top_users: %d

# Words ignored by the common-words table, on top of the built-in list.
extra_stop_words: []
#  - haha
#  - ok

# Replace the built-in stop-word list entirely:
# stop_words: [the, and, a]

# Message bodies that mark an attachment.
# media_placeholders:
#   - "<Media omitted>"

# Post the JSON report somewhere after each run:
# webhooks:
#   - name: archive
#     url: https://example.com/chatlens
#     token: ${CHATLENS_WEBHOOK_TOKEN}
#     trigger: on_data   # on_data | always | never
#     timeout: 10s
`, exportFile, g.Name,
		config.DefaultUser, config.DefaultUser,
		config.DefaultTopWords, config.DefaultTopUsers)
}
