package commands

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ccollicutt/chatlens/pkg/analyzer"
	"github.com/ccollicutt/chatlens/pkg/config"
	"github.com/ccollicutt/chatlens/pkg/detector"
	"github.com/ccollicutt/chatlens/pkg/parser"

	"github.com/spf13/cobra"
)

// DiagnoseOptions holds options for the diagnose command
type DiagnoseOptions struct {
	ConfigFile string
	Verbose    bool
}

// DiagnosticResult represents the result of a single diagnostic check
type DiagnosticResult struct {
	Check    string
	Status   string // "ok", "warning", "error"
	Message  string
	Details  []string
	Suggests []string
}

// NewDiagnoseCommand creates the diagnose command
func NewDiagnoseCommand() *cobra.Command {
	opts := &DiagnoseOptions{}

	cmd := &cobra.Command{
		Use:   "diagnose [flags] <export>...",
		Short: "Diagnose why an export or config does not analyze cleanly",
		Long: `Diagnose common problems with chat exports and configuration.

This command checks:
- Config file syntax and values (with -c)
- Export file existence and readability
- Text encoding of the export
- Timestamp grammar detection and competing grammars
- Messages skipped for unparseable timestamps
- Senders found, and the configured user
- Webhook configuration

Example:
  chatlens diagnose chat.txt
  chatlens diagnose -c chatlens.yaml -v chat.zip  # verbose output`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runDiagnose(ctx, cmd.OutOrStdout(), args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigFile, "config", "c", "", "Configuration file to check (YAML or TOML)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show detailed diagnostic output")

	return cmd
}

func runDiagnose(ctx context.Context, w io.Writer, patterns []string, opts *DiagnoseOptions) error {
	results := []DiagnosticResult{}

	// 1. Configuration
	cfg := config.DefaultConfig()
	if opts.ConfigFile != "" {
		result := checkConfigExists(opts.ConfigFile)
		results = append(results, result)
		if result.Status == "error" {
			return printDiagnostics(w, results, opts)
		}

		var loaded *config.Config
		loaded, result = checkConfigParseable(ctx, opts.ConfigFile)
		results = append(results, result)
		if result.Status == "error" {
			return printDiagnostics(w, results, opts)
		}
		cfg = loaded
	} else if opts.Verbose {
		results = append(results, DiagnosticResult{
			Check:   "Config File",
			Status:  "ok",
			Message: "No config file given, using built-in defaults",
		})
	}

	// 2. Export files
	files, fileResults := checkExportFiles(patterns)
	results = append(results, fileResults...)

	// 3. Each export: encoding, grammar, timestamps
	var records []parser.MessageRecord
	for _, file := range files {
		recs, exportResults := checkExport(ctx, file, opts)
		results = append(results, exportResults...)
		records = append(records, recs...)
	}

	// 4. Senders and the configured user
	if len(files) > 0 {
		results = append(results, checkSenders(records, cfg, opts))
	}

	// 5. Webhooks
	results = append(results, checkWebhooks(ctx, cfg, opts)...)

	return printDiagnostics(w, results, opts)
}

func checkConfigExists(path string) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Config File",
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		result.Status = "error"
		result.Message = fmt.Sprintf("Config file not found: %s", path)
		result.Suggests = []string{
			"Check the file path is correct",
			"Use 'chatlens detect <export> --write-config chatlens.yaml' to generate a starter config",
		}
		return result
	}
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot access config file: %v", err)
		result.Suggests = []string{"Check file permissions"}
		return result
	}
	if info.IsDir() {
		result.Status = "error"
		result.Message = "Path is a directory, not a file"
		return result
	}
	if info.Size() == 0 {
		result.Status = "error"
		result.Message = "Config file is empty"
		result.Suggests = []string{
			"Use 'chatlens detect <export> --write-config chatlens.yaml' to generate a starter config",
		}
		return result
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("Found: %s (%d bytes)", path, info.Size())
	return result
}

func checkConfigParseable(ctx context.Context, path string) (*config.Config, DiagnosticResult) {
	result := DiagnosticResult{
		Check: "Config Syntax",
	}

	cfg, err := config.Load(ctx, path)
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Failed to parse config: %v", err)
		switch {
		case strings.Contains(err.Error(), "yaml"):
			result.Suggests = []string{
				"Check YAML syntax - ensure proper indentation (use spaces, not tabs)",
			}
		case strings.Contains(err.Error(), "toml"):
			result.Suggests = []string{
				"Check TOML syntax - strings must be quoted and lists use [ ]",
			}
		}
		return nil, result
	}

	result.Status = "ok"
	result.Message = "Config file parsed successfully"
	result.Details = []string{
		fmt.Sprintf("User: %s", cfg.User),
		fmt.Sprintf("Stop words: %d", len(cfg.ActiveStopWords())),
		fmt.Sprintf("Top words: %d, top users: %d", cfg.TopWords, cfg.TopUsers),
		fmt.Sprintf("Webhooks: %d", len(cfg.Webhooks)),
	}
	return cfg, result
}

// checkExportFiles expands patterns and reports every file that will be read.
func checkExportFiles(patterns []string) ([]string, []DiagnosticResult) {
	results := []DiagnosticResult{}

	files, err := parser.ExpandGlobs(patterns)
	if err != nil {
		results = append(results, DiagnosticResult{
			Check:   "Export Files",
			Status:  "error",
			Message: fmt.Sprintf("Invalid path or glob pattern: %v", err),
			Suggests: []string{
				"Quote glob patterns so the shell does not expand them",
			},
		})
		return nil, results
	}

	if len(files) == 0 {
		results = append(results, DiagnosticResult{
			Check:   "Export Files",
			Status:  "error",
			Message: fmt.Sprintf("No export files matched: %s", strings.Join(patterns, ", ")),
			Suggests: []string{
				"Check if the export files exist at this path",
				"Supported extensions: .txt, .zip, .gz, .zst",
			},
		})
		return nil, results
	}

	readable := make([]string, 0, len(files))
	for _, file := range files {
		result := DiagnosticResult{
			Check: fmt.Sprintf("Export: %s", file),
		}

		info, err := os.Stat(file)
		switch {
		case err != nil:
			result.Status = "error"
			result.Message = fmt.Sprintf("Cannot access file: %v", err)
			result.Suggests = []string{"Check file permissions"}
		case info.Size() == 0:
			result.Status = "warning"
			result.Message = "File is empty (0 bytes)"
		default:
			result.Status = "ok"
			result.Message = fmt.Sprintf("File exists (%d bytes)", info.Size())
			readable = append(readable, file)
		}
		results = append(results, result)
	}

	return readable, results
}

// checkExport reads and parses one export. It returns the parsed records so
// later checks can look at senders.
func checkExport(ctx context.Context, file string, opts *DiagnoseOptions) ([]parser.MessageRecord, []DiagnosticResult) {
	results := []DiagnosticResult{}

	readResult := DiagnosticResult{
		Check: fmt.Sprintf("Encoding: %s", file),
	}
	text, err := parser.ReadExport(ctx, file)
	if err != nil {
		readResult.Status = "error"
		readResult.Message = fmt.Sprintf("Cannot read export: %v", err)
		if strings.HasSuffix(strings.ToLower(file), ".zip") {
			readResult.Suggests = []string{
				"The archive should contain the chat as a .txt file",
			}
		}
		return nil, append(results, readResult)
	}

	if n := strings.Count(text, "\ufffd"); n > 0 {
		readResult.Status = "warning"
		readResult.Message = fmt.Sprintf("%d invalid UTF-8 sequence(s) replaced", n)
		readResult.Suggests = []string{
			"Re-export the chat, or convert the file to UTF-8",
		}
	} else {
		readResult.Status = "ok"
		readResult.Message = fmt.Sprintf("Valid UTF-8 (%d characters)", len([]rune(text)))
	}
	results = append(results, readResult)

	detResult := detector.New().Detect(text)
	results = append(results, checkGrammar(file, detResult, opts))
	if !detResult.HasMatch() {
		return nil, results
	}

	parsed, err := parser.Parse(text)
	if err != nil {
		return nil, append(results, DiagnosticResult{
			Check:   fmt.Sprintf("Timestamps: %s", file),
			Status:  "error",
			Message: fmt.Sprintf("Parsing failed: %v", err),
		})
	}
	results = append(results, checkTimestamps(file, parsed, opts))

	return parsed.Records, results
}

func checkGrammar(file string, det *detector.DetectionResult, opts *DiagnoseOptions) DiagnosticResult {
	result := DiagnosticResult{
		Check: fmt.Sprintf("Grammar: %s", file),
	}

	if !det.HasMatch() {
		result.Status = "error"
		result.Message = "No supported timestamp grammar matches this export"
		result.Suggests = []string{
			"Messages must start like \"01/02/23, 14:05 - \", \"01/02/2023, 2:05 PM - \" or \"[01/02/23, 2:05:09 PM] \"",
			"Use 'chatlens detect --all " + file + "' to see every grammar tried",
		}
		return result
	}

	if competing := det.Competing(); len(competing) > 0 {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Using %s, but other grammars also match", det.Grammar.Name)
		for _, m := range competing {
			result.Details = append(result.Details,
				fmt.Sprintf("%s: %d matches, sample %q", m.Grammar.Name, m.MatchCount, truncate(m.Sample, 40)))
		}
		result.Suggests = []string{
			"Messages in the other grammars are folded into the previous message body",
			"Export each device separately and pass the files together",
		}
		return result
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("%s (%d messages)", det.Grammar.Name, det.Segments)
	if opts.Verbose {
		for _, m := range det.Matches {
			if m.Grammar == det.Grammar {
				result.Details = []string{"Sample match:", truncate(strings.TrimSpace(m.Sample), 80)}
			}
		}
	}
	return result
}

func checkTimestamps(file string, parsed *parser.Result, opts *DiagnoseOptions) DiagnosticResult {
	result := DiagnosticResult{
		Check: fmt.Sprintf("Timestamps: %s", file),
	}

	total := len(parsed.Records) + len(parsed.Skipped)
	if len(parsed.Skipped) == 0 {
		result.Status = "ok"
		result.Message = fmt.Sprintf("All %d timestamps parsed", total)
		if opts.Verbose && len(parsed.Records) > 0 {
			first := parsed.Records[0].Time
			last := parsed.Records[len(parsed.Records)-1].Time
			result.Details = []string{
				fmt.Sprintf("First message: %s", first.Format("2006-01-02 15:04")),
				fmt.Sprintf("Last message: %s", last.Format("2006-01-02 15:04")),
			}
		}
		return result
	}

	if len(parsed.Records) == 0 {
		result.Status = "error"
	} else {
		result.Status = "warning"
	}
	result.Message = fmt.Sprintf("%d/%d message(s) skipped for unparseable timestamps", len(parsed.Skipped), total)

	limit := 3
	if opts.Verbose {
		limit = len(parsed.Skipped)
	}
	for i, s := range parsed.Skipped {
		if i == limit {
			result.Details = append(result.Details, fmt.Sprintf("... and %d more", len(parsed.Skipped)-limit))
			break
		}
		result.Details = append(result.Details,
			fmt.Sprintf("message %d %q: %v", s.Index+1, strings.TrimSpace(s.Timestamp), s.Err))
	}
	result.Suggests = []string{
		"Dates are read day first (DD/MM); exports from phones set to MM/DD will not parse",
	}
	return result
}

func checkSenders(records []parser.MessageRecord, cfg *config.Config, opts *DiagnoseOptions) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Senders",
	}

	// Users always lists Overall first.
	users := analyzer.Users(records)[1:]
	senders := 0
	for _, u := range users {
		if u != parser.GroupNotification {
			senders++
		}
	}

	switch {
	case len(records) == 0:
		result.Status = "error"
		result.Message = "No messages parsed, nothing to analyze"
		return result
	case senders == 0:
		result.Status = "warning"
		result.Message = "Every message is a group notification"
		result.Suggests = []string{
			"Message bodies should start with \"Name: \" after the timestamp",
		}
		return result
	case !analyzer.HasUser(records, cfg.User):
		result.Status = "error"
		result.Message = fmt.Sprintf("Configured user %q not found", cfg.User)
		result.Details = users
		result.Suggests = []string{
			"Use 'chatlens users <export>' to list the senders",
		}
		return result
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("%d sender(s) in %d message(s)", senders, len(records))
	if opts.Verbose {
		result.Details = users
	}
	return result
}

func printDiagnostics(w io.Writer, results []DiagnosticResult, opts *DiagnoseOptions) error {
	p := &printer{w: w}

	p.println("=== ChatLens Diagnostics ===")
	p.println()

	okCount := 0
	warnCount := 0
	errCount := 0

	for _, r := range results {
		// Status icon
		var icon string
		switch r.Status {
		case "ok":
			icon = "PASS"
			okCount++
		case "warning":
			icon = "WARN"
			warnCount++
		case "error":
			icon = "FAIL"
			errCount++
		}

		p.printf("[%s] %s\n", icon, r.Check)
		p.printf("    %s\n", r.Message)

		if opts.Verbose || r.Status != "ok" {
			for _, d := range r.Details {
				p.printf("      - %s\n", d)
			}
		}

		for _, s := range r.Suggests {
			p.printf("      Hint: %s\n", s)
		}

		p.println()
	}

	// Summary
	p.println("---")
	p.printf("Summary: %d passed, %d warnings, %d errors\n", okCount, warnCount, errCount)

	switch {
	case errCount > 0:
		p.println("\nFix the errors above before running analysis.")
	case warnCount > 0:
		p.println("\nExports are usable but have warnings.")
	default:
		p.println("\nEverything looks good!")
	}

	return p.err
}

func checkWebhooks(ctx context.Context, cfg *config.Config, opts *DiagnoseOptions) []DiagnosticResult {
	results := []DiagnosticResult{}

	if len(cfg.Webhooks) == 0 {
		// Webhooks are optional, just note they're not configured
		if opts.Verbose {
			results = append(results, DiagnosticResult{
				Check:   "Webhooks",
				Status:  "ok",
				Message: "No webhooks configured (optional)",
			})
		}
		return results
	}

	for _, wh := range cfg.Webhooks {
		result := DiagnosticResult{
			Check: fmt.Sprintf("Webhook: %s", webhookName(wh)),
		}

		issues := []string{}
		warnings := []string{}

		// Check URL
		if wh.URL == "" {
			issues = append(issues, "Missing url")
		} else {
			u, err := url.Parse(wh.URL)
			if err != nil {
				issues = append(issues, fmt.Sprintf("Invalid URL: %v", err))
			} else if u.Scheme != "http" && u.Scheme != "https" {
				issues = append(issues, fmt.Sprintf("URL scheme must be http or https, got %q", u.Scheme))
			} else if u.Host == "" {
				issues = append(issues, "URL must have a host")
			}
		}

		// Check trigger
		if wh.Trigger != "" {
			switch wh.Trigger {
			case config.WebhookTriggerOnData, config.WebhookTriggerAlways, config.WebhookTriggerNever:
				// Valid
			default:
				issues = append(issues, fmt.Sprintf("Invalid trigger %q (use on_data, always, or never)", wh.Trigger))
			}
		}

		// Check if token looks like an unexpanded env var
		if strings.HasPrefix(wh.Token, "$") {
			warnings = append(warnings, fmt.Sprintf("Token appears to be an unresolved env var: %s", wh.Token))
		}

		if len(issues) > 0 {
			result.Status = "error"
			result.Message = fmt.Sprintf("%d configuration issue(s)", len(issues))
			result.Details = issues
		} else if len(warnings) > 0 {
			result.Status = "warning"
			result.Message = fmt.Sprintf("%d warning(s)", len(warnings))
			result.Details = warnings
		} else {
			result.Status = "ok"
			result.Message = fmt.Sprintf("Trigger: %s", wh.Trigger)
			if opts.Verbose {
				result.Details = []string{
					fmt.Sprintf("URL: %s", wh.URL),
					fmt.Sprintf("Timeout: %s", wh.Timeout),
					fmt.Sprintf("Retries: %d, compress: %v", wh.Retries, wh.Compress),
				}
				if wh.Token != "" {
					result.Details = append(result.Details, "Token: configured")
				}
			}
		}

		results = append(results, result)
	}

	// Optionally test webhook connectivity
	if opts.Verbose {
		for _, wh := range cfg.Webhooks {
			if wh.URL == "" {
				continue
			}
			result := checkWebhookConnectivity(ctx, wh)
			result.Check = fmt.Sprintf("Webhook Connectivity: %s", webhookName(wh))
			results = append(results, result)
		}
	}

	return results
}

func checkWebhookConnectivity(ctx context.Context, wh config.WebhookConfig) DiagnosticResult {
	result := DiagnosticResult{}

	// Just do a HEAD request to check if the endpoint is reachable
	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, wh.URL, nil)
	if err != nil {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Cannot create request: %v", err)
		return result
	}

	if wh.Token != "" {
		req.Header.Set("Authorization", "Bearer "+wh.Token)
	}

	resp, err := client.Do(req)
	if err != nil {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Cannot connect: %v", err)
		result.Suggests = []string{
			"Check if the webhook URL is correct",
			"Verify network connectivity",
		}
		return result
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		result.Status = "ok"
		result.Message = fmt.Sprintf("Reachable (status %d)", resp.StatusCode)
	} else {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Reachable but returned status %d", resp.StatusCode)
		result.Suggests = []string{
			"The endpoint may require POST method (will work during actual webhook send)",
			"Check authentication if using a token",
		}
	}

	return result
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
