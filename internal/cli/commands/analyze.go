package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/chatlens/pkg/analyzer"
	"github.com/ccollicutt/chatlens/pkg/config"
	"github.com/ccollicutt/chatlens/pkg/output"
	"github.com/ccollicutt/chatlens/pkg/webhook"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// AnalyzeOptions holds command-line options for the analyze command.
type AnalyzeOptions struct {
	ConfigFile string
	Output     string
	User       string
	Verbose    bool
	Quiet      bool

	// Webhook options
	WebhookURL     string
	WebhookToken   string
	WebhookTrigger string
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand() *cobra.Command {
	opts := &AnalyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze [flags] <export>...",
		Short: "Compute statistics for chat exports",
		Long: `Parse one or more chat exports and print statistics about them.

Exports may be plain .txt files, the .zip archives phones produce, or
.gz/.zst compressed text. Several exports are merged chronologically.

Reports:
  - Message, word, media and link counts
  - Most active users and their share of messages
  - Most common words (stop words removed)
  - Monthly and daily timelines, busiest days and months
  - Weekday by hour activity heatmap
  - Emoji usage

Exit codes:
  0 - Messages parsed and analyzed
  1 - No recognizable messages found
  2 - Configuration or runtime error`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, opts)
		},
	}

	// Flags
	cmd.Flags().StringVarP(&opts.ConfigFile, "config", "c", "", "Configuration file (YAML or TOML)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().StringVarP(&opts.User, "user", "u", "", "Restrict statistics to one sender (default from config, \"Overall\")")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show daily timeline, run details and debug logs")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no details")

	// Webhook flags
	cmd.Flags().StringVar(&opts.WebhookURL, "webhook-url", "", "Webhook endpoint URL")
	cmd.Flags().StringVar(&opts.WebhookToken, "webhook-token", "", "Bearer token for webhook auth")
	cmd.Flags().StringVar(&opts.WebhookTrigger, "webhook-trigger", "on_data", "When to fire webhook (on_data|always|never)")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string, opts *AnalyzeOptions) error {
	ExitCode = 0
	started := time.Now()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)

	// Load configuration
	cfg, err := config.LoadOrDefault(ctx, opts.ConfigFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cmd.Flags().Changed("user") {
		cfg.User = opts.User
	}

	set, err := loadExports(ctx, logger, args)
	if err != nil {
		return err
	}

	if set.Skipped > 0 {
		logger.Warn("skipped messages with unparseable timestamps", "count", set.Skipped)
	}
	for _, file := range set.Unrecognized {
		logger.Warn("no recognizable messages", "file", file)
	}

	var result *analyzer.AnalysisResult
	if len(set.Records) == 0 {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Warning: no recognizable messages in the given export(s)")
		ExitCode = 1
		result = &analyzer.AnalysisResult{User: cfg.User}
	} else {
		if !analyzer.HasUser(set.Records, cfg.User) {
			return fmt.Errorf("user %q not found in export (run \"chatlens users\" to list senders)", cfg.User)
		}
		result, err = analyzer.NewAnalyzer(cfg).Analyze(ctx, set.Records, cfg.User)
		if err != nil {
			return fmt.Errorf("analysis failed: %w", err)
		}
	}

	// Create report
	report := output.NewReport(result, output.Metadata{
		ConfigFile:     opts.ConfigFile,
		Sources:        set.Files,
		Grammar:        set.Grammar,
		RecordsParsed:  len(set.Records),
		RecordsSkipped: set.Skipped,
		Duration:       time.Since(started),
	})

	// Create formatter
	formatter, err := output.NewFormatter(opts.Output, output.FormatOptions{
		Verbose: opts.Verbose,
		Quiet:   opts.Quiet,
		Color:   opts.Output != "json" && colorEnabled(cmd.OutOrStdout()),
	})
	if err != nil {
		return err
	}

	// Output report
	if err := formatter.Format(ctx, report, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	// Send webhooks (errors logged but don't fail analysis)
	sendWebhooks(ctx, logger, cfg, opts, report)

	return nil
}

// sendWebhooks sends the report to all configured webhooks.
// Failures are logged but don't fail the analysis.
func sendWebhooks(ctx context.Context, logger *slog.Logger, cfg *config.Config, opts *AnalyzeOptions, report *output.Report) {
	webhooks := collectWebhooks(cfg, opts)
	if len(webhooks) == 0 {
		return
	}

	client := webhook.NewClient()

	for _, wh := range webhooks {
		if !shouldFireWebhook(wh.Trigger, report.HasData()) {
			logger.Debug("webhook skipped", "webhook", webhookName(wh), "trigger", wh.Trigger)
			continue
		}

		resp := client.Send(ctx, report, webhook.SendOptions{
			URL:      wh.URL,
			Token:    wh.Token,
			Timeout:  wh.Timeout,
			Compress: wh.Compress,
			Retries:  wh.Retries,
		})

		if resp.Success() {
			logger.Info("webhook sent",
				"webhook", webhookName(wh),
				"status", resp.StatusCode,
				"attempts", resp.Attempts,
				"duration", resp.Duration)
		} else {
			logger.Warn("webhook failed",
				"webhook", webhookName(wh),
				"attempts", resp.Attempts,
				"error", resp.Error)
		}
	}
}

func webhookName(wh config.WebhookConfig) string {
	if wh.Name != "" {
		return wh.Name
	}
	return wh.URL
}

// collectWebhooks merges config file webhooks with CLI webhook.
func collectWebhooks(cfg *config.Config, opts *AnalyzeOptions) []config.WebhookConfig {
	webhooks := make([]config.WebhookConfig, 0, len(cfg.Webhooks)+1)
	webhooks = append(webhooks, cfg.Webhooks...)

	if opts.WebhookURL != "" {
		trigger := config.WebhookTrigger(opts.WebhookTrigger)
		if trigger == "" {
			trigger = config.WebhookTriggerOnData
		}

		webhooks = append(webhooks, config.WebhookConfig{
			Name:    "cli",
			URL:     opts.WebhookURL,
			Token:   opts.WebhookToken,
			Trigger: trigger,
			Timeout: config.DefaultWebhookTimeout,
		})
	}

	return webhooks
}

// shouldFireWebhook determines if a webhook should fire for a report.
func shouldFireWebhook(trigger config.WebhookTrigger, hasData bool) bool {
	switch trigger {
	case config.WebhookTriggerAlways:
		return true
	case config.WebhookTriggerNever:
		return false
	default:
		return hasData
	}
}
