package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/chatlens/pkg/config"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate a ChatLens configuration file without running analysis.

Checks:
  - YAML or TOML syntax
  - Table sizes are positive
  - User is not blank
  - Stop words are not blank
  - Webhook URLs and triggers`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	p := &printer{w: cmd.OutOrStdout()}
	p.printf("Validating %s...\n", configPath)

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	p.printf("\nConfiguration valid!\n")
	p.printf("  User:               %s\n", cfg.User)
	p.printf("  Top words:          %d\n", cfg.TopWords)
	p.printf("  Top users:          %d\n", cfg.TopUsers)
	p.printf("  Stop words:         %d\n", len(cfg.ActiveStopWords()))
	p.printf("  Media placeholders: %d\n", len(cfg.MediaPlaceholders))
	p.printf("  Webhooks:           %d\n", len(cfg.Webhooks))

	if len(cfg.Webhooks) > 0 {
		p.printf("\nWebhooks:\n")
		for i, wh := range cfg.Webhooks {
			p.printf("  %d. [%s] %s\n", i+1, wh.Trigger, webhookName(wh))
		}
	}

	return p.err
}
