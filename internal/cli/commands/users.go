package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/chatlens/pkg/analyzer"
)

// UsersOptions holds command-line options for the users command.
type UsersOptions struct {
	Output string
}

// NewUsersCommand creates the users command.
func NewUsersCommand() *cobra.Command {
	opts := &UsersOptions{}

	cmd := &cobra.Command{
		Use:   "users <export>...",
		Short: "List the users statistics can be restricted to",
		Long: `List the values accepted by "chatlens analyze --user".

The first entry is always "Overall" (every sender). The senders found in
the exports follow in sorted order, including "group_notification" for
system messages that have no sender.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUsers(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")

	return cmd
}

func runUsers(cmd *cobra.Command, args []string, opts *UsersOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	set, err := loadExports(ctx, newLogger(cmd.ErrOrStderr(), false), args)
	if err != nil {
		return err
	}
	if len(set.Records) == 0 {
		return fmt.Errorf("no recognizable messages in %v", set.Files)
	}

	users := analyzer.Users(set.Records)
	w := cmd.OutOrStdout()

	switch opts.Output {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(users)
	case "text", "":
		p := &printer{w: w}
		for _, u := range users {
			p.println(u)
		}
		return p.err
	default:
		return fmt.Errorf("unknown output format %q (use text or json)", opts.Output)
	}
}
