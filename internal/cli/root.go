// Package cli provides the command-line interface for ChatLens.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/chatlens/internal/cli/commands"
	"github.com/ccollicutt/chatlens/internal/cli/plugins"
)

// Execute runs the root command and returns the exit code.
func Execute() int {
	return Run(context.Background(), os.Args[1:], os.Stdout, os.Stderr)
}

// Run executes args against a fresh command tree and returns the exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd := NewRootCommand()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	commands.ExitCode = 0

	// Check if the first argument might be a plugin command
	potentialCommand := pluginCandidate(rootCmd, args)
	if potentialCommand != "" {
		if pluginPath, err := plugins.FindPlugin(potentialCommand); err == nil {
			return plugins.Execute(ctx, pluginPath, args[1:])
		}
		// Plugin not found - will fall through to Cobra which will show error
	}

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if potentialCommand != "" {
			_, _ = fmt.Fprintln(stderr, plugins.FormatNotFoundError(potentialCommand))
			return 2
		}
		// Print error to stderr (SilenceErrors prevents Cobra from doing this)
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2 // Configuration or runtime error
	}
	return commands.ExitCode
}

// pluginCandidate returns the first argument when it names neither a flag
// nor a built-in command.
func pluginCandidate(rootCmd *cobra.Command, args []string) string {
	if len(args) == 0 {
		return ""
	}
	name := args[0]
	if name == "" || name[0] == '-' || isBuiltinCommand(rootCmd, name) {
		return ""
	}
	return name
}

// isBuiltinCommand checks if a command name is a built-in cobra command.
func isBuiltinCommand(rootCmd *cobra.Command, name string) bool {
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == name || cmd.HasAlias(name) {
			return true
		}
	}
	// Also check for special commands like help and completion
	return name == "help" || name == "completion"
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "chatlens",
		Short: "Statistics for exported chat logs",
		Long: `ChatLens parses exported instant-messaging chats into messages and
reports statistics about them.

It reports:
  - Message, word, media and link counts
  - Most active users and most common words
  - Timelines, busiest days and months, and an activity heatmap
  - Emoji usage

Three timestamp conventions are recognized:
  01/02/23, 14:05 - Alice: ...
  01/02/2023, 2:05 PM - Alice: ...
  [01/02/23, 2:05:09 PM] Alice: ...

PLUGINS:
  ChatLens supports plugins for extended functionality. Plugins are standalone
  binaries named chatlens-<command> that are automatically discovered and invoked.

  Plugin locations (searched in order):
    1. Same directory as the chatlens binary
    2. ~/.chatlens/plugins/
    3. Anywhere in PATH`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add subcommands
	rootCmd.AddCommand(commands.NewAnalyzeCommand())
	rootCmd.AddCommand(commands.NewDetectCommand())
	rootCmd.AddCommand(commands.NewDiagnoseCommand())
	rootCmd.AddCommand(commands.NewUsersCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
