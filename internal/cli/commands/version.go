package commands

import (
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/chatlens/pkg/detector"
)

// Version is set via ldflags at build time.
var Version = "dev"

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Print the version of ChatLens, and with --verbose the build and the supported timestamp grammars.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := &printer{w: cmd.OutOrStdout()}
			p.printf("chatlens %s\n", Version)
			if verbose {
				p.printf("  go:       %s\n", runtime.Version())
				if rev := vcsRevision(); rev != "" {
					p.printf("  commit:   %s\n", rev)
				}
				for _, g := range detector.Grammars() {
					p.printf("  grammar:  %-18s %s\n", g.Name, g.Examples[0])
				}
			}
			return p.err
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show build details and supported grammars")
	return cmd
}

// vcsRevision returns the commit the binary was built from, if recorded.
func vcsRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			return s.Value
		}
	}
	return ""
}
