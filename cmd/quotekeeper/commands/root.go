// Package commands holds the cobra command tree of the quotekeeper binary.
package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quotekeeper/internal/platform/config"
)

// BuildInfo identifies the running binary.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// options are the persistent flags shared by every subcommand.
type options struct {
	profile   string
	configDir string
	offline   bool
	jsonOut   bool
}

// resolveProfile returns the --profile flag, then APP_ENVIRONMENT, then "local".
func (o *options) resolveProfile() string {
	if o.profile != "" {
		return o.profile
	}

	if env := os.Getenv("APP_ENVIRONMENT"); env != "" {
		return env
	}

	return "local"
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context, info BuildInfo) error {
	return newRootCommand(info).ExecuteContext(ctx)
}

func newRootCommand(info BuildInfo) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "quotekeeper",
		Short: "Keep, filter and sync a collection of quotes",
		Long: `quotekeeper keeps a categorized collection of quotes in a persistent slot,
serves it over HTTP and periodically merges quotes from a remote endpoint.

Local quotes always win a merge: a remote quote whose text is already stored
is dropped.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.BuildTime),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.profile, "profile", "p", "", "config profile (default $APP_ENVIRONMENT or local)")
	flags.StringVar(&opts.configDir, "config-dir", config.DefaultConfigDir, "directory holding base.yaml and the profile files")
	flags.BoolVar(&opts.offline, "offline", false, "never contact the remote quote service")
	flags.BoolVar(&opts.jsonOut, "json", false, "print results as JSON")

	root.AddCommand(
		newServeCommand(opts, info),
		newAddCommand(opts),
		newRandomCommand(opts),
		newListCommand(opts),
		newCategoriesCommand(opts),
		newExportCommand(opts),
		newImportCommand(opts),
		newSyncCommand(opts),
	)

	return root
}
