// Package cmd provides the CLI commands, one per git hook entry point.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zonetools/zonegit/internal/config"
	"github.com/zonetools/zonegit/internal/gitrepo"
	"github.com/zonetools/zonegit/internal/logger"
	"github.com/zonetools/zonegit/internal/runner"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "zonegit",
	Short: "Git hooks for DNS zone file repositories",
	Long: `Git hooks managing a repository of DNS zone files.

Zone file edits are validated before they are accepted: the zone must
compile, its name must match the file name, and the SOA serial must
increase whenever content changes (pre-commit bumps it automatically).
After an accepted push the configured DNS-server configuration snippets
are regenerated and reload/reconfigure commands are issued.

Install by symlinking the hook names (pre-commit, update, pre-receive,
post-receive) in .git/hooks to this binary; the invocation name selects
the matching subcommand. Options live in the "dzonegit" section of the
repository's git config.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug output")
	rootCmd.PersistentFlags().Bool("json", false, "Output in JSON format (structured logging)")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
}

// hookEnv is everything a hook run needs: logger, options and the git
// collaborators, built once per invocation.
type hookEnv struct {
	log  *logger.Logger
	opts config.Options
	repo *gitrepo.Repo
	run  *runner.Runner
}

func newHookEnv(ctx context.Context, cmd *cobra.Command) (*hookEnv, error) {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return nil, fmt.Errorf("failed to get verbose flag: %w", err)
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return nil, fmt.Errorf("failed to get json flag: %w", err)
	}
	noColor, err := cmd.Flags().GetBool("no-color")
	if err != nil {
		return nil, fmt.Errorf("failed to get no-color flag: %w", err)
	}

	log := logger.New(logger.Options{
		Verbose: verbose,
		JSON:    jsonOutput,
		NoColor: noColor,
	})

	// Bootstrap: configuration lives in git config, so reading it needs
	// a runner before the configured timeout is known.
	run := &runner.Runner{Timeout: runner.DefaultTimeout}
	repo := gitrepo.New(run)
	opts, err := config.Load(ctx, repo)
	if err != nil {
		return nil, err
	}
	run.Timeout = opts.CommandTimeout
	for _, w := range opts.Warnings {
		log.Warn("%s", w)
	}
	return &hookEnv{log: log, opts: opts, repo: repo, run: run}, nil
}
