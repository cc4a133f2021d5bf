package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zonetools/zonegit/internal/check"
	"github.com/zonetools/zonegit/internal/runner"
)

var preCommitCmd = &cobra.Command{
	Use:   "pre-commit",
	Short: "Validate staged zone files before a commit",
	Long: `Validate the staged change set against HEAD.

Every problem is collected and reported in one pass. When a zone's
content changed without its serial increasing, the serial is bumped in
the working copy and re-staged automatically (disable with the
dzonegit.noserialupdate option).`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runPreCommit,
}

func init() {
	rootCmd.AddCommand(preCommitCmd)
}

func runPreCommit(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	env, err := newHookEnv(ctx, cmd)
	if err != nil {
		return err
	}

	compiler := runner.NewCompiler(env.run, env.opts.CompileCmd)
	pipeline := check.New(env.repo, compiler, env.opts, env.log)

	result, err := pipeline.CheckLocal(ctx)
	if err != nil {
		return err
	}

	for _, v := range result.Violations {
		env.log.Violation(v.Path, v.Message, v.Detail)
	}
	if !result.Accepted() {
		return result.Err()
	}

	// Apply serial rewrites to the working copy and re-stage them, so
	// the commit being created carries the bumped serials.
	for _, rw := range result.Rewrites {
		mode := os.FileMode(0o644)
		if st, err := os.Stat(rw.Path); err == nil {
			mode = st.Mode().Perm()
		}
		if err := os.WriteFile(rw.Path, rw.Content, mode); err != nil {
			return fmt.Errorf("failed to update serial of %s: %w", rw.Path, err)
		}
		if err := env.repo.Add(ctx, rw.Path); err != nil {
			return err
		}
		env.log.Info("Updated serial of %s to %d", rw.Path, rw.Serial)
	}
	return nil
}
