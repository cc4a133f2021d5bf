package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zonetools/zonegit/internal/check"
	"github.com/zonetools/zonegit/internal/gitrepo"
	"github.com/zonetools/zonegit/internal/runner"
)

var updateCmd = &cobra.Command{
	Use:   "update <refname> <oldrev> <newrev>",
	Short: "Validate one pushed ref update (server side)",
	Long: `Validate a single ref update as git's update hook.

Only refs/heads/master is accepted. The incoming tree is validated
against the ref's prior position; a serial that did not increase is
rejected with instructions to bump it, since pushed history cannot be
rewritten here.`,
	Args:         cobra.ExactArgs(3),
	SilenceUsage: true,
	RunE:         runUpdate,
}

var preReceiveCmd = &cobra.Command{
	Use:   "pre-receive",
	Short: "Validate all pushed ref updates (server side)",
	Long: `Validate every pushed branch update, read as "<oldrev> <newrev>
<refname>" lines from standard input. Any single rejection aborts the
whole push with every collected problem reported.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runPreReceive,
}

func init() {
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(preReceiveCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	refName, oldRev, newRev := args[0], args[1], args[2]
	if refName != "refs/heads/master" {
		return fmt.Errorf("nothing else except the master branch is accepted here")
	}
	return checkRefs(cmd, []refUpdate{{oldRev: oldRev, newRev: newRev, refName: refName}})
}

func runPreReceive(cmd *cobra.Command, _ []string) error {
	updates, err := readRefUpdates(cmd.InOrStdin())
	if err != nil {
		return err
	}
	return checkRefs(cmd, updates)
}

type refUpdate struct {
	oldRev  string
	newRev  string
	refName string
}

// readRefUpdates parses the "<old> <new> <ref>" lines git feeds the
// pre-receive and post-receive hooks.
func readRefUpdates(r io.Reader) ([]refUpdate, error) {
	var updates []refUpdate
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, fmt.Errorf("malformed ref update line %q", line)
		}
		updates = append(updates, refUpdate{oldRev: fields[0], newRev: fields[1], refName: fields[2]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ref updates: %w", err)
	}
	return updates, nil
}

// checkRefs validates every branch update in remote mode. Deleted refs
// and non-branch refs carry no new zone content to validate.
func checkRefs(cmd *cobra.Command, updates []refUpdate) error {
	ctx := cmd.Context()
	env, err := newHookEnv(ctx, cmd)
	if err != nil {
		return err
	}

	compiler := runner.NewCompiler(env.run, env.opts.CompileCmd)
	pipeline := check.New(env.repo, compiler, env.opts, env.log)

	var all []check.Violation
	for _, u := range updates {
		if !strings.HasPrefix(u.refName, "refs/heads/") || u.newRev == gitrepo.ZeroRev {
			continue
		}
		env.log.Debug("Validating %s: %s -> %s", u.refName, u.oldRev, u.newRev)
		result, err := checkRef(ctx, pipeline, u)
		if err != nil {
			return err
		}
		all = append(all, result.Violations...)
	}

	for _, v := range all {
		env.log.Violation(v.Path, v.Message, v.Detail)
	}
	if len(all) > 0 {
		return &check.AggregateError{Violations: all}
	}
	return nil
}

func checkRef(ctx context.Context, pipeline *check.Pipeline, u refUpdate) (*check.Result, error) {
	result, err := pipeline.CheckRef(ctx, u.oldRev, u.newRev)
	if err != nil {
		return nil, fmt.Errorf("failed to validate %s: %w", u.refName, err)
	}
	return result, nil
}
