package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/zonetools/zonegit/internal/gitrepo"
	"github.com/zonetools/zonegit/internal/match"
	"github.com/zonetools/zonegit/internal/registry"
	"github.com/zonetools/zonegit/internal/render"
	"github.com/zonetools/zonegit/internal/runner"
)

var postReceiveCmd = &cobra.Command{
	Use:   "post-receive",
	Short: "Check out accepted changes and regenerate server configuration",
	Long: `After an accepted push: check out the new tree to the configured
checkoutpath, regenerate the configured configuration snippets, and
dispatch reload/reconfigure commands for the zones that changed.

Failures here are reported for operational visibility but never reject
the already-accepted push.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runPostReceive,
}

func init() {
	rootCmd.AddCommand(postReceiveCmd)
}

func runPostReceive(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	env, err := newHookEnv(ctx, cmd)
	if err != nil {
		return err
	}

	updates, err := readRefUpdates(cmd.InOrStdin())
	if err != nil {
		return err
	}
	update, ok := masterUpdate(updates)
	if !ok {
		env.log.Debug("No master branch update, nothing to regenerate")
		return nil
	}
	if env.opts.CheckoutPath == "" {
		env.log.Debug("checkoutpath is not set, skipping checkout and regeneration")
		return nil
	}

	if update.newRev == gitrepo.ZeroRev {
		return fmt.Errorf("refusing to regenerate from a deleted master branch")
	}
	if err := env.repo.Checkout(ctx, env.opts.CheckoutPath, update.newRev); err != nil {
		return err
	}
	env.log.Info("Checked out %s to %s", shortRev(update.newRev), env.opts.CheckoutPath)

	whitelist, err := match.LoadFilterList(env.opts.WhitelistPath)
	if err != nil {
		return err
	}
	blacklist, err := match.LoadFilterList(env.opts.BlacklistPath)
	if err != nil {
		return err
	}

	prev, err := snapshot(ctx, env, update.oldRev, whitelist, blacklist)
	if err != nil {
		return err
	}
	curr, err := snapshot(ctx, env, update.newRev, whitelist, blacklist)
	if err != nil {
		return err
	}

	failures := regenerate(env, curr)
	failures += dispatch(ctx, env, registry.Compare(prev, curr))
	if failures > 0 {
		return fmt.Errorf("post-receive completed with %d failure(s)", failures)
	}
	return nil
}

// masterUpdate picks the master branch out of the pushed updates; the
// zone set and generated configuration follow that branch alone.
func masterUpdate(updates []refUpdate) (refUpdate, bool) {
	for _, u := range updates {
		if u.refName == "refs/heads/master" {
			return u, true
		}
	}
	return refUpdate{}, false
}

// snapshot builds the zone registry visible at a revision. Zone files
// that fail to parse are warned about and skipped; they were either
// accepted before this hook was installed or filtered out anyway.
func snapshot(ctx context.Context, env *hookEnv, rev string, whitelist, blacklist *match.FilterList) (registry.Registry, error) {
	if rev == gitrepo.ZeroRev {
		rev = gitrepo.EmptyTree
	}
	paths, err := env.repo.ListFiles(ctx, rev)
	if err != nil {
		return nil, fmt.Errorf("failed to list files at %s: %w", shortRev(rev), err)
	}
	reg, errs := registry.Build(paths, func(path string) ([]byte, error) {
		return env.repo.FileContents(ctx, rev, path)
	}, whitelist, blacklist)
	for _, err := range errs {
		env.log.Warn("%v", err)
	}
	return reg, nil
}

// regenerate renders every configured template slot. A failure in one
// slot is logged and must not block the others.
func regenerate(env *hookEnv, reg registry.Registry) (failures int) {
	now := time.Now()
	for _, slot := range env.opts.Templates {
		tmpl, err := render.Load(slot.Template)
		if err != nil {
			env.log.Error("template %s: %v", slot.Template, err)
			failures++
			continue
		}
		out := tmpl.Render(reg, render.Params{CheckoutPath: env.opts.CheckoutPath, Now: now})
		if err := render.WriteAtomic(slot.Output, []byte(out)); err != nil {
			env.log.Error("%v", err)
			failures++
			continue
		}
		env.log.Info("Generated %s (%d zones)", slot.Output, len(reg))
	}
	return failures
}

// dispatch issues reconfigure commands when the zone set changed and one
// reload per changed zone. Every command failure is independent.
func dispatch(ctx context.Context, env *hookEnv, diff registry.Diff) (failures int) {
	if diff.Empty() {
		env.log.Debug("Zone set unchanged, nothing to dispatch")
		return 0
	}
	for _, r := range diff.Renamed {
		env.log.Info("Zone renamed: %s -> %s", r.From, r.To)
	}

	d := runner.NewDispatcher(env.run)
	if diff.NeedsReconfig() {
		env.log.Info("Zone set changed (%d added, %d removed), reconfiguring",
			len(diff.Added), len(diff.Removed))
		for _, err := range d.Reconfig(ctx, env.opts.ReconfigCmds) {
			env.log.Error("%v", err)
			failures++
		}
	}
	if len(diff.Changed) > 0 {
		env.log.Info("Reloading %d changed zone(s): %s",
			len(diff.Changed), strings.Join(diff.Changed, ", "))
		for _, err := range d.Reload(ctx, env.opts.ZoneReloadCmds, diff.Changed) {
			env.log.Error("%v", err)
			failures++
		}
	}
	return failures
}

func shortRev(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}
