// Package config loads the per-repository hook options from the
// "dzonegit" git config section into one immutable value that is threaded
// explicitly through every component of a hook run.
package config

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/zonetools/zonegit/internal/runner"
)

// Section is the git config section holding the hook options.
const Section = "dzonegit"

// TemplateSlot pairs one template file with its output path. Slots come
// from the bare option names plus suffixes 1-9, in that order.
type TemplateSlot struct {
	// Suffix is "" for the bare option or "1".."9".
	Suffix   string
	Template string
	Output   string
}

// Options is the full per-invocation configuration. Booleans default to
// false, everything else to empty.
type Options struct {
	IgnoreWhitespaceErrors bool
	AllowFancyNames        bool
	NoSerialUpdate         bool
	NoMissingDotCheck      bool

	CheckoutPath   string
	Templates      []TemplateSlot
	ReconfigCmds   []string
	ZoneReloadCmds []string
	BlacklistPath  string
	WhitelistPath  string

	CompileCmd     string
	CommandTimeout time.Duration

	// Warnings lists per-slot configuration problems (template without
	// output path or vice versa). They disable the affected slot only.
	Warnings []string
}

// GitConfig is the collaborator that reads a git config section.
type GitConfig interface {
	ConfigSection(ctx context.Context, section string) (map[string]string, error)
}

// suffixes orders the multi-slot option names: bare first, then 1-9.
var suffixes = []string{"", "1", "2", "3", "4", "5", "6", "7", "8", "9"}

// Load reads the dzonegit section. Unknown keys are ignored; git config
// sections are shared namespaces and other tooling may add keys.
func Load(ctx context.Context, git GitConfig) (Options, error) {
	values, err := git.ConfigSection(ctx, Section)
	if err != nil {
		return Options{}, fmt.Errorf("failed to read git config: %w", err)
	}

	opts := Options{
		IgnoreWhitespaceErrors: parseBool(values["ignorewhitespaceerrors"]),
		AllowFancyNames:        parseBool(values["allowfancynames"]),
		NoSerialUpdate:         parseBool(values["noserialupdate"]),
		NoMissingDotCheck:      parseBool(values["nomissingdotcheck"]),
		CheckoutPath:           values["checkoutpath"],
		BlacklistPath:          values["zoneblacklist"],
		WhitelistPath:          values["zonewhitelist"],
		CompileCmd:             values["compilecmd"],
		CommandTimeout:         runner.DefaultTimeout,
	}

	if v, ok := values["commandtimeout"]; ok {
		secs, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || secs <= 0 {
			opts.Warnings = append(opts.Warnings, fmt.Sprintf("invalid commandtimeout %q, using default", v))
		} else {
			opts.CommandTimeout = time.Duration(secs) * time.Second
		}
	}

	for _, sfx := range suffixes {
		tmpl, hasTmpl := values["conffiletemplate"+sfx]
		path, hasPath := values["conffilepath"+sfx]
		switch {
		case hasTmpl && hasPath:
			opts.Templates = append(opts.Templates, TemplateSlot{Suffix: sfx, Template: tmpl, Output: path})
		case hasTmpl:
			opts.Warnings = append(opts.Warnings, fmt.Sprintf("conffiletemplate%s has no matching conffilepath%s", sfx, sfx))
		case hasPath:
			opts.Warnings = append(opts.Warnings, fmt.Sprintf("conffilepath%s has no matching conffiletemplate%s", sfx, sfx))
		}
		if cmd, ok := values["reconfigcmd"+sfx]; ok && strings.TrimSpace(cmd) != "" {
			opts.ReconfigCmds = append(opts.ReconfigCmds, cmd)
		}
		if cmd, ok := values["zonereloadcmd"+sfx]; ok && strings.TrimSpace(cmd) != "" {
			opts.ZoneReloadCmds = append(opts.ZoneReloadCmds, cmd)
		}
	}

	return opts, nil
}

// parseBool accepts git's boolean spellings; anything unrecognized is
// false.
func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "yes", "on", "1":
		return true
	}
	return false
}
