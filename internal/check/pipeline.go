package check

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zonetools/zonegit/internal/config"
	"github.com/zonetools/zonegit/internal/gitrepo"
	"github.com/zonetools/zonegit/internal/logger"
	"github.com/zonetools/zonegit/internal/registry"
	"github.com/zonetools/zonegit/internal/runner"
	"github.com/zonetools/zonegit/internal/zone"
)

// GitState locates the "previous" and "new" content of a change set.
type GitState interface {
	Head(ctx context.Context) (string, error)
	FileContents(ctx context.Context, revision, path string) ([]byte, error)
	AlteredFiles(ctx context.Context, against, diffFilter, revision string) ([]string, error)
}

// Compiler is the external zone compiler collaborator.
type Compiler interface {
	Compile(ctx context.Context, zoneName, path string) error
}

// Mode selects how a would-be serial rewrite is handled: local runs can
// rewrite the working copy, remote runs cannot rewrite pushed history.
type Mode int

// Validation modes.
const (
	ModeLocal Mode = iota
	ModeRemote
)

// Pipeline runs the per-zone-file rule set over a change set.
type Pipeline struct {
	git      GitState
	compiler Compiler
	opts     config.Options
	log      *logger.Logger
	policy   zone.Policy
}

// New creates a pipeline. The zone.Policy clock defaults to the wall
// clock; tests override it through SetPolicy.
func New(git GitState, compiler Compiler, opts config.Options, log *logger.Logger) *Pipeline {
	return &Pipeline{git: git, compiler: compiler, opts: opts, log: log}
}

// SetPolicy replaces the serial policy, for tests that pin the clock.
func (p *Pipeline) SetPolicy(policy zone.Policy) {
	p.policy = policy
}

// CheckLocal validates the staged change set against HEAD (pre-commit).
func (p *Pipeline) CheckLocal(ctx context.Context) (*Result, error) {
	head, err := p.git.Head(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	return p.checkFiles(ctx, head, "", ModeLocal)
}

// CheckRef validates one pushed ref update (update / pre-receive). The
// rules compare the final tree against the ref's prior position; none of
// them needs per-intermediate-commit evaluation.
func (p *Pipeline) CheckRef(ctx context.Context, oldRev, newRev string) (*Result, error) {
	against := oldRev
	if against == gitrepo.ZeroRev || against == "" {
		against = gitrepo.EmptyTree
	}
	return p.checkFiles(ctx, against, newRev, ModeRemote)
}

func (p *Pipeline) checkFiles(ctx context.Context, against, revision string, mode Mode) (*Result, error) {
	files, err := p.git.AlteredFiles(ctx, against, "AM", revision)
	if err != nil {
		return nil, fmt.Errorf("failed to list changed files: %w", err)
	}

	result := &Result{}
	for _, f := range files {
		content, err := p.git.FileContents(ctx, revision, f)
		if err != nil {
			result.Violations = append(result.Violations, Violation{
				Path:    f,
				Message: "cannot read new content",
				Detail:  err.Error(),
			})
			continue
		}

		if !p.opts.IgnoreWhitespaceErrors {
			result.Violations = append(result.Violations, whitespaceViolations(f, content)...)
		}

		if !strings.HasSuffix(f, registry.ZoneSuffix) {
			continue
		}
		p.log.Checking(f)
		p.checkZoneFile(ctx, f, content, against, mode, result)
	}
	return result, nil
}

// checkZoneFile runs the zone rules for one file, appending every
// violation it finds. The rules after a failed parse are skipped: without
// a name and serial there is nothing to check them against.
func (p *Pipeline) checkZoneFile(ctx context.Context, f string, content []byte, against string, mode Mode, result *Result) {
	zf, err := zone.Parse(f, content)
	if err != nil {
		result.Violations = append(result.Violations, parseViolation(f, err))
		return
	}

	if !p.opts.AllowFancyNames && !zf.NameMatchesFile() {
		result.Violations = append(result.Violations, Violation{
			Path:    f,
			Message: fmt.Sprintf("zone origin %q differs from the file name", zf.Origin),
		})
	}

	if !p.opts.NoMissingDotCheck {
		result.Violations = append(result.Violations, ptrViolations(f, content)...)
	}

	if err := p.compileZone(ctx, zf); err != nil {
		result.Violations = append(result.Violations, Violation{
			Path:    f,
			Message: "zone does not compile",
			Detail:  compileDetail(err),
		})
		// A zone that does not compile is rejected regardless of its
		// serial; skip the policy.
		return
	}

	p.checkSerial(ctx, f, zf, against, mode, result)
}

func (p *Pipeline) checkSerial(ctx context.Context, f string, zf *zone.ZoneFile, against string, mode Mode, result *Result) {
	var prev *zone.ZoneFile
	if prevContent, err := p.git.FileContents(ctx, against, f); err == nil {
		if parsed, err := zone.Parse(f, prevContent); err == nil {
			prev = parsed
		}
		// A previous revision that does not parse is treated like a new
		// file: there is no serial to compare against.
	}

	decision, err := p.policy.Evaluate(prev, zf)
	if err != nil {
		result.Violations = append(result.Violations, Violation{Path: f, Message: err.Error()})
		return
	}
	if !decision.Rewrite {
		return
	}

	switch {
	case mode == ModeRemote:
		result.Violations = append(result.Violations, Violation{
			Path: f,
			Message: fmt.Sprintf(
				"zone contents changed without increasing the serial (%d); increase it past %d and push again",
				zf.Serial, prev.Serial),
		})
	case p.opts.NoSerialUpdate:
		result.Violations = append(result.Violations, Violation{
			Path: f,
			Message: fmt.Sprintf(
				"zone contents changed without increasing the serial (%d); bump it manually",
				zf.Serial),
		})
	default:
		rewritten, ok := zone.ReplaceSerial(zf.Text, decision.Serial)
		if !ok {
			result.Violations = append(result.Violations, Violation{
				Path:    f,
				Message: "cannot locate the SOA serial field to update it",
			})
			return
		}
		p.log.Debug("Updating serial of %s: %d -> %d", f, zf.Serial, decision.Serial)
		result.Rewrites = append(result.Rewrites, Rewrite{Path: f, Content: rewritten, Serial: decision.Serial})
	}
}

// compileZone materializes the content into a temporary file and hands
// it to the external compiler, which expects a path.
func (p *Pipeline) compileZone(ctx context.Context, zf *zone.ZoneFile) error {
	if p.compiler == nil {
		return nil
	}
	tmp, err := os.CreateTemp("", "zonegit-*"+registry.ZoneSuffix)
	if err != nil {
		return fmt.Errorf("failed to stage zone for compilation: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(zf.Text); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to stage zone for compilation: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to stage zone for compilation: %w", err)
	}
	return p.compiler.Compile(ctx, zf.Name, tmp.Name())
}

func parseViolation(path string, err error) Violation {
	if pe, ok := err.(*zone.ParseError); ok {
		return Violation{Path: path, Message: pe.Message, Detail: pe.Detail}
	}
	return Violation{Path: path, Message: err.Error()}
}

func compileDetail(err error) string {
	var ce *runner.CompileError
	if errors.As(err, &ce) && ce.Output != "" {
		return ce.Output
	}
	return err.Error()
}
