// Package gitrepo wraps the git plumbing commands this system needs:
// revision lookup, content retrieval, change listing, checkout and
// per-repository configuration. Git itself is the external collaborator;
// everything here shells out.
package gitrepo

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/zonetools/zonegit/internal/runner"
)

// EmptyTree is the well-known hash of git's empty tree object, used as
// the "previous" side when no prior revision exists (initial commit, new
// branch).
const EmptyTree = "4b825dc642cb6eb9a060e54bf8d69288fbee4904"

// ZeroRev is the all-zero revision git passes for created or deleted
// refs.
const ZeroRev = "0000000000000000000000000000000000000000"

// Repo runs git commands against the repository in the current working
// directory (hooks always run there, with GIT_DIR set by git).
type Repo struct {
	run *runner.Runner
}

// New builds a Repo sharing run's timeout.
func New(run *runner.Runner) *Repo {
	return &Repo{run: run}
}

func (r *Repo) git(ctx context.Context, args ...string) (runner.Result, error) {
	return r.run.Run(ctx, "git", args...)
}

// Head resolves HEAD, falling back to the empty tree before the initial
// commit so the first commit diffs against nothing.
func (r *Repo) Head(ctx context.Context) (string, error) {
	res, err := r.git(ctx, "rev-parse", "--verify", "HEAD")
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return EmptyTree, nil
	}
	return strings.TrimSpace(string(res.Stdout)), nil
}

// FileContents returns a file's content at a revision. An empty revision
// reads the staged (index) version. The error distinguishes "file absent
// at that revision" only by being non-nil; callers treat any failure as
// absence, matching how a new file has no previous content.
func (r *Repo) FileContents(ctx context.Context, revision, path string) ([]byte, error) {
	res, err := r.git(ctx, "show", fmt.Sprintf("%s:%s", revision, path))
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, fmt.Errorf("no content for %s at %q", path, revision)
	}
	return res.Stdout, nil
}

// AlteredFiles lists files changed between two states, optionally
// restricted by a git diff filter such as "AM". With an empty revision
// it compares the index against the against revision.
func (r *Repo) AlteredFiles(ctx context.Context, against, diffFilter, revision string) ([]string, error) {
	args := []string{"diff", "--name-only", "-z"}
	if diffFilter != "" {
		args = append(args, "--diff-filter="+diffFilter)
	}
	if revision != "" {
		args = append(args, against, revision)
	} else {
		args = append(args, "--cached", against)
	}
	res, err := r.git(ctx, args...)
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, fmt.Errorf("git diff failed: %s", strings.TrimSpace(string(res.Stderr)))
	}
	return splitZ(res.Stdout), nil
}

// ListFiles lists every file in the tree at a revision.
func (r *Repo) ListFiles(ctx context.Context, revision string) ([]string, error) {
	res, err := r.git(ctx, "ls-tree", "-r", "-z", "--name-only", revision)
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, fmt.Errorf("git ls-tree failed: %s", strings.TrimSpace(string(res.Stderr)))
	}
	return splitZ(res.Stdout), nil
}

// Add stages a path, used to re-stage a zone file after a serial rewrite.
func (r *Repo) Add(ctx context.Context, path string) error {
	res, err := r.git(ctx, "add", "--", path)
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("git add %s failed: %s", path, strings.TrimSpace(string(res.Stderr)))
	}
	return nil
}

// Checkout force-materializes revision into workTree, creating the
// directory if needed.
func (r *Repo) Checkout(ctx context.Context, workTree, revision string) error {
	if err := os.MkdirAll(workTree, 0o755); err != nil {
		return fmt.Errorf("failed to create checkout path: %w", err)
	}
	res, err := r.git(ctx, "--work-tree", workTree, "checkout", "-f", revision, "--", ".")
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("git checkout failed: %s", strings.TrimSpace(string(res.Stderr)))
	}
	return nil
}

// ConfigSection returns all keys of one git config section, key names
// lowercased with the section prefix stripped. A missing section is an
// empty map, not an error.
func (r *Repo) ConfigSection(ctx context.Context, section string) (map[string]string, error) {
	res, err := r.git(ctx, "config", "--get-regexp", fmt.Sprintf("^%s\\.", section))
	if err != nil {
		return nil, err
	}
	out := make(map[string]string)
	if res.ExitCode != 0 {
		// Exit 1 means no matching keys.
		return out, nil
	}
	prefix := strings.ToLower(section) + "."
	for _, line := range strings.Split(string(res.Stdout), "\n") {
		if line == "" {
			continue
		}
		key, value, _ := strings.Cut(line, " ")
		key = strings.ToLower(key)
		if strings.HasPrefix(key, prefix) {
			out[strings.TrimPrefix(key, prefix)] = value
		}
	}
	return out, nil
}

func splitZ(out []byte) []string {
	s := strings.TrimRight(string(out), "\x00")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\x00")
}
