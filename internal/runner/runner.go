// Package runner executes the external collaborators: the zone compiler
// and the reconfigure/reload commands. Every invocation is a blocking
// subprocess with a bounded timeout.
package runner

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds an external command when no timeout is
// configured.
const DefaultTimeout = 30 * time.Second

// Result captures a finished subprocess.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Runner runs subprocesses with a shared timeout and working directory.
type Runner struct {
	Timeout time.Duration
	// Dir is the working directory; empty means inherit.
	Dir string
}

// Run executes name with args and returns its output. A non-zero exit is
// not an error at this level; callers decide what it means. Timeouts and
// spawn failures are errors.
func (r *Runner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	return r.run(ctx, nil, name, args...)
}

// RunInput is Run with data piped to the subprocess stdin.
func (r *Runner) RunInput(ctx context.Context, input []byte, name string, args ...string) (Result, error) {
	return r.run(ctx, input, name, args...)
}

func (r *Runner) run(ctx context.Context, input []byte, name string, args ...string) (Result, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir
	if input != nil {
		cmd.Stdin = bytes.NewReader(input)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes(), ExitCode: -1}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}
	if ctx.Err() == context.DeadlineExceeded {
		return res, fmt.Errorf("%s timed out after %s", name, timeout)
	}
	if err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			return res, nil
		}
		return res, fmt.Errorf("failed to run %s: %w", name, err)
	}
	return res, nil
}

// SplitCommand turns a configured command string into argv. Plain
// whitespace splitting, no shell quoting.
func SplitCommand(command string) []string {
	return strings.Fields(command)
}
