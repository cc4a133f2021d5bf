package runner

import (
	"context"
	"fmt"
	"strings"
)

// DispatchError means a reconfigure or reload command failed or timed
// out. It is reported but never unwinds an already-completed checkout.
type DispatchError struct {
	Command string
	Zone    string
	Err     error
	Output  string
}

func (e *DispatchError) Error() string {
	var b strings.Builder
	if e.Zone != "" {
		fmt.Fprintf(&b, "reload of zone %s failed: %s: %v", e.Zone, e.Command, e.Err)
	} else {
		fmt.Fprintf(&b, "reconfigure failed: %s: %v", e.Command, e.Err)
	}
	if e.Output != "" {
		fmt.Fprintf(&b, ": %s", e.Output)
	}
	return b.String()
}

func (e *DispatchError) Unwrap() error { return e.Err }

// Dispatcher issues the post-acceptance reconfigure and reload commands.
// Every invocation is independent: one failure never blocks the rest.
type Dispatcher struct {
	run *Runner
}

// NewDispatcher builds a dispatcher sharing run's timeout.
func NewDispatcher(run *Runner) *Dispatcher {
	return &Dispatcher{run: run}
}

// Reconfig runs every configured reconfigure command once.
func (d *Dispatcher) Reconfig(ctx context.Context, commands []string) []error {
	var errs []error
	for _, command := range commands {
		if err := d.invoke(ctx, command, ""); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// Reload runs every configured reload command once per changed zone, the
// zone name appended as the final argument.
func (d *Dispatcher) Reload(ctx context.Context, commands []string, zones []string) []error {
	var errs []error
	for _, zoneName := range zones {
		for _, command := range commands {
			if err := d.invoke(ctx, command, zoneName); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errs
}

func (d *Dispatcher) invoke(ctx context.Context, command, zoneName string) error {
	argv := SplitCommand(command)
	if len(argv) == 0 {
		return nil
	}
	if zoneName != "" {
		argv = append(argv, zoneName)
	}
	res, err := d.run.Run(ctx, argv[0], argv[1:]...)
	if err == nil && res.ExitCode != 0 {
		err = fmt.Errorf("exit status %d", res.ExitCode)
	}
	if err != nil {
		return &DispatchError{
			Command: command,
			Zone:    zoneName,
			Err:     err,
			Output:  strings.TrimSpace(string(res.Stderr)),
		}
	}
	return nil
}
