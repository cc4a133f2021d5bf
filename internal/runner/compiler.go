package runner

import (
	"context"
	"fmt"
	"strings"
)

// DefaultCompileCmd is the zone compiler used when none is configured.
const DefaultCompileCmd = "/usr/sbin/named-compilezone"

// CompileError means the external zone compiler rejected a zone. Its
// output is surfaced verbatim to the author.
type CompileError struct {
	Zone   string
	Output string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("zone %s does not compile", e.Zone)
}

// Compiler validates zone files through the external zone compiler,
// invoked as <tool> <zone-name> <file-path>. Zero exit and empty error
// output means the zone is valid.
type Compiler struct {
	run *Runner
	cmd []string
}

// NewCompiler builds a compiler around command, a whitespace-split
// command string ("" selects DefaultCompileCmd).
func NewCompiler(run *Runner, command string) *Compiler {
	if command == "" {
		command = DefaultCompileCmd
	}
	return &Compiler{run: run, cmd: SplitCommand(command)}
}

// Compile checks one zone file. A timeout counts as a compile failure:
// the zone cannot be proven valid.
func (c *Compiler) Compile(ctx context.Context, zoneName, path string) error {
	args := append(append([]string{}, c.cmd[1:]...), zoneName, path)
	res, err := c.run.Run(ctx, c.cmd[0], args...)
	if err != nil {
		return &CompileError{Zone: zoneName, Output: err.Error()}
	}
	stderr := strings.TrimSpace(string(res.Stderr))
	if res.ExitCode != 0 || stderr != "" {
		return &CompileError{Zone: zoneName, Output: stderr}
	}
	return nil
}
