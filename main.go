package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/zonetools/zonegit/cmd"
)

// Git invokes hooks by name, so installation is usually a symlink named
// after the hook pointing at this binary. Map the invocation name to the
// matching subcommand before cobra sees the arguments.
var hookNames = map[string]string{
	"pre-commit":   "pre-commit",
	"update":       "update",
	"pre-receive":  "pre-receive",
	"post-receive": "post-receive",
}

func main() {
	if sub, ok := hookNames[filepath.Base(os.Args[0])]; ok {
		os.Args = append([]string{os.Args[0], sub}, os.Args[1:]...)
	}
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
