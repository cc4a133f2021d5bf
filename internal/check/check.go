// Package check implements the validation pipeline that decides whether
// a proposed change set is acceptable. All rules run for every file and
// every problem is collected, so the author sees the full list in one
// round trip.
package check

import (
	"fmt"
	"strings"
)

// Violation is one validation problem. Detail optionally carries the
// verbatim output of an external checker.
type Violation struct {
	Path    string
	Message string
	Detail  string
}

func (v Violation) String() string {
	if v.Path == "" {
		return v.Message
	}
	return v.Path + ": " + v.Message
}

// Rewrite is a replacement content computed by the serial policy, to be
// staged by the caller. The original buffer is never mutated.
type Rewrite struct {
	Path    string
	Content []byte
	Serial  uint32
}

// Result is the outcome of one validation run.
type Result struct {
	Violations []Violation
	Rewrites   []Rewrite
}

// Accepted reports whether the change set passed every rule.
func (r *Result) Accepted() bool {
	return len(r.Violations) == 0
}

// Err returns an aggregated error listing every violation, or nil.
func (r *Result) Err() error {
	if r.Accepted() {
		return nil
	}
	return &AggregateError{Violations: r.Violations}
}

// AggregateError concatenates all collected violations into one
// human-readable message.
type AggregateError struct {
	Violations []Violation
}

func (e *AggregateError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "validation failed with %d problem(s):", len(e.Violations))
	for _, v := range e.Violations {
		fmt.Fprintf(&b, "\n  - %s", v.String())
		if v.Detail != "" {
			for _, line := range strings.Split(strings.TrimRight(v.Detail, "\n"), "\n") {
				fmt.Fprintf(&b, "\n      %s", line)
			}
		}
	}
	return b.String()
}
