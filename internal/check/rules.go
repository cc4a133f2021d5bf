package check

import (
	"bytes"
	"fmt"
	"strings"
)

// isBinary is git's heuristic: any NUL byte means not a text file.
func isBinary(content []byte) bool {
	return bytes.IndexByte(content, 0) >= 0
}

// whitespaceViolations flags trailing whitespace and space-before-tab
// indentation, the same classes `git diff --check` complains about.
func whitespaceViolations(path string, content []byte) []Violation {
	if isBinary(content) {
		return nil
	}
	var out []Violation
	for i, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		if trimmed := strings.TrimRight(line, " \t"); trimmed != line {
			out = append(out, Violation{
				Path:    path,
				Message: fmt.Sprintf("trailing whitespace (line %d)", i+1),
			})
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		if strings.Contains(indent, " \t") {
			out = append(out, Violation{
				Path:    path,
				Message: fmt.Sprintf("space before tab in indent (line %d)", i+1),
			})
		}
	}
	return out
}

// ptrViolations flags PTR records whose target looks like a hostname but
// lacks the trailing dot. PTR targets are almost never meant to be
// relative, so a missing dot is nearly always a silent mistake.
func ptrViolations(path string, content []byte) []Violation {
	var out []Violation
	for i, line := range strings.Split(string(content), "\n") {
		if idx := strings.IndexByte(line, ';'); idx >= 0 {
			line = line[:idx]
		}
		fields := strings.Fields(line)
		target := ptrTarget(fields)
		if target == "" {
			continue
		}
		if looksLikeHostname(target) && !strings.HasSuffix(target, ".") {
			out = append(out, Violation{
				Path:    path,
				Message: fmt.Sprintf("PTR target %q lacks a trailing dot (line %d)", target, i+1),
			})
		}
	}
	return out
}

// ptrTarget returns the record data following a PTR type field, or "".
func ptrTarget(fields []string) string {
	for i, f := range fields {
		if strings.EqualFold(f, "PTR") && i+1 < len(fields) {
			return fields[len(fields)-1]
		}
	}
	return ""
}

func looksLikeHostname(s string) bool {
	if s == "@" {
		return false
	}
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}
