package match

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// FilterList is an ordered set of zone-name patterns loaded from a flat
// file, used as a whitelist or blacklist. Membership is answered through
// the same leftmost-label resolution as template variables.
type FilterList struct {
	patterns map[string]struct{}
}

// LoadFilterList reads one pattern per line. Blank lines and lines
// starting with # are ignored. An empty path yields an empty list.
func LoadFilterList(path string) (*FilterList, error) {
	l := &FilterList{patterns: make(map[string]struct{})}
	if path == "" {
		return l, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read filter list: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		l.patterns[strings.TrimSuffix(strings.ToLower(line), ".")] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read filter list: %w", err)
	}
	return l, nil
}

// NewFilterList builds a list from literal patterns, for tests and
// programmatic use.
func NewFilterList(patterns ...string) *FilterList {
	l := &FilterList{patterns: make(map[string]struct{}, len(patterns))}
	for _, p := range patterns {
		l.patterns[strings.TrimSuffix(strings.ToLower(p), ".")] = struct{}{}
	}
	return l
}

// Empty reports whether the list carries no patterns.
func (l *FilterList) Empty() bool {
	return l == nil || len(l.patterns) == 0
}

// Match reports whether name is matched by any pattern in the list.
func (l *FilterList) Match(name string) bool {
	if l.Empty() {
		return false
	}
	for _, c := range Candidates(name) {
		if _, ok := l.patterns[c]; ok {
			return true
		}
	}
	return false
}

// Allowed applies a whitelist/blacklist pair: a blacklisted name is
// always dropped, even when the whitelist would match it too; otherwise
// a non-empty whitelist must match.
func Allowed(name string, whitelist, blacklist *FilterList) bool {
	if blacklist.Match(name) {
		return false
	}
	if whitelist.Empty() {
		return true
	}
	return whitelist.Match(name)
}
