// Package match resolves zone names against leftmost-label wildcard
// patterns. The rules are deliberately not glob semantics: a pattern only
// ever substitutes or strips whole leftmost labels, and resolution order
// decides ties, so a dedicated matcher keeps the behavior exact.
package match

import "strings"

// Candidates returns the patterns that would match name, most specific
// first: the exact name, then the name with the leftmost label replaced
// by "*", then with one more label stripped and re-wildcarded, down to
// the bare "*" which matches everything.
//
// For ns1.example.com: ns1.example.com, *.example.com, *.com, *.
func Candidates(name string) []string {
	labels := strings.Split(name, ".")
	out := make([]string, 0, len(labels)+1)
	out = append(out, name)
	for i := 1; i < len(labels); i++ {
		out = append(out, "*."+strings.Join(labels[i:], "."))
	}
	out = append(out, "*")
	return out
}

// Lookup resolves name against a pattern map. The first candidate present
// in the map wins. found is false when no pattern matches at all, letting
// the caller fall back to its own default.
func Lookup(name string, patterns map[string]string) (value string, found bool) {
	for _, c := range Candidates(name) {
		if v, ok := patterns[c]; ok {
			return v, true
		}
	}
	return "", false
}
