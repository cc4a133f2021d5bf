// Package zone parses DNS zone files far enough to know their name and
// SOA serial, and decides how serials must evolve between revisions.
package zone

import (
	"fmt"
	"path"
	"strings"
)

// ZoneFile is an immutable snapshot of one zone file at one revision.
// A changed file yields a new ZoneFile value; nothing mutates in place.
type ZoneFile struct {
	// Path is the repository-relative path of the file.
	Path string
	// Name is the zone name, normalized without a trailing dot.
	Name string
	// Origin is the argument of the first $ORIGIN directive before the
	// SOA record, or empty if the name was derived from the file name.
	Origin string
	// Serial is the SOA serial.
	Serial uint32
	// Text is the raw file content.
	Text []byte
}

// ParseError describes a zone file that could not be parsed. Per the
// validation rules this is always fatal: a zone without a usable name
// and SOA serial can never be accepted.
type ParseError struct {
	Path    string
	Message string
	Detail  string
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Stem returns the file's base name without extension, lowercased and
// without a trailing dot. This is the zone name candidate when the file
// carries no $ORIGIN directive.
func Stem(p string) string {
	base := path.Base(p)
	if ext := path.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	return strings.TrimSuffix(strings.ToLower(base), ".")
}

// Characters ignored when comparing a zone origin against the file name,
// so that e.g. 0.168.192.in-addr.arpa may live in a file without colons
// or slashes in its name.
const nameNoise = "/_,:-+*%^&#$"

func stripNoise(s string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(nameNoise, r) {
			return -1
		}
		return r
	}, s)
}

// NameMatchesFile reports whether the detected zone name agrees with the
// file's base name. The comparison is case-insensitive and ignores a small
// set of punctuation characters on both sides. Files without an $ORIGIN
// directive trivially match, since the name came from the file itself.
func (z *ZoneFile) NameMatchesFile() bool {
	if z.Origin == "" {
		return true
	}
	return stripNoise(z.Origin) == stripNoise(Stem(z.Path))
}
