// Package registry models the set of zones visible at one repository
// state and the difference between two such states, which drives
// reconfigure vs. reload dispatch after a push.
package registry

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/zonetools/zonegit/internal/match"
	"github.com/zonetools/zonegit/internal/zone"
)

// Entry is one zone in a registry snapshot.
type Entry struct {
	// Name is the zone name without trailing dot.
	Name string
	// Path is the repository-relative zone file path.
	Path string
	// Hash is the sha256 of the file content, used for change and
	// rename detection.
	Hash string
	// Serial is the zone's SOA serial.
	Serial uint32
}

// Registry maps zone names to entries at one repository state. Registries
// are built fresh per run and never mutated, only diffed.
type Registry map[string]Entry

// FileSource yields the content of a repository file at the snapshot's
// revision.
type FileSource func(path string) ([]byte, error)

// ZoneSuffix marks the repository files treated as zone files.
const ZoneSuffix = ".zone"

// Build constructs a registry from the zone files among paths, reading
// content through src and dropping zones excluded by the filter pair.
// A file that fails to parse is skipped and reported in errs; it cannot
// stop the rest of the snapshot.
func Build(paths []string, src FileSource, whitelist, blacklist *match.FilterList) (Registry, []error) {
	reg := make(Registry)
	var errs []error
	for _, p := range paths {
		if !strings.HasSuffix(p, ZoneSuffix) {
			continue
		}
		text, err := src(p)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p, err))
			continue
		}
		zf, err := zone.Parse(p, text)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !match.Allowed(zf.Name, whitelist, blacklist) {
			continue
		}
		sum := sha256.Sum256(text)
		reg[zf.Name] = Entry{
			Name:   zf.Name,
			Path:   p,
			Hash:   hex.EncodeToString(sum[:]),
			Serial: zf.Serial,
		}
	}
	return reg, errs
}

// Names returns the zone names in lexical order, the iteration order for
// reproducible rendering.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
