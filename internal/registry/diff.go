package registry

import "sort"

// Rename pairs a removed zone with an added zone carrying byte-identical
// content. Purely informational: dispatch still treats the pair as a
// remove plus an add.
type Rename struct {
	From string
	To   string
}

// Diff classifies the zones that differ between two registry snapshots.
type Diff struct {
	// Added and Removed trigger the reconfigure commands when non-empty.
	Added   []string
	Removed []string
	// Changed zones each trigger their own reload command.
	Changed []string
	// Renamed is best-effort rename detection over Added/Removed.
	Renamed []Rename
}

// Empty reports whether nothing changed between the snapshots.
func (d Diff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// NeedsReconfig reports whether the zone set itself changed, requiring
// the server to re-read its zone list.
func (d Diff) NeedsReconfig() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0
}

// Compare diffs two registry snapshots. All result slices are sorted.
func Compare(prev, curr Registry) Diff {
	var d Diff
	for name, entry := range curr {
		old, ok := prev[name]
		switch {
		case !ok:
			d.Added = append(d.Added, name)
		case old.Hash != entry.Hash:
			d.Changed = append(d.Changed, name)
		}
	}
	for name := range prev {
		if _, ok := curr[name]; !ok {
			d.Removed = append(d.Removed, name)
		}
	}
	sort.Strings(d.Added)
	sort.Strings(d.Removed)
	sort.Strings(d.Changed)

	// Rename detection: a removed zone whose content reappears verbatim
	// under an added name.
	addedByHash := make(map[string]string)
	for _, name := range d.Added {
		addedByHash[curr[name].Hash] = name
	}
	for _, name := range d.Removed {
		if to, ok := addedByHash[prev[name].Hash]; ok {
			d.Renamed = append(d.Renamed, Rename{From: name, To: to})
		}
	}
	return d
}
