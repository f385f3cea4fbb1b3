package snapshot

import (
	"fmt"
	"sort"
	"strings"
)

// ChangeType classifies how a package differs between two snapshots.
type ChangeType string

const (
	ChangeAdded      ChangeType = "added"
	ChangeRemoved    ChangeType = "removed"
	ChangeUpgraded   ChangeType = "upgraded"
	ChangeDowngraded ChangeType = "downgraded"
)

// typeOrder fixes the rendering order of change groups.
var typeOrder = map[ChangeType]int{
	ChangeAdded:      0,
	ChangeRemoved:    1,
	ChangeUpgraded:   2,
	ChangeDowngraded: 3,
}

// Change is a single package difference between two snapshots.
type Change struct {
	Type       ChangeType `json:"type"`
	Package    string     `json:"package"`
	Source     string     `json:"source"`
	OldVersion string     `json:"old_version,omitempty"`
	NewVersion string     `json:"new_version,omitempty"`
}

// String renders the change with a leading marker for list output.
func (c Change) String() string {
	switch c.Type {
	case ChangeAdded:
		return fmt.Sprintf("+ %s (%s) [%s]", c.Package, c.NewVersion, c.Source)
	case ChangeRemoved:
		return fmt.Sprintf("- %s (%s) [%s]", c.Package, c.OldVersion, c.Source)
	case ChangeUpgraded:
		return fmt.Sprintf("^ %s: %s -> %s [%s]", c.Package, c.OldVersion, c.NewVersion, c.Source)
	case ChangeDowngraded:
		return fmt.Sprintf("v %s: %s -> %s [%s]", c.Package, c.OldVersion, c.NewVersion, c.Source)
	default:
		return fmt.Sprintf("? %s [%s]", c.Package, c.Source)
	}
}

// Diff is the set of package changes between two snapshots.
type Diff struct {
	From    string   `json:"from"`
	To      string   `json:"to"`
	Changes []Change `json:"changes"`
}

// IsEmpty reports whether the snapshots matched exactly.
func (d *Diff) IsEmpty() bool {
	return len(d.Changes) == 0
}

// ByType returns the changes of one classification, in diff order.
func (d *Diff) ByType(t ChangeType) []Change {
	var matched []Change
	for _, c := range d.Changes {
		if c.Type == t {
			matched = append(matched, c)
		}
	}
	return matched
}

// Summary returns a one-line count of the diff, e.g.
// "+2 added, -1 removed, ^3 upgraded".
func (d *Diff) Summary() string {
	if d.IsEmpty() {
		return "no changes"
	}
	counts := make(map[ChangeType]int)
	for _, c := range d.Changes {
		counts[c.Type]++
	}
	var parts []string
	if n := counts[ChangeAdded]; n > 0 {
		parts = append(parts, fmt.Sprintf("+%d added", n))
	}
	if n := counts[ChangeRemoved]; n > 0 {
		parts = append(parts, fmt.Sprintf("-%d removed", n))
	}
	if n := counts[ChangeUpgraded]; n > 0 {
		parts = append(parts, fmt.Sprintf("^%d upgraded", n))
	}
	if n := counts[ChangeDowngraded]; n > 0 {
		parts = append(parts, fmt.Sprintf("v%d downgraded", n))
	}
	return strings.Join(parts, ", ")
}

// stateKey identifies a package across snapshots. The same name under
// two backends counts as two packages.
type stateKey struct {
	name   string
	source string
}

// Compare diffs two snapshots, from older to newer. A package present
// in both with differing version strings is labeled upgraded or
// downgraded by plain string ordering; version strings are otherwise
// opaque and never parsed.
func Compare(from, to *Snapshot) *Diff {
	diff := &Diff{From: from.ID, To: to.ID, Changes: []Change{}}

	fromMap := make(map[stateKey]PackageState, len(from.Packages))
	for _, pkg := range from.Packages {
		fromMap[stateKey{pkg.Name, pkg.Source}] = pkg
	}
	toMap := make(map[stateKey]PackageState, len(to.Packages))
	for _, pkg := range to.Packages {
		toMap[stateKey{pkg.Name, pkg.Source}] = pkg
	}

	for key, toPkg := range toMap {
		fromPkg, present := fromMap[key]
		switch {
		case !present:
			diff.Changes = append(diff.Changes, Change{
				Type:       ChangeAdded,
				Package:    toPkg.Name,
				Source:     toPkg.Source,
				NewVersion: toPkg.Version,
			})
		case fromPkg.Version != toPkg.Version:
			changeType := ChangeUpgraded
			if toPkg.Version < fromPkg.Version {
				changeType = ChangeDowngraded
			}
			diff.Changes = append(diff.Changes, Change{
				Type:       changeType,
				Package:    toPkg.Name,
				Source:     toPkg.Source,
				OldVersion: fromPkg.Version,
				NewVersion: toPkg.Version,
			})
		}
	}
	for key, fromPkg := range fromMap {
		if _, present := toMap[key]; !present {
			diff.Changes = append(diff.Changes, Change{
				Type:       ChangeRemoved,
				Package:    fromPkg.Name,
				Source:     fromPkg.Source,
				OldVersion: fromPkg.Version,
			})
		}
	}

	sort.Slice(diff.Changes, func(i, j int) bool {
		a, b := diff.Changes[i], diff.Changes[j]
		if a.Type != b.Type {
			return typeOrder[a.Type] < typeOrder[b.Type]
		}
		if a.Package != b.Package {
			return a.Package < b.Package
		}
		return a.Source < b.Source
	})
	return diff
}
