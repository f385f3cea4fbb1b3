// Package security aggregates pending security updates across
// backends into the report behind the audit command.
package security

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/0xb0urn3/pkgtool/pkg/backend"
)

// Summary is one backend's share of the report.
type Summary struct {
	Tag      string
	Total    int      // pending updates
	Security int      // flagged as security updates
	Packages []string // names of the security updates
}

// Report groups pending updates by backend, in the order the tags were
// given. Backends that failed during the update fan-out appear in
// Failures so the report never silently understates exposure.
type Report struct {
	Backends []Summary
	Failures []backend.BackendFailure
}

// Compile builds a report from an update fan-out result. tags fixes
// the row order; updates from a source outside tags get rows appended
// in first-seen order.
func Compile(tags []string, updates []backend.PackageUpdate, failures []backend.BackendFailure) Report {
	index := make(map[string]int, len(tags))
	report := Report{Failures: failures}

	for _, tag := range tags {
		index[tag] = len(report.Backends)
		report.Backends = append(report.Backends, Summary{Tag: tag})
	}

	for _, u := range updates {
		i, ok := index[u.Source]
		if !ok {
			i = len(report.Backends)
			index[u.Source] = i
			report.Backends = append(report.Backends, Summary{Tag: u.Source})
		}
		report.Backends[i].Total++
		if u.Security {
			report.Backends[i].Security++
			report.Backends[i].Packages = append(report.Backends[i].Packages, u.Name)
		}
	}

	return report
}

// TotalSecurity counts security updates across every backend.
func (r Report) TotalSecurity() int {
	n := 0
	for _, s := range r.Backends {
		n += s.Security
	}
	return n
}

// Headline is the one-line verdict shown above the table.
func (r Report) Headline() string {
	n := r.TotalSecurity()
	switch n {
	case 0:
		return "no pending security updates"
	case 1:
		return "1 pending security update"
	default:
		return fmt.Sprintf("%d pending security updates", n)
	}
}

// Render returns the report as an aligned table. Coloring is left to
// the caller so the output stays testable.
func (r Report) Render() string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, "BACKEND\tUPDATES\tSECURITY\tPACKAGES")
	for _, s := range r.Backends {
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", s.Tag, s.Total, s.Security, strings.Join(s.Packages, ", "))
	}
	w.Flush()

	for _, f := range r.Failures {
		fmt.Fprintf(&b, "warning: %s could not be checked: %v\n", f.Tag, f.Err)
	}
	return b.String()
}
