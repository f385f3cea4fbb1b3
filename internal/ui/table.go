package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/0xb0urn3/pkgtool/pkg/backend"
)

// Table wraps tabwriter for consistent styling. The header row is
// written up front so rows land under it.
type Table struct {
	writer *tabwriter.Writer
}

// NewTable creates a table writing to stdout.
func NewTable(headers []string) *Table {
	return NewTableWriter(os.Stdout, headers)
}

// NewTableWriter creates a table writing to w.
func NewTableWriter(w io.Writer, headers []string) *Table {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if len(headers) > 0 {
		row := make([]string, len(headers))
		for i, h := range headers {
			row[i] = Bold(strings.ToUpper(h))
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return &Table{writer: tw}
}

// AddRow adds a row to the table.
func (t *Table) AddRow(row ...string) {
	fmt.Fprintln(t.writer, strings.Join(row, "\t"))
}

// Render flushes the table to its writer.
func (t *Table) Render() {
	t.writer.Flush()
}

// PrintPackages prints packages as a table: source, name, version,
// description.
func PrintPackages(packages []backend.PackageInfo) {
	if len(packages) == 0 {
		MutedMsg("no packages found")
		return
	}

	table := NewTable([]string{"source", "name", "version", "description"})
	for _, pkg := range packages {
		name := PackageName.Sprint(pkg.Name)
		if pkg.Installed {
			name += " " + Installed.Sprint("[installed]")
		}
		table.AddRow(
			PackageSource.Sprint("["+pkg.Source+"]"),
			name,
			PackageVersion.Sprint(pkg.Version),
			truncate(pkg.Description, 50),
		)
	}
	table.Render()
}

// PrintUpdates prints pending updates as a table: source, name,
// current and candidate versions. Security updates are marked.
func PrintUpdates(updates []backend.PackageUpdate) {
	if len(updates) == 0 {
		MutedMsg("everything is up to date")
		return
	}

	table := NewTable([]string{"source", "name", "current", "candidate"})
	for _, up := range updates {
		name := PackageName.Sprint(up.Name)
		if up.Security {
			name += " " + Security.Sprint("[security]")
		}
		table.AddRow(
			PackageSource.Sprint("["+up.Source+"]"),
			name,
			up.Current,
			PackageVersion.Sprint(up.Candidate),
		)
	}
	table.Render()
}

// PrintFailures warns about backends that did not answer a fan-out.
// The errors already carry tag and operation context.
func PrintFailures(failures []backend.BackendFailure) {
	for _, failure := range failures {
		WarningMsg("%v", failure.Err)
	}
}

// Field prints one labeled value, indented for detail views.
func Field(label, value string) {
	fmt.Printf("  %s: %s\n", Cyan(label), value)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
