package native

import (
	"context"
	"strings"

	"github.com/0xb0urn3/pkgtool/internal/executor"
	"github.com/0xb0urn3/pkgtool/pkg/backend"
)

// Zypper adapts openSUSE hosts. Search matching is substring over
// names and summaries as implemented by zypper se. Zypper prints
// aligned tables with a header row; columns are resolved by header
// name rather than position, since the layout differs between
// subcommands and versions.
type Zypper struct {
	base
}

// NewZypper creates the zypper adapter.
func NewZypper(exec *executor.Executor) *Zypper {
	return &Zypper{
		base: newBase("zypper", "Zypper (openSUSE)", "zypper", true, exec),
	}
}

// Search runs zypper se with per-version rows so results carry
// versions.
func (z *Zypper) Search(ctx context.Context, query string) ([]backend.PackageInfo, error) {
	stdout, stderr, err := z.exec.Capture(ctx, z.binary, "-q", "se", "-s", query)
	if err != nil {
		// zypper exits 104 when nothing matched
		if exitCode(err) == 104 {
			return nil, nil
		}
		return nil, backend.Classify(ctx, z.tag, "search", err, stderr)
	}
	return z.parseTable(stdout, func(row zypperRow) (backend.PackageInfo, bool) {
		if row.name == "" || !row.isPackage() {
			return backend.PackageInfo{}, false
		}
		return backend.PackageInfo{
			Name:        row.name,
			Version:     row.version,
			Description: row.summary,
			Source:      z.tag,
			Installed:   strings.Contains(row.status, "i"),
		}, true
	}), nil
}

// Updates parses zypper lu, the read-only pending-update listing.
func (z *Zypper) Updates(ctx context.Context) ([]backend.PackageUpdate, error) {
	stdout, stderr, err := z.exec.Capture(ctx, z.binary, "-q", "lu")
	if err != nil {
		return nil, backend.Classify(ctx, z.tag, "updates", err, stderr)
	}

	var updates []backend.PackageUpdate
	for _, row := range z.rows(stdout) {
		if row.name == "" || row.available == "" {
			continue
		}
		updates = append(updates, backend.PackageUpdate{
			Name:      row.name,
			Current:   row.current,
			Candidate: row.available,
			Source:    z.tag,
		})
	}
	return updates, nil
}

// Installed lists installed packages with versions.
func (z *Zypper) Installed(ctx context.Context) ([]backend.PackageInfo, error) {
	stdout, stderr, err := z.exec.Capture(ctx, z.binary, "-q", "se", "-i", "-s")
	if err != nil {
		return nil, backend.Classify(ctx, z.tag, "installed", err, stderr)
	}
	return z.parseTable(stdout, func(row zypperRow) (backend.PackageInfo, bool) {
		if row.name == "" || !row.isPackage() {
			return backend.PackageInfo{}, false
		}
		return backend.PackageInfo{
			Name:      row.name,
			Version:   row.version,
			Source:    z.tag,
			Installed: true,
		}, true
	}), nil
}

// Install installs the named packages in one zypper transaction.
func (z *Zypper) Install(ctx context.Context, packages []string) error {
	args := append([]string{"-n", "in"}, packages...)
	stderr, err := z.exec.RunSudoCapture(ctx, z.binary, args...)
	if err != nil {
		if f := zypperFailure(z.tag, "install", stderr, err); f != nil {
			return f
		}
		return backend.Classify(ctx, z.tag, "install", err, stderr)
	}
	return nil
}

// Remove uninstalls the named packages in one zypper transaction.
func (z *Zypper) Remove(ctx context.Context, packages []string) error {
	args := append([]string{"-n", "rm"}, packages...)
	stderr, err := z.exec.RunSudoCapture(ctx, z.binary, args...)
	if err != nil {
		if f := zypperFailure(z.tag, "remove", stderr, err); f != nil {
			return f
		}
		return backend.Classify(ctx, z.tag, "remove", err, stderr)
	}
	return nil
}

// UpdateSystem applies every pending update. Exit codes 100-104 cover
// zypper's informational states and do not indicate failure here.
func (z *Zypper) UpdateSystem(ctx context.Context) error {
	stderr, err := z.exec.RunSudoCapture(ctx, z.binary, "-n", "up")
	if err != nil {
		if code := exitCode(err); code >= 100 && code <= 104 {
			return nil
		}
		return backend.Classify(ctx, z.tag, "update", err, stderr)
	}
	return nil
}

// zypperRow is one parsed table row, with the columns the adapter
// cares about.
type zypperRow struct {
	status    string
	name      string
	kind      string
	summary   string
	version   string
	current   string
	available string
}

// isPackage filters out pattern, patch and srcpackage rows.
func (r zypperRow) isPackage() bool {
	return r.kind == "" || r.kind == "package"
}

func (z *Zypper) parseTable(output string, conv func(zypperRow) (backend.PackageInfo, bool)) []backend.PackageInfo {
	var packages []backend.PackageInfo
	for _, row := range z.rows(output) {
		if p, ok := conv(row); ok {
			packages = append(packages, p)
		}
	}
	return packages
}

// rows parses zypper's pipe-separated table. The header row names the
// columns; separator rows of dashes are skipped.
func (z *Zypper) rows(output string) []zypperRow {
	var header []string
	var rows []zypperRow

	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, "|") {
			continue
		}
		cells := splitZypperCells(line)
		if header == nil {
			header = cells
			continue
		}
		if isZypperSeparator(line) {
			continue
		}

		var row zypperRow
		for i, cell := range cells {
			if i >= len(header) {
				break
			}
			switch strings.ToLower(header[i]) {
			case "s", "status":
				row.status = cell
			case "name":
				row.name = cell
			case "type", "kind":
				row.kind = cell
			case "summary":
				row.summary = cell
			case "version":
				row.version = cell
			case "current version":
				row.current = cell
			case "available version":
				row.available = cell
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func splitZypperCells(line string) []string {
	parts := strings.Split(line, "|")
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}

func isZypperSeparator(line string) bool {
	for _, r := range line {
		switch r {
		case '-', '+', '|', ' ':
		default:
			return false
		}
	}
	return true
}
