package native

import (
	"bufio"
	"context"
	"strings"

	"github.com/0xb0urn3/pkgtool/internal/executor"
	"github.com/0xb0urn3/pkgtool/pkg/backend"
)

// DNF adapts Fedora and RHEL hosts. Search matching is substring over
// names and summaries as implemented by dnf search. Update detection
// relies on check-update's exit-code convention: 0 means current, 100
// means updates are pending.
type DNF struct {
	base
}

// NewDNF creates the dnf adapter.
func NewDNF(exec *executor.Executor) *DNF {
	return &DNF{
		base: newBase("dnf", "DNF (Fedora/RHEL)", "dnf", true, exec),
	}
}

// Search runs dnf search and parses its "name.arch : summary" lines.
func (d *DNF) Search(ctx context.Context, query string) ([]backend.PackageInfo, error) {
	stdout, stderr, err := d.exec.Capture(ctx, d.binary, "-q", "search", query)
	if err != nil {
		if exitCode(err) == 1 && strings.Contains(stderr, "No matches found") {
			return nil, nil
		}
		return nil, backend.Classify(ctx, d.tag, "search", err, stderr)
	}

	var packages []backend.PackageInfo
	scanner := bufio.NewScanner(strings.NewReader(stdout))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "=") || strings.HasPrefix(line, "Last metadata") {
			continue
		}
		parts := strings.SplitN(line, " : ", 2)
		if len(parts) < 2 {
			continue
		}
		packages = append(packages, backend.PackageInfo{
			Name:        stripArch(strings.TrimSpace(parts[0])),
			Description: strings.TrimSpace(parts[1]),
			Source:      d.tag,
		})
	}
	return packages, nil
}

// Updates runs dnf check-update and annotates the result with the
// security-update list when dnf can provide one.
func (d *DNF) Updates(ctx context.Context) ([]backend.PackageUpdate, error) {
	stdout, stderr, err := d.exec.Capture(ctx, d.binary, "-q", "check-update")
	switch {
	case err == nil:
		return nil, nil // exit 0: everything current
	case exitCode(err) == 100:
		// exit 100: updates available, listed on stdout
	default:
		return nil, backend.Classify(ctx, d.tag, "updates", err, stderr)
	}

	return d.parseCheckUpdate(stdout, d.securityNames(ctx)), nil
}

// parseCheckUpdate reads "name.arch  3.0.2-1.fc40  updates" rows. The
// Obsoleting Packages section check-update appends lists replacement
// pairs, not plain upgrades, so parsing stops there.
func (d *DNF) parseCheckUpdate(output string, security map[string]bool) []backend.PackageUpdate {
	var updates []backend.PackageUpdate
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "Obsoleting") {
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		name := stripArch(fields[0])
		updates = append(updates, backend.PackageUpdate{
			Name:      name,
			Candidate: fields[1],
			Source:    d.tag,
			Security:  security[name],
		})
	}
	return updates
}

// securityNames asks dnf updateinfo which pending updates are security
// advisories. Best effort: on any failure the set is simply empty.
func (d *DNF) securityNames(ctx context.Context) map[string]bool {
	stdout, _, err := d.exec.Capture(ctx, d.binary, "-q", "updateinfo", "list", "security")
	if err != nil {
		return nil
	}
	return parseAdvisories(stdout)
}

// parseAdvisories reads updateinfo rows of the form
//
//	FEDORA-2024-1a2b3c  Important/Sec.  openssl-3.0.2-1.fc40.x86_64
//
// and collects the package names named by the trailing NEVRA column.
func parseAdvisories(output string) map[string]bool {
	names := make(map[string]bool)
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			continue
		}
		if name := nevraName(fields[len(fields)-1]); name != "" {
			names[name] = true
		}
	}
	return names
}

// Installed parses dnf list --installed output.
func (d *DNF) Installed(ctx context.Context) ([]backend.PackageInfo, error) {
	stdout, stderr, err := d.exec.Capture(ctx, d.binary, "-q", "list", "--installed")
	if err != nil {
		return nil, backend.Classify(ctx, d.tag, "installed", err, stderr)
	}

	var packages []backend.PackageInfo
	scanner := bufio.NewScanner(strings.NewReader(stdout))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "Installed Packages") {
			continue
		}
		// name.arch  version-release  @repo
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		packages = append(packages, backend.PackageInfo{
			Name:      stripArch(fields[0]),
			Version:   fields[1],
			Source:    d.tag,
			Installed: true,
		})
	}
	return packages, nil
}

// Install installs the named packages in one dnf transaction.
func (d *DNF) Install(ctx context.Context, packages []string) error {
	args := append([]string{"install", "-y"}, packages...)
	stderr, err := d.exec.RunSudoCapture(ctx, d.binary, args...)
	if err != nil {
		if f := dnfFailure(d.tag, "install", stderr, err); f != nil {
			return f
		}
		return backend.Classify(ctx, d.tag, "install", err, stderr)
	}
	return nil
}

// Remove uninstalls the named packages in one dnf transaction.
func (d *DNF) Remove(ctx context.Context, packages []string) error {
	args := append([]string{"remove", "-y"}, packages...)
	stderr, err := d.exec.RunSudoCapture(ctx, d.binary, args...)
	if err != nil {
		if f := dnfFailure(d.tag, "remove", stderr, err); f != nil {
			return f
		}
		return backend.Classify(ctx, d.tag, "remove", err, stderr)
	}
	return nil
}

// UpdateSystem applies every pending upgrade. dnf upgrade exits zero
// with "Nothing to do" when the host is current.
func (d *DNF) UpdateSystem(ctx context.Context) error {
	stderr, err := d.exec.RunSudoCapture(ctx, d.binary, "upgrade", "-y")
	if err != nil {
		if f := dnfFailure(d.tag, "update", stderr, err); f != nil {
			return f
		}
		return backend.Classify(ctx, d.tag, "update", err, stderr)
	}
	return nil
}

// stripArch removes the trailing ".arch" qualifier from a dnf package
// column ("vim-enhanced.x86_64" -> "vim-enhanced").
func stripArch(s string) string {
	if idx := strings.LastIndex(s, "."); idx > 0 {
		return s[:idx]
	}
	return s
}

// nevraName extracts the package name from a full NEVRA string
// ("openssl-3.0.2-1.fc40.x86_64" -> "openssl"): drop the arch, then
// the release and version segments.
func nevraName(nevra string) string {
	s := stripArch(nevra)
	for i := 0; i < 2; i++ {
		idx := strings.LastIndex(s, "-")
		if idx <= 0 {
			return ""
		}
		s = s[:idx]
	}
	return s
}
