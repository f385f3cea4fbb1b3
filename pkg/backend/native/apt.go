package native

import (
	"bufio"
	"context"
	"strings"

	"github.com/0xb0urn3/pkgtool/internal/executor"
	"github.com/0xb0urn3/pkgtool/pkg/backend"
)

// APT adapts Debian and Ubuntu hosts. Search matching is substring
// over package names and descriptions, as implemented by apt-cache.
// Mutations run through apt-get, whose CLI is stable for scripting.
type APT struct {
	base
}

// NewAPT creates the apt adapter.
func NewAPT(exec *executor.Executor) *APT {
	return &APT{
		base: newBase("apt", "APT (Debian/Ubuntu)", "apt-get", true, exec),
	}
}

// Search runs apt-cache search, which matches the query as a substring
// of names and descriptions across the local package index.
func (a *APT) Search(ctx context.Context, query string) ([]backend.PackageInfo, error) {
	stdout, stderr, err := a.exec.Capture(ctx, "apt-cache", "search", query)
	if err != nil {
		return nil, backend.Classify(ctx, a.tag, "search", err, stderr)
	}

	var packages []backend.PackageInfo
	scanner := bufio.NewScanner(strings.NewReader(stdout))
	for scanner.Scan() {
		parts := strings.SplitN(scanner.Text(), " - ", 2)
		if len(parts) < 2 {
			continue
		}
		packages = append(packages, backend.PackageInfo{
			Name:        strings.TrimSpace(parts[0]),
			Description: strings.TrimSpace(parts[1]),
			Source:      a.tag,
		})
	}
	return packages, nil
}

// Updates parses apt list --upgradable. Entries whose candidate comes
// from a *-security suite are flagged as security updates.
func (a *APT) Updates(ctx context.Context) ([]backend.PackageUpdate, error) {
	// apt warns about its unstable CLI on stderr; stdout is what we want.
	stdout, stderr, err := a.exec.Capture(ctx, "apt", "list", "--upgradable")
	if err != nil {
		return nil, backend.Classify(ctx, a.tag, "updates", err, stderr)
	}
	return a.parseUpgradable(stdout), nil
}

// parseUpgradable reads lines of the form
//
//	vim/noble-updates 2:9.1.0016-1ubuntu7.8 amd64 [upgradable from: 2:9.1.0016-1ubuntu7.5]
func (a *APT) parseUpgradable(output string) []backend.PackageUpdate {
	var updates []backend.PackageUpdate
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "Listing") || strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		nameSuite := strings.SplitN(fields[0], "/", 2)
		if len(nameSuite) < 2 {
			continue
		}

		current := ""
		if idx := strings.Index(line, "[upgradable from: "); idx >= 0 {
			current = strings.TrimSuffix(line[idx+len("[upgradable from: "):], "]")
		}

		updates = append(updates, backend.PackageUpdate{
			Name:      nameSuite[0],
			Current:   current,
			Candidate: fields[1],
			Source:    a.tag,
			Security:  strings.Contains(nameSuite[1], "-security"),
		})
	}
	return updates
}

// Installed lists packages via dpkg-query, filtering to entries whose
// status is installed.
func (a *APT) Installed(ctx context.Context) ([]backend.PackageInfo, error) {
	stdout, stderr, err := a.exec.Capture(ctx, "dpkg-query", "-W", "-f=${Package}\t${Version}\t${Status}\n")
	if err != nil {
		return nil, backend.Classify(ctx, a.tag, "installed", err, stderr)
	}

	var packages []backend.PackageInfo
	scanner := bufio.NewScanner(strings.NewReader(stdout))
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) < 3 || !strings.Contains(fields[2], "installed") {
			continue
		}
		packages = append(packages, backend.PackageInfo{
			Name:      fields[0],
			Version:   fields[1],
			Source:    a.tag,
			Installed: true,
		})
	}
	return packages, nil
}

// Install installs the named packages in one apt-get transaction.
func (a *APT) Install(ctx context.Context, packages []string) error {
	args := append([]string{"install", "-y"}, packages...)
	stderr, err := a.exec.RunSudoCapture(ctx, a.binary, args...)
	if err != nil {
		if f := aptFailure(a.tag, "install", stderr, err); f != nil {
			return f
		}
		return backend.Classify(ctx, a.tag, "install", err, stderr)
	}
	return nil
}

// Remove uninstalls the named packages in one apt-get transaction.
func (a *APT) Remove(ctx context.Context, packages []string) error {
	args := append([]string{"remove", "-y"}, packages...)
	stderr, err := a.exec.RunSudoCapture(ctx, a.binary, args...)
	if err != nil {
		if f := aptFailure(a.tag, "remove", stderr, err); f != nil {
			return f
		}
		return backend.Classify(ctx, a.tag, "remove", err, stderr)
	}
	return nil
}

// UpdateSystem refreshes the index and applies every pending upgrade.
// With nothing pending, apt-get upgrade succeeds without changes.
func (a *APT) UpdateSystem(ctx context.Context) error {
	if stderr, err := a.exec.RunSudoCapture(ctx, a.binary, "update"); err != nil {
		return backend.Classify(ctx, a.tag, "update", err, stderr)
	}
	stderr, err := a.exec.RunSudoCapture(ctx, a.binary, "upgrade", "-y")
	if err != nil {
		if f := aptFailure(a.tag, "update", stderr, err); f != nil {
			return f
		}
		return backend.Classify(ctx, a.tag, "update", err, stderr)
	}
	return nil
}
