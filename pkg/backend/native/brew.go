package native

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/0xb0urn3/pkgtool/internal/executor"
	"github.com/0xb0urn3/pkgtool/pkg/backend"
)

// Brew adapts Homebrew on macOS and Linux. Search matching is
// substring over formula names as implemented by brew search. Unlike
// the system managers, brew never runs under sudo, and it installs
// formulae one at a time, so a multi-package mutation that fails
// partway reports a partial failure naming what was already applied.
type Brew struct {
	base
}

// NewBrew creates the brew adapter.
func NewBrew(exec *executor.Executor) *Brew {
	return &Brew{
		base: newBase("brew", "Homebrew", "brew", false, exec),
	}
}

// Search runs brew search and collects bare formula names, skipping
// the "==> Formulae" / "==> Casks" section headers.
func (b *Brew) Search(ctx context.Context, query string) ([]backend.PackageInfo, error) {
	stdout, stderr, err := b.exec.Capture(ctx, b.binary, "search", query)
	if err != nil {
		if strings.Contains(stderr, "No formulae or casks found") {
			return nil, nil
		}
		return nil, backend.Classify(ctx, b.tag, "search", err, stderr)
	}

	var packages []backend.PackageInfo
	scanner := bufio.NewScanner(strings.NewReader(stdout))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "==>") {
			continue
		}
		for _, name := range strings.Fields(line) {
			packages = append(packages, backend.PackageInfo{
				Name:   name,
				Source: b.tag,
			})
		}
	}
	return packages, nil
}

// Updates parses brew outdated --verbose lines of the form
//
//	jq (1.6) < 1.7.1
func (b *Brew) Updates(ctx context.Context) ([]backend.PackageUpdate, error) {
	stdout, stderr, err := b.exec.Capture(ctx, b.binary, "outdated", "--verbose")
	if err != nil {
		return nil, backend.Classify(ctx, b.tag, "updates", err, stderr)
	}
	return b.parseOutdated(stdout), nil
}

// parseOutdated splits each line on " < ". The left side may list
// several installed versions ("node (20.1.0, 20.2.0)"); the newest one
// is what an upgrade would replace. Trailing annotations such as
// "[pinned at 1.6]" follow the candidate and are dropped.
func (b *Brew) parseOutdated(output string) []backend.PackageUpdate {
	var updates []backend.PackageUpdate
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		idx := strings.Index(line, " < ")
		if idx < 0 {
			continue
		}
		left := strings.Fields(line[:idx])
		right := strings.Fields(line[idx+3:])
		if len(left) < 2 || len(right) < 1 {
			continue
		}
		current := strings.Trim(strings.Join(left[1:], " "), "()")
		if i := strings.LastIndex(current, ", "); i >= 0 {
			current = current[i+2:]
		}
		updates = append(updates, backend.PackageUpdate{
			Name:      left[0],
			Current:   current,
			Candidate: right[0],
			Source:    b.tag,
		})
	}
	return updates
}

// Installed parses brew list --versions; the first version listed is
// the active one.
func (b *Brew) Installed(ctx context.Context) ([]backend.PackageInfo, error) {
	stdout, stderr, err := b.exec.Capture(ctx, b.binary, "list", "--versions")
	if err != nil {
		return nil, backend.Classify(ctx, b.tag, "installed", err, stderr)
	}

	var packages []backend.PackageInfo
	scanner := bufio.NewScanner(strings.NewReader(stdout))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 1 {
			continue
		}
		p := backend.PackageInfo{
			Name:      fields[0],
			Source:    b.tag,
			Installed: true,
		}
		if len(fields) > 1 {
			p.Version = fields[1]
		}
		packages = append(packages, p)
	}
	return packages, nil
}

// Install installs formulae one at a time, the way brew's own CLI
// treats multiple arguments. A failure partway is reported as a
// partial failure naming the formulae already installed.
func (b *Brew) Install(ctx context.Context, packages []string) error {
	return b.eachPackage(ctx, "install", packages)
}

// Remove uninstalls formulae one at a time, symmetric to Install.
func (b *Brew) Remove(ctx context.Context, packages []string) error {
	return b.eachPackage(ctx, "uninstall", packages)
}

func (b *Brew) eachPackage(ctx context.Context, verb string, packages []string) error {
	var done []string
	for _, pkg := range packages {
		stderr, err := b.exec.RunCapture(ctx, b.binary, verb, pkg)
		if err == nil {
			done = append(done, pkg)
			continue
		}
		if len(done) > 0 {
			return &backend.Error{
				Kind:     backend.KindPartialFailure,
				Tag:      b.tag,
				Op:       verb,
				Detail:   fmt.Sprintf("failed on %s after %s succeeded", pkg, strings.Join(done, ", ")),
				Packages: []string{pkg},
				Err:      err,
			}
		}
		return backend.Classify(ctx, b.tag, verb, err, stderr)
	}
	return nil
}

// UpdateSystem refreshes the formula index and upgrades everything
// outdated. brew upgrade with nothing outdated succeeds silently.
func (b *Brew) UpdateSystem(ctx context.Context) error {
	if stderr, err := b.exec.RunCapture(ctx, b.binary, "update"); err != nil {
		return backend.Classify(ctx, b.tag, "update", err, stderr)
	}
	stderr, err := b.exec.RunCapture(ctx, b.binary, "upgrade")
	if err != nil {
		return backend.Classify(ctx, b.tag, "update", err, stderr)
	}
	return nil
}
