package native

import (
	"bufio"
	"context"
	"strings"

	"github.com/0xb0urn3/pkgtool/internal/executor"
	"github.com/0xb0urn3/pkgtool/pkg/backend"
)

// APK adapts Alpine hosts. Search matching follows apk search, which
// treats the query as a glob over package names (wildcards added by
// the tool around bare words). apk prints "name-version-rN" strings;
// the version starts at the second-to-last dash.
type APK struct {
	base
}

// NewAPK creates the apk adapter.
func NewAPK(exec *executor.Executor) *APK {
	return &APK{
		base: newBase("apk", "APK (Alpine)", "apk", true, exec),
	}
}

// Search runs apk search -v -d to include descriptions.
func (a *APK) Search(ctx context.Context, query string) ([]backend.PackageInfo, error) {
	stdout, stderr, err := a.exec.Capture(ctx, a.binary, "search", "-v", "-d", query)
	if err != nil {
		return nil, backend.Classify(ctx, a.tag, "search", err, stderr)
	}

	var packages []backend.PackageInfo
	scanner := bufio.NewScanner(strings.NewReader(stdout))
	for scanner.Scan() {
		// busybox-1.36.1-r15 - Size optimized toolbox
		parts := strings.SplitN(scanner.Text(), " - ", 2)
		name, version := splitApkName(strings.TrimSpace(parts[0]))
		if name == "" {
			continue
		}
		p := backend.PackageInfo{
			Name:    name,
			Version: version,
			Source:  a.tag,
		}
		if len(parts) == 2 {
			p.Description = strings.TrimSpace(parts[1])
		}
		packages = append(packages, p)
	}
	return packages, nil
}

// Updates parses apk version -l '<', which lists installed packages
// older than the index without touching the host.
func (a *APK) Updates(ctx context.Context) ([]backend.PackageUpdate, error) {
	stdout, stderr, err := a.exec.Capture(ctx, a.binary, "version", "-l", "<")
	if err != nil {
		return nil, backend.Classify(ctx, a.tag, "updates", err, stderr)
	}
	return a.parseOutdated(stdout), nil
}

// parseOutdated reads "musl-1.2.4-r0 < 1.2.4-r1" lines, skipping the
// Installed/Available header.
func (a *APK) parseOutdated(output string) []backend.PackageUpdate {
	var updates []backend.PackageUpdate
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "Installed:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 || fields[1] != "<" {
			continue
		}
		name, current := splitApkName(fields[0])
		if name == "" {
			continue
		}
		updates = append(updates, backend.PackageUpdate{
			Name:      name,
			Current:   current,
			Candidate: fields[2],
			Source:    a.tag,
		})
	}
	return updates
}

// Installed parses apk info -v, one name-version per line.
func (a *APK) Installed(ctx context.Context) ([]backend.PackageInfo, error) {
	stdout, stderr, err := a.exec.Capture(ctx, a.binary, "info", "-v")
	if err != nil {
		return nil, backend.Classify(ctx, a.tag, "installed", err, stderr)
	}

	var packages []backend.PackageInfo
	scanner := bufio.NewScanner(strings.NewReader(stdout))
	for scanner.Scan() {
		name, version := splitApkName(strings.TrimSpace(scanner.Text()))
		if name == "" {
			continue
		}
		packages = append(packages, backend.PackageInfo{
			Name:      name,
			Version:   version,
			Source:    a.tag,
			Installed: true,
		})
	}
	return packages, nil
}

// Install installs the named packages in one apk transaction.
func (a *APK) Install(ctx context.Context, packages []string) error {
	args := append([]string{"add"}, packages...)
	stderr, err := a.exec.RunSudoCapture(ctx, a.binary, args...)
	if err != nil {
		if f := apkFailure(a.tag, "install", stderr, err); f != nil {
			return f
		}
		return backend.Classify(ctx, a.tag, "install", err, stderr)
	}
	return nil
}

// Remove uninstalls the named packages in one apk transaction.
func (a *APK) Remove(ctx context.Context, packages []string) error {
	args := append([]string{"del"}, packages...)
	stderr, err := a.exec.RunSudoCapture(ctx, a.binary, args...)
	if err != nil {
		if f := apkFailure(a.tag, "remove", stderr, err); f != nil {
			return f
		}
		return backend.Classify(ctx, a.tag, "remove", err, stderr)
	}
	return nil
}

// UpdateSystem refreshes the index and upgrades everything pending.
// apk upgrade succeeds with "OK" when the host is already current.
func (a *APK) UpdateSystem(ctx context.Context) error {
	if stderr, err := a.exec.RunSudoCapture(ctx, a.binary, "update"); err != nil {
		return backend.Classify(ctx, a.tag, "update", err, stderr)
	}
	stderr, err := a.exec.RunSudoCapture(ctx, a.binary, "upgrade")
	if err != nil {
		return backend.Classify(ctx, a.tag, "update", err, stderr)
	}
	return nil
}

// splitApkName splits "busybox-1.36.1-r15" into name and version. The
// version is the last two dash segments when the second-to-last starts
// with a digit, matching apk's pkgname-pkgver-rN convention.
func splitApkName(s string) (name, version string) {
	last := strings.LastIndex(s, "-")
	if last <= 0 {
		return s, ""
	}
	prev := strings.LastIndex(s[:last], "-")
	if prev > 0 && len(s) > prev+1 && s[prev+1] >= '0' && s[prev+1] <= '9' {
		return s[:prev], s[prev+1:]
	}
	return s[:last], s[last+1:]
}
