package native

import (
	"bufio"
	"context"
	"strings"

	"github.com/0xb0urn3/pkgtool/internal/executor"
	"github.com/0xb0urn3/pkgtool/pkg/backend"
)

// Pacman adapts Arch Linux hosts. Search matching follows pacman -Ss,
// which treats the query as a regular expression over names and
// descriptions. Pacman exits non-zero for empty result sets; the
// adapter maps that to an empty slice rather than a failure.
type Pacman struct {
	base
}

// NewPacman creates the pacman adapter.
func NewPacman(exec *executor.Executor) *Pacman {
	return &Pacman{
		base: newBase("pacman", "Pacman (Arch Linux)", "pacman", true, exec),
	}
}

// Search runs pacman -Ss and parses its two-line record format.
func (p *Pacman) Search(ctx context.Context, query string) ([]backend.PackageInfo, error) {
	stdout, stderr, err := p.exec.Capture(ctx, p.binary, "-Ss", query)
	if err != nil {
		if exitCode(err) == 1 && strings.TrimSpace(stdout) == "" {
			return nil, nil // no matches
		}
		return nil, backend.Classify(ctx, p.tag, "search", err, stderr)
	}
	return p.parseSearch(stdout), nil
}

// parseSearch reads records of the form
//
//	extra/vim 9.0.2-1 [installed]
//	    Vi IMproved, a highly configurable text editor
func (p *Pacman) parseSearch(output string) []backend.PackageInfo {
	var packages []backend.PackageInfo
	lines := strings.Split(output, "\n")

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if strings.HasPrefix(line, " ") || !strings.Contains(line, "/") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		repoPkg := strings.SplitN(fields[0], "/", 2)
		if len(repoPkg) < 2 {
			continue
		}

		var description string
		if i+1 < len(lines) && strings.HasPrefix(lines[i+1], " ") {
			description = strings.TrimSpace(lines[i+1])
			i++
		}

		installed := false
		for _, f := range fields {
			if strings.HasPrefix(f, "[installed") {
				installed = true
				break
			}
		}

		packages = append(packages, backend.PackageInfo{
			Name:        repoPkg[1],
			Version:     fields[1],
			Description: description,
			Source:      p.tag,
			Installed:   installed,
		})
	}
	return packages
}

// Updates parses pacman -Qu, which lists pending upgrades against the
// already-synced database without touching the host.
func (p *Pacman) Updates(ctx context.Context) ([]backend.PackageUpdate, error) {
	stdout, stderr, err := p.exec.Capture(ctx, p.binary, "-Qu")
	if err != nil {
		if exitCode(err) == 1 && strings.TrimSpace(stdout) == "" {
			return nil, nil // everything current
		}
		return nil, backend.Classify(ctx, p.tag, "updates", err, stderr)
	}
	return p.parseUpdates(stdout), nil
}

// parseUpdates reads "vim 9.0.1-1 -> 9.0.2-1" lines. Entries marked
// [ignored] are excluded, matching what -Syu would actually apply.
func (p *Pacman) parseUpdates(output string) []backend.PackageUpdate {
	var updates []backend.PackageUpdate
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.Contains(line, "[ignored]") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 || fields[2] != "->" {
			continue
		}
		updates = append(updates, backend.PackageUpdate{
			Name:      fields[0],
			Current:   fields[1],
			Candidate: fields[3],
			Source:    p.tag,
		})
	}
	return updates
}

// Installed parses pacman -Q: one "name version" pair per line.
func (p *Pacman) Installed(ctx context.Context) ([]backend.PackageInfo, error) {
	stdout, stderr, err := p.exec.Capture(ctx, p.binary, "-Q")
	if err != nil {
		return nil, backend.Classify(ctx, p.tag, "installed", err, stderr)
	}

	var packages []backend.PackageInfo
	scanner := bufio.NewScanner(strings.NewReader(stdout))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		packages = append(packages, backend.PackageInfo{
			Name:      fields[0],
			Version:   fields[1],
			Source:    p.tag,
			Installed: true,
		})
	}
	return packages, nil
}

// Install installs the named packages in one pacman transaction.
func (p *Pacman) Install(ctx context.Context, packages []string) error {
	args := append([]string{"-S", "--noconfirm"}, packages...)
	stderr, err := p.exec.RunSudoCapture(ctx, p.binary, args...)
	if err != nil {
		if f := pacmanFailure(p.tag, "install", stderr, err); f != nil {
			return f
		}
		return backend.Classify(ctx, p.tag, "install", err, stderr)
	}
	return nil
}

// Remove uninstalls the named packages in one pacman transaction.
func (p *Pacman) Remove(ctx context.Context, packages []string) error {
	args := append([]string{"-R", "--noconfirm"}, packages...)
	stderr, err := p.exec.RunSudoCapture(ctx, p.binary, args...)
	if err != nil {
		if f := pacmanFailure(p.tag, "remove", stderr, err); f != nil {
			return f
		}
		return backend.Classify(ctx, p.tag, "remove", err, stderr)
	}
	return nil
}

// UpdateSystem runs a full -Syu. Pacman exits zero when there is
// nothing to do, so repeated calls are safe.
func (p *Pacman) UpdateSystem(ctx context.Context) error {
	stderr, err := p.exec.RunSudoCapture(ctx, p.binary, "-Syu", "--noconfirm")
	if err != nil {
		if f := pacmanFailure(p.tag, "update", stderr, err); f != nil {
			return f
		}
		return backend.Classify(ctx, p.tag, "update", err, stderr)
	}
	return nil
}
