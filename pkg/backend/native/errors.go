package native

import (
	"bufio"
	"errors"
	"os/exec"
	"regexp"
	"strings"

	"github.com/0xb0urn3/pkgtool/pkg/backend"
)

// exitCode extracts the subprocess exit status, or -1 when err carries
// none. Several tools encode meaning in specific exit codes: dnf
// check-update exits 100 when updates exist, pacman exits 1 for empty
// query results.
func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// Failure parsing for tool stderr. Each helper recognizes the messages
// a tool prints for well-known failure states and returns a classified
// backend error naming the packages involved; unrecognized output
// returns nil so the caller falls back to generic classification.

var (
	// apt: "E: Unable to locate package foobar"
	aptNotFoundPattern = regexp.MustCompile(`E: Unable to locate package (\S+)`)

	// dpkg: "Errors were encountered while processing:" followed by
	// one indented package per line. Some of the transaction may have
	// been applied by that point.
	aptProcessingErrors = "Errors were encountered while processing:"

	// apt: "E: Could not get lock /var/lib/dpkg/lock-frontend. It is
	// held by process 1234 (apt)". The lazy match keeps the sentence
	// period out of the captured path.
	aptLockPattern = regexp.MustCompile(`E: Could not get lock (\S+?)\.?(\s|$)`)

	// pacman: "error: target not found: foobar"
	pacmanNotFoundPattern = regexp.MustCompile(`error: target not found: (\S+)`)

	// pacman: "error: failed to init transaction (unable to lock database)"
	pacmanLockPattern = regexp.MustCompile(`failed to init transaction.*unable to lock database`)

	// pacman: ":: installing x (1.2-1) breaks dependency 'x=1.1' required by y"
	pacmanBreaksDepPattern = regexp.MustCompile(`:: installing (\S+) .* breaks dependency .* required by (\S+)`)

	// dnf: "No match for argument: foobar"
	dnfNoMatchPattern = regexp.MustCompile(`No match for argument: (\S+)`)

	// zypper: "'foobar' not found in package names"
	zypperNotFoundPattern = regexp.MustCompile(`'(\S+)' not found in package names`)

	// apk: "  foobar (no such package):"
	apkNoSuchPattern = regexp.MustCompile(`(\S+) \(no such package\)`)
)

func aptFailure(tag, op, stderr string, err error) *backend.Error {
	if idx := strings.Index(stderr, aptProcessingErrors); idx >= 0 {
		return &backend.Error{
			Kind:     backend.KindPartialFailure,
			Tag:      tag,
			Op:       op,
			Detail:   "dpkg reported errors partway through the transaction",
			Packages: indentedList(stderr[idx+len(aptProcessingErrors):]),
			Err:      err,
		}
	}
	if m := aptNotFoundPattern.FindAllStringSubmatch(stderr, -1); len(m) > 0 {
		return &backend.Error{
			Kind:     backend.KindInvocationFailed,
			Tag:      tag,
			Op:       op,
			Detail:   "package not found",
			Packages: submatches(m),
			Err:      err,
		}
	}
	if m := aptLockPattern.FindStringSubmatch(stderr); m != nil {
		return &backend.Error{
			Kind:   backend.KindInvocationFailed,
			Tag:    tag,
			Op:     op,
			Detail: "another package manager holds " + m[1],
			Err:    err,
		}
	}
	return nil
}

func pacmanFailure(tag, op, stderr string, err error) *backend.Error {
	if m := pacmanNotFoundPattern.FindAllStringSubmatch(stderr, -1); len(m) > 0 {
		return &backend.Error{
			Kind:     backend.KindInvocationFailed,
			Tag:      tag,
			Op:       op,
			Detail:   "target not found",
			Packages: submatches(m),
			Err:      err,
		}
	}
	if pacmanLockPattern.MatchString(stderr) {
		return &backend.Error{
			Kind:   backend.KindInvocationFailed,
			Tag:    tag,
			Op:     op,
			Detail: "pacman database is locked; another instance may be running",
			Err:    err,
		}
	}
	if m := pacmanBreaksDepPattern.FindAllStringSubmatch(stderr, -1); len(m) > 0 {
		return &backend.Error{
			Kind:     backend.KindInvocationFailed,
			Tag:      tag,
			Op:       op,
			Detail:   "dependency conflict",
			Packages: submatches(m),
			Err:      err,
		}
	}
	return nil
}

func dnfFailure(tag, op, stderr string, err error) *backend.Error {
	if m := dnfNoMatchPattern.FindAllStringSubmatch(stderr, -1); len(m) > 0 {
		return &backend.Error{
			Kind:     backend.KindInvocationFailed,
			Tag:      tag,
			Op:       op,
			Detail:   "no match for argument",
			Packages: submatches(m),
			Err:      err,
		}
	}
	return nil
}

func zypperFailure(tag, op, stderr string, err error) *backend.Error {
	if m := zypperNotFoundPattern.FindAllStringSubmatch(stderr, -1); len(m) > 0 {
		return &backend.Error{
			Kind:     backend.KindInvocationFailed,
			Tag:      tag,
			Op:       op,
			Detail:   "not found in package names",
			Packages: submatches(m),
			Err:      err,
		}
	}
	return nil
}

func apkFailure(tag, op, stderr string, err error) *backend.Error {
	if m := apkNoSuchPattern.FindAllStringSubmatch(stderr, -1); len(m) > 0 {
		return &backend.Error{
			Kind:     backend.KindInvocationFailed,
			Tag:      tag,
			Op:       op,
			Detail:   "no such package",
			Packages: submatches(m),
			Err:      err,
		}
	}
	return nil
}

// submatches collects the first capture group of every match,
// deduplicated in order.
func submatches(matches [][]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range matches {
		for _, pkg := range m[1:] {
			if pkg == "" || seen[pkg] {
				continue
			}
			seen[pkg] = true
			out = append(out, pkg)
		}
	}
	return out
}

// indentedList reads the indented package names dpkg prints under an
// error heading.
func indentedList(s string) []string {
	var out []string
	scanner := bufio.NewScanner(strings.NewReader(s))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || !strings.HasPrefix(line, " ") {
			if len(out) > 0 {
				break
			}
			continue
		}
		out = append(out, strings.TrimSpace(line))
	}
	return out
}
