package native

import (
	"errors"
	"os/exec"
	"strings"
	"testing"

	"github.com/0xb0urn3/pkgtool/pkg/backend"
)

func TestAptFailurePartialTransaction(t *testing.T) {
	stderr := `Unpacking libfoo (2.1-1) ...
dpkg: error processing package libfoo (--configure):
 installed libfoo package post-installation script subprocess returned error exit status 1
Errors were encountered while processing:
 libfoo
 libbar
E: Sub-process /usr/bin/dpkg returned an error code (1)`

	f := aptFailure("apt", "install", stderr, errors.New("exit status 100"))

	if f == nil {
		t.Fatal("expected a classified error, got nil")
	}
	if f.Kind != backend.KindPartialFailure {
		t.Errorf("expected kind %q, got %q", backend.KindPartialFailure, f.Kind)
	}
	if len(f.Packages) != 2 || f.Packages[0] != "libfoo" || f.Packages[1] != "libbar" {
		t.Errorf("expected [libfoo libbar], got %v", f.Packages)
	}
	if !backend.IsKind(f, backend.KindPartialFailure) {
		t.Error("IsKind should recognize the partial failure")
	}
}

func TestAptFailureNotFound(t *testing.T) {
	stderr := `Reading package lists...
E: Unable to locate package foobarbaz
E: Unable to locate package quux`

	f := aptFailure("apt", "install", stderr, errors.New("exit status 100"))

	if f == nil {
		t.Fatal("expected a classified error, got nil")
	}
	if f.Kind != backend.KindInvocationFailed {
		t.Errorf("expected kind %q, got %q", backend.KindInvocationFailed, f.Kind)
	}
	if len(f.Packages) != 2 {
		t.Errorf("expected 2 packages, got %v", f.Packages)
	}
}

func TestAptFailureLockHeld(t *testing.T) {
	stderr := `E: Could not get lock /var/lib/dpkg/lock-frontend. It is held by process 1234 (apt)`

	f := aptFailure("apt", "install", stderr, errors.New("exit status 100"))

	if f == nil {
		t.Fatal("expected a classified error, got nil")
	}
	if !strings.Contains(f.Detail, "/var/lib/dpkg/lock-frontend") {
		t.Errorf("detail should name the lock path, got %q", f.Detail)
	}
	if strings.Contains(f.Detail, "lock-frontend.") {
		t.Errorf("captured path should not include the sentence period, got %q", f.Detail)
	}
}

func TestPacmanFailureTargetNotFound(t *testing.T) {
	stderr := `error: target not found: pkg1
error: target not found: pkg2
error: target not found: pkg3`

	f := pacmanFailure("pacman", "install", stderr, errors.New("exit status 1"))

	if f == nil {
		t.Fatal("expected a classified error, got nil")
	}
	if f.Kind != backend.KindInvocationFailed {
		t.Errorf("expected kind %q, got %q", backend.KindInvocationFailed, f.Kind)
	}
	if len(f.Packages) != 3 {
		t.Errorf("expected 3 packages, got %v", f.Packages)
	}
}

func TestPacmanFailureDatabaseLocked(t *testing.T) {
	stderr := `error: failed to init transaction (unable to lock database)
error: could not lock database: File exists
  if you're sure a package manager is not already running, you can remove /var/lib/pacman/db.lck`

	f := pacmanFailure("pacman", "install", stderr, errors.New("exit status 1"))

	if f == nil {
		t.Fatal("expected a classified error, got nil")
	}
	if !strings.Contains(f.Detail, "locked") {
		t.Errorf("detail should mention the lock, got %q", f.Detail)
	}
}

func TestPacmanFailureDependencyConflict(t *testing.T) {
	stderr := `resolving dependencies...
looking for conflicting packages...
error: failed to prepare transaction (could not satisfy dependencies)
:: installing gst-plugins-base-libs (1.26.10-3) breaks dependency 'gst-plugins-base-libs=1.26.10-1' required by gst-plugins-bad-libs`

	f := pacmanFailure("pacman", "install", stderr, errors.New("exit status 1"))

	if f == nil {
		t.Fatal("expected a classified error, got nil")
	}
	if len(f.Packages) != 2 {
		t.Errorf("expected 2 affected packages, got %v", f.Packages)
	}
}

func TestDnfFailureNoMatch(t *testing.T) {
	stderr := `No match for argument: foobarbaz
Error: Unable to find a match: foobarbaz`

	f := dnfFailure("dnf", "install", stderr, errors.New("exit status 1"))

	if f == nil {
		t.Fatal("expected a classified error, got nil")
	}
	if len(f.Packages) != 1 || f.Packages[0] != "foobarbaz" {
		t.Errorf("expected [foobarbaz], got %v", f.Packages)
	}
}

func TestZypperFailureNotFound(t *testing.T) {
	stderr := `'foobarbaz' not found in package names. Trying capabilities.
No provider of 'foobarbaz' found.`

	f := zypperFailure("zypper", "install", stderr, errors.New("exit status 104"))

	if f == nil {
		t.Fatal("expected a classified error, got nil")
	}
	if len(f.Packages) != 1 || f.Packages[0] != "foobarbaz" {
		t.Errorf("expected [foobarbaz], got %v", f.Packages)
	}
}

func TestApkFailureNoSuchPackage(t *testing.T) {
	stderr := `ERROR: unable to select packages:
  foobarbaz (no such package):
    required by: world[foobarbaz]`

	f := apkFailure("apk", "install", stderr, errors.New("exit status 1"))

	if f == nil {
		t.Fatal("expected a classified error, got nil")
	}
	if len(f.Packages) != 1 || f.Packages[0] != "foobarbaz" {
		t.Errorf("expected [foobarbaz], got %v", f.Packages)
	}
}

func TestFailureParsersIgnoreUnknownOutput(t *testing.T) {
	parsers := map[string]func(tag, op, stderr string, err error) *backend.Error{
		"apt":    aptFailure,
		"pacman": pacmanFailure,
		"dnf":    dnfFailure,
		"zypper": zypperFailure,
		"apk":    apkFailure,
	}

	stderr := "some output that matches no known failure pattern"
	for name, parse := range parsers {
		t.Run(name, func(t *testing.T) {
			if f := parse(name, "install", stderr, errors.New("exit status 1")); f != nil {
				t.Errorf("expected nil for unknown output, got %+v", f)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	if code := exitCode(nil); code != -1 {
		t.Errorf("exitCode(nil) = %d, want -1", code)
	}
	if code := exitCode(errors.New("not an exit error")); code != -1 {
		t.Errorf("exitCode(plain error) = %d, want -1", code)
	}

	err := exec.Command("sh", "-c", "exit 42").Run()
	if err == nil {
		t.Fatal("expected the command to fail")
	}
	if code := exitCode(err); code != 42 {
		t.Errorf("exitCode(exit 42) = %d, want 42", code)
	}
}
