package executor

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	e := New(false, false)
	if e == nil {
		t.Fatal("New() returned nil")
	}
	if e.DryRun() {
		t.Error("DryRun() = true, want false")
	}
	e.SetDryRun(true)
	if !e.DryRun() {
		t.Error("DryRun() = false after SetDryRun(true)")
	}
}

func TestCapture(t *testing.T) {
	e := New(false, false)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stdout, stderr, err := e.Capture(ctx, "echo", "hello")
	if err != nil {
		t.Fatalf("Capture() error: %v", err)
	}
	if !strings.Contains(stdout, "hello") {
		t.Errorf("Capture() stdout = %q, want to contain %q", stdout, "hello")
	}
	if stderr != "" {
		t.Errorf("Capture() stderr = %q, want empty", stderr)
	}
}

func TestCaptureStderrAndExitCode(t *testing.T) {
	e := New(false, false)
	ctx := context.Background()

	_, stderr, err := e.Capture(ctx, "sh", "-c", "echo oops >&2; exit 3")
	if err == nil {
		t.Fatal("Capture() expected error for exit 3")
	}
	if !strings.Contains(stderr, "oops") {
		t.Errorf("Capture() stderr = %q, want to contain %q", stderr, "oops")
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("Capture() error = %T, want *exec.ExitError", err)
	}
	if exitErr.ExitCode() != 3 {
		t.Errorf("exit code = %d, want 3", exitErr.ExitCode())
	}
}

func TestCaptureIgnoresDryRun(t *testing.T) {
	e := New(true, false)
	ctx := context.Background()

	stdout, _, err := e.Capture(ctx, "echo", "still runs")
	if err != nil {
		t.Fatalf("Capture() error: %v", err)
	}
	if !strings.Contains(stdout, "still runs") {
		t.Errorf("Capture() in dry-run mode should still execute queries, got %q", stdout)
	}
}

func TestRunCaptureDryRun(t *testing.T) {
	e := New(true, false)
	ctx := context.Background()

	// The binary does not exist; dry-run must short-circuit before exec.
	stderr, err := e.RunCapture(ctx, "/nonexistent-tool", "install", "x")
	if err != nil {
		t.Fatalf("RunCapture() in dry-run mode error: %v", err)
	}
	if stderr != "" {
		t.Errorf("RunCapture() in dry-run mode stderr = %q, want empty", stderr)
	}
}

func TestCaptureTimeoutKillsProcess(t *testing.T) {
	e := New(false, false)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, _, err := e.Capture(ctx, "sleep", "10")
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("Capture() expected error on timeout")
	}
	if elapsed > 5*time.Second {
		t.Errorf("Capture() took %v, deadline should have killed the process quickly", elapsed)
	}
}
