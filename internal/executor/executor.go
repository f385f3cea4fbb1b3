// Package executor runs backend tools as subprocesses with optional
// privilege escalation and dry-run support.
package executor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Executor invokes package-manager binaries. Query methods never write
// to the terminal so they are safe to call from the TUI; mutating
// methods stream output and honor dry-run mode.
type Executor struct {
	dryRun  bool
	verbose bool
}

// New creates an Executor with the given options.
func New(dryRun, verbose bool) *Executor {
	return &Executor{
		dryRun:  dryRun,
		verbose: verbose,
	}
}

// SetDryRun enables or disables dry-run mode.
func (e *Executor) SetDryRun(dryRun bool) {
	e.dryRun = dryRun
}

// SetVerbose enables or disables verbose mode.
func (e *Executor) SetVerbose(verbose bool) {
	e.verbose = verbose
}

// DryRun reports whether dry-run mode is active.
func (e *Executor) DryRun() bool {
	return e.dryRun
}

// Capture runs a read-only command and returns its stdout and stderr.
// Nothing is written to the terminal. The returned error is the raw
// exec error (or context error), so callers can inspect exit codes.
// Capture ignores dry-run mode: queries do not change host state.
func (e *Executor) Capture(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	e.trace(name, args)

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// RunCapture runs a mutating command without privilege escalation,
// streaming output to the terminal while capturing stderr for error
// analysis.
func (e *Executor) RunCapture(ctx context.Context, name string, args ...string) (string, error) {
	if e.dryRun {
		fmt.Printf("[dry-run] would execute: %s %s\n", name, strings.Join(args, " "))
		return "", nil
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout

	var stderrBuf bytes.Buffer
	cmd.Stderr = io.MultiWriter(os.Stderr, &stderrBuf)

	e.trace(name, args)

	err := cmd.Run()
	return stderrBuf.String(), err
}

// RunSudoCapture runs a mutating command as root, via sudo when the
// process is not already root. Output streams to the terminal; stderr
// is additionally captured for error analysis.
func (e *Executor) RunSudoCapture(ctx context.Context, name string, args ...string) (string, error) {
	if e.dryRun {
		if isRoot() {
			fmt.Printf("[dry-run] would execute (as root): %s %s\n", name, strings.Join(args, " "))
		} else {
			fmt.Printf("[dry-run] would execute: sudo %s %s\n", name, strings.Join(args, " "))
		}
		return "", nil
	}

	var cmd *exec.Cmd
	switch {
	case isRoot():
		cmd = exec.CommandContext(ctx, name, args...)
	case hasSudo():
		sudoArgs := append([]string{name}, args...)
		cmd = exec.CommandContext(ctx, "sudo", sudoArgs...)
	default:
		return "", ErrNoPrivileges
	}

	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout

	var stderrBuf bytes.Buffer
	cmd.Stderr = io.MultiWriter(os.Stderr, &stderrBuf)

	e.trace(name, args)

	err := cmd.Run()
	return stderrBuf.String(), err
}

func (e *Executor) trace(name string, args []string) {
	if e.verbose {
		fmt.Printf("executing: %s %s\n", name, strings.Join(args, " "))
	}
}
