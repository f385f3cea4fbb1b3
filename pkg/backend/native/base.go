// Package native implements the backend contract for host-native
// package managers. Each adapter translates the uniform operations
// into tool-specific invocations and parses tool-specific output into
// the shared result types.
package native

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/0xb0urn3/pkgtool/internal/executor"
	"github.com/0xb0urn3/pkgtool/pkg/backend"
)

// base carries the identity and executor shared by every native
// adapter.
type base struct {
	tag         string
	displayName string
	binary      string
	needsSudo   bool
	exec        *executor.Executor
}

func newBase(tag, displayName, binary string, needsSudo bool, exec *executor.Executor) base {
	if exec == nil {
		exec = executor.New(false, false)
	}
	return base{
		tag:         tag,
		displayName: displayName,
		binary:      binary,
		needsSudo:   needsSudo,
		exec:        exec,
	}
}

// Tag returns the registry key for this backend.
func (b *base) Tag() string {
	return b.tag
}

// DisplayName returns the human-readable name.
func (b *base) DisplayName() string {
	return b.displayName
}

// NeedsSudo reports whether mutating operations require root.
func (b *base) NeedsSudo() bool {
	return b.needsSudo
}

// Initialize locates the tool on PATH and runs a version probe to
// confirm it is invocable. Both checks failing yields an unavailable
// error that excludes the backend from the registry.
func (b *base) Initialize(ctx context.Context) error {
	path, err := exec.LookPath(b.binary)
	if err != nil {
		return &backend.Error{
			Kind:   backend.KindUnavailable,
			Tag:    b.tag,
			Op:     "initialize",
			Detail: fmt.Sprintf("%s not found in PATH", b.binary),
			Err:    err,
		}
	}
	if _, _, err := b.exec.Capture(ctx, path, "--version"); err != nil {
		return &backend.Error{
			Kind:   backend.KindUnavailable,
			Tag:    b.tag,
			Op:     "initialize",
			Detail: fmt.Sprintf("%s failed version probe", b.binary),
			Err:    err,
		}
	}
	return nil
}
