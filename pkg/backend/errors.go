package backend

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Kind classifies a backend failure.
type Kind string

const (
	// KindUnavailable means the backend's tool is missing or unusable.
	// Reported by Initialize; the backend is excluded from the
	// registry and the process keeps running with the others.
	KindUnavailable Kind = "unavailable"

	// KindTimeout means a call exceeded its per-call deadline. The
	// backend's result is excluded from the current merge.
	KindTimeout Kind = "timeout"

	// KindInvocationFailed means the subprocess ran but exited with a
	// failure status the adapter's exit-code conventions do not
	// explain.
	KindInvocationFailed Kind = "invocation failed"

	// KindPartialFailure means a mutating operation over several
	// packages applied some of them before failing. Distinguished from
	// total success and total failure so callers can report exactly
	// what changed.
	KindPartialFailure Kind = "partial failure"
)

// Error describes one backend's failure at one operation.
type Error struct {
	Kind     Kind
	Tag      string   // backend tag, e.g. "apt"
	Op       string   // operation name, e.g. "search"
	Detail   string   // trimmed tool output, when informative
	Packages []string // packages involved in a partial failure
	Err      error    // underlying cause
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Tag != "" {
		b.WriteString(e.Tag)
		b.WriteString(": ")
	}
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(string(e.Kind))
	if len(e.Packages) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(e.Packages, ", "))
	}
	switch {
	case e.Detail != "":
		b.WriteString(": ")
		b.WriteString(e.Detail)
	case e.Err != nil:
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is (or wraps) a backend Error of the
// given kind.
func IsKind(err error, kind Kind) bool {
	var be *Error
	return errors.As(err, &be) && be.Kind == kind
}

// ErrUnknownBackend is returned when a caller targets a tag that is
// not registered.
var ErrUnknownBackend = errors.New("backend not registered")

// NoBackendsError is returned by Registry.Discover when every
// candidate failed to initialize. The only fatal error in the
// taxonomy: without backends there is nothing to operate on.
type NoBackendsError struct {
	Failures []InitFailure
}

func (e *NoBackendsError) Error() string {
	if len(e.Failures) == 0 {
		return "no package manager backends found"
	}
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = fmt.Sprintf("%s (%v)", f.Tag, f.Err)
	}
	return "no usable package manager backend; tried " + strings.Join(parts, ", ")
}

// Classify wraps err as a backend Error, deriving the kind from the
// context state and the exec error. Errors that are already backend
// Errors pass through unchanged so adapter-level classification wins.
// stderr, when non-empty, supplies the detail line.
func Classify(ctx context.Context, tag, op string, err error, stderr string) error {
	if err == nil {
		return nil
	}
	var be *Error
	if errors.As(err, &be) {
		return err
	}

	kind := KindInvocationFailed
	switch {
	case ctx != nil && errors.Is(ctx.Err(), context.DeadlineExceeded),
		errors.Is(err, context.DeadlineExceeded):
		kind = KindTimeout
	case errors.Is(err, exec.ErrNotFound):
		kind = KindUnavailable
	}

	return &Error{
		Kind:   kind,
		Tag:    tag,
		Op:     op,
		Detail: lastLine(stderr),
		Err:    err,
	}
}

// lastLine extracts the final non-empty line of tool output, which is
// where apt, pacman and friends put the message worth showing.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
