// Package history records every mutation the tool performs, so past
// operations can be listed and reversible ones undone.
package history

import (
	"fmt"
	"strings"
	"time"
)

// Operation names a mutating verb.
type Operation string

const (
	OpInstall Operation = "install"
	OpRemove  Operation = "remove"
	OpUpdate  Operation = "update"
)

// Entry is a single recorded mutation.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Operation Operation `json:"operation"`
	Backend   string    `json:"backend"`
	Packages  []string  `json:"packages,omitempty"`
	Success   bool      `json:"success"`
	Detail    string    `json:"detail,omitempty"`

	// Undo support. Install and remove reverse each other; a system
	// update has no reverse operation.
	Reversible bool      `json:"reversible"`
	ReverseOp  Operation `json:"reverse_op,omitempty"`
}

// NewEntry creates an entry for an operation about to run. Success is
// set once the outcome is known.
func NewEntry(op Operation, backendTag string, packages []string) *Entry {
	return &Entry{
		Timestamp:  time.Now(),
		Operation:  op,
		Backend:    backendTag,
		Packages:   packages,
		Reversible: op == OpInstall || op == OpRemove,
		ReverseOp:  reverseOf(op),
	}
}

func reverseOf(op Operation) Operation {
	switch op {
	case OpInstall:
		return OpRemove
	case OpRemove:
		return OpInstall
	}
	return ""
}

// MarkSuccess marks the entry as applied.
func (e *Entry) MarkSuccess() {
	e.Success = true
}

// MarkFailed marks the entry as failed, keeping the failure text.
func (e *Entry) MarkFailed(err error) {
	e.Success = false
	if err != nil {
		e.Detail = err.Error()
	}
}

// CanUndo reports whether replaying ReverseOp would undo this entry.
// Failed operations are not undone: their effect on the host is
// unknown.
func (e *Entry) CanUndo() bool {
	return e.Reversible && e.Success && len(e.Packages) > 0
}

// FormatTime returns the timestamp in the form history listings use.
func (e *Entry) FormatTime() string {
	return e.Timestamp.Format("2006-01-02 15:04:05")
}

// Summary is the one-line rendering used by history listings.
func (e *Entry) Summary() string {
	status := "ok"
	if !e.Success {
		status = "failed"
	}

	names := strings.Join(e.Packages, ", ")
	if len(e.Packages) > 3 {
		names = fmt.Sprintf("%s (+%d more)", strings.Join(e.Packages[:3], ", "), len(e.Packages)-3)
	}

	if names == "" {
		return fmt.Sprintf("%s  %s [%s] (%s)", e.FormatTime(), e.Operation, e.Backend, status)
	}
	return fmt.Sprintf("%s  %s %s [%s] (%s)", e.FormatTime(), e.Operation, names, e.Backend, status)
}
