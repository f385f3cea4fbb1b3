package ui

import (
	"time"

	"github.com/briandowns/spinner"
)

// Spinner wraps the spinner library for consistent styling.
type Spinner struct {
	s *spinner.Spinner
}

// NewSpinner creates a spinner with the given message.
func NewSpinner(message string) *Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message
	if UseColors {
		s.Color("cyan")
	}
	return &Spinner{s: s}
}

// Start starts the spinner.
func (sp *Spinner) Start() {
	sp.s.Start()
}

// Stop stops the spinner.
func (sp *Spinner) Stop() {
	sp.s.Stop()
}

// WithSpinner runs fn behind a spinner. When enabled is false the
// message prints plainly instead, which keeps verbose and non-TTY runs
// readable. Reporting the outcome stays with the caller.
func WithSpinner(enabled bool, message string, fn func() error) error {
	var sp *Spinner
	if enabled {
		sp = NewSpinner(message)
		sp.Start()
	} else {
		InfoMsg("%s", message)
	}

	err := fn()
	if sp != nil {
		sp.Stop()
	}
	return err
}
