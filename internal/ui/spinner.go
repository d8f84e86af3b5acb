package ui

import (
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"
)

// Spinner wraps briandowns/spinner with TTY awareness. Silent run
// phases (like the dependency check) show it; phases that stream child
// output do not.
type Spinner struct {
	s       *spinner.Spinner
	enabled bool
}

// NewSpinner creates a spinner writing to w. It only displays when w is
// a terminal, so captured writers in tests and redirected output stay
// clean.
func NewSpinner(w io.Writer, message string) *Spinner {
	f, ok := w.(*os.File)
	if !ok {
		return &Spinner{enabled: false}
	}
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return &Spinner{enabled: false}
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(f))
	s.Suffix = " " + message
	return &Spinner{s: s, enabled: true}
}

// Start begins the spinner animation
func (sp *Spinner) Start() {
	if sp.enabled && sp.s != nil {
		sp.s.Start()
	}
}

// Stop ends the spinner animation
func (sp *Spinner) Stop() {
	if sp.enabled && sp.s != nil {
		sp.s.Stop()
	}
}

// UpdateMessage changes the spinner message
func (sp *Spinner) UpdateMessage(message string) {
	if sp.enabled && sp.s != nil {
		sp.s.Suffix = " " + message
	}
}
