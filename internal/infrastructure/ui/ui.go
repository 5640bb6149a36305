// Package ui holds terminal helpers shared by the controllers.
package ui

import (
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	logger "github.com/sirupsen/logrus"
	"golang.org/x/term"
)

const spinnerDelay = 100 * time.Millisecond

// Init applies the colour preference. NO_COLOR disables colours as well.
func Init(noColor bool) {
	if noColor || os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}
}

// IsTerminal reports whether w is attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Spinner shows progress on a terminal and does nothing anywhere else.
type Spinner struct {
	s *spinner.Spinner
}

// NewSpinner creates a spinner writing to w. It is inert unless w is a terminal.
func NewSpinner(w io.Writer) *Spinner {
	if !IsTerminal(w) {
		return &Spinner{}
	}
	s := spinner.New(spinner.CharSets[14], spinnerDelay, spinner.WithWriter(w))
	if !color.NoColor {
		paint(s, "cyan")
	}
	return &Spinner{s: s}
}

type colorable interface {
	Color(colors ...string) error
}

// paint colours the spinner. Unknown colours leave it in the default colour.
func paint(s colorable, colors ...string) {
	if err := s.Color(colors...); err != nil {
		logger.Debugf("[ui] spinner colour %v not applied: %v", colors, err)
	}
}

// Start shows the spinner with the given message.
func (sp *Spinner) Start(message string) {
	if sp.s == nil {
		return
	}
	sp.s.Suffix = " " + message
	sp.s.Start()
}

// Stop hides the spinner.
func (sp *Spinner) Stop() {
	if sp.s == nil {
		return
	}
	sp.s.Stop()
}
