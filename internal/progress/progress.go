// Package progress renders install/resolve progress to the terminal: a
// determinate bar while the resolved set size is known, and an
// indeterminate spinner while resolving (size unknown in advance).
package progress

import (
	"time"

	"github.com/briandowns/spinner"
	"github.com/schollz/progressbar/v3"

	"github.com/pacmjs/pacm/internal/ui"
)

// Spinner wraps briandowns/spinner for the resolving phase, where the
// total package count isn't known until the fixed point is reached.
type Spinner struct {
	s *spinner.Spinner
}

// NewSpinner builds a spinner with the given label, silent when the
// terminal isn't a TTY.
func NewSpinner(label string) *Spinner {
	if !ui.IsTTY {
		return &Spinner{}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + label
	return &Spinner{s: s}
}

func (sp *Spinner) Start() {
	if sp.s != nil {
		sp.s.Start()
	}
}

func (sp *Spinner) Stop() {
	if sp.s != nil {
		sp.s.Stop()
	}
}

// Bar wraps schollz/progressbar for the fetch/link phase, where the total
// package count is known once resolution completes.
type Bar struct {
	b *progressbar.ProgressBar
}

// NewBar builds a determinate bar over total items, silent when the
// terminal isn't a TTY.
func NewBar(total int, description string) *Bar {
	if !ui.IsTTY {
		return &Bar{b: progressbar.DefaultSilent(int64(total))}
	}
	return &Bar{b: progressbar.Default(int64(total), description)}
}

// Add advances the bar by delta.
func (b *Bar) Add(delta int) {
	_ = b.b.Add(delta)
}

// Finish completes the bar.
func (b *Bar) Finish() {
	_ = b.b.Finish()
}
