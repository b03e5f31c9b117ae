// Package ui renders status, warning and error lines for pacm commands.
package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/mitchellh/cli"
)

// IsTTY reports whether stdout is an interactive terminal.
var IsTTY = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

var (
	warnPrefix  = color.New(color.Bold, color.FgYellow, color.ReverseVideo).Sprint(" WARN ")
	errorPrefix = color.New(color.Bold, color.FgRed, color.ReverseVideo).Sprint(" ERROR ")
	okPrefix    = color.New(color.Bold, color.FgGreen, color.ReverseVideo).Sprint(" OK ")
)

// UI wraps a cli.Ui with pacm's banner styling.
type UI struct {
	inner cli.Ui
}

// New builds a UI writing to stdout/stderr, colored when attached to a TTY.
func New() *UI {
	color.NoColor = !IsTTY
	return &UI{
		inner: &cli.BasicUi{
			Writer:      os.Stdout,
			ErrorWriter: os.Stderr,
			Reader:      os.Stdin,
		},
	}
}

// Info prints a plain informational line.
func (u *UI) Info(format string, args ...interface{}) {
	u.inner.Output(fmt.Sprintf(format, args...))
}

// Success prints a banner-prefixed success line.
func (u *UI) Success(format string, args ...interface{}) {
	u.inner.Output(fmt.Sprintf("%s %s", okPrefix, color.GreenString(format, args...)))
}

// Warn prints a banner-prefixed warning line, tagged with a PACM_* code.
func (u *UI) Warn(tag string, format string, args ...interface{}) {
	u.inner.Warn(fmt.Sprintf("%s[%s] %s", warnPrefix, tag, color.YellowString(format, args...)))
}

// Error prints a banner-prefixed error line, tagged with a PACM_* code.
func (u *UI) Error(tag string, format string, args ...interface{}) {
	u.inner.Error(fmt.Sprintf("%s[%s] %s", errorPrefix, tag, color.RedString(format, args...)))
}
