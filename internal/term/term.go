// Package term colours console output when it goes to a terminal.
package term

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

const (
	reset  = "\x1b[0m"
	bold   = "\x1b[1m"
	red    = "\x1b[31m"
	green  = "\x1b[32m"
	yellow = "\x1b[33m"
	cyan   = "\x1b[36m"
)

// Colors wraps strings in ANSI escapes, or returns them unchanged when
// colour is off.
type Colors struct {
	enabled bool
}

// New decides colouring for w. Mode is "always", "never" or "auto"; auto
// colours only terminals.
func New(w io.Writer, mode string) Colors {
	switch mode {
	case "always":
		return Colors{enabled: true}
	case "never":
		return Colors{}
	}
	f, ok := w.(*os.File)
	if !ok {
		return Colors{}
	}
	fd := f.Fd()
	return Colors{enabled: isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)}
}

func (c Colors) Enabled() bool { return c.enabled }

func (c Colors) wrap(code, s string) string {
	if !c.enabled || s == "" {
		return s
	}
	return code + s + reset
}

func (c Colors) Bold(s string) string      { return c.wrap(bold, s) }
func (c Colors) Red(s string) string       { return c.wrap(red, s) }
func (c Colors) Green(s string) string     { return c.wrap(green, s) }
func (c Colors) Yellow(s string) string    { return c.wrap(yellow, s) }
func (c Colors) Highlight(s string) string { return c.wrap(cyan, s) }
