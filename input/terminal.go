// Package input wraps terminal detection for the help subsystem.
package input

import (
	"os"

	"golang.org/x/term"
)

// Terminal abstracts the terminal probes used by the default output
// configuration. WidthOf always probes through DefaultTerminal.
type Terminal interface {
	IsTerminal(fd int) bool
	Size(fd int) (width, height int, err error)
}

// DefaultTerminal probes the real terminal via golang.org/x/term.
type DefaultTerminal struct{}

// IsTerminal reports whether fd is attached to a terminal.
func (DefaultTerminal) IsTerminal(fd int) bool {
	return term.IsTerminal(fd)
}

// Size returns the dimensions of the terminal attached to fd.
func (DefaultTerminal) Size(fd int) (int, int, error) {
	return term.GetSize(fd)
}

// WidthOf returns the column width of the terminal attached to f, or 0 when
// f is not a terminal or its size cannot be determined.
func WidthOf(f *os.File) int {
	t := DefaultTerminal{}
	fd := int(f.Fd())
	if !t.IsTerminal(fd) {
		return 0
	}
	w, _, err := t.Size(fd)
	if err != nil {
		return 0
	}
	return w
}
