package render

import (
	"os"

	"golang.org/x/term"
)

const DefaultWidth = 120

// TerminalWidth reports the stdout width, or DefaultWidth when stdout is
// not a terminal.
func TerminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return DefaultWidth
	}
	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return DefaultWidth
	}
	return w
}
