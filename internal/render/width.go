package render

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

// Locale independent: ambiguous-width runes such as "→" count as 1.
var narrow = &runewidth.Condition{EastAsianWidth: false}

// Width is the number of terminal cells s occupies. ANSI sequences,
// variation selectors, ZWJ and skin tone modifiers take no room and
// pictographs take two cells.
func Width(s string) int {
	w := 0
	for _, r := range ansi.Strip(s) {
		w += runeCells(r)
	}
	return w
}

func runeCells(r rune) int {
	switch {
	case r >= 0xFE00 && r <= 0xFE0F, r == 0x200D, r >= 0x1F3FB && r <= 0x1F3FF:
		return 0
	case unicode.Is(unicode.Mn, r):
		return 0
	case r >= 0x1F300 && r <= 0x1FAFF, r >= 0x2600 && r <= 0x27BF:
		return 2
	default:
		return narrow.RuneWidth(r)
	}
}

func PadRight(s string, width int) string {
	if d := width - Width(s); d > 0 {
		return s + strings.Repeat(" ", d)
	}
	return s
}

func PadLeft(s string, width int) string {
	if d := width - Width(s); d > 0 {
		return strings.Repeat(" ", d) + s
	}
	return s
}
