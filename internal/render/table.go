package render

import "strings"

type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

// Table draws a box table. Columns are sized by visual width so emoji and
// colored cells line up.
func Table(headers []string, rows [][]string, aligns []Align) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = Width(h)
	}
	for _, r := range rows {
		for i, c := range r {
			if i < len(widths) && Width(c) > widths[i] {
				widths[i] = Width(c)
			}
		}
	}

	line := func(left, mid, right string) string {
		parts := make([]string, len(widths))
		for i, w := range widths {
			parts[i] = strings.Repeat("─", w+2)
		}
		return left + strings.Join(parts, mid) + right
	}
	row := func(cells []string) string {
		out := make([]string, len(widths))
		for i, w := range widths {
			c := ""
			if i < len(cells) {
				c = cells[i]
			}
			if i < len(aligns) && aligns[i] == AlignRight {
				out[i] = PadLeft(c, w)
			} else {
				out[i] = PadRight(c, w)
			}
		}
		return "│ " + strings.Join(out, " │ ") + " │"
	}

	lines := []string{line("┌", "┬", "┐"), row(headers), line("├", "┼", "┤")}
	for _, r := range rows {
		lines = append(lines, row(r))
	}
	lines = append(lines, line("└", "┴", "┘"))
	return strings.Join(lines, "\n")
}
