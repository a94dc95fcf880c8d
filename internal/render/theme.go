package render

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"fdv.tools/internal/catalogs"
)

// Theme holds the styles used by the views. The plain theme emits no
// escape sequences at all.
type Theme struct {
	Name  string
	plain bool

	Title lipgloss.Style
	Bold  lipgloss.Style
	Dim   lipgloss.Style
	Good  lipgloss.Style
	Bad   lipgloss.Style
}

func DarkTheme() Theme {
	return Theme{
		Name:  "dark",
		Title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#22d3ee")),
		Bold:  lipgloss.NewStyle().Bold(true),
		Dim:   lipgloss.NewStyle().Faint(true),
		Good:  lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e")),
		Bad:   lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")),
	}
}

func LightTheme() Theme {
	return Theme{
		Name:  "light",
		Title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0e7490")),
		Bold:  lipgloss.NewStyle().Bold(true),
		Dim:   lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280")),
		Good:  lipgloss.NewStyle().Foreground(lipgloss.Color("#15803d")),
		Bad:   lipgloss.NewStyle().Foreground(lipgloss.Color("#b91c1c")),
	}
}

func PlainTheme() Theme {
	return Theme{Name: "plain", plain: true}
}

// ThemeByName accepts dark, light or plain.
func ThemeByName(name string) (Theme, error) {
	switch name {
	case "", "dark":
		return DarkTheme(), nil
	case "light":
		return LightTheme(), nil
	case "plain":
		return PlainTheme(), nil
	}
	return Theme{}, fmt.Errorf("unknown theme %q", name)
}

func (t Theme) paint(st lipgloss.Style, s string) string {
	if t.plain {
		return s
	}
	return st.Render(s)
}

func (t Theme) title(s string) string { return t.paint(t.Title, s) }
func (t Theme) bold(s string) string  { return t.paint(t.Bold, s) }
func (t Theme) dim(s string) string   { return t.paint(t.Dim, s) }
func (t Theme) good(s string) string  { return t.paint(t.Good, s) }
func (t Theme) bad(s string) string   { return t.paint(t.Bad, s) }

// Race renders the race display name in its dataset color.
func (t Theme) Race(r catalogs.Race) string {
	if t.plain || r.Color() == "" {
		return r.Display()
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(r.Color())).Render(r.Display())
}
