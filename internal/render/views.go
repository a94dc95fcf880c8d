package render

import (
	"fmt"
	"strconv"
	"strings"

	"fdv.tools/internal/planner"
	"fdv.tools/internal/slots"
)

const (
	headerMinWidth = 52
	// Wide full-tier layout needs about this many columns.
	fullTierWidth = 12 + 28 + 7*8
)

// Renderer builds the console views. Width is the terminal width used to
// pick the full-tier layout.
type Renderer struct {
	Theme Theme
	Width int
}

func New(theme Theme, width int) *Renderer {
	if width <= 0 {
		width = DefaultWidth
	}
	return &Renderer{Theme: theme, Width: width}
}

func Title(variant string) string {
	return fmt.Sprintf("🔥 Outil FDV by HARDCORE — %s 🔥", variant)
}

func (r *Renderer) Header(variant string) string {
	inside := " " + r.Theme.title(Title(variant)) + " "
	width := Width(inside)
	if width < headerMinWidth {
		width = headerMinWidth
	}
	return strings.Join([]string{
		"╔" + strings.Repeat("═", width+2) + "╗",
		"║ " + PadRight(inside, width) + " ║",
		"╚" + strings.Repeat("═", width+2) + "╝",
		r.Theme.dim("Astuce: tape q pour quitter."),
	}, "\n")
}

// MinLevels renders the requirement row of one slot. With showZeros unset,
// buildings not required at this slot are left out.
func (r *Renderer) MinLevels(req planner.Requirement, showZeros bool) string {
	title := fmt.Sprintf("Race: %s  |  Slot: %s (%s)  |  Palier population: %s",
		r.Theme.Race(req.Race),
		r.Theme.bold(strconv.Itoa(req.Ref.Slot)),
		req.Ref.Label(),
		r.Theme.bold(FormatInt(req.Population)),
	)
	var rows [][]string
	for _, b := range req.Buildings {
		if !showZeros && b.Level == 0 {
			continue
		}
		rows = append(rows, []string{b.Building.Icon, b.Building.Name, strconv.Itoa(b.Level)})
	}
	table := Table([]string{"Icône", "Bâtiment", "Niveau min"}, rows, []Align{AlignLeft, AlignLeft, AlignRight})
	return title + "\n" + table
}

func (r *Renderer) Delta(d planner.Delta) string {
	var rows [][]string
	met := 0
	for _, row := range d.Rows {
		missing := strconv.Itoa(row.Missing)
		if row.Missing > 0 {
			missing = r.Theme.bad(missing)
		} else {
			met++
		}
		rows = append(rows, []string{
			row.Building.Icon,
			row.Building.Name,
			strconv.Itoa(row.Current),
			strconv.Itoa(row.Required),
			missing,
		})
	}
	lines := []string{
		r.Theme.bold(fmt.Sprintf("Comparaison DELTA — slot %s", d.Requirement.Ref.Label())),
		Table([]string{"Icône", "Bâtiment", "Actuel", "Requis", "Manque"}, rows,
			[]Align{AlignLeft, AlignLeft, AlignRight, AlignRight, AlignRight}),
		fmt.Sprintf("Progression: %d%% (%d/%d bâtiments au niveau)", d.Progress, met, len(d.Rows)),
		"Priorité (plus gros manque d’abord):",
	}
	if len(d.Priority) == 0 {
		lines = append(lines, r.Theme.good("✅ Aucun manque, objectif atteint."))
	}
	for i, p := range d.Priority {
		lines = append(lines, fmt.Sprintf("%2d. %s (+%d)", i+1, p.Building.Name, p.Missing))
	}
	return strings.Join(lines, "\n")
}

func (r *Renderer) AutoSlot(res planner.AutoSlotResult) string {
	var lines []string
	if res.MaxReachable == 0 {
		lines = append(lines, "Slot max atteint: aucun (1.1 non débloqué)")
	} else {
		lines = append(lines, fmt.Sprintf("Slot max atteint: %s (%d)",
			r.Theme.bold(slots.Label(res.MaxReachable)), res.MaxReachable))
	}
	if res.AtMax {
		lines = append(lines, r.Theme.good("✅ Tous les slots sont débloqués."))
		return strings.Join(lines, "\n")
	}
	lines = append(lines, fmt.Sprintf("Prochain slot: %s (%d)", r.Theme.bold(slots.Label(res.Next)), res.Next))
	lines = append(lines, "", r.Delta(res.Delta))
	return strings.Join(lines, "\n")
}

// FullTier renders the six slots of a tier side by side, or one small
// table per slot when the terminal is too narrow.
func (r *Renderer) FullTier(tt planner.TierTable) string {
	buildings := tt.Race.Buildings()
	if r.Width >= fullTierWidth {
		headers := append([]string{"Icône", "Bâtiment"}, tt.Labels...)
		aligns := []Align{AlignLeft, AlignLeft}
		for range tt.Labels {
			aligns = append(aligns, AlignRight)
		}
		var rows [][]string
		for i, b := range buildings {
			row := []string{b.Icon, b.Name}
			for _, lvl := range tt.Rows[i] {
				row = append(row, strconv.Itoa(lvl))
			}
			rows = append(rows, row)
		}
		var pops []string
		for j, lab := range tt.Labels {
			pops = append(pops, lab+":"+FormatInt(tt.Population[j]))
		}
		return strings.Join([]string{
			r.Theme.bold(fmt.Sprintf("Tableau complet %d.x — ", tt.Tier)) + r.Theme.Race(tt.Race),
			"Paliers pop: " + strings.Join(pops, " | "),
			Table(headers, rows, aligns),
		}, "\n")
	}

	var popRows [][]string
	for j, lab := range tt.Labels {
		popRows = append(popRows, []string{lab, FormatInt(tt.Population[j])})
	}
	lines := []string{
		r.Theme.bold(fmt.Sprintf("Tableau complet %d.x — vue compacte (terminal étroit)", tt.Tier)),
		Table([]string{"Slot", "Palier population"}, popRows, []Align{AlignLeft, AlignRight}),
	}
	for j, lab := range tt.Labels {
		var rows [][]string
		for i, b := range buildings {
			rows = append(rows, []string{b.Icon, b.Name, strconv.Itoa(tt.Rows[i][j])})
		}
		lines = append(lines, "", r.Theme.bold("Slot "+lab))
		lines = append(lines, Table([]string{"Icône", "Bâtiment", "Niv"}, rows, []Align{AlignLeft, AlignLeft, AlignRight}))
	}
	return strings.Join(lines, "\n")
}

// Error formats a user facing error line.
func (r *Renderer) Error(err error) string {
	return r.Theme.bad("❌ Erreur: " + err.Error())
}
