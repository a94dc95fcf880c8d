// Package tui runs the step-by-step console flow: pick a race and a slot,
// see the minimum levels, optionally enter current levels for a delta, and
// optionally print a full tier table.
package tui

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"fdv.tools/internal/catalogs"
	"fdv.tools/internal/planner"
	"fdv.tools/internal/render"
)

type step int

const (
	stepRace step = iota
	stepSlot
	stepCompare
	stepLevels
	stepFull
	stepDone
)

const (
	invalidLevel = "Valeur invalide, entier >= 0 attendu."
	goodbye      = "👋 Fermeture de l’outil."
)

type Model struct {
	ds       *catalogs.Dataset
	renderer *render.Renderer
	input    textinput.Model

	step    step
	race    catalogs.Race
	req     planner.Requirement
	current []int

	transcript []string
	quit       bool
}

func New(ds *catalogs.Dataset, r *render.Renderer) Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 64
	ti.Focus()
	return Model{ds: ds, renderer: r, input: ti}
}

// Quit reports whether the user left with q/quit/exit or ctrl+c.
func (m Model) Quit() bool { return m.quit }

// Transcript is everything printed so far, prompts and answers included.
func (m Model) Transcript() string { return strings.Join(m.transcript, "\n") }

func (m Model) Init() tea.Cmd {
	return tea.Batch(tea.Println(m.intro()), textinput.Blink)
}

func (m Model) intro() string {
	var choices []string
	for i, r := range m.ds.Races() {
		choices = append(choices, fmt.Sprintf("%d) %s", i+1, r.Display()))
	}
	return m.renderer.Header(m.ds.Variant()) + "\nChoix race: " + strings.Join(choices, "  ")
}

func (m Model) prompt() string {
	switch m.step {
	case stepRace:
		return fmt.Sprintf("Race (1..%d ou texte): ", len(m.ds.Races()))
	case stepSlot:
		return "Slot cible (1..18 ou 1.1..3.6): "
	case stepCompare:
		return "Comparer avec mes niveaux actuels ? (o/N): "
	case stepLevels:
		return fmt.Sprintf(" - %s: ", m.race.Buildings()[len(m.current)].Name)
	case stepFull:
		return "Voir un niveau complet ? (1 / 2 / 3 / non): "
	}
	return ""
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.renderer.Width = msg.Width
		}
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m.leave()
		case tea.KeyEnter:
			answer := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			return m.submit(answer)
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) leave() (tea.Model, tea.Cmd) {
	m.quit = true
	m.step = stepDone
	return m, tea.Sequence(m.emit("", goodbye), tea.Quit)
}

// emit records lines in the transcript and prints them above the prompt.
func (m *Model) emit(lines ...string) tea.Cmd {
	block := strings.Join(lines, "\n")
	m.transcript = append(m.transcript, block)
	return tea.Println(block)
}

func (m Model) submit(answer string) (tea.Model, tea.Cmd) {
	switch strings.ToLower(answer) {
	case "q", "quit", "exit":
		return m.leave()
	}
	echo := m.emit(m.prompt() + answer)

	var out tea.Cmd
	switch m.step {
	case stepRace:
		race, err := planner.ResolveRace(m.ds, answer)
		if err != nil {
			return m, tea.Sequence(echo, m.emit(m.renderer.Error(err)))
		}
		m.race = race
		m.step = stepSlot

	case stepSlot:
		ref, err := planner.ParseSlot(answer)
		if err != nil {
			return m, tea.Sequence(echo, m.emit(m.renderer.Error(err)))
		}
		m.req = planner.RequirementFor(m.ds, m.race, ref.Slot)
		m.step = stepCompare
		out = m.emit("", m.renderer.MinLevels(m.req, true), "")

	case stepCompare:
		switch strings.ToLower(answer) {
		case "o", "oui", "y", "yes":
			m.current = make([]int, 0, m.race.BuildingCount())
			m.step = stepLevels
			out = m.emit("Entre tes niveaux actuels:")
		default:
			m.step = stepFull
		}

	case stepLevels:
		v, err := strconv.Atoi(answer)
		if err != nil || v < 0 {
			return m, tea.Sequence(echo, m.emit(invalidLevel))
		}
		m.current = append(m.current, v)
		if len(m.current) < m.race.BuildingCount() {
			break
		}
		d, err := planner.ComputeDelta(m.req, m.current)
		if err != nil {
			return m.fail(echo, err)
		}
		m.step = stepFull
		out = m.emit("", m.renderer.Delta(d), "")

	case stepFull:
		m.step = stepDone
		if tier, err := planner.ParseTier(answer); err == nil {
			tt, err := planner.FullTier(m.ds, m.race.Key(), tier)
			if err != nil {
				return m.fail(echo, err)
			}
			return m, tea.Sequence(echo, m.emit("", m.renderer.FullTier(tt)), tea.Quit)
		}
		return m, tea.Sequence(echo, tea.Quit)
	}
	return m, tea.Sequence(echo, out)
}

func (m Model) fail(echo tea.Cmd, err error) (tea.Model, tea.Cmd) {
	m.step = stepDone
	return m, tea.Sequence(echo, m.emit(m.renderer.Error(err)), tea.Quit)
}

func (m Model) View() string {
	if m.step == stepDone {
		return ""
	}
	return m.prompt() + m.input.View()
}

// Run drives the flow on in/out until it finishes or ctx is cancelled.
// A terminal gets the interactive program; anything else (pipes, files,
// buffers) is read line by line and ends cleanly at EOF.
func Run(ctx context.Context, ds *catalogs.Dataset, r *render.Renderer, in io.Reader, out io.Writer) (Model, error) {
	if !isTerminal(in) {
		return RunLines(ctx, ds, r, in, out)
	}
	p := tea.NewProgram(New(ds, r), tea.WithContext(ctx), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return Model{}, err
	}
	return final.(Model), nil
}

func isTerminal(in io.Reader) bool {
	f, ok := in.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// RunLines feeds one answer per line through the same steps as the
// interactive program and writes the transcript to out as it grows.
func RunLines(ctx context.Context, ds *catalogs.Dataset, r *render.Renderer, in io.Reader, out io.Writer) (Model, error) {
	m := New(ds, r)
	if _, err := fmt.Fprintln(out, m.intro()); err != nil {
		return m, err
	}
	sc := bufio.NewScanner(in)
	sc.Split(scanAnswers)
	for m.step != stepDone {
		if err := ctx.Err(); err != nil {
			return m, err
		}
		seen := len(m.transcript)
		if sc.Scan() {
			next, _ := m.submit(strings.TrimSpace(sc.Text()))
			m = next.(Model)
		} else {
			if err := sc.Err(); err != nil {
				return m, err
			}
			next, _ := m.leave()
			m = next.(Model)
		}
		for _, block := range m.transcript[seen:] {
			if _, err := fmt.Fprintln(out, block); err != nil {
				return m, err
			}
		}
	}
	return m, nil
}

// scanAnswers splits on \n, \r\n or a lone \r.
func scanAnswers(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if atEOF {
			return i + 1, data[:i], nil
		}
		return 0, nil, nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
