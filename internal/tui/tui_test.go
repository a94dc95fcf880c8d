package tui

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fdv.tools/internal/catalogs"
	"fdv.tools/internal/render"
)

func newModel(t *testing.T) Model {
	t.Helper()
	ds, err := catalogs.Load(catalogs.DefaultVariant)
	require.NoError(t, err)
	return New(ds, render.New(render.PlainTheme(), 120))
}

// answer types s into the prompt and presses enter.
func answer(t *testing.T, m Model, s string) (Model, tea.Cmd) {
	t.Helper()
	m.input.SetValue(s)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(Model), cmd
}

func TestFlow_MinLevelsOnly(t *testing.T) {
	m := newModel(t)
	assert.Contains(t, m.View(), "Race (1..4 ou texte)")

	m, _ = answer(t, m, "1")
	assert.Equal(t, stepSlot, m.step)
	assert.Equal(t, "humains", m.race.Key())

	m, _ = answer(t, m, "2,1")
	assert.Equal(t, stepCompare, m.step)
	assert.Contains(t, m.Transcript(), "Slot: 7 (2.1)")

	m, _ = answer(t, m, "")
	assert.Equal(t, stepFull, m.step)

	m, cmd := answer(t, m, "non")
	assert.Equal(t, stepDone, m.step)
	assert.NotNil(t, cmd)
	assert.Empty(t, m.View())
	assert.False(t, m.Quit())
	assert.NotContains(t, m.Transcript(), "Tableau complet")
}

func TestFlow_DeltaReasksInvalidLevels(t *testing.T) {
	m := newModel(t)
	m, _ = answer(t, m, "mecas")
	m, _ = answer(t, m, "18")
	m, _ = answer(t, m, "o")
	require.Equal(t, stepLevels, m.step)
	assert.Contains(t, m.View(), m.race.Buildings()[0].Name)

	m, _ = answer(t, m, "-3")
	m, _ = answer(t, m, "abc")
	assert.Empty(t, m.current)
	assert.Equal(t, 2, strings.Count(m.Transcript(), invalidLevel))

	for _, v := range []string{"72", "83", "14", "9", "30", "22"} {
		m, _ = answer(t, m, v)
	}
	assert.Equal(t, stepFull, m.step)
	assert.Equal(t, []int{72, 83, 14, 9, 30, 22}, m.current)
	assert.Contains(t, m.Transcript(), "Progression: 100%")

	m, _ = answer(t, m, "3")
	assert.Equal(t, stepDone, m.step)
	assert.Contains(t, m.Transcript(), "Tableau complet 3.x")
}

func TestFlow_InvalidRaceAndSlotAreRetried(t *testing.T) {
	m := newModel(t)
	m, _ = answer(t, m, "elves")
	assert.Equal(t, stepRace, m.step)
	assert.Contains(t, m.Transcript(), "❌ Erreur")

	m, _ = answer(t, m, "kaelesh")
	m, _ = answer(t, m, "4.1")
	assert.Equal(t, stepSlot, m.step)
	m, _ = answer(t, m, "3.6")
	assert.Equal(t, stepCompare, m.step)
}

func TestFlow_QuitWordsAtAnyStep(t *testing.T) {
	for _, word := range []string{"q", "QUIT", "exit"} {
		m := newModel(t)
		m, _ = answer(t, m, "2")
		m, cmd := answer(t, m, word)
		assert.True(t, m.Quit(), word)
		assert.Equal(t, stepDone, m.step)
		assert.NotNil(t, cmd)
		assert.Contains(t, m.Transcript(), goodbye)
	}

	m := newModel(t)
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.True(t, next.(Model).Quit())
}

func TestUpdate_WindowSizeSetsRendererWidth(t *testing.T) {
	m := newModel(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 60, Height: 20})
	assert.Equal(t, 60, next.(Model).renderer.Width)

	next, _ = next.Update(tea.WindowSizeMsg{Width: 0, Height: 0})
	assert.Equal(t, 60, next.(Model).renderer.Width)
}

func TestRun_ScriptedInput(t *testing.T) {
	ds, err := catalogs.Load(catalogs.DefaultVariant)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	in := strings.NewReader("3\r1.1\rn\rnon\r")
	var out bytes.Buffer
	final, err := Run(ctx, ds, render.New(render.PlainTheme(), 120), in, &out)
	require.NoError(t, err)
	assert.False(t, final.Quit())
	assert.Equal(t, "mecas", final.race.Key())
	assert.Contains(t, final.Transcript(), "Slot: 1 (1.1)")
}

func TestRun_NewlineInputFinishes(t *testing.T) {
	ds, err := catalogs.Load(catalogs.DefaultVariant)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var out bytes.Buffer
	final, err := Run(ctx, ds, render.New(render.PlainTheme(), 120), strings.NewReader("1\n7\nn\nnon\n"), &out)
	require.NoError(t, err)
	assert.False(t, final.Quit())
	assert.Equal(t, stepDone, final.step)
	assert.Contains(t, out.String(), "Choix race:")
	assert.Contains(t, out.String(), "Slot: 7 (2.1)")
	assert.NotContains(t, out.String(), goodbye)
}

func TestRun_CRLFInputWithDelta(t *testing.T) {
	ds, err := catalogs.Load(catalogs.DefaultVariant)
	require.NoError(t, err)

	script := "mecas\r\n1.1\r\no\r\n" + strings.Repeat("0\r\n", 6) + "non\r\n"
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var out bytes.Buffer
	final, err := Run(ctx, ds, render.New(render.PlainTheme(), 120), strings.NewReader(script), &out)
	require.NoError(t, err)
	assert.False(t, final.Quit())
	assert.Len(t, final.current, 6)
	assert.Equal(t, final.intro()+"\n"+final.Transcript()+"\n", out.String())
}

func TestRun_EOFMidFlowLeaves(t *testing.T) {
	ds, err := catalogs.Load(catalogs.DefaultVariant)
	require.NoError(t, err)

	for _, script := range []string{"", "1\n", "1\n7\no\n3\n", "1\n7"} {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		var out bytes.Buffer
		final, err := Run(ctx, ds, render.New(render.PlainTheme(), 120), strings.NewReader(script), &out)
		cancel()
		require.NoError(t, err, "%q", script)
		assert.True(t, final.Quit(), "%q", script)
		assert.True(t, strings.HasSuffix(out.String(), goodbye+"\n"), "%q", script)
	}
}

func TestRunLines_StopsOnCancelledContext(t *testing.T) {
	ds, err := catalogs.Load(catalogs.DefaultVariant)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = RunLines(ctx, ds, render.New(render.PlainTheme(), 120), strings.NewReader("1\n"), &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScanAnswers(t *testing.T) {
	sc := bufio.NewScanner(strings.NewReader("a\nb\r\nc\rd\r\r\ne"))
	sc.Split(scanAnswers)
	var got []string
	for sc.Scan() {
		got = append(got, sc.Text())
	}
	require.NoError(t, sc.Err())
	assert.Equal(t, []string{"a", "b", "c", "d", "", "e"}, got)
}
