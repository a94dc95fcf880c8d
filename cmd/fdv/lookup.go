package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fdv.tools/internal/catalogs"
	"fdv.tools/internal/levelimport"
	"fdv.tools/internal/planner"
	"fdv.tools/internal/render"
	"fdv.tools/internal/tui"
)

type lookupOptions struct {
	race      string
	slot      string
	delta     bool
	current   string
	fullLevel string
	auto      bool
	importSrc string
	showZeros bool
}

func (o *lookupOptions) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&o.race, "race", "", "race: humains|rocktal|mecas|kaelesh or 1..4")
	f.StringVar(&o.slot, "slot", "", "target slot: 1..18 or 1.1..3.6")
	f.BoolVar(&o.delta, "delta", false, "print the delta against --current or --import")
	f.StringVar(&o.current, "current", "", "current levels as CSV, one per building: 10,12,3,0,4,2")
	f.StringVar(&o.fullLevel, "full-level", "", "print the full 1.x, 2.x or 3.x table")
	f.BoolVar(&o.auto, "auto", false, "find the highest slot met by the current levels")
	f.StringVar(&o.importSrc, "import", "", "read current levels from FILE, or - for stdin")
	f.BoolVar(&o.showZeros, "show-zeros", true, "list buildings not required at the slot")
}

var lookupFlags = []string{"race", "slot", "delta", "current", "full-level", "auto", "import", "show-zeros"}

// requested reports whether any lookup flag was given; without one the
// interactive flow runs.
func (o *lookupOptions) requested(cmd *cobra.Command) bool {
	for _, name := range lookupFlags {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

func runLookup(cmd *cobra.Command, g *globalOptions, o *lookupOptions) error {
	out := cmd.OutOrStdout()
	r, err := newRenderer(g.theme)
	if err != nil {
		return report(out, render.New(render.PlainTheme(), 0), err)
	}
	ds, err := loadDataset(g.dataset, g.datasetFile, g.logger)
	if err != nil {
		return report(out, r, err)
	}

	if !o.requested(cmd) {
		final, err := tui.Run(cmd.Context(), ds, r, cmd.InOrStdin(), out)
		if err != nil {
			return report(out, r, err)
		}
		g.logger.Debug("interactive flow finished", zap.Bool("quit", final.Quit()))
		return nil
	}

	if err := o.show(cmd, ds, r); err != nil {
		return report(out, r, err)
	}
	return nil
}

func (o *lookupOptions) show(cmd *cobra.Command, ds *catalogs.Dataset, r *render.Renderer) error {
	out := cmd.OutOrStdout()
	if o.race == "" {
		return fmt.Errorf("%w: --race is required", planner.ErrInvalidRace)
	}
	if o.slot == "" && !o.auto {
		return fmt.Errorf("%w: --slot is required", planner.ErrInvalidSlot)
	}
	race, err := planner.ResolveRace(ds, o.race)
	if err != nil {
		return err
	}

	// Validate every input before printing anything.
	var req planner.Requirement
	if o.slot != "" {
		if req, err = planner.Resolve(ds, race.Key(), o.slot); err != nil {
			return err
		}
	}
	var current []int
	needCurrent := o.delta || o.auto
	if needCurrent {
		if current, err = o.currentLevels(cmd.InOrStdin(), race); err != nil {
			return err
		}
	}
	var tier int
	if o.fullLevel != "" {
		if tier, err = planner.ParseTier(o.fullLevel); err != nil {
			return err
		}
	}

	sections := []string{r.Header(ds.Variant())}
	if o.slot != "" {
		sections = append(sections, r.MinLevels(req, o.showZeros))
	}
	if o.delta {
		if o.slot == "" {
			return fmt.Errorf("%w: --delta needs --slot", planner.ErrInvalidSlot)
		}
		d, err := planner.ComputeDelta(req, current)
		if err != nil {
			return err
		}
		sections = append(sections, r.Delta(d))
	}
	if tier != 0 {
		tt, err := planner.FullTier(ds, race.Key(), tier)
		if err != nil {
			return err
		}
		sections = append(sections, r.FullTier(tt))
	}
	if o.auto {
		res, err := planner.AutoSlot(ds, race.Key(), current)
		if err != nil {
			return err
		}
		sections = append(sections, r.AutoSlot(res))
	}
	_, err = fmt.Fprintln(out, strings.Join(sections, "\n\n"))
	return err
}

// currentLevels reads --current (strict: one value per building) or
// --import (lenient, see levelimport).
func (o *lookupOptions) currentLevels(stdin io.Reader, race catalogs.Race) ([]int, error) {
	switch {
	case o.current != "" && o.importSrc != "":
		return nil, fmt.Errorf("%w: use --current or --import, not both", planner.ErrInvalidCurrentShape)
	case o.importSrc != "":
		text, err := readImport(stdin, o.importSrc)
		if err != nil {
			return nil, err
		}
		return levelimport.Parse(race, text).Levels, nil
	default:
		return parseCurrent(o.current, race.BuildingCount())
	}
}

func parseCurrent(raw string, n int) ([]int, error) {
	var parts []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) != n {
		return nil, fmt.Errorf("%w: --current doit contenir %d valeurs séparées par des virgules", planner.ErrInvalidCurrentShape, n)
	}
	out := make([]int, 0, n)
	for _, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("%w: %q n’est pas un entier >= 0", planner.ErrInvalidCurrentShape, p)
		}
		out = append(out, v)
	}
	return out, nil
}

func readImport(stdin io.Reader, src string) (string, error) {
	var (
		b   []byte
		err error
	)
	if src == "-" {
		b, err = io.ReadAll(io.LimitReader(stdin, 1<<20))
	} else {
		b, err = os.ReadFile(src)
	}
	if err != nil {
		return "", fmt.Errorf("import: %w", err)
	}
	return string(b), nil
}

func report(w io.Writer, r *render.Renderer, err error) error {
	fmt.Fprintln(w, r.Error(err))
	return errReported
}
