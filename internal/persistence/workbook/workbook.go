// Package workbook writes a dataset as a spreadsheet: one sheet with the
// population thresholds, then one sheet per race.
package workbook

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"fdv.tools/internal/catalogs"
	"fdv.tools/internal/slots"
)

const PopulationSheet = "Population"

// SheetName maps a race display name to a legal sheet title.
func SheetName(r catalogs.Race) string {
	name := strings.Map(func(c rune) rune {
		switch c {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '-'
		}
		return c
	}, r.Display())
	name = strings.Trim(name, "'")
	if name == "" {
		name = r.Key()
	}
	if len([]rune(name)) > 31 {
		name = string([]rune(name)[:31])
	}
	return name
}

func ExportXLSX(path string, ds *catalogs.Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", PopulationSheet); err != nil {
		return err
	}
	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	thousands, err := f.NewStyle(&excelize.Style{NumFmt: 3})
	if err != nil {
		return err
	}

	if err := writePopulation(f, ds, header, thousands); err != nil {
		return err
	}
	for _, r := range ds.Races() {
		if err := writeRace(f, ds, r, header, thousands); err != nil {
			return fmt.Errorf("%s: %w", r.Key(), err)
		}
	}

	if idx, err := f.GetSheetIndex(PopulationSheet); err == nil {
		f.SetActiveSheet(idx)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return f.SaveAs(path)
}

func writePopulation(f *excelize.File, ds *catalogs.Dataset, header, thousands int) error {
	sh := PopulationSheet
	if err := f.SetSheetRow(sh, "A1", &[]any{"Slot", "Label", "Population"}); err != nil {
		return err
	}
	for slot := 1; slot <= slots.Count; slot++ {
		cell, _ := excelize.CoordinatesToCellName(1, slot+1)
		if err := f.SetSheetRow(sh, cell, &[]any{slot, slots.Label(slot), ds.Population(slot)}); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sh, "A1", "C1", header); err != nil {
		return err
	}
	last := fmt.Sprintf("C%d", slots.Count+1)
	if err := f.SetCellStyle(sh, "C2", last, thousands); err != nil {
		return err
	}
	return f.SetColWidth(sh, "C", "C", 16)
}

func writeRace(f *excelize.File, ds *catalogs.Dataset, r catalogs.Race, header, thousands int) error {
	sh := SheetName(r)
	if _, err := f.NewSheet(sh); err != nil {
		return err
	}
	bs := r.Buildings()
	head := []any{"Slot", "Population"}
	for _, b := range bs {
		head = append(head, strings.TrimSpace(b.Icon+" "+b.Name))
	}
	if err := f.SetSheetRow(sh, "A1", &head); err != nil {
		return err
	}
	for slot := 1; slot <= slots.Count; slot++ {
		row := []any{slots.Label(slot), ds.Population(slot)}
		for _, lvl := range r.Row(slot) {
			row = append(row, lvl)
		}
		cell, _ := excelize.CoordinatesToCellName(1, slot+1)
		if err := f.SetSheetRow(sh, cell, &row); err != nil {
			return err
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(head))
	if err := f.SetCellStyle(sh, "A1", lastCol+"1", header); err != nil {
		return err
	}
	if err := f.SetCellStyle(sh, "B2", fmt.Sprintf("B%d", slots.Count+1), thousands); err != nil {
		return err
	}
	if err := f.SetColWidth(sh, "B", "B", 16); err != nil {
		return err
	}
	return f.SetColWidth(sh, "C", lastCol, 22)
}
