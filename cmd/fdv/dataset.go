package main

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"fdv.tools/internal/catalogs"
	"fdv.tools/internal/config"
	"fdv.tools/internal/persistence/snapshot"
	"fdv.tools/internal/render"
)

// loadDataset picks the dataset: an explicit file wins over a variant
// name. Empty arguments fall back to FDV_DATASET_FILE and FDV_DATASET.
func loadDataset(variant, file string, log *zap.Logger) (*catalogs.Dataset, error) {
	if strings.TrimSpace(file) == "" {
		file = strings.TrimSpace(os.Getenv("FDV_DATASET_FILE"))
	}
	if strings.TrimSpace(variant) == "" {
		variant = strings.TrimSpace(os.Getenv("FDV_DATASET"))
	}
	if variant == "" {
		variant = catalogs.DefaultVariant
	}

	var (
		ds  *catalogs.Dataset
		err error
	)
	switch {
	case file != "" && snapshot.IsSnapshotPath(file):
		ds, _, err = snapshot.ReadDataset(file)
	case file != "":
		ds, err = catalogs.LoadFile(file)
	default:
		ds, err = catalogs.Load(variant)
	}
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	if gaps := catalogs.MonotonicityGaps(ds.Spec()); len(gaps) > 0 {
		log.Warn("dataset rows are not monotonic; auto-slot may under-report",
			zap.String("variant", ds.Variant()), zap.Strings("gaps", gaps))
	}
	log.Debug("dataset loaded", zap.String("variant", ds.Variant()), zap.String("digest", ds.Digest()))
	return ds, nil
}

// newRenderer resolves the theme from the flag, then FDV_THEME.
func newRenderer(theme string) (*render.Renderer, error) {
	if strings.TrimSpace(theme) == "" {
		theme = os.Getenv("FDV_THEME")
	}
	if strings.TrimSpace(theme) == "" {
		theme = config.ThemeDark
	}
	t, err := render.ThemeByName(theme)
	if err != nil {
		return nil, err
	}
	return render.New(t, render.TerminalWidth()), nil
}
