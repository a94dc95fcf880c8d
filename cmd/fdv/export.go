package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fdv.tools/internal/catalogs"
	"fdv.tools/internal/persistence/indexdb"
	"fdv.tools/internal/persistence/snapshot"
	"fdv.tools/internal/persistence/workbook"
)

type exportOptions struct {
	sqlite      string
	zst         string
	xlsx        string
	allVariants bool
}

func newExportCmd(g *globalOptions) *cobra.Command {
	o := &exportOptions{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the dataset to SQLite, a .json.zst snapshot or an XLSX workbook",
		Example: `  fdv export --sqlite fdv.db --all-variants
  fdv export --dataset v0.5 --zst v0.5.json.zst --xlsx v0.5.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.sqlite == "" && o.zst == "" && o.xlsx == "" {
				return fmt.Errorf("nothing to export: set --sqlite, --zst or --xlsx")
			}
			ds, err := loadDataset(g.dataset, g.datasetFile, g.logger)
			if err != nil {
				return err
			}
			return o.run(cmd.Context(), cmd.OutOrStdout(), ds, g.logger)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.sqlite, "sqlite", "", "SQLite index database path")
	f.StringVar(&o.zst, "zst", "", "zstd JSON snapshot path (.json.zst)")
	f.StringVar(&o.xlsx, "xlsx", "", "XLSX workbook path")
	f.BoolVar(&o.allVariants, "all-variants", false, "index every embedded variant in the SQLite export")
	return cmd
}

func (o *exportOptions) run(ctx context.Context, out io.Writer, ds *catalogs.Dataset, log *zap.Logger) error {
	if o.sqlite != "" {
		sets := []*catalogs.Dataset{ds}
		if o.allVariants {
			sets = sets[:0]
			for _, v := range catalogs.Variants() {
				d, err := catalogs.Load(v)
				if err != nil {
					return err
				}
				sets = append(sets, d)
			}
		}
		if err := indexdb.ExportSQLite(ctx, o.sqlite, sets...); err != nil {
			return fmt.Errorf("sqlite: %w", err)
		}
		log.Info("exported", zap.String("format", "sqlite"), zap.String("path", o.sqlite), zap.Int("variants", len(sets)))
		fmt.Fprintf(out, "✅ sqlite: %s\n", o.sqlite)
	}
	if o.zst != "" {
		if err := snapshot.WriteDataset(o.zst, ds); err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
		log.Info("exported", zap.String("format", "zst"), zap.String("path", o.zst))
		fmt.Fprintf(out, "✅ zst: %s\n", o.zst)
	}
	if o.xlsx != "" {
		if err := workbook.ExportXLSX(o.xlsx, ds); err != nil {
			return fmt.Errorf("xlsx: %w", err)
		}
		log.Info("exported", zap.String("format", "xlsx"), zap.String("path", o.xlsx))
		fmt.Fprintf(out, "✅ xlsx: %s\n", o.xlsx)
	}
	return nil
}
