// Command fdv looks up the minimum building levels per race and slot, in
// one shot from flags, interactively, or through a local HTTP server.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fdv.tools/internal/logging"
)

// errReported marks an error already printed to the user.
var errReported = errors.New("reported")

type globalOptions struct {
	theme       string
	dataset     string
	datasetFile string
	verbose     bool

	logger *zap.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "❌ Erreur:", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}
	lookup := &lookupOptions{}

	root := &cobra.Command{
		Use:   "fdv",
		Short: "Outil FDV: minimum building levels per race and slot",
		Long: `fdv prints the minimum building levels required to unlock a slot
(1..18 or 1.1..3.6) for a race, compares them with your current levels,
finds the highest slot you already meet, and prints whole tiers.

Run without flags to start the interactive flow.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !g.verbose {
				g.logger = zap.NewNop()
				return nil
			}
			l, err := logging.New("debug", true)
			if err != nil {
				return err
			}
			g.logger = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if g.logger != nil {
				_ = g.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLookup(cmd, g, lookup)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.theme, "theme", "", "color theme: dark, light or plain (default from FDV_THEME or dark)")
	pf.StringVar(&g.dataset, "dataset", "", "embedded dataset variant: v0.6 or v0.5")
	pf.StringVar(&g.datasetFile, "dataset-file", "", "load the dataset from a YAML or .json.zst file")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "debug logging on stderr")

	lookup.bind(root)

	root.AddCommand(newRacesCmd(g), newServeCmd(g), newExportCmd(g))
	return root
}
