package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"fdv.tools/internal/render"
)

func newRacesCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "races",
		Short: "List races, their aliases and buildings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			r, err := newRenderer(g.theme)
			if err != nil {
				return report(out, render.New(render.PlainTheme(), 0), err)
			}
			ds, err := loadDataset(g.dataset, g.datasetFile, g.logger)
			if err != nil {
				return report(out, r, err)
			}
			var rows [][]string
			for i, race := range ds.Races() {
				var names []string
				for _, b := range race.Buildings() {
					names = append(names, b.Key)
				}
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					r.Theme.Race(race),
					strings.Join(race.Aliases(), ", "),
					strings.Join(names, " "),
				})
			}
			fmt.Fprintln(out, render.Table(
				[]string{"#", "Race", "Alias", "Bâtiments"}, rows,
				[]render.Align{render.AlignRight, render.AlignLeft, render.AlignLeft, render.AlignLeft},
			))
			return nil
		},
	}
}
