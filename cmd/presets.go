package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// presetsCmd lists the filter presets from the config file
var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the filter presets usable with --preset",
	Args:  cobra.NoArgs,
	RunE:  runPresets,
}

func init() {
	rootCmd.AddCommand(presetsCmd)
}

type presetView struct {
	Name       string `json:"name"`
	Expression string `json:"expression"`
}

func runPresets(cmd *cobra.Command, args []string) error {
	names := filters.ListFilters()
	presets := make([]presetView, 0, len(names))
	for _, name := range names {
		f, ok := filters.GetFilter(name)
		if !ok {
			continue
		}
		presets = append(presets, presetView{Name: name, Expression: f.Expression()})
	}

	return render(cmd, map[string]any{"presets": presets}, func(w io.Writer) error {
		if len(presets) == 0 {
			fmt.Fprintln(w, "No filter presets configured (see filter.presets in the config file).")
			return nil
		}

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, p := range presets {
			fmt.Fprintf(tw, "%s\t%s\n", p.Name, p.Expression)
		}
		return tw.Flush()
	})
}
