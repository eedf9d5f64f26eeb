package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/lexia/kurai/lexia"
)

var (
	filterExpr string
	preset     string
	filterKey  string
)

// areasCmd groups area commands
var areasCmd = &cobra.Command{
	Use:   "areas",
	Short: "Work with document areas",
}

var listAreasCmd = &cobra.Command{
	Use:     "list",
	Short:   "List the areas available to the API key",
	Args:    cobra.NoArgs,
	PreRunE: connect,
	RunE:    runListAreas,
}

// listAreasAliasCmd keeps the flat command name of earlier releases
var listAreasAliasCmd = &cobra.Command{
	Use:     "list-areas",
	Short:   listAreasCmd.Short,
	Args:    cobra.NoArgs,
	PreRunE: connect,
	RunE:    runListAreas,
}

func init() {
	rootCmd.AddCommand(areasCmd)
	areasCmd.AddCommand(listAreasCmd)
	rootCmd.AddCommand(listAreasAliasCmd)

	addFilterFlags(listAreasCmd)
	addFilterFlags(listAreasAliasCmd)
}

// addFilterFlags adds the record filter flags to a list command
func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression, e.g. 'containsI(nombre, \"factura\")'")
	cmd.Flags().StringVarP(&preset, "preset", "p", "", "use a preset filter from config")
	cmd.Flags().StringVar(&filterKey, "filter-key", "", "response member holding the list to filter (default: the only list)")
}

// applyFilter filters the list in result when --filter or --preset is set
func applyFilter(ctx context.Context, result lexia.Object, key string) (lexia.Object, error) {
	if filterKey != "" {
		key = filterKey
	}
	if filterExpr != "" || preset != "" {
		logger.Debug().Str("filter", filterExpr).Str("preset", preset).Str("key", key).Msg("Filtering results")
	}
	return filters.Apply(ctx, result, key, filterExpr, preset)
}

func runListAreas(cmd *cobra.Command, args []string) error {
	result, err := call(cmd.Context(), client.ListAreas)
	if err != nil {
		return err
	}

	result, err = applyFilter(cmd.Context(), result, "areas")
	if err != nil {
		return err
	}

	return render(cmd, result, func(w io.Writer) error {
		areas, err := decodeAreas(result)
		if err != nil {
			return writeText(w, result)
		}
		if len(areas) == 0 {
			fmt.Fprintln(w, "No areas found.")
			return nil
		}

		fmt.Fprintf(w, "Found %d areas:\n", len(areas))
		for _, area := range areas {
			fmt.Fprintf(w, "  • %s (ID: %d)\n", area.Name, area.ID)
		}
		return nil
	})
}
