package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lexia/kurai/lexia"
)

var (
	gridPage    int
	gridPerPage int
	gridParams  []string
)

// gridsCmd groups grid commands
var gridsCmd = &cobra.Command{
	Use:     "grids",
	Aliases: []string{"grid"},
	Short:   "Read grid definitions and rows",
}

var gridDataCmd = &cobra.Command{
	Use:     "data ID",
	Short:   "Show a page of grid rows",
	Example: `  kurai grids data 12 --param cliente=ACME --filter 'daysSince(created_at) < 7'`,
	Args:    cobra.ExactArgs(1),
	PreRunE: connect,
	RunE:    runGridData,
}

var gridInfoCmd = &cobra.Command{
	Use:     "info ID",
	Short:   "Show the definition of a grid",
	Args:    cobra.ExactArgs(1),
	PreRunE: connect,
	RunE:    runGridInfo,
}

func init() {
	rootCmd.AddCommand(gridsCmd)
	gridsCmd.AddCommand(gridDataCmd, gridInfoCmd)

	gridDataCmd.Flags().IntVar(&gridPage, "page", 1, "page number")
	gridDataCmd.Flags().IntVar(&gridPerPage, "per-page", 50, "rows per page")
	gridDataCmd.Flags().StringArrayVar(&gridParams, "param", nil, "server-side filter as key=value (repeatable)")
	addFilterFlags(gridDataCmd)
}

// parseParams turns key=value pairs into a map
func parseParams(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	params := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, inputErrorf("invalid --param %q: expected key=value", pair)
		}
		if key == "page" || key == "per_page" {
			return nil, inputErrorf("invalid --param %q: use --page and --per-page", pair)
		}
		params[key] = value
	}
	return params, nil
}

func runGridData(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}
	params, err := parseParams(gridParams)
	if err != nil {
		return err
	}

	q := lexia.GridQuery{Page: gridPage, PerPage: gridPerPage, Filters: params}
	result, err := call(cmd.Context(), func(ctx context.Context) (lexia.Object, error) {
		return client.GetGridData(ctx, ids[0], q)
	})
	if err != nil {
		return err
	}

	result, err = applyFilter(cmd.Context(), result, "")
	if err != nil {
		return err
	}

	return render(cmd, result, nil)
}

func runGridInfo(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}

	result, err := call(cmd.Context(), func(ctx context.Context) (lexia.Object, error) {
		return client.GetGridInfo(ctx, ids[0])
	})
	if err != nil {
		return err
	}

	return render(cmd, result, nil)
}
