package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/lexia/kurai/lexia"
)

// healthCmd represents the health command
var healthCmd = &cobra.Command{
	Use:     "health",
	Aliases: []string{"health-check"},
	Short:   "Check that the Lexia API is reachable with the configured key",
	Args:    cobra.NoArgs,
	PreRunE: connect,
	RunE:    runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, args []string) error {
	var health lexia.Health
	err := retrier.Do(cmd.Context(), func(ctx context.Context) error {
		var err error
		health, err = client.HealthCheck(ctx)
		return err
	})

	renderErr := render(cmd, health, func(w io.Writer) error {
		if health.OK() {
			fmt.Fprintln(w, "✓ Lexia API is reachable")
			return nil
		}
		fmt.Fprintln(w, "✗ Lexia API is not reachable")
		return nil
	})
	if err != nil {
		return err
	}
	return renderErr
}
