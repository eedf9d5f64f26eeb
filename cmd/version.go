package cmd

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/lexia/kurai/config"
	"github.com/lexia/kurai/lexia"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	PersistentPreRunE: initializeOutput,
	RunE:              runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// initializeOutput applies the output flags without loading a config file
func initializeOutput(cmd *cobra.Command, args []string) error {
	cfg = &config.Config{Output: config.OutputConfig{Format: "text"}}
	if outputFmt != "" {
		if err := config.ValidateOutputFormat(outputFmt); err != nil {
			return inputErrorf("%v", err)
		}
		cfg.Output.Format = outputFmt
	}
	return nil
}

type versionInfo struct {
	Version       string `json:"version"`
	BuildTime     string `json:"build_time"`
	ClientVersion string `json:"client_version"`
	GoVersion     string `json:"go_version"`
	Platform      string `json:"platform"`
}

func runVersion(cmd *cobra.Command, args []string) error {
	info := versionInfo{
		Version:       version,
		BuildTime:     buildTime,
		ClientVersion: lexia.Version,
		GoVersion:     runtime.Version(),
		Platform:      runtime.GOOS + "/" + runtime.GOARCH,
	}

	return render(cmd, info, func(w io.Writer) error {
		fmt.Fprintf(w, "kurai %s\n", info.Version)
		fmt.Fprintf(w, "  Built:  %s\n", info.BuildTime)
		fmt.Fprintf(w, "  Client: %s\n", info.ClientVersion)
		fmt.Fprintf(w, "  Go:     %s (%s)\n", info.GoVersion, info.Platform)
		return nil
	})
}
