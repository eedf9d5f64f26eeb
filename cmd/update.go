package cmd

import (
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/blang/semver"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"
)

var checkOnly bool

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update kurai to the latest release",
	Args:  cobra.NoArgs,
	RunE:  runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)
	updateCmd.Flags().BoolVar(&checkOnly, "check", false, "only report whether an update is available")
}

type updateStatus struct {
	Current   string `json:"current"`
	Latest    string `json:"latest"`
	Available bool   `json:"available"`
	Updated   bool   `json:"updated"`
	URL       string `json:"url,omitempty"`
}

// currentVersion parses the build version. Development builds have none.
func currentVersion() (semver.Version, error) {
	if version == "" || version == "dev" {
		return semver.Version{}, errors.New("development build: install a released version to use update")
	}
	v, err := semver.ParseTolerant(version)
	if err != nil {
		return semver.Version{}, fmt.Errorf("cannot parse build version %q: %w", version, err)
	}
	return v, nil
}

func runUpdate(cmd *cobra.Command, args []string) error {
	current, err := currentVersion()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	repo := cfg.Update.Repository

	logger.Debug().Str("repository", repo).Str("current", current.String()).Msg("Checking for updates")
	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(repo))
	if err != nil {
		return fmt.Errorf("failed to check for updates: %w", err)
	}
	if !found {
		return fmt.Errorf("no release found for %s/%s in %s", runtime.GOOS, runtime.GOARCH, repo)
	}

	latestVersion, err := semver.ParseTolerant(latest.Version())
	if err != nil {
		return fmt.Errorf("cannot parse release version %q: %w", latest.Version(), err)
	}

	status := updateStatus{
		Current:   current.String(),
		Latest:    latestVersion.String(),
		Available: latestVersion.GT(current),
		URL:       latest.URL,
	}

	if status.Available && !checkOnly {
		exe, err := selfupdate.ExecutablePath()
		if err != nil {
			return fmt.Errorf("could not locate executable path: %w", err)
		}

		logger.Info().Str("version", status.Latest).Str("asset", latest.AssetName).Msg("Downloading release")
		if err := selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, exe); err != nil {
			return fmt.Errorf("failed to update binary: %w", err)
		}
		status.Updated = true
	}

	return render(cmd, status, func(w io.Writer) error {
		switch {
		case !status.Available:
			fmt.Fprintf(w, "✓ kurai %s is the latest version\n", status.Current)
		case status.Updated:
			fmt.Fprintf(w, "✓ Updated kurai %s → %s\n", status.Current, status.Latest)
		default:
			fmt.Fprintf(w, "→ kurai %s is available (current %s)\n", status.Latest, status.Current)
			if status.URL != "" {
				fmt.Fprintf(w, "  %s\n", status.URL)
			}
			fmt.Fprintln(w, "  Run 'kurai update' to install it.")
		}
		return nil
	})
}
