package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cabindev/cabin/internal/ui"
	"github.com/cabindev/cabin/internal/update"
)

var updateCheckOnly bool

// updateCmd represents the update command.
var updateCmd = &cobra.Command{
	Use:     "update",
	Aliases: []string{"selfupdate"},
	Short:   "Update cabin to the latest release",
	Long: `Update the cabin binary in place from GitHub releases.

Examples:
  cabin update           # Install the latest version
  cabin update --check   # Check without installing`,
	Args: cobra.NoArgs,
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().BoolVar(&updateCheckOnly, "check", false, "Only check for updates, don't install")

	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	ui.Info("Current version: %s (%s)", version, update.PlatformInfo())

	if updateCheckOnly {
		release, available, err := update.CheckForUpdate(ctx, version)
		if err != nil {
			return fmt.Errorf("check for updates: %w", err)
		}
		if !available {
			ui.Success("Already up to date")
			return nil
		}
		ui.Success("New version available: %s (released %s)", release.Version, release.PublishedAt)
		printChangelog(release.Changelog)
		ui.Info("Run 'cabin update' to install")
		return nil
	}

	release, err := update.Update(ctx, version)
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}
	if release == nil {
		ui.Success("Already up to date")
		return nil
	}

	ui.Success("Updated to %s", release.Version)
	printChangelog(release.Changelog)
	return nil
}

func printChangelog(changelog string) {
	if changelog == "" {
		return
	}
	const maxLines = 10
	lines := strings.Split(changelog, "\n")
	shown := len(lines)
	if shown > maxLines {
		shown = maxLines
	}
	for _, line := range lines[:shown] {
		fmt.Printf("  %s\n", line)
	}
	if len(lines) > shown {
		fmt.Printf("  ... (%d more lines)\n", len(lines)-shown)
	}
}
