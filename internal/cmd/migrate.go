package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cabindev/cabin/internal/devcontainer"
	"github.com/cabindev/cabin/internal/snapshot"
	"github.com/cabindev/cabin/internal/ui"
)

var migrateDryRun bool

// migrateCmd represents the migrate command.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Rewrite legacy configuration properties",
	Long: `Rewrite legacy devcontainer properties to their current form.

Rewrites performed:
  - top-level "extensions" and "settings" move into customizations.vscode
  - "devPort" becomes a forwardPorts entry
  - a root .devcontainer.json relocates to .devcontainer/devcontainer.json

Every config under the workspace is processed. Comments do not survive
a rewrite, so a snapshot of the config directory is taken first.

Use --dry-run to preview without writing.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().BoolVarP(&migrateDryRun, "dry-run", "n", false, "Report changes without writing")

	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ws, err := loadWorkspace()
	if err != nil {
		return err
	}

	if !migrateDryRun {
		name, err := snapshot.Create(ws.SnapshotsDir(), ws.ConfigDir())
		if err != nil {
			return fmt.Errorf("snapshot before migrate: %w", err)
		}
		if name != "" {
			ui.Snapshot("Saved %s", name)
		}
	}

	results, err := devcontainer.MigrateWorkspace(ws.Root, devcontainer.MigrateOptions{DryRun: migrateDryRun})
	if err != nil {
		return err
	}

	fmt.Print(devcontainer.FormatMigrationSummary(results, migrateDryRun))

	var failed int
	for _, result := range results {
		if result.Error != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d file(s) failed to migrate", failed)
	}
	return nil
}
