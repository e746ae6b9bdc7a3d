package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cabindev/cabin/internal/snapshot"
	"github.com/cabindev/cabin/internal/ui"
)

// snapshotCmd groups the snapshot subcommands.
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage config directory snapshots",
	Long: `Manage snapshots of the .devcontainer directory.

Cabin snapshots the config directory before destructive rewrites
(migrate, render --write). Snapshots live under .cabin/snapshots and
the oldest are pruned past a retention limit.`,
}

// snapshotListCmd represents the snapshot list command.
var snapshotListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List snapshots, newest first",
	Args:    cobra.NoArgs,
	RunE:    runSnapshotList,
}

// snapshotSaveCmd represents the snapshot save command.
var snapshotSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Snapshot the config directory now",
	Args:  cobra.NoArgs,
	RunE:  runSnapshotSave,
}

// snapshotRestoreCmd represents the snapshot restore command.
var snapshotRestoreCmd = &cobra.Command{
	Use:   "restore <name>",
	Short: "Restore the config directory from a snapshot",
	Long: `Restore the .devcontainer directory from a named snapshot.

The current config directory is snapshotted before the restore, so a
bad restore can itself be undone.`,
	Args: cobra.ExactArgs(1),
	RunE: runSnapshotRestore,
}

func init() {
	snapshotCmd.AddCommand(snapshotListCmd)
	snapshotCmd.AddCommand(snapshotSaveCmd)
	snapshotCmd.AddCommand(snapshotRestoreCmd)

	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshotList(cmd *cobra.Command, args []string) error {
	ws, err := loadWorkspace()
	if err != nil {
		return err
	}

	snapshots, err := snapshot.List(ws.SnapshotsDir())
	if err != nil {
		return err
	}

	if len(snapshots) == 0 {
		ui.Info("No snapshots yet")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCREATED\tFILES")
	for _, snap := range snapshots {
		fmt.Fprintf(w, "%s\t%s\t%d\n", snap.Name, snap.Created.Format("2006-01-02 15:04:05"), snap.FileCount)
	}
	return w.Flush()
}

func runSnapshotSave(cmd *cobra.Command, args []string) error {
	ws, err := loadWorkspace()
	if err != nil {
		return err
	}

	name, err := snapshot.Create(ws.SnapshotsDir(), ws.ConfigDir())
	if err != nil {
		return err
	}
	if name == "" {
		ui.Warning("Config directory is empty, nothing to snapshot")
		return nil
	}
	ui.Snapshot("Saved %s", name)
	return nil
}

func runSnapshotRestore(cmd *cobra.Command, args []string) error {
	ws, err := loadWorkspace()
	if err != nil {
		return err
	}

	if err := snapshot.Restore(ws.SnapshotsDir(), ws.ConfigDir(), args[0]); err != nil {
		return err
	}
	ui.Success("Restored %s", args[0])
	return nil
}
