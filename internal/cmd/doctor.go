package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cabindev/cabin/internal/devcontainer"
	"github.com/cabindev/cabin/internal/docker"
	"github.com/cabindev/cabin/internal/gitutil"
	"github.com/cabindev/cabin/internal/preflight"
	"github.com/cabindev/cabin/internal/ui"
)

// doctorCmd represents the doctor command.
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose the environment and workspace",
	Long: `Run environment and workspace diagnostics.

Checks host binaries, the Docker daemon, and the workspace
configuration, and reports anything that would keep 'cabin up' from
working.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	failures := 0

	ui.Header("Host binaries")
	for _, bin := range preflight.AllBinaries() {
		switch {
		case preflight.IsBinaryAvailable(bin.Name):
			ui.Success("%s", bin.Name)
		case bin.Required:
			ui.Error("%s missing. %s", bin.Name, bin.InstallHint)
			failures++
		default:
			ui.Warning("%s missing (optional). %s", bin.Name, bin.InstallHint)
		}
	}

	ui.Header("Docker daemon")
	if err := checkDaemon(ctx); err != nil {
		ui.Error("%v", err)
		failures++
	} else {
		ui.Success("daemon reachable")
	}

	ui.Header("Workspace")
	if err := checkWorkspaceConfig(); err != nil {
		ui.Error("%v", err)
		failures++
	}

	fmt.Println()
	if failures > 0 {
		return fmt.Errorf("%d check(s) failed", failures)
	}
	ui.Success("All checks passed")
	return nil
}

func checkDaemon(ctx context.Context) error {
	return withDockerClient(ctx, func(client *docker.Client) error {
		return client.Ping(ctx)
	})
}

func checkWorkspaceConfig() error {
	ws, err := loadWorkspace()
	if err != nil {
		return err
	}
	ui.Success("workspace %s", ws.Root)
	ui.Info("config %s", ws.ConfigPath)

	if gitutil.IsRepo(ws.Root) {
		if head, err := gitutil.Head(ws.Root); err == nil {
			ui.Info("git HEAD %s", head)
		}
	} else {
		ui.Warning("not a git repository; submodule init will be skipped")
	}

	data, err := os.ReadFile(ws.ConfigPath)
	if err != nil {
		return err
	}
	result := devcontainer.ValidateDocument(data)
	for _, warning := range result.Warnings {
		ui.Warning("%s", warning)
	}
	if len(result.Errors) > 0 {
		return fmt.Errorf("config invalid: %w", errors.Join(result.Errors...))
	}
	ui.Success("config valid")
	return nil
}
