package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/cabindev/cabin/internal/devcontainer"
	"github.com/cabindev/cabin/internal/docker"
	"github.com/cabindev/cabin/internal/lock"
	"github.com/cabindev/cabin/internal/ui"
)

var downRemove bool

// downCmd represents the down command.
var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Stop the dev container",
	Long: `Stop the workspace's dev container.

The configured shutdownAction decides the default behavior:
stopContainer stops the container, stopCompose stops the compose
project, none leaves everything running. --rm removes the container
after stopping.`,
	RunE: runDown,
}

func init() {
	downCmd.Flags().BoolVar(&downRemove, "rm", false, "Remove the container after stopping")

	rootCmd.AddCommand(downCmd)
}

func runDown(cmd *cobra.Command, args []string) error {
	ws, err := loadWorkspace()
	if err != nil {
		return err
	}

	cfg, err := devcontainer.Load(ws.ConfigPath)
	if err != nil {
		return err
	}

	action := cfg.ShutdownAction
	if action == "" {
		if cfg.Base() == devcontainer.BaseCompose {
			action = "stopCompose"
		} else {
			action = "stopContainer"
		}
	}
	if action == "none" && !downRemove {
		ui.Info("shutdownAction is none; leaving the container running")
		return nil
	}

	return lock.WithLock(ws.LocksDir(), "down", func() error {
		ctx := cmd.Context()

		if action == "stopCompose" {
			return composeDown(ctx, ws.Root, ws.ConfigDir(), ws.OverridePath(), ws.Name(), cfg)
		}

		return withDockerClient(ctx, func(client *docker.Client) error {
			state, err := client.FindByWorkspace(ctx, ws.Root)
			if err != nil {
				return err
			}

			if state.Running {
				if err := client.Stop(ctx, state.ID, 30*time.Second); err != nil {
					return err
				}
				ui.Success("stopped %s", state.Name)
			}

			if downRemove {
				if err := client.Remove(ctx, state.ID); err != nil {
					return err
				}
				ui.Success("removed %s", state.Name)
			}
			return nil
		})
	})
}

func composeDown(ctx context.Context, root, configDir, overridePath, name string, cfg *devcontainer.Config) error {
	files := make([]string, 0, len(cfg.DockerComposeFile)+1)
	for _, file := range cfg.DockerComposeFile {
		if !filepath.IsAbs(file) {
			file = filepath.Join(configDir, file)
		}
		files = append(files, file)
	}
	files = append(files, overridePath)

	project := &docker.ComposeProject{
		Dir:     root,
		Files:   files,
		Project: "cabin-" + name,
	}

	if downRemove {
		if err := project.Down(ctx); err != nil {
			return err
		}
		ui.Success("compose project removed")
		return nil
	}

	if err := project.Stop(ctx); err != nil {
		return fmt.Errorf("stop compose project: %w", err)
	}
	ui.Success("compose project stopped")
	return nil
}
