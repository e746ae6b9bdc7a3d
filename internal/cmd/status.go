package cmd

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cabindev/cabin/internal/docker"
	"github.com/cabindev/cabin/internal/gitutil"
	"github.com/cabindev/cabin/internal/ui"
)

var statusAll bool

// statusCmd represents the status command.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show dev containers cabin manages",
	Long: `Show the state of the current workspace's dev container.

With --all, every container cabin has created is listed, across
workspaces.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVarP(&statusAll, "all", "a", false, "List containers for all workspaces")

	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if statusAll {
		return withDockerClient(ctx, func(client *docker.Client) error {
			states, err := client.ListManaged(ctx)
			if err != nil {
				return err
			}
			if len(states) == 0 {
				ui.Info("no cabin containers found")
				return nil
			}
			printStates(states)
			return nil
		})
	}

	ws, err := loadWorkspace()
	if err != nil {
		return err
	}

	ui.Header("workspace %s", ws.Root)
	fmt.Printf("  config: %s\n", ws.ConfigPath)
	if head, err := gitutil.Head(ws.Root); err == nil {
		fmt.Printf("  commit: %s\n", head)
	}

	return withDockerClient(ctx, func(client *docker.Client) error {
		state, err := client.FindByWorkspace(ctx, ws.Root)
		if errors.Is(err, docker.ErrNotFound) {
			ui.Info("no container; run 'cabin up'")
			return nil
		}
		if err != nil {
			return err
		}

		if state.Running {
			ui.Success("%s (%s) %s", state.Name, state.ID[:12], state.Status)
		} else {
			ui.Warning("%s (%s) %s", state.Name, state.ID[:12], state.Status)
		}
		return nil
	})
}

func printStates(states []docker.ContainerState) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSTATE\tWORKSPACE\tIMAGE")
	for _, state := range states {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", state.Name, state.State, state.Workspace, state.Image)
	}
	w.Flush()
}
