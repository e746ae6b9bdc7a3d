package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cabindev/cabin/internal/devcontainer"
	"github.com/cabindev/cabin/internal/docker"
	"github.com/cabindev/cabin/internal/secrets"
)

// execCmd represents the exec command.
var execCmd = &cobra.Command{
	Use:   "exec [command...]",
	Short: "Run a command inside the dev container",
	Long: `Run a command inside the workspace's running dev container.

The command runs as remoteUser in workspaceFolder with remoteEnv
applied, the same environment lifecycle commands see.

Examples:
  cabin exec make test
  cabin exec -- npm run build`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExec,
}

func init() {
	rootCmd.AddCommand(execCmd)
}

func runExec(cmd *cobra.Command, args []string) error {
	ws, err := loadWorkspace()
	if err != nil {
		return err
	}

	cfg, err := resolveWorkspace(ws, nil)
	if err != nil {
		return err
	}

	return withDockerClient(cmd.Context(), func(client *docker.Client) error {
		state, err := client.FindByWorkspace(cmd.Context(), ws.Root)
		if err != nil {
			return err
		}
		if !state.Running {
			return fmt.Errorf("container %s is not running; run 'cabin up'", state.Name)
		}

		var stdout bytes.Buffer
		execer := &docker.ContainerExecer{
			Client:      client,
			ContainerID: state.ID,
			User:        cfg.RemoteUser,
			WorkingDir:  cfg.WorkspaceFolder,
			Stdout:      &stdout,
		}

		argv := args
		if len(argv) == 1 {
			// A single argument runs through the shell, matching the
			// string lifecycle command form.
			argv = (&devcontainer.Command{Shell: argv[0]}).Argv()
		}

		err = execer.Exec(cmd.Context(), argv, secrets.EnvSlice(cfg.RemoteEnv))
		os.Stdout.Write(stdout.Bytes())
		return err
	})
}
