package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/cabindev/cabin/internal/config"
	"github.com/cabindev/cabin/internal/devcontainer"
	"github.com/cabindev/cabin/internal/docker"
)

// withDockerClient executes a function with a Docker client, handling
// connection and cleanup.
func withDockerClient(ctx context.Context, fn func(*docker.Client) error) error {
	client, err := docker.NewClient()
	if err != nil {
		return fmt.Errorf("connect to docker: %w", err)
	}
	defer client.Close()

	return fn(client)
}

// loadWorkspace locates the workspace from the current directory.
func loadWorkspace() (*config.Workspace, error) {
	ws, err := config.FindCwd()
	if err != nil {
		return nil, fmt.Errorf("no devcontainer configuration found: %w", err)
	}
	return ws, nil
}

// resolveWorkspace loads and fully resolves the workspace config:
// overlays merged, variables substituted.
func resolveWorkspace(ws *config.Workspace, overlayFiles []string) (*devcontainer.Config, error) {
	id, err := ws.DevcontainerID()
	if err != nil {
		return nil, err
	}

	overlays := make([][]byte, 0, len(overlayFiles))
	for _, file := range overlayFiles {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read overlay %s: %w", file, err)
		}
		overlays = append(overlays, data)
	}

	return devcontainer.Resolve(ws.ConfigPath, devcontainer.ResolveOptions{
		Workspace:      ws.Root,
		DevcontainerID: id,
		Overlays:       overlays,
	})
}

// promptYesNo asks a yes/no question on the terminal. Non-TTY stdin
// answers no.
func promptYesNo(question string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, nil
	}

	fmt.Printf("%s [y/N]: ", question)
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("read response: %w", err)
	}

	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes", nil
}
