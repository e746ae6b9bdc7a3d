// Package config handles workspace discovery and cabin's per-workspace
// state directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/cabindev/cabin/internal/devcontainer"
)

// StateDirName is cabin's state directory inside a workspace.
const StateDirName = ".cabin"

// Workspace holds the paths cabin works with for one project.
type Workspace struct {
	// Root is the workspace root directory.
	Root string

	// ConfigPath is the devcontainer.json in effect.
	ConfigPath string
}

// Find searches upward from dir for a devcontainer configuration.
func Find(dir string) (*Workspace, error) {
	root, configPath, err := devcontainer.Locate(dir)
	if err != nil {
		return nil, err
	}
	return &Workspace{Root: root, ConfigPath: configPath}, nil
}

// FindCwd locates the workspace from the current directory.
func FindCwd() (*Workspace, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	return Find(dir)
}

// StateDir returns the workspace state directory.
func (w *Workspace) StateDir() string {
	return filepath.Join(w.Root, StateDirName)
}

// LocksDir returns the directory for workspace lock files.
func (w *Workspace) LocksDir() string {
	return filepath.Join(w.StateDir(), "locks")
}

// SnapshotsDir returns the directory for configuration snapshots.
func (w *Workspace) SnapshotsDir() string {
	return filepath.Join(w.StateDir(), "snapshots")
}

// OverridePath is where the generated compose override lands.
func (w *Workspace) OverridePath() string {
	return filepath.Join(w.StateDir(), "override.yml")
}

// ConfigDir returns the directory holding the active config file.
func (w *Workspace) ConfigDir() string {
	return filepath.Dir(w.ConfigPath)
}

// Name returns the workspace directory name.
func (w *Workspace) Name() string {
	return filepath.Base(w.Root)
}

// DevcontainerID returns the stable id for the workspace, minting and
// persisting one on first use. The id feeds the ${devcontainerId}
// variable and container labels, so it must survive rebuilds.
func (w *Workspace) DevcontainerID() (string, error) {
	idPath := filepath.Join(w.StateDir(), "id")

	data, err := os.ReadFile(idPath)
	if err == nil {
		id := strings.TrimSpace(string(data))
		if id != "" {
			return id, nil
		}
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("read devcontainer id: %w", err)
	}

	id := uuid.NewString()
	if err := os.MkdirAll(w.StateDir(), 0o755); err != nil {
		return "", fmt.Errorf("create state dir: %w", err)
	}
	if err := os.WriteFile(idPath, []byte(id+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("write devcontainer id: %w", err)
	}

	return id, nil
}
