package devcontainer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cabindev/cabin/internal/vscode"
)

// DefaultWorkspaceMountRoot is where workspaces mount inside the
// container when the config does not say otherwise.
const DefaultWorkspaceMountRoot = "/workspaces"

// ResolveOptions configures configuration resolution.
type ResolveOptions struct {
	// Workspace is the host workspace root.
	Workspace string

	// DevcontainerID is the stable per-workspace identifier used for
	// ${devcontainerId}.
	DevcontainerID string

	// Overlays are additional documents merged over the main config,
	// in order (user defaults file, --overlay flags).
	Overlays [][]byte

	// LookupEnv resolves ${localEnv:VAR}. Defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// Resolve loads a configuration, applies overlays, and substitutes
// variables, producing the effective config for provisioning.
func Resolve(configPath string, opts ResolveOptions) (*Config, error) {
	main, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	docs := append([][]byte{main}, opts.Overlays...)

	merged := make(map[string]any)
	for i, doc := range docs {
		raw, err := AsMap(doc)
		if err != nil {
			if i == 0 {
				return nil, fmt.Errorf("%s: %w", configPath, err)
			}
			return nil, fmt.Errorf("overlay %d: %w", i, err)
		}
		merged = DeepMerge(merged, raw)
	}

	// First pass: read the fields the substitution context depends on.
	pre, err := FromMap(merged)
	if err != nil {
		return nil, err
	}

	workspaceFolder := pre.WorkspaceFolder
	if workspaceFolder == "" {
		workspaceFolder = DefaultWorkspaceMountRoot + "/" + filepath.Base(opts.Workspace)
	}

	sub := &Substitution{
		LocalWorkspaceFolder:     opts.Workspace,
		ContainerWorkspaceFolder: workspaceFolder,
		DevcontainerID:           opts.DevcontainerID,
		LookupEnv:                opts.LookupEnv,
		ContainerEnv:             pre.ContainerEnv,
	}

	expanded, err := sub.ExpandMap(merged)
	if err != nil {
		return nil, fmt.Errorf("substitute variables: %w", err)
	}

	cfg, err := FromMap(expanded)
	if err != nil {
		return nil, err
	}

	if cfg.WorkspaceFolder == "" {
		cfg.WorkspaceFolder = workspaceFolder
	}

	// Overlay merging unions extension lists naively; the editor
	// rules (case-insensitive identity, version pins superseding) are
	// applied once here.
	if cfg.Customizations != nil && cfg.Customizations.VSCode != nil {
		cfg.Customizations.VSCode.Extensions = vscode.MergeExtensions(cfg.Customizations.VSCode.Extensions)
	}
	return cfg, nil
}
