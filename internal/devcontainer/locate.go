package devcontainer

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Locate searches upward from startDir for a devcontainer
// configuration and returns the workspace root and config path.
//
// Within each directory the lookup order follows the schema's
// documented locations:
//
//  1. .devcontainer/devcontainer.json
//  2. .devcontainer.json
//  3. .devcontainer/<dir>/devcontainer.json (one level, sorted)
func Locate(startDir string) (workspace, configPath string, err error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", "", fmt.Errorf("resolve start directory: %w", err)
	}

	for {
		if path, ok := configIn(dir); ok {
			return dir, path, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", "", fmt.Errorf("no devcontainer configuration found (searched upward from %s)", startDir)
}

// configIn checks a single directory for a devcontainer config.
func configIn(dir string) (string, bool) {
	primary := filepath.Join(dir, DirName, FileName)
	if fileExists(primary) {
		return primary, true
	}

	legacy := filepath.Join(dir, LegacyFileName)
	if fileExists(legacy) {
		return legacy, true
	}

	// Subfolder configs: .devcontainer/<name>/devcontainer.json
	entries, err := os.ReadDir(filepath.Join(dir, DirName))
	if err != nil {
		return "", false
	}

	var candidates []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		nested := filepath.Join(dir, DirName, entry.Name(), FileName)
		if fileExists(nested) {
			candidates = append(candidates, nested)
		}
	}
	if len(candidates) == 0 {
		return "", false
	}

	sort.Strings(candidates)
	return candidates[0], true
}

// ListConfigs returns every devcontainer config under a workspace
// root, for workspaces that keep multiple subfolder configurations.
func ListConfigs(workspace string) ([]string, error) {
	var configs []string

	primary := filepath.Join(workspace, DirName, FileName)
	if fileExists(primary) {
		configs = append(configs, primary)
	}
	legacy := filepath.Join(workspace, LegacyFileName)
	if fileExists(legacy) {
		configs = append(configs, legacy)
	}

	entries, err := os.ReadDir(filepath.Join(workspace, DirName))
	if err != nil {
		if os.IsNotExist(err) {
			return configs, nil
		}
		return nil, fmt.Errorf("read %s: %w", DirName, err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		nested := filepath.Join(workspace, DirName, entry.Name(), FileName)
		if fileExists(nested) {
			configs = append(configs, nested)
		}
	}

	sort.Strings(configs)
	return configs, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
