package devcontainer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	vsc "github.com/cabindev/cabin/internal/vscode"
)

// MigrationResult records the outcome of migrating one config file.
type MigrationResult struct {
	// Path is the file that was processed.
	Path string

	// NewPath is set when the file was relocated (legacy dotfile to
	// .devcontainer/devcontainer.json).
	NewPath string

	// Properties lists the legacy properties that were rewritten.
	Properties []string

	// Migrated indicates the file was changed (or would be, dry-run).
	Migrated bool

	// Error contains any error that occurred during migration.
	Error error
}

// MigrateOptions configures migration behavior.
type MigrateOptions struct {
	// DryRun if true, report changes without writing.
	DryRun bool
}

// NeedsMigration reports whether a document uses legacy top-level
// properties (extensions, settings, devPort).
func NeedsMigration(data []byte) (bool, error) {
	raw, err := AsMap(data)
	if err != nil {
		return false, err
	}
	return len(legacyProperties(raw)) > 0, nil
}

func legacyProperties(raw map[string]any) []string {
	var props []string
	for _, key := range []string{"extensions", "settings", "devPort"} {
		if _, ok := raw[key]; ok {
			props = append(props, key)
		}
	}
	return props
}

// MigrateDocument rewrites legacy top-level properties into the
// customizations.vscode block and forwardPorts. The rewrite works at
// the map level so properties cabin does not interpret survive.
// Comments do not survive a rewrite; callers should snapshot first.
func MigrateDocument(data []byte) ([]byte, []string, error) {
	raw, err := AsMap(data)
	if err != nil {
		return nil, nil, err
	}

	props := legacyProperties(raw)
	if len(props) == 0 {
		return data, nil, nil
	}

	vscode := digMap(raw, "customizations", "vscode")

	if exts, ok := raw["extensions"].([]any); ok {
		existing, _ := vscode["extensions"].([]any)
		vscode["extensions"] = listUnion(existing, exts)
		delete(raw, "extensions")
	}

	if settings, ok := raw["settings"].(map[string]any); ok {
		existing, _ := vscode["settings"].(map[string]any)
		vscode["settings"] = vsc.MergeSettings(settings, existing)
		delete(raw, "settings")
	}

	if port, ok := raw["devPort"]; ok {
		ports, _ := raw["forwardPorts"].([]any)
		raw["forwardPorts"] = listUnion(ports, []any{port})
		delete(raw, "devPort")
	}

	if _, err := FromMap(raw); err != nil {
		return nil, nil, fmt.Errorf("migrated document is invalid: %w", err)
	}

	// Marshal the raw map, not the typed config, so properties cabin
	// does not model survive the rewrite.
	out, err := json.MarshalIndent(raw, "", "\t")
	if err != nil {
		return nil, nil, fmt.Errorf("marshal migrated document: %w", err)
	}
	return append(out, '\n'), props, nil
}

// digMap returns the nested map at the given key path, creating
// intermediate maps as needed.
func digMap(raw map[string]any, path ...string) map[string]any {
	current := raw
	for _, key := range path {
		next, ok := current[key].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[key] = next
		}
		current = next
	}
	return current
}

// MigrateFile migrates a single config file in place. Legacy dotfile
// configs (.devcontainer.json) are additionally relocated to
// .devcontainer/devcontainer.json.
func MigrateFile(path string, opts MigrateOptions) (*MigrationResult, error) {
	result := &MigrationResult{Path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Error = fmt.Errorf("read file: %w", err)
		return result, result.Error
	}

	migrated, props, err := MigrateDocument(data)
	if err != nil {
		result.Error = fmt.Errorf("migrate: %w", err)
		return result, result.Error
	}
	result.Properties = props

	relocate := filepath.Base(path) == LegacyFileName
	if relocate {
		result.NewPath = filepath.Join(filepath.Dir(path), DirName, FileName)
	}

	result.Migrated = len(props) > 0 || relocate
	if !result.Migrated || opts.DryRun {
		return result, nil
	}

	target := path
	if relocate {
		if err := os.MkdirAll(filepath.Dir(result.NewPath), 0755); err != nil {
			result.Error = fmt.Errorf("create %s: %w", DirName, err)
			return result, result.Error
		}
		target = result.NewPath
	}

	if err := os.WriteFile(target, migrated, 0644); err != nil {
		result.Error = fmt.Errorf("write file: %w", err)
		return result, result.Error
	}

	if relocate {
		if err := os.Remove(path); err != nil {
			result.Error = fmt.Errorf("remove legacy file: %w", err)
			return result, result.Error
		}
	}

	return result, nil
}

// MigrateWorkspace migrates every config under a workspace root.
func MigrateWorkspace(workspace string, opts MigrateOptions) ([]*MigrationResult, error) {
	configs, err := ListConfigs(workspace)
	if err != nil {
		return nil, err
	}

	var results []*MigrationResult
	for _, path := range configs {
		result, _ := MigrateFile(path, opts)
		results = append(results, result)
	}
	return results, nil
}

// FormatMigrationSummary creates a human-readable summary of results.
func FormatMigrationSummary(results []*MigrationResult, dryRun bool) string {
	var sb strings.Builder

	var migrated, unchanged, errors int
	for _, r := range results {
		switch {
		case r.Error != nil:
			errors++
		case r.Migrated:
			migrated++
		default:
			unchanged++
		}
	}

	action := "Migrated"
	if dryRun {
		action = "Would migrate"
	}

	sb.WriteString(fmt.Sprintf("\n%s: %d file(s)\n", action, migrated))
	sb.WriteString(fmt.Sprintf("Already current: %d file(s)\n", unchanged))
	if errors > 0 {
		sb.WriteString(fmt.Sprintf("Errors: %d file(s)\n", errors))
	}

	for _, r := range results {
		if r.Error != nil {
			sb.WriteString(fmt.Sprintf("  - %s: %v\n", r.Path, r.Error))
			continue
		}
		if !r.Migrated {
			continue
		}
		line := fmt.Sprintf("  - %s", r.Path)
		if len(r.Properties) > 0 {
			line += fmt.Sprintf(" (rewrote: %s)", strings.Join(r.Properties, ", "))
		}
		if r.NewPath != "" {
			line += fmt.Sprintf(" -> %s", r.NewPath)
		}
		sb.WriteString(line + "\n")
	}

	return sb.String()
}
