package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/cabindev/cabin/internal/devcontainer"
	"github.com/cabindev/cabin/internal/snapshot"
)

// completeConfigPaths completes workspace config file paths.
func completeConfigPaths(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	ws, err := loadWorkspace()
	if err != nil {
		return nil, cobra.ShellCompDirectiveDefault
	}

	configs, err := devcontainer.ListConfigs(ws.Root)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var paths []string
	for _, path := range configs {
		if strings.HasPrefix(path, toComplete) {
			paths = append(paths, path)
		}
	}
	return paths, cobra.ShellCompDirectiveNoFileComp
}

// completeSnapshotNames completes snapshot names.
func completeSnapshotNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	ws, err := loadWorkspace()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	snapshots, err := snapshot.List(ws.SnapshotsDir())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var names []string
	for _, snap := range snapshots {
		if strings.HasPrefix(snap.Name, toComplete) {
			names = append(names, snap.Name)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

// completeTemplateNames completes scaffold template names.
func completeTemplateNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var names []string
	for _, name := range templateNames() {
		if strings.HasPrefix(name, toComplete) {
			names = append(names, name)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

// registerCompletions wires dynamic completions once every command is
// registered.
func registerCompletions() {
	validateCmd.ValidArgsFunction = completeConfigPaths
	snapshotRestoreCmd.ValidArgsFunction = completeSnapshotNames
}

func init() {
	cobra.OnInitialize(registerCompletions)
}
