package cmd

import (
	"fmt"
	"os"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/spf13/cobra"

	"github.com/cabindev/cabin/internal/devcontainer"
	"github.com/cabindev/cabin/internal/fileutil"
	"github.com/cabindev/cabin/internal/snapshot"
	"github.com/cabindev/cabin/internal/ui"
)

var (
	renderOverlays []string
	renderFormat   string
	renderWrite    bool
)

// renderCmd represents the render command.
var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Print the fully resolved configuration",
	Long: `Resolve the devcontainer configuration and print the result.

Resolution merges overlay files over the base config and substitutes
variables (localWorkspaceFolder, containerEnv, devcontainerId, ...),
producing the exact document cabin provisions from.

The --format flag takes a Go template evaluated against the resolved
config, with the sprig function library available:

  cabin render --format '{{ .Image }}'
  cabin render --format '{{ .RemoteUser | default "root" }}'

With --write the resolved document replaces devcontainer.json in
place. A snapshot of the config directory is taken first; comments do
not survive the rewrite.`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringArrayVarP(&renderOverlays, "overlay", "o", nil, "Overlay config file (repeatable, later wins)")
	renderCmd.Flags().StringVarP(&renderFormat, "format", "f", "", "Go template applied to the resolved config")
	renderCmd.Flags().BoolVar(&renderWrite, "write", false, "Write the resolved document back to devcontainer.json")

	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	ws, err := loadWorkspace()
	if err != nil {
		return err
	}

	cfg, err := resolveWorkspace(ws, renderOverlays)
	if err != nil {
		return err
	}

	if renderFormat != "" {
		tmpl, err := template.New("render").Funcs(sprig.TxtFuncMap()).Parse(renderFormat)
		if err != nil {
			return fmt.Errorf("parse format template: %w", err)
		}
		if err := tmpl.Execute(os.Stdout, cfg); err != nil {
			return fmt.Errorf("render format template: %w", err)
		}
		fmt.Println()
		return nil
	}

	out, err := devcontainer.ToJSON(cfg)
	if err != nil {
		return err
	}

	if !renderWrite {
		fmt.Print(string(out))
		return nil
	}

	name, err := snapshot.Create(ws.SnapshotsDir(), ws.ConfigDir())
	if err != nil {
		return fmt.Errorf("snapshot before write: %w", err)
	}
	if name != "" {
		ui.Snapshot("Saved %s", name)
	}

	if err := fileutil.WriteFileAtomic(ws.ConfigPath, out, 0644); err != nil {
		return fmt.Errorf("write resolved config: %w", err)
	}
	ui.Success("Wrote resolved config to %s", ws.ConfigPath)
	return nil
}
