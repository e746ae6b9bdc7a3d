// Package cmd provides the CLI commands for cabin.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

const version = "0.3.0"

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "cabin",
	Short: "Dev containers from the command line",
	Long: `cabin - dev containers from the command line

A toolchain for devcontainer.json: parse, validate, resolve, and
provision development containers without an editor in the loop.

CONTAINER COMMANDS
  up                    Provision and start the dev container
    --overlay, -o       Merge additional config files over devcontainer.json
    --secrets, -s       Decrypt SOPS files into the remote environment
  down                  Stop the dev container (per shutdownAction)
    --rm                Remove the container as well
  status                Show dev containers cabin manages
  exec [cmd...]         Run a command inside the dev container

CONFIGURATION COMMANDS
  validate              Lint devcontainer.json (schema, base, extensions)
  render                Print the resolved configuration
    --write             Write the resolved config back (snapshots first)
  features              Show parsed features and install order
  migrate               Rewrite legacy properties into the modern schema
    --dry-run, -n       Show what would change without writing
  init [template]       Scaffold a .devcontainer (base, go, python, scientific)

MAINTENANCE
  snapshot list         List configuration snapshots
  snapshot restore      Roll the config back to a snapshot
  doctor                Pre-flight checks
  update                Update cabin to the latest release`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetVersionTemplate("cabin version {{.Version}}\n")
}
