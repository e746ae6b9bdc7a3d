package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cabindev/cabin/internal/devcontainer"
	"github.com/cabindev/cabin/internal/ui"
)

var validateAll bool

// validateCmd represents the validate command.
var validateCmd = &cobra.Command{
	Use:     "validate [file]",
	Aliases: []string{"lint"},
	Short:   "Lint devcontainer configuration",
	Long: `Validate a devcontainer.json without touching containers.

Checks performed:
  1. JSONC syntax and schema shape
  2. Exactly one base: image, build, or dockerComposeFile
  3. Feature references and version pins
  4. Extension identifiers (publisher.name)
  5. Port ranges and shutdownAction values
  6. Unknown top-level keys (warning)
  7. Legacy pre-customizations properties (warning)

Examples:
  cabin validate
  cabin validate .devcontainer/ci/devcontainer.json
  cabin validate --all`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateAll, "all", false, "Validate every config in the workspace")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	paths, err := validateTargets(args)
	if err != nil {
		return err
	}

	var failures int
	for _, path := range paths {
		if !validateFile(path) {
			failures++
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d config(s) invalid", failures, len(paths))
	}
	return nil
}

func validateTargets(args []string) ([]string, error) {
	if len(args) == 1 {
		return []string{args[0]}, nil
	}

	ws, err := loadWorkspace()
	if err != nil {
		return nil, err
	}

	if validateAll {
		return devcontainer.ListConfigs(ws.Root)
	}
	return []string{ws.ConfigPath}, nil
}

func validateFile(path string) bool {
	ui.Header("%s", path)

	data, err := os.ReadFile(path)
	if err != nil {
		ui.Error("%v", err)
		return false
	}

	result := devcontainer.ValidateDocument(data)

	for _, warning := range result.Warnings {
		ui.Warning("%s", warning)
	}
	for _, err := range result.Errors {
		ui.Error("%v", err)
	}

	if len(result.Errors) == 0 {
		ui.Success("valid")
		return true
	}
	return false
}
