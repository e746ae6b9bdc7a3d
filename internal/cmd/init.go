package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/spf13/cobra"

	"github.com/cabindev/cabin/internal/devcontainer"
	"github.com/cabindev/cabin/internal/ui"
)

var (
	initDir string
	initYes bool
)

// initCmd represents the init command.
var initCmd = &cobra.Command{
	Use:   "init [template]",
	Short: "Scaffold a devcontainer configuration",
	Long: `Create a starter .devcontainer/devcontainer.json from a template.

Templates:
  base        Minimal Debian image, no toolchain
  go          Go toolchain with gopls and staticcheck extensions
  python      Python toolchain with formatting on save
  scientific  Scientific Python plus a nightly Rust toolchain, with
              submodule init and pip/cargo installs on create

If no template is given, "base" is used. The scaffold never overwrites
an existing config; rerun after deleting it to start over.`,
	Args:              cobra.MaximumNArgs(1),
	RunE:              runInit,
	ValidArgsFunction: completeTemplateNames,
}

func init() {
	initCmd.Flags().StringVarP(&initDir, "dir", "d", ".", "Directory to scaffold into")
	initCmd.Flags().BoolVarP(&initYes, "yes", "y", false, "Skip interactive prompts")

	rootCmd.AddCommand(initCmd)
}

// scaffoldData is the context the scaffold templates render with.
type scaffoldData struct {
	Name string
}

func runInit(cmd *cobra.Command, args []string) error {
	templateName := "base"
	if len(args) > 0 {
		templateName = args[0]
	}

	text, ok := scaffoldTemplates[templateName]
	if !ok {
		return fmt.Errorf("unknown template %q (have: %s)", templateName, strings.Join(templateNames(), ", "))
	}

	absDir, err := filepath.Abs(initDir)
	if err != nil {
		return fmt.Errorf("resolve directory: %w", err)
	}

	target := filepath.Join(absDir, devcontainer.DirName, devcontainer.FileName)
	if _, err := os.Stat(target); err == nil {
		ui.Warning("%s already exists", target)
		if !initYes {
			ok, err := promptYesNo("Overwrite it?")
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("Aborted.")
				return nil
			}
		}
	}

	rendered, err := renderScaffold(templateName, text, scaffoldData{Name: filepath.Base(absDir)})
	if err != nil {
		return err
	}

	// The template output must itself be a valid config.
	if result := devcontainer.ValidateDocument(rendered); !result.OK() {
		return fmt.Errorf("template %q produced an invalid config: %v", templateName, result.Errors[0])
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("create %s: %w", devcontainer.DirName, err)
	}
	if err := os.WriteFile(target, rendered, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	ui.Success("Created %s", target)
	fmt.Println()
	ui.Info("Next steps:")
	fmt.Println("  1. Review and edit the generated devcontainer.json")
	fmt.Println("  2. Run 'cabin doctor' to verify your setup")
	fmt.Println("  3. Run 'cabin up' to provision the container")
	return nil
}

func renderScaffold(name, text string, data scaffoldData) ([]byte, error) {
	tmpl, err := template.New(name).Funcs(sprig.TxtFuncMap()).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func templateNames() []string {
	names := make([]string, 0, len(scaffoldTemplates))
	for name := range scaffoldTemplates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Scaffold templates. Rendered with sprig so templates can normalize
// the project name themselves.

var scaffoldTemplates = map[string]string{
	"base":       scaffoldBase,
	"go":         scaffoldGo,
	"python":     scaffoldPython,
	"scientific": scaffoldScientific,
}

const scaffoldBase = `{
	// Generated by cabin init. Edit freely.
	"name": "{{ .Name }}",
	"image": "mcr.microsoft.com/devcontainers/base:debian",
	"customizations": {
		"vscode": {
			"settings": {
				"files.trimTrailingWhitespace": true
			},
			"extensions": []
		}
	}
}
`

const scaffoldGo = `{
	// Generated by cabin init. Edit freely.
	"name": "{{ .Name }}",
	"image": "mcr.microsoft.com/devcontainers/go:1",
	"features": {
		"ghcr.io/devcontainers/features/go:1": {
			"version": "latest"
		}
	},
	"customizations": {
		"vscode": {
			"settings": {
				"go.toolsManagement.autoUpdate": true,
				"[go]": {
					"editor.formatOnSave": true
				}
			},
			"extensions": [
				"golang.go"
			]
		}
	},
	"postCreateCommand": "go mod download"
}
`

const scaffoldPython = `{
	// Generated by cabin init. Edit freely.
	"name": "{{ .Name }}",
	"image": "mcr.microsoft.com/devcontainers/python:3.11",
	"customizations": {
		"vscode": {
			"settings": {
				"python.terminal.activateEnvironment": true,
				"[python]": {
					"editor.formatOnSave": true,
					"editor.codeActionsOnSave": {
						"source.organizeImports": "explicit"
					}
				}
			},
			"extensions": [
				"ms-python.python",
				"ms-python.vscode-pylance"
			]
		}
	},
	"postCreateCommand": "pip install --user -e ."
}
`

const scaffoldScientific = `{
	// Generated by cabin init. Edit freely.
	"name": "{{ .Name }}",
	"image": "mcr.microsoft.com/devcontainers/python:3.11",
	"features": {
		"ghcr.io/devcontainers/features/rust:1": {
			"version": "latest",
			"profile": "default"
		},
		"ghcr.io/devcontainers/features/python:1": {
			"version": "3.11",
			"installTools": true
		}
	},
	"customizations": {
		"vscode": {
			"settings": {
				"editor.rulers": [88],
				"python.analysis.typeCheckingMode": "strict",
				"[python]": {
					"editor.formatOnSave": true,
					"editor.defaultFormatter": "ms-python.black-formatter"
				},
				"[rust]": {
					"editor.formatOnSave": true
				},
				"cSpell.words": [
					"dtype",
					"ndarray",
					"pyplot",
					"{{ .Name | lower | replace "-" "" }}"
				]
			},
			"extensions": [
				"ms-python.python",
				"ms-python.black-formatter",
				"rust-lang.rust-analyzer",
				"streetsidesoftware.code-spell-checker"
			]
		}
	},
	"onCreateCommand": "git submodule update --init --recursive && rustup default nightly && pip install --user -e .[dev] && cargo fetch"
}
`
