// Package preflight provides pre-flight validation for required binaries and system checks.
package preflight

import (
	"os/exec"
)

// BinaryCheck represents a required binary and its purpose.
type BinaryCheck struct {
	Name        string
	Required    bool // false = warning only
	InstallHint string
}

// requiredBinaries defines binaries that must be present for cabin to function.
var requiredBinaries = []BinaryCheck{
	{
		Name:        "docker",
		Required:    true,
		InstallHint: "Install Docker: https://docs.docker.com/get-docker/",
	},
	{
		Name:        "git",
		Required:    true,
		InstallHint: "Install git: https://git-scm.com/downloads",
	},
}

// optionalBinaries enhance cabin but are not strictly required. sops
// is only needed for encrypted secret overlays, code only for opening
// the editor after up.
var optionalBinaries = []BinaryCheck{
	{
		Name:        "sops",
		Required:    false,
		InstallHint: "Install sops: brew install sops",
	},
	{
		Name:        "code",
		Required:    false,
		InstallHint: "Install the VS Code CLI: https://code.visualstudio.com/docs/editor/command-line",
	},
}

// CheckRequiredBinaries returns missing required binaries.
func CheckRequiredBinaries() []BinaryCheck {
	var missing []BinaryCheck

	for _, bin := range requiredBinaries {
		if _, err := exec.LookPath(bin.Name); err != nil {
			missing = append(missing, bin)
		}
	}

	return missing
}

// CheckOptionalBinaries returns missing optional binaries.
func CheckOptionalBinaries() []BinaryCheck {
	var missing []BinaryCheck

	for _, bin := range optionalBinaries {
		if _, err := exec.LookPath(bin.Name); err != nil {
			missing = append(missing, bin)
		}
	}

	return missing
}

// CheckAll performs all pre-flight checks. Errors are missing
// required binaries, warnings are missing optional ones.
func CheckAll() (warnings []string, errors []string) {
	for _, bin := range CheckRequiredBinaries() {
		errors = append(errors, bin.Name+": "+bin.InstallHint)
	}
	for _, bin := range CheckOptionalBinaries() {
		warnings = append(warnings, bin.Name+": "+bin.InstallHint)
	}
	return warnings, errors
}

// IsBinaryAvailable checks if a specific binary is available in PATH.
func IsBinaryAvailable(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// AllBinaries returns all configured binaries, required first.
func AllBinaries() []BinaryCheck {
	all := make([]BinaryCheck, 0, len(requiredBinaries)+len(optionalBinaries))
	all = append(all, requiredBinaries...)
	return append(all, optionalBinaries...)
}
