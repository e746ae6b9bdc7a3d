package devcontainer

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/cabindev/cabin/internal/features"
	"github.com/cabindev/cabin/internal/vscode"
)

// Validation errors for devcontainer configurations.
var (
	// ErrNoBase indicates no image, build, or compose base is declared.
	ErrNoBase = errors.New("no base environment (image, build, or dockerComposeFile)")

	// ErrConflictingBase indicates more than one base selector is set.
	ErrConflictingBase = errors.New("conflicting base environment")

	// ErrMissingService indicates a compose config without a service.
	ErrMissingService = errors.New("dockerComposeFile requires service")

	// ErrMissingDockerfile indicates a build block without a dockerfile.
	ErrMissingDockerfile = errors.New("build requires dockerfile")

	// ErrInvalidFeature indicates an unparseable feature reference.
	ErrInvalidFeature = errors.New("invalid feature reference")

	// ErrInvalidUser indicates a malformed user name.
	ErrInvalidUser = errors.New("invalid user name")

	// ErrInvalidShutdownAction indicates an unknown shutdownAction.
	ErrInvalidShutdownAction = errors.New("invalid shutdownAction")
)

// shutdownActions lists the accepted shutdownAction values.
var shutdownActions = []string{"none", "stopContainer", "stopCompose"}

// userNamePattern accepts POSIX user names and numeric UIDs.
var userNamePattern = regexp.MustCompile(`^([a-z_][a-z0-9_-]*\$?|[0-9]+)$`)

// Result collects validation findings. Errors fail validation;
// warnings are advisory (unknown keys, deprecated properties).
type Result struct {
	Errors   []error
	Warnings []string
}

// OK reports whether validation found no errors.
func (r *Result) OK() bool {
	return len(r.Errors) == 0
}

// Validate checks a parsed config against the schema's structural
// rules. It returns every finding rather than stopping at the first.
func Validate(cfg *Config) *Result {
	result := &Result{}

	validateBase(cfg, result)
	validateFeatures(cfg, result)
	validateExtensions(cfg, result)
	validateUsers(cfg, result)
	validateLifecycle(cfg, result)

	if cfg.ShutdownAction != "" && !contains(shutdownActions, cfg.ShutdownAction) {
		result.Errors = append(result.Errors,
			fmt.Errorf("%w: %q (supported: %s)", ErrInvalidShutdownAction, cfg.ShutdownAction, strings.Join(shutdownActions, ", ")))
	}

	if len(cfg.LegacyExtensions) > 0 || len(cfg.LegacySettings) > 0 || cfg.LegacyDevPort != 0 {
		result.Warnings = append(result.Warnings,
			"legacy top-level extensions/settings/devPort properties found; run 'cabin migrate'")
	}

	for _, ref := range cfg.OverrideFeatureInstallOrder {
		if _, ok := cfg.Features[ref]; !ok {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("overrideFeatureInstallOrder names %q, which is not in features", ref))
		}
	}

	return result
}

// ValidateDocument validates raw file content: parse errors become
// validation errors, and uninterpreted top-level keys become warnings.
func ValidateDocument(data []byte) *Result {
	cfg, err := Parse(data)
	if err != nil {
		return &Result{Errors: []error{err}}
	}

	result := Validate(cfg)
	for _, key := range UnknownKeys(data) {
		result.Warnings = append(result.Warnings, fmt.Sprintf("unknown property %q", key))
	}
	return result
}

func validateBase(cfg *Config, result *Result) {
	var bases []string
	if cfg.Image != "" {
		bases = append(bases, "image")
	}
	if cfg.Build != nil {
		bases = append(bases, "build")
	}
	if len(cfg.DockerComposeFile) > 0 {
		bases = append(bases, "dockerComposeFile")
	}

	switch len(bases) {
	case 0:
		result.Errors = append(result.Errors, ErrNoBase)
		return
	case 1:
		// ok
	default:
		result.Errors = append(result.Errors,
			fmt.Errorf("%w: %s", ErrConflictingBase, strings.Join(bases, " and ")))
	}

	if cfg.Build != nil && cfg.Build.Dockerfile == "" {
		result.Errors = append(result.Errors, ErrMissingDockerfile)
	}

	if len(cfg.DockerComposeFile) > 0 && cfg.Service == "" {
		result.Errors = append(result.Errors, ErrMissingService)
	}
}

func validateFeatures(cfg *Config, result *Result) {
	for _, raw := range sortedKeys(cfg.Features) {
		if _, err := features.ParseRef(raw); err != nil {
			result.Errors = append(result.Errors,
				fmt.Errorf("%w: %v", ErrInvalidFeature, err))
		}
	}
}

func validateExtensions(cfg *Config, result *Result) {
	if cfg.Customizations == nil || cfg.Customizations.VSCode == nil {
		return
	}

	result.Errors = append(result.Errors,
		vscode.ValidateExtensions(cfg.Customizations.VSCode.Extensions)...)

	settings := cfg.Customizations.VSCode.Settings
	for _, key := range sortedKeys(settings) {
		if !vscode.IsLanguageScope(key) {
			continue
		}
		if _, ok := settings[key].(map[string]any); !ok {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("language-scoped setting %q should be an object", key))
		}
	}
}

func validateUsers(cfg *Config, result *Result) {
	users := map[string]string{
		"containerUser": cfg.ContainerUser,
		"remoteUser":    cfg.RemoteUser,
	}

	for _, field := range sortedKeys(users) {
		user := users[field]
		if user == "" || strings.HasPrefix(user, "${") {
			continue
		}
		if !userNamePattern.MatchString(user) {
			result.Errors = append(result.Errors,
				fmt.Errorf("%w: %s %q", ErrInvalidUser, field, user))
		}
	}
}

func validateLifecycle(cfg *Config, result *Result) {
	hooks := map[string]*Command{
		"initializeCommand":    cfg.InitializeCommand,
		"onCreateCommand":      cfg.OnCreateCommand,
		"updateContentCommand": cfg.UpdateContentCommand,
		"postCreateCommand":    cfg.PostCreateCommand,
		"postStartCommand":     cfg.PostStartCommand,
		"postAttachCommand":    cfg.PostAttachCommand,
	}

	for name, cmd := range hooks {
		if cmd == nil {
			continue
		}
		if cmd.IsZero() {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s is empty", name))
		}
	}
}

// sortedKeys returns map keys in sorted order so validation findings
// are deterministic.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
