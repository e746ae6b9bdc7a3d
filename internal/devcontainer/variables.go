package devcontainer

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"sort"
	"strings"
)

// varPattern matches ${variable} and ${variable:arg} placeholders.
var varPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Substitution is the variable context for a workspace. Expand
// replaces the schema's ${...} placeholders with these values.
type Substitution struct {
	// LocalWorkspaceFolder is the host path of the workspace root.
	LocalWorkspaceFolder string

	// ContainerWorkspaceFolder is the workspace path inside the
	// container.
	ContainerWorkspaceFolder string

	// DevcontainerID is the stable per-workspace identifier.
	DevcontainerID string

	// LookupEnv resolves ${localEnv:VAR}. Defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)

	// ContainerEnv resolves ${containerEnv:VAR} from the config's own
	// containerEnv block.
	ContainerEnv map[string]string
}

// Expand replaces ${...} placeholders in a single string. Unset
// localEnv references resolve to their ":default" suffix or empty,
// per the schema; unrecognized variable names are an error, reported
// all at once.
func (s *Substitution) Expand(template string) (string, error) {
	var unknown []string
	result := s.expand(template, &unknown)
	if len(unknown) > 0 {
		return "", unknownVariables(unknown)
	}
	return result, nil
}

// expand substitutes one string, appending unresolved expressions to
// unknown instead of failing. Callers error once after the full walk.
func (s *Substitution) expand(template string, unknown *[]string) string {
	lookupEnv := s.LookupEnv
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}

	return varPattern.ReplaceAllStringFunc(template, func(match string) string {
		expr := match[2 : len(match)-1]
		name, arg, hasArg := strings.Cut(expr, ":")

		switch name {
		case "localWorkspaceFolder":
			return s.LocalWorkspaceFolder
		case "localWorkspaceFolderBasename":
			return filepath.Base(s.LocalWorkspaceFolder)
		case "containerWorkspaceFolder":
			return s.ContainerWorkspaceFolder
		case "containerWorkspaceFolderBasename":
			return filepath.Base(s.ContainerWorkspaceFolder)
		case "devcontainerId":
			return s.DevcontainerID
		case "localEnv":
			envName, fallback, hasFallback := splitEnvArg(arg)
			if !hasArg || envName == "" {
				*unknown = append(*unknown, expr)
				return match
			}
			if value, ok := lookupEnv(envName); ok {
				return value
			}
			if hasFallback {
				return fallback
			}
			return ""
		case "containerEnv":
			if !hasArg || arg == "" {
				*unknown = append(*unknown, expr)
				return match
			}
			return s.ContainerEnv[arg]
		default:
			*unknown = append(*unknown, expr)
			return match
		}
	})
}

// unknownVariables builds the error naming every unresolved
// expression, deduplicated and sorted.
func unknownVariables(unknown []string) error {
	sort.Strings(unknown)
	unknown = slices.Compact(unknown)
	return fmt.Errorf("unknown variables: ${%s}", strings.Join(unknown, "}, ${"))
}

// splitEnvArg splits "VAR" or "VAR:default" after the localEnv prefix.
func splitEnvArg(arg string) (name, fallback string, hasFallback bool) {
	name, fallback, hasFallback = strings.Cut(arg, ":")
	return name, fallback, hasFallback
}

// ExpandMap applies substitution to every string value in a parsed
// document, recursively. Map keys are left untouched: setting names
// like "[python]" are identifiers, not templates. The whole document
// is walked before erroring, so one failure names every unresolved
// variable rather than the first.
func (s *Substitution) ExpandMap(data map[string]any) (map[string]any, error) {
	var unknown []string
	result := s.expandMap(data, &unknown)
	if len(unknown) > 0 {
		return nil, unknownVariables(unknown)
	}
	return result, nil
}

func (s *Substitution) expandMap(data map[string]any, unknown *[]string) map[string]any {
	result := make(map[string]any, len(data))
	for k, v := range data {
		result[k] = s.expandValue(v, unknown)
	}
	return result
}

func (s *Substitution) expandValue(value any, unknown *[]string) any {
	switch v := value.(type) {
	case string:
		return s.expand(v, unknown)
	case map[string]any:
		return s.expandMap(v, unknown)
	case []any:
		result := make([]any, len(v))
		for i, item := range v {
			result[i] = s.expandValue(item, unknown)
		}
		return result
	default:
		return value
	}
}
