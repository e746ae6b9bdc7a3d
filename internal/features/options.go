package features

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// NormalizeOptions converts a feature's option block into a flat
// string map. The schema allows an options object, or a bare scalar
// shorthand which maps to the "version" option.
func NormalizeOptions(value any) map[string]string {
	options := make(map[string]string)

	switch v := value.(type) {
	case nil:
		// No options.
	case map[string]any:
		for name, raw := range v {
			options[name] = optionString(raw)
		}
	default:
		options["version"] = optionString(v)
	}

	return options
}

// optionString renders an option value the way installer scripts
// expect: booleans as "true"/"false", numbers without exponents.
func optionString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return fmt.Sprintf("%t", val)
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%v", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// EnvVars encodes options as installer environment variables: option
// names are uppercased with every non-alphanumeric rune replaced by an
// underscore, matching what feature install scripts read. Returned
// sorted as KEY=value pairs.
func EnvVars(options map[string]string) []string {
	env := make([]string, 0, len(options))
	for name, value := range options {
		env = append(env, optionEnvName(name)+"="+value)
	}
	sort.Strings(env)
	return env
}

// optionEnvName converts an option name to its env var form.
func optionEnvName(name string) string {
	var sb strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(unicode.ToUpper(r))
		} else {
			sb.WriteRune('_')
		}
	}
	return sb.String()
}
