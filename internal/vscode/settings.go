// Package vscode handles the customizations.vscode block: editor
// settings, extension lists, and spell-check dictionaries.
package vscode

import "strings"

// IsLanguageScope reports whether a settings key is a bracketed
// language scope like "[python]".
func IsLanguageScope(key string) bool {
	return strings.HasPrefix(key, "[") && strings.HasSuffix(key, "]")
}

// MergeSettings merges an overlay settings map over a base. Nested
// objects merge recursively, which covers language scopes like
// "[python]" whose values are themselves settings maps. Scalars and
// lists from the overlay replace the base, except the spell-check
// word lists which union.
func MergeSettings(base, overlay map[string]any) map[string]any {
	if base == nil && overlay == nil {
		return nil
	}

	merged := make(map[string]any, len(base)+len(overlay))
	for key, value := range base {
		merged[key] = value
	}

	for key, value := range overlay {
		existing, ok := merged[key]
		if !ok {
			merged[key] = value
			continue
		}

		switch {
		case IsWordList(key):
			merged[key] = UnionWords(existing, value)
		default:
			existingMap, okBase := existing.(map[string]any)
			overlayMap, okOverlay := value.(map[string]any)
			if okBase && okOverlay {
				merged[key] = MergeSettings(existingMap, overlayMap)
			} else {
				merged[key] = value
			}
		}
	}

	return merged
}
