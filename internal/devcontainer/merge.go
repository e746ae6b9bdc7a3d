package devcontainer

import (
	"fmt"

	"github.com/cabindev/cabin/internal/vscode"
)

// UnionKeys are keys where lists merge as a set union (no duplicates,
// base order preserved). Spell-check word lists are handled
// separately: they union sorted (vscode.UnionWords).
var UnionKeys = map[string]bool{
	"extensions":   true,
	"forwardPorts": true,
	"runServices":  true,
	"capAdd":       true,
	"securityOpt":  true,
}

// ExtendKeys are keys where lists are appended instead of replaced.
var ExtendKeys = map[string]bool{
	"mounts":  true,
	"runArgs": true,
}

// DeepMerge recursively merges overlay into base and returns a new map.
// Merge semantics:
//   - UnionKeys (extensions, forwardPorts, ...): set union for lists
//   - ExtendKeys (mounts, runArgs): append lists
//   - Default: replace lists, recursive merge for dicts
//
// Commands are plain values at this layer (string/array/object), so a
// later overlay replaces an earlier hook rather than combining them.
func DeepMerge(base, overlay map[string]any) map[string]any {
	result := copyMap(base)

	for key, overlayValue := range overlay {
		baseValue, exists := result[key]
		if !exists {
			result[key] = deepCopy(overlayValue)
			continue
		}

		// Both are maps - recursive merge
		baseMap, baseIsMap := baseValue.(map[string]any)
		overlayMap, overlayIsMap := overlayValue.(map[string]any)
		if baseIsMap && overlayIsMap {
			result[key] = DeepMerge(baseMap, overlayMap)
			continue
		}

		// Both are lists - apply merge strategy
		baseList, baseIsList := baseValue.([]any)
		overlayList, overlayIsList := overlayValue.([]any)
		if baseIsList && overlayIsList {
			switch {
			case vscode.IsWordList(key):
				union := vscode.UnionWords(baseList, overlayList)
				merged := make([]any, len(union))
				for i, word := range union {
					merged[i] = word
				}
				result[key] = merged
			case UnionKeys[key]:
				result[key] = listUnion(baseList, overlayList)
			case ExtendKeys[key]:
				merged := make([]any, 0, len(baseList)+len(overlayList))
				merged = append(merged, baseList...)
				merged = append(merged, overlayList...)
				result[key] = merged
			default:
				result[key] = deepCopy(overlayValue)
			}
			continue
		}

		// Default: replace
		result[key] = deepCopy(overlayValue)
	}

	return result
}

// listUnion returns the union of two lists, keyed by the string form
// of each element, base order first.
func listUnion(a, b []any) []any {
	seen := make(map[string]bool, len(a)+len(b))
	result := make([]any, 0, len(a)+len(b))

	for _, list := range [][]any{a, b} {
		for _, item := range list {
			key := fmt.Sprintf("%v", item)
			if seen[key] {
				continue
			}
			seen[key] = true
			result = append(result, item)
		}
	}

	return result
}

// copyMap creates a shallow copy of a map.
func copyMap(m map[string]any) map[string]any {
	if m == nil {
		return make(map[string]any)
	}
	result := make(map[string]any, len(m))
	for k, v := range m {
		result[k] = v
	}
	return result
}

// deepCopy creates a deep copy of any value.
func deepCopy(value any) any {
	switch v := value.(type) {
	case map[string]any:
		result := make(map[string]any, len(v))
		for k, val := range v {
			result[k] = deepCopy(val)
		}
		return result
	case []any:
		result := make([]any, len(v))
		for i, val := range v {
			result[i] = deepCopy(val)
		}
		return result
	default:
		// Primitive types are immutable, return as-is
		return value
	}
}

// MergeFiles parses and merges configuration documents in order; later
// documents overlay earlier ones. Returns the merged typed config.
func MergeFiles(docs ...[]byte) (*Config, error) {
	merged := make(map[string]any)

	for i, doc := range docs {
		raw, err := AsMap(doc)
		if err != nil {
			return nil, fmt.Errorf("overlay %d: %w", i+1, err)
		}
		merged = DeepMerge(merged, raw)
	}

	return FromMap(merged)
}
