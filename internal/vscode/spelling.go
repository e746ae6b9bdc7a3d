package vscode

import "sort"

// Spell-check settings whose word lists union across configs instead
// of one replacing the other.
var wordListKeys = map[string]bool{
	"cSpell.words":       true,
	"cSpell.flagWords":   true,
	"cSpell.ignoreWords": true,
}

// IsWordList reports whether a settings key is one of the spell-check
// word lists.
func IsWordList(key string) bool {
	return wordListKeys[key]
}

// UnionWords combines two spell-check word lists, dropping duplicates
// and sorting so the rendered settings are diff-stable.
func UnionWords(base, overlay any) []string {
	seen := make(map[string]bool)
	var words []string

	for _, list := range []any{base, overlay} {
		for _, word := range asStrings(list) {
			if seen[word] {
				continue
			}
			seen[word] = true
			words = append(words, word)
		}
	}

	sort.Strings(words)
	return words
}

// asStrings extracts the string entries of a JSON-decoded list.
// Settings come from untyped JSON so entries may be []any.
func asStrings(value any) []string {
	switch v := value.(type) {
	case []string:
		return v
	case []any:
		words := make([]string, 0, len(v))
		for _, entry := range v {
			if word, ok := entry.(string); ok {
				words = append(words, word)
			}
		}
		return words
	case string:
		return []string{v}
	default:
		return nil
	}
}
