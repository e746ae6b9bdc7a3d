package vscode

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidExtensionID indicates an extension identifier that is not
// in publisher.name form.
var ErrInvalidExtensionID = errors.New("invalid extension identifier")

// extensionIDPattern matches "publisher.name" with an optional
// "@1.2.3" version suffix.
var extensionIDPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]*\.[a-zA-Z0-9][a-zA-Z0-9-]*(@\d+\.\d+\.\d+)?$`)

// ValidExtensionID reports whether id is a well-formed marketplace
// extension identifier.
func ValidExtensionID(id string) bool {
	return extensionIDPattern.MatchString(id)
}

// ValidateExtensions checks every identifier in the list, returning
// one error per malformed entry.
func ValidateExtensions(ids []string) []error {
	var errs []error
	for _, id := range ids {
		if !ValidExtensionID(id) {
			errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidExtensionID, id))
		}
	}
	return errs
}

// MergeExtensions combines extension lists preserving first-seen
// order. Identifiers compare case-insensitively and a versioned entry
// ("publisher.name@1.2.3") supersedes an earlier unversioned one for
// the same extension.
func MergeExtensions(lists ...[]string) []string {
	var merged []string
	index := make(map[string]int)

	for _, list := range lists {
		for _, id := range list {
			key := strings.ToLower(baseID(id))
			if at, seen := index[key]; seen {
				if strings.Contains(id, "@") {
					merged[at] = id
				}
				continue
			}
			index[key] = len(merged)
			merged = append(merged, id)
		}
	}

	return merged
}

// baseID strips a version pin from an extension identifier.
func baseID(id string) string {
	if at := strings.Index(id, "@"); at >= 0 {
		return id[:at]
	}
	return id
}
