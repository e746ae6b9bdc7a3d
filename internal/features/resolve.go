package features

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Resolution errors.
var (
	// ErrCycle indicates installsAfter constraints form a cycle.
	ErrCycle = errors.New("feature dependency cycle")

	// ErrUnknownOverride indicates overrideFeatureInstallOrder names a
	// feature the config does not declare.
	ErrUnknownOverride = errors.New("override names undeclared feature")
)

// Feature is a declared feature with parsed reference and options.
type Feature struct {
	// Raw is the key as written in devcontainer.json.
	Raw string

	// Ref is the parsed reference.
	Ref Ref

	// Options is the normalized option map.
	Options map[string]string

	// InstallsAfter lists feature names (not full refs) this feature
	// must install after, from the feature's published metadata.
	InstallsAfter []string
}

// ParseAll parses a config's features block into declared features,
// sorted by raw reference for determinism.
func ParseAll(block map[string]any) ([]Feature, error) {
	features := make([]Feature, 0, len(block))

	for raw, options := range block {
		ref, err := ParseRef(raw)
		if err != nil {
			return nil, fmt.Errorf("feature %q: %w", raw, err)
		}
		features = append(features, Feature{
			Raw:     raw,
			Ref:     ref,
			Options: NormalizeOptions(options),
		})
	}

	sort.Slice(features, func(i, j int) bool { return features[i].Raw < features[j].Raw })
	return features, nil
}

// InstallOrder computes the feature installation order:
//
//  1. Features named in override install first, in override order.
//  2. The rest follow in installsAfter topological order, ties broken
//     by reference so the order is stable across runs.
func InstallOrder(features []Feature, override []string) ([]Feature, error) {
	byRaw := make(map[string]Feature, len(features))
	byID := make(map[string]Feature, len(features))
	byName := make(map[string]Feature, len(features))
	for _, f := range features {
		byRaw[f.Raw] = f
		byID[f.Ref.ID()] = f
		byName[f.Ref.Name] = f
	}

	var ordered []Feature
	placed := make(map[string]bool, len(features))

	for _, raw := range override {
		f, ok := byRaw[raw]
		if !ok {
			// Override entries conventionally omit the version tag.
			f, ok = byID[raw]
		}
		if !ok {
			// Or name the feature by short name.
			f, ok = byName[raw]
		}
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownOverride, raw)
		}
		if placed[f.Raw] {
			continue
		}
		placed[f.Raw] = true
		ordered = append(ordered, f)
	}

	remaining := make([]Feature, 0, len(features))
	for _, f := range features {
		if !placed[f.Raw] {
			remaining = append(remaining, f)
		}
	}

	sorted, err := topoSort(remaining, byName, placed)
	if err != nil {
		return nil, err
	}

	return append(ordered, sorted...), nil
}

// topoSort runs Kahn's algorithm over installsAfter edges. Features
// whose dependencies are already placed (or not declared at all) are
// ready immediately. Ready features are taken in reference order.
func topoSort(features []Feature, byName map[string]Feature, placed map[string]bool) ([]Feature, error) {
	indegree := make(map[string]int, len(features))
	dependents := make(map[string][]string, len(features))
	pending := make(map[string]Feature, len(features))

	for _, f := range features {
		pending[f.Raw] = f
		indegree[f.Raw] = 0
	}

	for _, f := range features {
		for _, depName := range f.InstallsAfter {
			dep, declared := byName[depName]
			if !declared || placed[dep.Raw] || dep.Raw == f.Raw {
				continue
			}
			if _, inSet := pending[dep.Raw]; !inSet {
				continue
			}
			indegree[f.Raw]++
			dependents[dep.Raw] = append(dependents[dep.Raw], f.Raw)
		}
	}

	var ready []string
	for raw, degree := range indegree {
		if degree == 0 {
			ready = append(ready, raw)
		}
	}
	sort.Strings(ready)

	var ordered []Feature
	for len(ready) > 0 {
		next := ready[0]
		ready = ready[1:]
		ordered = append(ordered, pending[next])

		released := false
		for _, dependent := range dependents[next] {
			indegree[dependent]--
			if indegree[dependent] == 0 {
				ready = append(ready, dependent)
				released = true
			}
		}
		if released {
			sort.Strings(ready)
		}
	}

	if len(ordered) != len(features) {
		var stuck []string
		for raw, degree := range indegree {
			if degree > 0 {
				stuck = append(stuck, raw)
			}
		}
		sort.Strings(stuck)
		return nil, fmt.Errorf("%w: %s", ErrCycle, strings.Join(stuck, ", "))
	}

	return ordered, nil
}
