// Package features resolves devcontainer feature references, options,
// and install order.
package features

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Well-known defaults for short feature references.
const (
	// DefaultRegistry hosts the reference feature collection.
	DefaultRegistry = "ghcr.io"

	// DefaultNamespace is the reference collection path.
	DefaultNamespace = "devcontainers/features"

	// DefaultVersion is used when a reference carries no tag.
	DefaultVersion = "latest"
)

// Reference errors.
var (
	// ErrEmptyRef indicates an empty feature reference.
	ErrEmptyRef = errors.New("empty feature reference")

	// ErrInvalidVersion indicates an unparseable version tag.
	ErrInvalidVersion = errors.New("invalid feature version")
)

// Ref is a parsed feature reference.
type Ref struct {
	// Registry is the OCI registry host ("ghcr.io"). Empty for local
	// refs.
	Registry string

	// Namespace is the registry path up to the feature name
	// ("devcontainers/features").
	Namespace string

	// Name is the feature name ("python").
	Name string

	// Version is the tag: "latest", a major pin ("1"), or a full
	// semantic version.
	Version string

	// Local is the directory path for local "./dir" references.
	Local string
}

// IsLocal reports whether the reference points at a local directory.
func (r Ref) IsLocal() bool {
	return r.Local != ""
}

// String reassembles the canonical reference form.
func (r Ref) String() string {
	if r.IsLocal() {
		return r.Local
	}
	return fmt.Sprintf("%s/%s/%s:%s", r.Registry, r.Namespace, r.Name, r.Version)
}

// ID is the reference without its version tag, the form
// overrideFeatureInstallOrder entries use.
func (r Ref) ID() string {
	if r.IsLocal() {
		return r.Local
	}
	return fmt.Sprintf("%s/%s/%s", r.Registry, r.Namespace, r.Name)
}

// ParseRef parses a feature reference from a devcontainer.json
// features key. Accepted forms:
//
//	ghcr.io/devcontainers/features/python:1   (OCI, versioned)
//	ghcr.io/devcontainers/features/python     (OCI, latest)
//	python                                    (legacy shorthand)
//	./local-feature                           (local directory)
func ParseRef(raw string) (Ref, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Ref{}, ErrEmptyRef
	}

	if strings.HasPrefix(raw, "./") || strings.HasPrefix(raw, "../") {
		return Ref{Local: raw}, nil
	}

	body, version := raw, DefaultVersion
	if idx := strings.LastIndex(raw, ":"); idx >= 0 {
		body, version = raw[:idx], raw[idx+1:]
		if version == "" {
			return Ref{}, fmt.Errorf("%w: trailing colon in %q", ErrInvalidVersion, raw)
		}
	}

	if err := validateVersion(version); err != nil {
		return Ref{}, fmt.Errorf("%w: %q in %q", ErrInvalidVersion, version, raw)
	}

	segments := strings.Split(body, "/")
	switch {
	case len(segments) == 1:
		// Legacy shorthand resolves against the reference collection.
		return Ref{
			Registry:  DefaultRegistry,
			Namespace: DefaultNamespace,
			Name:      segments[0],
			Version:   version,
		}, nil
	case len(segments) >= 3:
		return Ref{
			Registry:  segments[0],
			Namespace: strings.Join(segments[1:len(segments)-1], "/"),
			Name:      segments[len(segments)-1],
			Version:   version,
		}, nil
	default:
		return Ref{}, fmt.Errorf("invalid feature reference %q", raw)
	}
}

// validateVersion accepts "latest" or anything semver can parse,
// including partial pins like "1" and "1.2".
func validateVersion(version string) error {
	if version == DefaultVersion {
		return nil
	}
	if _, err := semver.NewVersion(version); err != nil {
		return err
	}
	return nil
}

// Pinned reports whether the reference pins an exact version rather
// than "latest" or a floating major.
func (r Ref) Pinned() bool {
	if r.Version == DefaultVersion {
		return false
	}
	v, err := semver.StrictNewVersion(r.Version)
	return err == nil && v != nil
}
