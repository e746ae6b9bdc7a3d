// Package devcontainer implements the configuration engine for parsing,
// merging, and resolving devcontainer.json documents.
package devcontainer

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Config file names and locations, in lookup order.
const (
	// DirName is the conventional configuration directory.
	DirName = ".devcontainer"

	// FileName is the configuration file name inside DirName.
	FileName = "devcontainer.json"

	// LegacyFileName is the repository-root dotfile form.
	LegacyFileName = ".devcontainer.json"
)

// Config is a parsed devcontainer.json document.
//
// Exactly one of Image, Build, or DockerComposeFile selects the base
// environment; Validate enforces this.
type Config struct {
	// Name is the display name for the dev container.
	Name string `json:"name,omitempty"`

	// Image is a container image reference to run directly.
	Image string `json:"image,omitempty"`

	// Build describes a Dockerfile build for the base image.
	Build *BuildOptions `json:"build,omitempty"`

	// DockerComposeFile names one or more compose files (string or list
	// in JSON, normalized to a list).
	DockerComposeFile StringList `json:"dockerComposeFile,omitempty"`

	// Service is the compose service to connect to (compose mode only).
	Service string `json:"service,omitempty"`

	// RunServices lists additional compose services to start.
	RunServices []string `json:"runServices,omitempty"`

	// Features maps a feature reference to its options.
	// Option values may be an object, or a bare scalar shorthand.
	Features map[string]any `json:"features,omitempty"`

	// OverrideFeatureInstallOrder pins feature install order for the
	// listed features; unlisted features follow after.
	OverrideFeatureInstallOrder []string `json:"overrideFeatureInstallOrder,omitempty"`

	// Customizations holds tool-specific configuration blocks.
	Customizations *Customizations `json:"customizations,omitempty"`

	// ForwardPorts lists ports to forward from the container.
	// Entries are numbers or "host:container" strings.
	ForwardPorts []PortSpec `json:"forwardPorts,omitempty"`

	// ContainerEnv sets environment variables on the container itself.
	ContainerEnv map[string]string `json:"containerEnv,omitempty"`

	// RemoteEnv sets environment variables for tool processes only.
	RemoteEnv map[string]string `json:"remoteEnv,omitempty"`

	// ContainerUser is the user the container runs as.
	ContainerUser string `json:"containerUser,omitempty"`

	// RemoteUser is the user lifecycle commands and tools run as.
	RemoteUser string `json:"remoteUser,omitempty"`

	// WorkspaceFolder is the container path the workspace mounts at.
	WorkspaceFolder string `json:"workspaceFolder,omitempty"`

	// WorkspaceMount overrides the default workspace mount string.
	WorkspaceMount string `json:"workspaceMount,omitempty"`

	// Mounts lists additional mounts (string or object form in JSON).
	Mounts []Mount `json:"mounts,omitempty"`

	// RunArgs passes extra arguments to the container runtime.
	RunArgs []string `json:"runArgs,omitempty"`

	// ShutdownAction is "none", "stopContainer", or "stopCompose".
	ShutdownAction string `json:"shutdownAction,omitempty"`

	// OverrideCommand replaces the image command with a sleep loop so
	// the container stays up. Defaults to true for image/build mode.
	OverrideCommand *bool `json:"overrideCommand,omitempty"`

	// Init runs an init process (tini) inside the container.
	Init *bool `json:"init,omitempty"`

	// Privileged runs the container with extended privileges.
	Privileged *bool `json:"privileged,omitempty"`

	// HostRequirements declares minimum host resources.
	HostRequirements *HostRequirements `json:"hostRequirements,omitempty"`

	// Lifecycle hooks, in execution order. InitializeCommand runs on
	// the host; the rest run inside the container.
	InitializeCommand    *Command `json:"initializeCommand,omitempty"`
	OnCreateCommand      *Command `json:"onCreateCommand,omitempty"`
	UpdateContentCommand *Command `json:"updateContentCommand,omitempty"`
	PostCreateCommand    *Command `json:"postCreateCommand,omitempty"`
	PostStartCommand     *Command `json:"postStartCommand,omitempty"`
	PostAttachCommand    *Command `json:"postAttachCommand,omitempty"`

	// Legacy pre-customizations properties, still accepted by Parse and
	// rewritten by Migrate. Never written by render.
	LegacyExtensions []string       `json:"extensions,omitempty"`
	LegacySettings   map[string]any `json:"settings,omitempty"`
	LegacyDevPort    int            `json:"devPort,omitempty"`
}

// BuildOptions describes a Dockerfile-based base image.
type BuildOptions struct {
	Dockerfile string            `json:"dockerfile,omitempty"`
	Context    string            `json:"context,omitempty"`
	Target     string            `json:"target,omitempty"`
	Args       map[string]string `json:"args,omitempty"`
	CacheFrom  StringList        `json:"cacheFrom,omitempty"`
	Options    []string          `json:"options,omitempty"`
}

// Customizations holds per-tool customization blocks. Only the vscode
// block is modeled; unknown tools are carried through untouched.
type Customizations struct {
	VSCode *VSCodeCustomizations `json:"vscode,omitempty"`

	// Other preserves customization blocks for tools cabin does not
	// interpret, so render round-trips them.
	Other map[string]any `json:"-"`
}

// VSCodeCustomizations is the editor block: settings keyed by setting
// name (including "[language]" scoped keys) and an ordered extension
// list.
type VSCodeCustomizations struct {
	Settings   map[string]any `json:"settings,omitempty"`
	Extensions []string       `json:"extensions,omitempty"`
}

// HostRequirements declares minimum host resources for the container.
type HostRequirements struct {
	CPUs    int    `json:"cpus,omitempty"`
	Memory  string `json:"memory,omitempty"`
	Storage string `json:"storage,omitempty"`
}

// StringList accepts a JSON string or array of strings.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (s *StringList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*s = StringList{single}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("expected string or string array: %w", err)
	}
	*s = StringList(many)
	return nil
}

// MarshalJSON implements json.Marshaler. A single entry marshals back
// to a bare string.
func (s StringList) MarshalJSON() ([]byte, error) {
	if len(s) == 1 {
		return json.Marshal(s[0])
	}
	return json.Marshal([]string(s))
}

// PortSpec is a forwarded port: a bare container port, or an explicit
// "host:container" pair.
type PortSpec struct {
	// Host is the host port; zero means same as Container.
	Host int
	// Container is the container port.
	Container int
}

// UnmarshalJSON accepts a JSON number or a "host:container" string.
func (p *PortSpec) UnmarshalJSON(data []byte) error {
	var port int
	if err := json.Unmarshal(data, &port); err == nil {
		if port < 1 || port > 65535 {
			return fmt.Errorf("port out of range: %d", port)
		}
		p.Container = port
		p.Host = port
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("expected port number or \"host:port\" string")
	}

	parsed, err := ParsePortSpec(raw)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// MarshalJSON writes the compact form: a bare number when host and
// container match, a string otherwise.
func (p PortSpec) MarshalJSON() ([]byte, error) {
	if p.Host == p.Container {
		return json.Marshal(p.Container)
	}
	return json.Marshal(fmt.Sprintf("%d:%d", p.Host, p.Container))
}

// String returns the "host:container" form.
func (p PortSpec) String() string {
	return fmt.Sprintf("%d:%d", p.Host, p.Container)
}

// ParsePortSpec parses "port" or "host:port" into a PortSpec.
func ParsePortSpec(raw string) (PortSpec, error) {
	var host, container int

	parts := strings.Split(raw, ":")
	switch len(parts) {
	case 1:
		if _, err := fmt.Sscanf(parts[0], "%d", &container); err != nil {
			return PortSpec{}, fmt.Errorf("invalid port %q", raw)
		}
		host = container
	case 2:
		if _, err := fmt.Sscanf(parts[0], "%d", &host); err != nil {
			return PortSpec{}, fmt.Errorf("invalid host port in %q", raw)
		}
		if _, err := fmt.Sscanf(parts[1], "%d", &container); err != nil {
			return PortSpec{}, fmt.Errorf("invalid container port in %q", raw)
		}
	default:
		return PortSpec{}, fmt.Errorf("invalid port spec %q", raw)
	}

	for _, port := range []int{host, container} {
		if port < 1 || port > 65535 {
			return PortSpec{}, fmt.Errorf("port out of range in %q", raw)
		}
	}

	return PortSpec{Host: host, Container: container}, nil
}

// Mount is an additional container mount. JSON form is either a
// "source=...,target=...,type=..." string or an object.
type Mount struct {
	Source string `json:"source,omitempty"`
	Target string `json:"target"`
	Type   string `json:"type,omitempty"`
}

// UnmarshalJSON accepts the string and object mount forms.
func (m *Mount) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		parsed, err := ParseMount(raw)
		if err != nil {
			return err
		}
		*m = parsed
		return nil
	}

	type mountAlias Mount
	var obj mountAlias
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("expected mount string or object: %w", err)
	}
	*m = Mount(obj)
	return nil
}

// ParseMount parses the docker --mount string form.
func ParseMount(raw string) (Mount, error) {
	var m Mount
	for _, field := range strings.Split(raw, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(field), "=")
		if !found {
			return Mount{}, fmt.Errorf("invalid mount field %q in %q", field, raw)
		}
		switch key {
		case "source", "src":
			m.Source = value
		case "target", "dst", "destination":
			m.Target = value
		case "type":
			m.Type = value
		default:
			// Unrecognized options (readonly, consistency) are dropped.
		}
	}
	if m.Target == "" {
		return Mount{}, fmt.Errorf("mount %q has no target", raw)
	}
	return m, nil
}

// String returns the docker --mount string form.
func (m Mount) String() string {
	var sb strings.Builder
	if m.Source != "" {
		fmt.Fprintf(&sb, "source=%s,", m.Source)
	}
	fmt.Fprintf(&sb, "target=%s", m.Target)
	if m.Type != "" {
		fmt.Fprintf(&sb, ",type=%s", m.Type)
	}
	return sb.String()
}

// BaseKind identifies which base-environment selector a config uses.
type BaseKind string

// Base kinds, per the configuration patterns the schema allows.
const (
	BaseImage   BaseKind = "image"
	BaseBuild   BaseKind = "dockerfile"
	BaseCompose BaseKind = "compose"
	BaseNone    BaseKind = ""
)

// Base reports which base selector the config declares. Conflicts are
// reported by Validate, not here; the first populated selector wins in
// image -> build -> compose order.
func (c *Config) Base() BaseKind {
	switch {
	case c.Image != "":
		return BaseImage
	case c.Build != nil:
		return BaseBuild
	case len(c.DockerComposeFile) > 0:
		return BaseCompose
	default:
		return BaseNone
	}
}
