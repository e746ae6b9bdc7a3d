package devcontainer

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/tidwall/jsonc"
)

// knownKeys lists the top-level properties cabin interprets. Keys
// outside this set are carried by the parser but flagged by
// UnknownKeys so validate can warn without failing.
var knownKeys = map[string]bool{
	"name":                        true,
	"image":                       true,
	"build":                       true,
	"dockerComposeFile":           true,
	"service":                     true,
	"runServices":                 true,
	"features":                    true,
	"overrideFeatureInstallOrder": true,
	"customizations":              true,
	"forwardPorts":                true,
	"portsAttributes":             true,
	"containerEnv":                true,
	"remoteEnv":                   true,
	"containerUser":               true,
	"remoteUser":                  true,
	"updateRemoteUserUID":         true,
	"workspaceFolder":             true,
	"workspaceMount":              true,
	"mounts":                      true,
	"runArgs":                     true,
	"shutdownAction":              true,
	"overrideCommand":             true,
	"init":                        true,
	"privileged":                  true,
	"capAdd":                      true,
	"securityOpt":                 true,
	"hostRequirements":            true,
	"initializeCommand":           true,
	"onCreateCommand":             true,
	"updateContentCommand":        true,
	"postCreateCommand":           true,
	"postStartCommand":            true,
	"postAttachCommand":           true,
	"waitFor":                     true,
	"userEnvProbe":                true,
	// Legacy properties, accepted for migration.
	"extensions": true,
	"settings":   true,
	"devPort":    true,
}

// Parse parses a devcontainer.json document. Comments and trailing
// commas (JSONC) are accepted, matching common practice for these
// files.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(jsonc.ToJSON(data), &cfg); err != nil {
		return nil, fmt.Errorf("parse devcontainer.json: %w", err)
	}
	return &cfg, nil
}

// Load reads and parses a devcontainer.json file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// UnknownKeys returns the top-level keys in the document that cabin
// does not interpret, sorted. A parse failure returns nil; Parse
// surfaces the real error.
func UnknownKeys(data []byte) []string {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(jsonc.ToJSON(data), &raw); err != nil {
		return nil
	}

	var unknown []string
	for key := range raw {
		if !knownKeys[key] {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	return unknown
}

// ToJSON marshals a resolved config back to indented JSON, without
// comments. Used by render.
func ToJSON(cfg *Config) ([]byte, error) {
	data, err := json.MarshalIndent(cfg, "", "\t")
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return append(data, '\n'), nil
}

// AsMap parses a document into a generic map for merge operations.
func AsMap(data []byte) (map[string]any, error) {
	var raw map[string]any
	if err := json.Unmarshal(jsonc.ToJSON(data), &raw); err != nil {
		return nil, fmt.Errorf("parse devcontainer.json: %w", err)
	}
	return raw, nil
}

// FromMap converts a generic merged map back into a typed Config.
func FromMap(raw map[string]any) (*Config, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("marshal merged config: %w", err)
	}
	return Parse(data)
}
