// Package devcontainer provides parsing and resolution for
// devcontainer.json documents.
//
// It turns a workspace's configuration into an effective config ready
// for provisioning. The resolution pipeline includes:
//
//   - JSONC parsing (comments and trailing commas)
//   - Deep merging of overlay documents with union/extend/replace
//     semantics per key
//   - Variable substitution (${localWorkspaceFolder}, ${localEnv:VAR},
//     ${devcontainerId}, ...)
//   - Structural validation with warnings for unknown properties
//   - Migration of legacy top-level extensions/settings/devPort
//
// # Configuration Locations
//
// Configs are discovered searching upward from the working directory:
//
//	.devcontainer/devcontainer.json
//	.devcontainer.json
//	.devcontainer/<folder>/devcontainer.json
//
// # Lifecycle Commands
//
// The schema's three command forms are modeled by Command:
//
//	"onCreateCommand": "git submodule update --init --recursive"
//	"postCreateCommand": ["pip", "install", "-e", "."]
//	"postStartCommand": {"server": "npm start", "db": "./db.sh"}
package devcontainer
