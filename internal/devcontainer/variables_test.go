package devcontainer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSubstitution() *Substitution {
	return &Substitution{
		LocalWorkspaceFolder:     "/home/dev/projects/analysis",
		ContainerWorkspaceFolder: "/workspaces/analysis",
		DevcontainerID:           "f81d4fae",
		LookupEnv: func(name string) (string, bool) {
			env := map[string]string{"HOME": "/home/dev", "CARGO_HOME": "/home/dev/.cargo"}
			v, ok := env[name]
			return v, ok
		},
		ContainerEnv: map[string]string{"PYTHONPATH": "/workspaces/analysis/src"},
	}
}

func TestExpand(t *testing.T) {
	sub := testSubstitution()

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{"no variables", "plain string", "plain string"},
		{"local workspace folder", "${localWorkspaceFolder}/.cache", "/home/dev/projects/analysis/.cache"},
		{"basename", "cabin-${localWorkspaceFolderBasename}", "cabin-analysis"},
		{"container folder", "${containerWorkspaceFolder}", "/workspaces/analysis"},
		{"container basename", "${containerWorkspaceFolderBasename}", "analysis"},
		{"devcontainer id", "vol-${devcontainerId}", "vol-f81d4fae"},
		{"local env set", "${localEnv:HOME}/.config", "/home/dev/.config"},
		{"local env unset", "${localEnv:NOPE}", ""},
		{"local env default", "${localEnv:NOPE:/tmp}", "/tmp"},
		{"container env", "${containerEnv:PYTHONPATH}", "/workspaces/analysis/src"},
		{"multiple", "${localEnv:HOME}:${containerWorkspaceFolder}", "/home/dev:/workspaces/analysis"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sub.Expand(tt.template)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpandUnknownVariablesCollected(t *testing.T) {
	sub := testSubstitution()

	_, err := sub.Expand("${bogusVar} and ${anotherOne:arg}")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogusVar")
	assert.Contains(t, err.Error(), "anotherOne:arg")
}

func TestExpandMap(t *testing.T) {
	sub := testSubstitution()

	input := map[string]any{
		"workspaceMount": "source=${localWorkspaceFolder},target=${containerWorkspaceFolder},type=bind",
		"runArgs":        []any{"--name", "dev-${devcontainerId}"},
		"forwardPorts":   []any{float64(8888)},
		"customizations": map[string]any{
			"vscode": map[string]any{
				"settings": map[string]any{"[python]": map[string]any{"editor.tabSize": float64(4)}},
			},
		},
	}

	got, err := sub.ExpandMap(input)
	require.NoError(t, err)

	assert.Equal(t, "source=/home/dev/projects/analysis,target=/workspaces/analysis,type=bind", got["workspaceMount"])
	assert.Equal(t, []any{"--name", "dev-f81d4fae"}, got["runArgs"])
	assert.Equal(t, []any{float64(8888)}, got["forwardPorts"])

	// Map keys are not templates.
	settings := got["customizations"].(map[string]any)["vscode"].(map[string]any)["settings"].(map[string]any)
	assert.Contains(t, settings, "[python]")
}

func TestExpandMapCollectsAcrossDocument(t *testing.T) {
	sub := testSubstitution()

	input := map[string]any{
		"containerEnv": map[string]any{"DATA": "${dataRoot}"},
		"runArgs":      []any{"--hostname", "${machineName}"},
		"remoteUser":   "${machineName}",
	}

	_, err := sub.ExpandMap(input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dataRoot")
	assert.Contains(t, err.Error(), "machineName")
	assert.Equal(t, 1, strings.Count(err.Error(), "machineName"))
}
