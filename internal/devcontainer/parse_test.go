package devcontainer

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSONC(t *testing.T) {
	data := []byte(`{
	// Base image for the workspace.
	"name": "analysis",
	"image": "mcr.microsoft.com/devcontainers/base:ubuntu",
	/* feature pins */
	"features": {
		"ghcr.io/devcontainers/features/python:1": {"version": "3.11"},
		"ghcr.io/devcontainers/features/rust:1": {},
	},
	"onCreateCommand": "git submodule update --init --recursive && pip install -e .",
}`)

	cfg, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, "analysis", cfg.Name)
	assert.Equal(t, "mcr.microsoft.com/devcontainers/base:ubuntu", cfg.Image)
	assert.Len(t, cfg.Features, 2)
	require.NotNil(t, cfg.OnCreateCommand)
	assert.Equal(t, "git submodule update --init --recursive && pip install -e .", cfg.OnCreateCommand.Shell)
}

func TestParseCommandForms(t *testing.T) {
	tests := []struct {
		name string
		json string
		want Command
	}{
		{
			name: "string form",
			json: `{"image": "x", "postCreateCommand": "make setup"}`,
			want: Command{Shell: "make setup"},
		},
		{
			name: "array form",
			json: `{"image": "x", "postCreateCommand": ["pip", "install", "-e", "."]}`,
			want: Command{Args: []string{"pip", "install", "-e", "."}},
		},
		{
			name: "object form",
			json: `{"image": "x", "postCreateCommand": {"deps": "pip install -e .", "hooks": ["pre-commit", "install"]}}`,
			want: Command{Named: map[string]Command{
				"deps":  {Shell: "pip install -e ."},
				"hooks": {Args: []string{"pre-commit", "install"}},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.json))
			require.NoError(t, err)
			require.NotNil(t, cfg.PostCreateCommand)
			assert.Equal(t, tt.want, *cfg.PostCreateCommand)
		})
	}
}

func TestParseObjectCommandRejectsNesting(t *testing.T) {
	_, err := Parse([]byte(`{"image": "x", "postCreateCommand": {"outer": {"inner": "echo"}}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot nest")
}

func TestCommandArgv(t *testing.T) {
	assert.Equal(t, []string{"/bin/sh", "-c", "make setup"}, Command{Shell: "make setup"}.Argv())
	assert.Equal(t, []string{"pip", "install"}, Command{Args: []string{"pip", "install"}}.Argv())
	assert.Nil(t, Command{Named: map[string]Command{"a": {Shell: "x"}}}.Argv())
}

func TestCommandRoundTrip(t *testing.T) {
	original := Command{Named: map[string]Command{
		"deps": {Shell: "pip install -e ."},
		"sub":  {Args: []string{"git", "submodule", "update"}},
	}}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded Command
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original, decoded)
}

func TestStringList(t *testing.T) {
	cfg, err := Parse([]byte(`{"dockerComposeFile": "docker-compose.yml", "service": "app"}`))
	require.NoError(t, err)
	assert.Equal(t, StringList{"docker-compose.yml"}, cfg.DockerComposeFile)

	cfg, err = Parse([]byte(`{"dockerComposeFile": ["base.yml", "override.yml"], "service": "app"}`))
	require.NoError(t, err)
	assert.Equal(t, StringList{"base.yml", "override.yml"}, cfg.DockerComposeFile)
}

func TestParsePortSpec(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		want    []PortSpec
		wantErr bool
	}{
		{
			name: "numbers",
			json: `{"image": "x", "forwardPorts": [8080, 5432]}`,
			want: []PortSpec{{8080, 8080}, {5432, 5432}},
		},
		{
			name: "host pair string",
			json: `{"image": "x", "forwardPorts": ["9000:8080"]}`,
			want: []PortSpec{{9000, 8080}},
		},
		{
			name:    "out of range",
			json:    `{"image": "x", "forwardPorts": [70000]}`,
			wantErr: true,
		},
		{
			name:    "garbage string",
			json:    `{"image": "x", "forwardPorts": ["http"]}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.json))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.ForwardPorts)
		})
	}
}

func TestParseMountForms(t *testing.T) {
	cfg, err := Parse([]byte(`{
		"image": "x",
		"mounts": [
			"source=vol,target=/data,type=volume",
			{"source": "/host/cache", "target": "/cache", "type": "bind"}
		]
	}`))
	require.NoError(t, err)

	require.Len(t, cfg.Mounts, 2)
	assert.Equal(t, Mount{Source: "vol", Target: "/data", Type: "volume"}, cfg.Mounts[0])
	assert.Equal(t, Mount{Source: "/host/cache", Target: "/cache", Type: "bind"}, cfg.Mounts[1])
}

func TestParseMountRequiresTarget(t *testing.T) {
	_, err := ParseMount("source=vol,type=volume")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no target")
}

func TestCustomizationsPreservesUnknownTools(t *testing.T) {
	cfg, err := Parse([]byte(`{
		"image": "x",
		"customizations": {
			"vscode": {"extensions": ["ms-python.python"]},
			"codespaces": {"repositories": {"org/repo": {"permissions": "write"}}}
		}
	}`))
	require.NoError(t, err)

	require.NotNil(t, cfg.Customizations)
	require.NotNil(t, cfg.Customizations.VSCode)
	assert.Equal(t, []string{"ms-python.python"}, cfg.Customizations.VSCode.Extensions)
	assert.Contains(t, cfg.Customizations.Other, "codespaces")
}

func TestUnknownKeys(t *testing.T) {
	data := []byte(`{"image": "x", "remoteUser": "dev", "totallyCustom": 1, "anotherThing": true}`)
	assert.Equal(t, []string{"anotherThing", "totallyCustom"}, UnknownKeys(data))

	assert.Empty(t, UnknownKeys([]byte(`{"image": "x"}`)))
}

func TestBase(t *testing.T) {
	tests := []struct {
		name string
		json string
		want BaseKind
	}{
		{"image", `{"image": "ubuntu"}`, BaseImage},
		{"build", `{"build": {"dockerfile": "Dockerfile"}}`, BaseBuild},
		{"compose", `{"dockerComposeFile": "compose.yml", "service": "app"}`, BaseCompose},
		{"none", `{"name": "empty"}`, BaseNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.json))
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Base())
		})
	}
}
