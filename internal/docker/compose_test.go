package docker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/cabindev/cabin/internal/devcontainer"
)

func TestComposeArgs(t *testing.T) {
	project := &ComposeProject{
		Project: "cabin-proj",
		Files:   []string{"docker-compose.yml", ".cabin/override.yml"},
	}

	args := project.args("up", "-d", "app")
	assert.Equal(t, []string{
		"compose",
		"-p", "cabin-proj",
		"-f", "docker-compose.yml",
		"-f", ".cabin/override.yml",
		"up", "-d", "app",
	}, args)
}

func TestComposeArgsNoProject(t *testing.T) {
	project := &ComposeProject{Files: []string{"docker-compose.yml"}}
	assert.Equal(t, []string{"compose", "-f", "docker-compose.yml", "down"}, project.args("down"))
}

func TestComposeOverride(t *testing.T) {
	override := true
	cfg := &devcontainer.Config{
		Service:         "app",
		WorkspaceFolder: "/workspaces/proj",
		ContainerEnv:    map[string]string{"TZ": "UTC"},
		ForwardPorts: []devcontainer.PortSpec{
			{Host: 8080, Container: 3000},
		},
		OverrideCommand: &override,
	}

	out, err := ComposeOverride(cfg, "/home/dev/proj", "0f5a3c9e")
	require.NoError(t, err)

	var doc struct {
		Services map[string]struct {
			Labels      map[string]string `yaml:"labels"`
			Environment map[string]string `yaml:"environment"`
			Volumes     []string          `yaml:"volumes"`
			Ports       []string          `yaml:"ports"`
			Command     []string          `yaml:"command"`
		} `yaml:"services"`
	}
	require.NoError(t, yaml.Unmarshal(out, &doc))

	service, ok := doc.Services["app"]
	require.True(t, ok)
	assert.Equal(t, "/home/dev/proj", service.Labels[LabelWorkspace])
	assert.Equal(t, "0f5a3c9e", service.Labels[LabelID])
	assert.Equal(t, map[string]string{"TZ": "UTC"}, service.Environment)
	assert.Equal(t, []string{"/home/dev/proj:/workspaces/proj"}, service.Volumes)
	assert.Equal(t, []string{"127.0.0.1:8080:3000"}, service.Ports)
	assert.NotEmpty(t, service.Command)
}

func TestComposeOverrideMinimal(t *testing.T) {
	cfg := &devcontainer.Config{Service: "db"}

	out, err := ComposeOverride(cfg, "/home/dev/proj", "id")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(out, &doc))
	services := doc["services"].(map[string]any)
	service := services["db"].(map[string]any)
	assert.NotContains(t, service, "environment")
	assert.NotContains(t, service, "ports")
	assert.NotContains(t, service, "command")
}

func TestComposeOverrideNoService(t *testing.T) {
	_, err := ComposeOverride(&devcontainer.Config{}, "/ws", "id")
	require.Error(t, err)
}
