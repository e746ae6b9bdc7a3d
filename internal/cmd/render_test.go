package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cabindev/cabin/internal/snapshot"
)

const renderTestConfig = `{
	// build box
	"name": "box",
	"image": "debian:12",
	"remoteEnv": {"WS": "${localWorkspaceFolder}"}
}`

func TestRenderResolvedConfig(t *testing.T) {
	renderFormat, renderWrite = "", false
	scaffoldWorkspace(t, renderTestConfig)

	_, err := executeCmd(t, "render")
	assert.NoError(t, err)
}

func TestRenderFormatTemplate(t *testing.T) {
	renderWrite = false
	scaffoldWorkspace(t, renderTestConfig)

	_, err := executeCmd(t, "render", "--format", "{{ .Image }}")
	assert.NoError(t, err)
}

func TestRenderFormatTemplateInvalid(t *testing.T) {
	renderWrite = false
	scaffoldWorkspace(t, renderTestConfig)

	_, err := executeCmd(t, "render", "--format", "{{ .Image")
	assert.ErrorContains(t, err, "parse format template")
}

func TestRenderWrite(t *testing.T) {
	renderFormat = ""
	dir := scaffoldWorkspace(t, renderTestConfig)

	_, err := executeCmd(t, "render", "--write")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, ".devcontainer", "devcontainer.json"))
	require.NoError(t, err)
	// Variables are substituted and comments dropped in the rewrite.
	assert.Contains(t, string(data), dir)
	assert.NotContains(t, string(data), "build box")

	// The original was snapshotted first.
	snapshots, err := snapshot.List(filepath.Join(dir, ".cabin", "snapshots"))
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
}
