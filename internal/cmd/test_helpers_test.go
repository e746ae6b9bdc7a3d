package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// executeCmd executes the root command with the given args and returns
// the combined output. Cobra command state is global, so tests share
// one command tree.
func executeCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	err := rootCmd.Execute()
	return buf.String(), err
}

// scaffoldWorkspace creates a workspace directory with a devcontainer
// config and chdirs into it for the duration of the test.
func scaffoldWorkspace(t *testing.T, config string) string {
	t.Helper()
	dir := t.TempDir()
	configDir := filepath.Join(dir, ".devcontainer")
	require.NoError(t, os.MkdirAll(configDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "devcontainer.json"), []byte(config), 0644))
	t.Chdir(dir)
	return dir
}
