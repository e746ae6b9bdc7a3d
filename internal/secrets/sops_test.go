package secrets

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecrypt(t *testing.T) {
	if _, err := exec.LookPath("sops"); err != nil {
		t.Skip("sops not installed")
	}

	t.Run("non-existent file", func(t *testing.T) {
		sops := New()
		_, err := sops.Decrypt(context.Background(), "/non/existent/secrets.yaml")
		assert.Error(t, err)
	})

	t.Run("plain file is not decryptable", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "secrets.yaml")
		require.NoError(t, os.WriteFile(file, []byte("API_KEY: plaintext\n"), 0o644))

		sops := New()
		_, err := sops.Decrypt(context.Background(), file)
		assert.Error(t, err)
	})
}

func TestEnvOverlayMissingFile(t *testing.T) {
	if _, err := exec.LookPath("sops"); err != nil {
		t.Skip("sops not installed")
	}

	sops := New()
	_, err := sops.EnvOverlay(context.Background(), []string{"/non/existent/secrets.yaml"})
	assert.Error(t, err)
}

func TestEnvOverlayNoFiles(t *testing.T) {
	sops := New()
	env, err := sops.EnvOverlay(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, env)
}

func TestEnvSlice(t *testing.T) {
	env := EnvSlice(map[string]string{
		"GITHUB_TOKEN": "ghp_xyz",
		"API_KEY":      "abc",
	})
	assert.Equal(t, []string{"API_KEY=abc", "GITHUB_TOKEN=ghp_xyz"}, env)

	assert.Empty(t, EnvSlice(nil))
}
