// Package secrets decrypts SOPS-encrypted secret files into
// environment overlays for dev containers.
package secrets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"sort"
)

// SOPS shells out to the sops binary for decryption, so key material
// and provider auth stay in the operator's sops configuration.
type SOPS struct{}

// New creates a SOPS instance.
func New() *SOPS {
	return &SOPS{}
}

// Decrypt decrypts a SOPS-encrypted file and returns the plaintext as
// JSON bytes.
func (s *SOPS) Decrypt(ctx context.Context, file string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "sops", "--output-type", "json", "-d", file)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("sops decrypt failed for %s: %w: %s", file, err, stderr.String())
	}
	return stdout.Bytes(), nil
}

// DecryptToMap decrypts a file and returns its top-level keys.
func (s *SOPS) DecryptToMap(ctx context.Context, file string) (map[string]any, error) {
	data, err := s.Decrypt(ctx, file)
	if err != nil {
		return nil, err
	}

	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parse decrypted JSON from %s: %w", file, err)
	}
	return result, nil
}

// EnvOverlay decrypts files and flattens their scalar values into an
// environment map for remoteEnv. Later files win on duplicate keys;
// nested objects are skipped since they have no env representation.
func (s *SOPS) EnvOverlay(ctx context.Context, files []string) (map[string]string, error) {
	env := make(map[string]string)

	for _, file := range files {
		data, err := s.DecryptToMap(ctx, file)
		if err != nil {
			return nil, err
		}
		for key, value := range data {
			switch v := value.(type) {
			case map[string]any, []any:
				// Not representable as a single variable.
			case string:
				env[key] = v
			default:
				env[key] = fmt.Sprintf("%v", v)
			}
		}
	}

	return env, nil
}

// EnvSlice renders an environment map as sorted KEY=value pairs.
func EnvSlice(env map[string]string) []string {
	pairs := make([]string, 0, len(env))
	for key, value := range env {
		pairs = append(pairs, key+"="+value)
	}
	sort.Strings(pairs)
	return pairs
}
