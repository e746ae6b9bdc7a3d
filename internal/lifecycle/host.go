package lifecycle

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// HostExecer runs commands on the local machine, used for the
// initialize hook which fires before any container exists.
type HostExecer struct {
	// Dir is the working directory, normally the workspace root.
	Dir string

	// Stdout receives command output when set.
	Stdout io.Writer
}

// Exec runs argv with env appended to the current environment.
func (h *HostExecer) Exec(ctx context.Context, argv []string, env []string) error {
	if len(argv) == 0 {
		return nil
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = h.Dir
	cmd.Env = append(os.Environ(), env...)
	cmd.Stdout = h.Stdout

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return fmt.Errorf("%s: %w: %s", argv[0], err, stderr.String())
		}
		return fmt.Errorf("%s: %w", argv[0], err)
	}
	return nil
}
