package docker

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cabindev/cabin/internal/devcontainer"
)

// ComposeProject drives docker compose for compose-based configs.
type ComposeProject struct {
	// Dir is the directory compose commands run in, normally the
	// directory holding devcontainer.json.
	Dir string

	// Files are the compose files, in order. The cabin override file
	// goes last so its additions win.
	Files []string

	// Project is the compose project name.
	Project string
}

func (p *ComposeProject) args(verb string, extra ...string) []string {
	args := []string{"compose"}
	if p.Project != "" {
		args = append(args, "-p", p.Project)
	}
	for _, file := range p.Files {
		args = append(args, "-f", file)
	}
	args = append(args, verb)
	return append(args, extra...)
}

func (p *ComposeProject) run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, "docker", args...)
	cmd.Dir = p.Dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("docker %s: %w\n%s", strings.Join(args[:2], " "), err, output)
	}
	return nil
}

// Up starts the listed services detached, creating them as needed.
func (p *ComposeProject) Up(ctx context.Context, services ...string) error {
	return p.run(ctx, p.args("up", append([]string{"-d"}, services...)...))
}

// Stop stops services without removing them.
func (p *ComposeProject) Stop(ctx context.Context) error {
	return p.run(ctx, p.args("stop"))
}

// Down stops and removes the project's services.
func (p *ComposeProject) Down(ctx context.Context) error {
	return p.run(ctx, p.args("down"))
}

// ContainerID returns the container id of a compose service.
func (p *ComposeProject) ContainerID(ctx context.Context, service string) (string, error) {
	cmd := exec.CommandContext(ctx, "docker", p.args("ps", "-q", service)...)
	cmd.Dir = p.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("docker compose ps: %w: %s", err, stderr.String())
	}

	id := strings.TrimSpace(stdout.String())
	if id == "" {
		return "", fmt.Errorf("%w: service %s", ErrNotFound, service)
	}
	if idx := strings.IndexByte(id, '\n'); idx >= 0 {
		id = id[:idx]
	}
	return id, nil
}

// ComposeOverride renders the cabin override compose file for a
// resolved config: labels, environment, the workspace mount, and
// forwarded ports layered onto the target service.
func ComposeOverride(cfg *devcontainer.Config, workspace, devcontainerID string) ([]byte, error) {
	if cfg.Service == "" {
		return nil, fmt.Errorf("compose config has no service")
	}

	service := map[string]any{
		"labels": map[string]string{
			LabelWorkspace: workspace,
			LabelID:        devcontainerID,
		},
	}

	if len(cfg.ContainerEnv) > 0 {
		service["environment"] = cfg.ContainerEnv
	}
	if cfg.WorkspaceFolder != "" {
		service["volumes"] = []string{workspace + ":" + cfg.WorkspaceFolder}
	}
	if len(cfg.ForwardPorts) > 0 {
		ports := make([]string, 0, len(cfg.ForwardPorts))
		for _, spec := range cfg.ForwardPorts {
			ports = append(ports, "127.0.0.1:"+spec.String())
		}
		service["ports"] = ports
	}
	if cfg.OverrideCommand != nil && *cfg.OverrideCommand {
		service["command"] = sleepCommand
	}

	doc := map[string]any{
		"services": map[string]any{cfg.Service: service},
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("render compose override: %w", err)
	}
	return out, nil
}
