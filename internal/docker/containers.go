package docker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/docker/go-connections/nat"

	"github.com/cabindev/cabin/internal/devcontainer"
)

// Labels cabin stamps on every container it creates.
const (
	// LabelWorkspace holds the absolute host workspace path.
	LabelWorkspace = "cabin.workspace"

	// LabelID holds the stable devcontainer id for the workspace.
	LabelID = "cabin.devcontainer-id"
)

// ErrNotFound indicates no container exists for a workspace.
var ErrNotFound = errors.New("no container for workspace")

// sleepCommand keeps an overridden container alive.
var sleepCommand = []string{"/bin/sh", "-c", "while sleep 1000; do :; done"}

// CreateOptions describes the container to create for a resolved
// config.
type CreateOptions struct {
	Name            string
	Image           string
	Workspace       string
	DevcontainerID  string
	WorkspaceFolder string
	WorkspaceMount  string
	Mounts          []devcontainer.Mount
	Env             map[string]string
	User            string
	Ports           []devcontainer.PortSpec
	Init            bool
	Privileged      bool
	OverrideCommand bool
}

// ContainerName derives a stable container name from the workspace
// path and devcontainer id.
func ContainerName(workspace, devcontainerID string) string {
	base := workspace[strings.LastIndex(workspace, "/")+1:]
	var sb strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteRune('-')
		}
	}
	short := devcontainerID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("cabin-%s-%s", sb.String(), short)
}

// Create creates a container and returns its id. The container is not
// started.
func (c *Client) Create(ctx context.Context, opts CreateOptions) (string, error) {
	config := &container.Config{
		Image:      opts.Image,
		User:       opts.User,
		WorkingDir: opts.WorkspaceFolder,
		Env:        envSlice(opts.Env),
		Labels: map[string]string{
			LabelWorkspace: opts.Workspace,
			LabelID:        opts.DevcontainerID,
		},
	}
	if opts.OverrideCommand {
		config.Cmd = sleepCommand
		config.Entrypoint = []string{}
	}

	exposed, bindings, err := portBindings(opts.Ports)
	if err != nil {
		return "", err
	}
	config.ExposedPorts = exposed

	hostConfig := &container.HostConfig{
		Mounts:       containerMounts(opts),
		PortBindings: bindings,
		Init:         &opts.Init,
		Privileged:   opts.Privileged,
	}

	created, err := c.api.ContainerCreate(ctx, config, hostConfig, nil, nil, opts.Name)
	if err != nil {
		return "", fmt.Errorf("create container %s: %w", opts.Name, err)
	}

	return created.ID, nil
}

// Start starts a created or stopped container.
func (c *Client) Start(ctx context.Context, containerID string) error {
	if err := c.api.ContainerStart(ctx, containerID, container.StartOptions{}); err != nil {
		return fmt.Errorf("start container: %w", err)
	}
	return nil
}

// Stop stops a running container, waiting up to timeout.
func (c *Client) Stop(ctx context.Context, containerID string, timeout time.Duration) error {
	seconds := int(timeout.Seconds())
	if err := c.api.ContainerStop(ctx, containerID, container.StopOptions{Timeout: &seconds}); err != nil {
		return fmt.Errorf("stop container: %w", err)
	}
	return nil
}

// Remove removes a container, force-killing it if still running.
func (c *Client) Remove(ctx context.Context, containerID string) error {
	err := c.api.ContainerRemove(ctx, containerID, container.RemoveOptions{Force: true})
	if err != nil {
		return fmt.Errorf("remove container: %w", err)
	}
	return nil
}

// ContainerState summarizes a workspace container.
type ContainerState struct {
	ID        string
	Name      string
	Image     string
	State     string
	Status    string
	Workspace string
	Running   bool
}

// FindByWorkspace locates the container labeled for a workspace.
// Returns ErrNotFound when none exists.
func (c *Client) FindByWorkspace(ctx context.Context, workspace string) (*ContainerState, error) {
	list, err := c.api.ContainerList(ctx, container.ListOptions{
		All: true,
		Filters: filters.NewArgs(
			filters.Arg("label", LabelWorkspace+"="+workspace),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("list containers: %w", err)
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, workspace)
	}

	return summaryState(list[0]), nil
}

// ListManaged returns every container cabin created, across
// workspaces.
func (c *Client) ListManaged(ctx context.Context) ([]ContainerState, error) {
	list, err := c.api.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filters.NewArgs(filters.Arg("label", LabelWorkspace)),
	})
	if err != nil {
		return nil, fmt.Errorf("list containers: %w", err)
	}

	states := make([]ContainerState, 0, len(list))
	for _, summary := range list {
		states = append(states, *summaryState(summary))
	}
	return states, nil
}

func summaryState(summary container.Summary) *ContainerState {
	name := ""
	if len(summary.Names) > 0 {
		name = strings.TrimPrefix(summary.Names[0], "/")
	}
	return &ContainerState{
		ID:        summary.ID,
		Name:      name,
		Image:     summary.Image,
		State:     summary.State,
		Status:    summary.Status,
		Workspace: summary.Labels[LabelWorkspace],
		Running:   summary.State == "running",
	}
}

// ContainerExecer runs commands inside one container. It satisfies
// the lifecycle package's Execer contract.
type ContainerExecer struct {
	Client      *Client
	ContainerID string

	// User overrides the container user for the command.
	User string

	// WorkingDir is the directory commands run in.
	WorkingDir string

	// Stdout receives command output when set.
	Stdout *bytes.Buffer
}

// Exec runs argv inside the container and waits for it, returning an
// error carrying stderr on a non-zero exit.
func (e *ContainerExecer) Exec(ctx context.Context, argv []string, env []string) error {
	if len(argv) == 0 {
		return nil
	}

	created, err := e.Client.api.ContainerExecCreate(ctx, e.ContainerID, container.ExecOptions{
		Cmd:          argv,
		Env:          env,
		User:         e.User,
		WorkingDir:   e.WorkingDir,
		AttachStdout: true,
		AttachStderr: true,
	})
	if err != nil {
		return fmt.Errorf("exec create: %w", err)
	}

	attached, err := e.Client.api.ContainerExecAttach(ctx, created.ID, container.ExecAttachOptions{})
	if err != nil {
		return fmt.Errorf("exec attach: %w", err)
	}
	defer attached.Close()

	var stdout, stderr bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdout, &stderr, attached.Reader); err != nil {
		return fmt.Errorf("exec read: %w", err)
	}
	if e.Stdout != nil {
		e.Stdout.Write(stdout.Bytes())
	}

	state, err := e.Client.api.ContainerExecInspect(ctx, created.ID)
	if err != nil {
		return fmt.Errorf("exec inspect: %w", err)
	}
	if state.ExitCode != 0 {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return fmt.Errorf("%s: exit %d: %s", argv[0], state.ExitCode, msg)
		}
		return fmt.Errorf("%s: exit %d", argv[0], state.ExitCode)
	}

	return nil
}

func envSlice(env map[string]string) []string {
	if len(env) == 0 {
		return nil
	}
	vars := make([]string, 0, len(env))
	for key, value := range env {
		vars = append(vars, key+"="+value)
	}
	sort.Strings(vars)
	return vars
}

func containerMounts(opts CreateOptions) []mount.Mount {
	mounts := make([]mount.Mount, 0, len(opts.Mounts)+1)

	if opts.WorkspaceMount != "" {
		if parsed, err := devcontainer.ParseMount(opts.WorkspaceMount); err == nil {
			mounts = append(mounts, toMount(parsed))
		}
	} else if opts.Workspace != "" && opts.WorkspaceFolder != "" {
		mounts = append(mounts, mount.Mount{
			Type:   mount.TypeBind,
			Source: opts.Workspace,
			Target: opts.WorkspaceFolder,
		})
	}

	for _, m := range opts.Mounts {
		mounts = append(mounts, toMount(m))
	}
	return mounts
}

func toMount(m devcontainer.Mount) mount.Mount {
	kind := mount.Type(m.Type)
	if kind == "" {
		kind = mount.TypeBind
	}
	return mount.Mount{Type: kind, Source: m.Source, Target: m.Target}
}

func portBindings(ports []devcontainer.PortSpec) (nat.PortSet, nat.PortMap, error) {
	if len(ports) == 0 {
		return nil, nil, nil
	}

	exposed := make(nat.PortSet, len(ports))
	bindings := make(nat.PortMap, len(ports))
	for _, spec := range ports {
		port, err := nat.NewPort("tcp", strconv.Itoa(spec.Container))
		if err != nil {
			return nil, nil, fmt.Errorf("forward port %s: %w", spec, err)
		}
		exposed[port] = struct{}{}
		bindings[port] = []nat.PortBinding{{
			HostIP:   "127.0.0.1",
			HostPort: strconv.Itoa(spec.Host),
		}}
	}
	return exposed, bindings, nil
}
