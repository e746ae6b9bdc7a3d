package docker

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/go-connections/nat"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cabindev/cabin/internal/devcontainer"
)

func TestContainerName(t *testing.T) {
	name := ContainerName("/home/dev/my project", "0f5a3c9e-1b2d-4e6f-8a9b-0c1d2e3f4a5b")
	assert.Equal(t, "cabin-my-project-0f5a3c9e", name)

	short := ContainerName("/srv/app", "abc")
	assert.Equal(t, "cabin-app-abc", short)
}

func TestCreate(t *testing.T) {
	mock := NewMockDockerAPI()

	var gotConfig *container.Config
	var gotHost *container.HostConfig
	var gotName string
	mock.ContainerCreateFunc = func(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *ocispec.Platform, name string) (container.CreateResponse, error) {
		gotConfig, gotHost, gotName = config, hostConfig, name
		return container.CreateResponse{ID: "abc123"}, nil
	}

	client := NewClientWithAPI(mock)
	id, err := client.Create(context.Background(), CreateOptions{
		Name:            "cabin-proj-0f5a3c9e",
		Image:           "mcr.microsoft.com/devcontainers/base:ubuntu",
		Workspace:       "/home/dev/proj",
		DevcontainerID:  "0f5a3c9e",
		WorkspaceFolder: "/workspaces/proj",
		Env:             map[string]string{"TZ": "UTC", "CI": "true"},
		User:            "vscode",
		Ports:           []devcontainer.PortSpec{{Host: 8080, Container: 3000}},
		Mounts: []devcontainer.Mount{
			{Source: "proj-cache", Target: "/home/vscode/.cache", Type: "volume"},
		},
		Init:            true,
		OverrideCommand: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "abc123", id)
	assert.Equal(t, "cabin-proj-0f5a3c9e", gotName)

	assert.Equal(t, "mcr.microsoft.com/devcontainers/base:ubuntu", gotConfig.Image)
	assert.Equal(t, "vscode", gotConfig.User)
	assert.Equal(t, "/workspaces/proj", gotConfig.WorkingDir)
	assert.Equal(t, []string{"CI=true", "TZ=UTC"}, gotConfig.Env)
	assert.Equal(t, "/home/dev/proj", gotConfig.Labels[LabelWorkspace])
	assert.Equal(t, "0f5a3c9e", gotConfig.Labels[LabelID])
	assert.NotEmpty(t, gotConfig.Cmd, "overrideCommand installs a sleep loop")

	require.Len(t, gotHost.Mounts, 2)
	assert.Equal(t, "/home/dev/proj", gotHost.Mounts[0].Source)
	assert.Equal(t, "/workspaces/proj", gotHost.Mounts[0].Target)
	assert.Equal(t, "proj-cache", gotHost.Mounts[1].Source)

	port := nat.Port("3000/tcp")
	require.Contains(t, gotHost.PortBindings, port)
	assert.Equal(t, "8080", gotHost.PortBindings[port][0].HostPort)
	assert.Equal(t, "127.0.0.1", gotHost.PortBindings[port][0].HostIP)

	require.NotNil(t, gotHost.Init)
	assert.True(t, *gotHost.Init)
}

func TestCreateWorkspaceMountOverride(t *testing.T) {
	mock := NewMockDockerAPI()

	var gotHost *container.HostConfig
	mock.ContainerCreateFunc = func(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *ocispec.Platform, name string) (container.CreateResponse, error) {
		gotHost = hostConfig
		return container.CreateResponse{ID: "abc"}, nil
	}

	client := NewClientWithAPI(mock)
	_, err := client.Create(context.Background(), CreateOptions{
		Image:           "ubuntu",
		Workspace:       "/home/dev/proj",
		WorkspaceFolder: "/workspaces/proj",
		WorkspaceMount:  "source=/home/dev/proj,target=/src,type=bind",
	})
	require.NoError(t, err)

	require.Len(t, gotHost.Mounts, 1)
	assert.Equal(t, "/src", gotHost.Mounts[0].Target)
}

func TestCreateError(t *testing.T) {
	mock := NewMockDockerAPI()
	mock.ContainerCreateFunc = func(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *ocispec.Platform, name string) (container.CreateResponse, error) {
		return container.CreateResponse{}, errMockCreate
	}

	client := NewClientWithAPI(mock)
	_, err := client.Create(context.Background(), CreateOptions{Image: "ubuntu"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errMockCreate))
}

func TestStopPassesTimeout(t *testing.T) {
	mock := NewMockDockerAPI()
	mock.ContainerStopFunc = func(ctx context.Context, containerID string, options container.StopOptions) error {
		require.NotNil(t, options.Timeout)
		assert.Equal(t, 30, *options.Timeout)
		return nil
	}

	client := NewClientWithAPI(mock)
	require.NoError(t, client.Stop(context.Background(), "abc", 30*time.Second))
	assert.Equal(t, 1, mock.ContainerStopCalls)
}

func TestFindByWorkspace(t *testing.T) {
	mock := NewMockDockerAPI()
	mock.ContainerListFunc = func(ctx context.Context, options container.ListOptions) ([]container.Summary, error) {
		assert.True(t, options.All)
		assert.True(t, options.Filters.ExactMatch("label", LabelWorkspace+"=/home/dev/proj"))
		return []container.Summary{{
			ID:     "abc123",
			Names:  []string{"/cabin-proj-0f5a3c9e"},
			Image:  "ubuntu",
			State:  "running",
			Status: "Up 2 hours",
			Labels: map[string]string{LabelWorkspace: "/home/dev/proj"},
		}}, nil
	}

	client := NewClientWithAPI(mock)
	state, err := client.FindByWorkspace(context.Background(), "/home/dev/proj")
	require.NoError(t, err)

	assert.Equal(t, "cabin-proj-0f5a3c9e", state.Name)
	assert.Equal(t, "/home/dev/proj", state.Workspace)
	assert.True(t, state.Running)
}

func TestFindByWorkspaceNotFound(t *testing.T) {
	client := NewClientWithAPI(NewMockDockerAPI())

	_, err := client.FindByWorkspace(context.Background(), "/nowhere")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFindByWorkspaceListError(t *testing.T) {
	mock := NewMockDockerAPI()
	mock.ContainerListFunc = func(ctx context.Context, options container.ListOptions) ([]container.Summary, error) {
		return nil, errMockList
	}

	client := NewClientWithAPI(mock)
	_, err := client.FindByWorkspace(context.Background(), "/home/dev/proj")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errMockList))
}

func TestListManaged(t *testing.T) {
	mock := NewMockDockerAPI()
	mock.ContainerListFunc = func(ctx context.Context, options container.ListOptions) ([]container.Summary, error) {
		assert.True(t, options.Filters.ExactMatch("label", LabelWorkspace))
		return []container.Summary{
			{ID: "a", State: "running"},
			{ID: "b", State: "exited"},
		}, nil
	}

	client := NewClientWithAPI(mock)
	states, err := client.ListManaged(context.Background())
	require.NoError(t, err)
	require.Len(t, states, 2)
	assert.True(t, states[0].Running)
	assert.False(t, states[1].Running)
}

func TestContainerExec(t *testing.T) {
	mock := NewMockDockerAPI()

	var gotOptions container.ExecOptions
	mock.ContainerExecCreateFunc = func(ctx context.Context, containerID string, options container.ExecOptions) (types.IDResponse, error) {
		assert.Equal(t, "abc123", containerID)
		gotOptions = options
		return types.IDResponse{ID: "exec-1"}, nil
	}
	mock.ContainerExecAttachFunc = func(ctx context.Context, execID string, options container.ExecAttachOptions) (types.HijackedResponse, error) {
		return hijacked(muxFrame(1, "hello\n")), nil
	}

	var stdout bytes.Buffer
	execer := &ContainerExecer{
		Client:      NewClientWithAPI(mock),
		ContainerID: "abc123",
		User:        "vscode",
		WorkingDir:  "/workspaces/proj",
		Stdout:      &stdout,
	}

	err := execer.Exec(context.Background(), []string{"/bin/sh", "-c", "echo hello"}, []string{"CI=true"})
	require.NoError(t, err)

	assert.Equal(t, []string{"/bin/sh", "-c", "echo hello"}, gotOptions.Cmd)
	assert.Equal(t, []string{"CI=true"}, gotOptions.Env)
	assert.Equal(t, "vscode", gotOptions.User)
	assert.Equal(t, "/workspaces/proj", gotOptions.WorkingDir)
	assert.Equal(t, "hello\n", stdout.String())
}

func TestContainerExecNonZeroExit(t *testing.T) {
	mock := NewMockDockerAPI()
	mock.ContainerExecAttachFunc = func(ctx context.Context, execID string, options container.ExecAttachOptions) (types.HijackedResponse, error) {
		return hijacked(muxFrame(2, "command not found\n")), nil
	}
	mock.ContainerExecInspectFunc = func(ctx context.Context, execID string) (container.ExecInspect, error) {
		return container.ExecInspect{ExitCode: 127}, nil
	}

	execer := &ContainerExecer{Client: NewClientWithAPI(mock), ContainerID: "abc"}

	err := execer.Exec(context.Background(), []string{"missing-tool"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exit 127")
	assert.Contains(t, err.Error(), "command not found")
}

func TestContainerExecCreateError(t *testing.T) {
	mock := NewMockDockerAPI()
	mock.ContainerExecCreateFunc = func(ctx context.Context, containerID string, options container.ExecOptions) (types.IDResponse, error) {
		return types.IDResponse{}, errMockExec
	}

	execer := &ContainerExecer{Client: NewClientWithAPI(mock), ContainerID: "abc"}

	err := execer.Exec(context.Background(), []string{"true"}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errMockExec))
}

func TestContainerExecEmptyArgv(t *testing.T) {
	execer := &ContainerExecer{Client: NewClientWithAPI(NewMockDockerAPI()), ContainerID: "abc"}
	require.NoError(t, execer.Exec(context.Background(), nil, nil))
}
