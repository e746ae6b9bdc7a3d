package docker

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// Common test errors.
var (
	errMockPing   = errors.New("mock: ping failed")
	errMockPull   = errors.New("mock: image pull failed")
	errMockCreate = errors.New("mock: container create failed")
	errMockList   = errors.New("mock: container list failed")
	errMockExec   = errors.New("mock: exec create failed")
)

// MockDockerAPI is a mock implementation of DockerAPI for testing.
type MockDockerAPI struct {
	// Function overrides for each method
	PingFunc                 func(ctx context.Context) (types.Ping, error)
	ImagePullFunc            func(ctx context.Context, ref string, options image.PullOptions) (io.ReadCloser, error)
	ContainerCreateFunc      func(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *ocispec.Platform, name string) (container.CreateResponse, error)
	ContainerStartFunc       func(ctx context.Context, containerID string, options container.StartOptions) error
	ContainerStopFunc        func(ctx context.Context, containerID string, options container.StopOptions) error
	ContainerRemoveFunc      func(ctx context.Context, containerID string, options container.RemoveOptions) error
	ContainerInspectFunc     func(ctx context.Context, containerID string) (container.InspectResponse, error)
	ContainerListFunc        func(ctx context.Context, options container.ListOptions) ([]container.Summary, error)
	ContainerExecCreateFunc  func(ctx context.Context, containerID string, options container.ExecOptions) (types.IDResponse, error)
	ContainerExecAttachFunc  func(ctx context.Context, execID string, options container.ExecAttachOptions) (types.HijackedResponse, error)
	ContainerExecInspectFunc func(ctx context.Context, execID string) (container.ExecInspect, error)
	CloseFunc                func() error

	// Call tracking
	PingCalls                int
	ImagePullCalls           int
	ContainerCreateCalls     int
	ContainerStartCalls      int
	ContainerStopCalls       int
	ContainerRemoveCalls     int
	ContainerInspectCalls    int
	ContainerListCalls       int
	ContainerExecCreateCalls int
	ContainerExecAttachCalls int
	CloseCalls               int
}

// NewMockDockerAPI creates a new mock with default no-op implementations.
func NewMockDockerAPI() *MockDockerAPI {
	return &MockDockerAPI{}
}

// Ping implements DockerAPI.
func (m *MockDockerAPI) Ping(ctx context.Context) (types.Ping, error) {
	m.PingCalls++
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return types.Ping{APIVersion: "1.45"}, nil
}

// ImagePull implements DockerAPI.
func (m *MockDockerAPI) ImagePull(ctx context.Context, ref string, options image.PullOptions) (io.ReadCloser, error) {
	m.ImagePullCalls++
	if m.ImagePullFunc != nil {
		return m.ImagePullFunc(ctx, ref, options)
	}
	return io.NopCloser(bytes.NewReader(nil)), nil
}

// ContainerCreate implements DockerAPI.
func (m *MockDockerAPI) ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *ocispec.Platform, name string) (container.CreateResponse, error) {
	m.ContainerCreateCalls++
	if m.ContainerCreateFunc != nil {
		return m.ContainerCreateFunc(ctx, config, hostConfig, networkingConfig, platform, name)
	}
	return container.CreateResponse{ID: "mock-container-id"}, nil
}

// ContainerStart implements DockerAPI.
func (m *MockDockerAPI) ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error {
	m.ContainerStartCalls++
	if m.ContainerStartFunc != nil {
		return m.ContainerStartFunc(ctx, containerID, options)
	}
	return nil
}

// ContainerStop implements DockerAPI.
func (m *MockDockerAPI) ContainerStop(ctx context.Context, containerID string, options container.StopOptions) error {
	m.ContainerStopCalls++
	if m.ContainerStopFunc != nil {
		return m.ContainerStopFunc(ctx, containerID, options)
	}
	return nil
}

// ContainerRemove implements DockerAPI.
func (m *MockDockerAPI) ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error {
	m.ContainerRemoveCalls++
	if m.ContainerRemoveFunc != nil {
		return m.ContainerRemoveFunc(ctx, containerID, options)
	}
	return nil
}

// ContainerInspect implements DockerAPI.
func (m *MockDockerAPI) ContainerInspect(ctx context.Context, containerID string) (container.InspectResponse, error) {
	m.ContainerInspectCalls++
	if m.ContainerInspectFunc != nil {
		return m.ContainerInspectFunc(ctx, containerID)
	}
	return container.InspectResponse{}, nil
}

// ContainerList implements DockerAPI.
func (m *MockDockerAPI) ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error) {
	m.ContainerListCalls++
	if m.ContainerListFunc != nil {
		return m.ContainerListFunc(ctx, options)
	}
	return []container.Summary{}, nil
}

// ContainerExecCreate implements DockerAPI.
func (m *MockDockerAPI) ContainerExecCreate(ctx context.Context, containerID string, options container.ExecOptions) (types.IDResponse, error) {
	m.ContainerExecCreateCalls++
	if m.ContainerExecCreateFunc != nil {
		return m.ContainerExecCreateFunc(ctx, containerID, options)
	}
	return types.IDResponse{ID: "mock-exec-id"}, nil
}

// ContainerExecAttach implements DockerAPI.
func (m *MockDockerAPI) ContainerExecAttach(ctx context.Context, execID string, options container.ExecAttachOptions) (types.HijackedResponse, error) {
	m.ContainerExecAttachCalls++
	if m.ContainerExecAttachFunc != nil {
		return m.ContainerExecAttachFunc(ctx, execID, options)
	}
	return hijacked(nil), nil
}

// ContainerExecInspect implements DockerAPI.
func (m *MockDockerAPI) ContainerExecInspect(ctx context.Context, execID string) (container.ExecInspect, error) {
	if m.ContainerExecInspectFunc != nil {
		return m.ContainerExecInspectFunc(ctx, execID)
	}
	return container.ExecInspect{ExitCode: 0}, nil
}

// Close implements DockerAPI.
func (m *MockDockerAPI) Close() error {
	m.CloseCalls++
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// hijacked wraps a multiplexed exec stream as a HijackedResponse.
func hijacked(stream []byte) types.HijackedResponse {
	return types.NewHijackedResponse(&mockConn{Reader: bytes.NewReader(stream)}, "")
}

// muxFrame encodes one stdout or stderr frame in the Docker stream
// multiplexing format.
func muxFrame(streamID byte, payload string) []byte {
	frame := make([]byte, 8+len(payload))
	frame[0] = streamID
	frame[4] = byte(len(payload) >> 24)
	frame[5] = byte(len(payload) >> 16)
	frame[6] = byte(len(payload) >> 8)
	frame[7] = byte(len(payload))
	copy(frame[8:], payload)
	return frame
}

// mockConn is a net.Conn backed by an in-memory stream.
type mockConn struct {
	*bytes.Reader
}

func (*mockConn) Write(p []byte) (int, error)      { return len(p), nil }
func (*mockConn) Close() error                     { return nil }
func (*mockConn) LocalAddr() net.Addr              { return nil }
func (*mockConn) RemoteAddr() net.Addr             { return nil }
func (*mockConn) SetDeadline(time.Time) error      { return nil }
func (*mockConn) SetReadDeadline(time.Time) error  { return nil }
func (*mockConn) SetWriteDeadline(time.Time) error { return nil }
