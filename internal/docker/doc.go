// Package docker provides a wrapper around the Docker API for cabin
// operations.
//
// The Client type handles the container side of bringing a dev
// container up: pulling images, creating and starting the workspace
// container, and running lifecycle commands inside it via
// ContainerExecer. The ComposeProject type shells out to docker
// compose for compose-based configurations.
//
// Containers cabin creates carry the cabin.workspace and
// cabin.devcontainer-id labels so later invocations can find them
// without local state.
//
// # Interface Abstraction
//
// The DockerAPI interface abstracts the Docker SDK, enabling mock
// injection for testing. Use NewClientWithAPI for test scenarios.
//
// # Example
//
//	client, err := docker.NewClient()
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	state, err := client.FindByWorkspace(ctx, "/home/dev/project")
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("%s: %s\n", state.Name, state.Status)
package docker
