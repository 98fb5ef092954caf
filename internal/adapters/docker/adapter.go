package docker

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"

	"github.com/betoschneider/slipway/internal/core/domain"
)

// Adapter implements ports.ContainerService using Docker SDK
type Adapter struct {
	cli *client.Client
}

// NewAdapter creates a new Docker adapter instance
func NewAdapter() (*Adapter, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return &Adapter{cli: cli}, nil
}

// ListContainers returns a list of running containers with details
func (a *Adapter) ListContainers(ctx context.Context) ([]domain.Container, error) {
	containers, err := a.cli.ContainerList(ctx, types.ContainerListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}

	result := make([]domain.Container, 0, len(containers))
	for _, c := range containers {
		result = append(result, toDomain(c))
	}
	return result, nil
}

// StartContainer creates and starts a container from a given image with the
// declared port exposed and published on the same host port. Binding the
// socket inside the container is the application's job; this only makes the
// port reachable from outside.
func (a *Adapter) StartContainer(ctx context.Context, image string, port int) (string, error) {
	if err := a.ensureImage(ctx, image); err != nil {
		return "", err
	}

	if port == 0 {
		p, err := a.ImagePort(ctx, image)
		if err != nil {
			return "", err
		}
		port = p
	}

	portSet, portMap, err := publishPort(port)
	if err != nil {
		return "", err
	}

	resp, err := a.cli.ContainerCreate(ctx, &container.Config{
		Image:        image,
		ExposedPorts: portSet,
	}, &container.HostConfig{
		PortBindings: portMap,
	}, nil, nil, "")
	if err != nil {
		return "", fmt.Errorf("failed to create container: %w", err)
	}

	if err := a.cli.ContainerStart(ctx, resp.ID, types.ContainerStartOptions{}); err != nil {
		return "", fmt.Errorf("failed to start container: %w", err)
	}

	return resp.ID, nil
}

// StopContainer stops a running container
func (a *Adapter) StopContainer(ctx context.Context, id string) error {
	// Timeout can be configurable, but keeping it simple for now
	timeout := 10 * time.Second
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return a.cli.ContainerStop(ctx, id, container.StopOptions{})
}

// GetContainerLogs returns a stream of container logs
func (a *Adapter) GetContainerLogs(ctx context.Context, id string) (io.ReadCloser, error) {
	options := types.ContainerLogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     false, // Can be true for streaming
		Timestamps: true,
	}
	return a.cli.ContainerLogs(ctx, id, options)
}

// ImagePort reads the declared port off a built image: first the port
// label, then the single exposed port if the label is absent.
func (a *Adapter) ImagePort(ctx context.Context, image string) (int, error) {
	inspect, _, err := a.cli.ImageInspectWithRaw(ctx, image)
	if err != nil {
		return 0, fmt.Errorf("failed to inspect image: %w", err)
	}
	if inspect.Config == nil {
		return 0, fmt.Errorf("image %s has no config", image)
	}
	if v, ok := inspect.Config.Labels[domain.PortLabel]; ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("image %s carries a bad port label %q: %w", image, v, err)
		}
		return port, nil
	}
	if len(inspect.Config.ExposedPorts) == 1 {
		for p := range inspect.Config.ExposedPorts {
			return p.Int(), nil
		}
	}
	return 0, fmt.Errorf("image %s declares no usable port", image)
}

// ensureImage pulls the image only when the daemon doesn't have it yet, so
// freshly built local images are never shadowed by a registry pull.
func (a *Adapter) ensureImage(ctx context.Context, image string) error {
	_, _, err := a.cli.ImageInspectWithRaw(ctx, image)
	if err == nil {
		return nil
	}
	if !client.IsErrNotFound(err) {
		return fmt.Errorf("failed to inspect image: %w", err)
	}

	reader, err := a.cli.ImagePull(ctx, image, types.ImagePullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image: %w", err)
	}
	defer reader.Close()
	// Discard output to avoid filling memory, but user might want to see it in future
	io.Copy(os.Stdout, reader)
	return nil
}

// publishPort maps the container port onto the identical host port on all
// host interfaces.
func publishPort(port int) (nat.PortSet, nat.PortMap, error) {
	p, err := nat.NewPort("tcp", strconv.Itoa(port))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid port %d: %w", port, err)
	}
	set := nat.PortSet{p: struct{}{}}
	bindings := nat.PortMap{p: []nat.PortBinding{{
		HostIP:   "0.0.0.0",
		HostPort: strconv.Itoa(port),
	}}}
	return set, bindings, nil
}

// toDomain flattens the SDK's container summary into the domain type.
func toDomain(c types.Container) domain.Container {
	// Use the first name if available, remove slash
	name := ""
	if len(c.Names) > 0 {
		name = c.Names[0][1:]
	}

	hostPort := 0
	for _, p := range c.Ports {
		if p.PublicPort != 0 {
			hostPort = int(p.PublicPort)
			break
		}
	}

	ip := ""
	if c.NetworkSettings != nil {
		for _, ep := range c.NetworkSettings.Networks {
			if ep.IPAddress != "" {
				ip = ep.IPAddress
				break
			}
		}
	}

	return domain.Container{
		ID:        c.ID[:12], // Short ID
		Name:      name,
		Image:     c.Image,
		Status:    c.Status,
		State:     c.State,
		IPAddress: ip,
		HostPort:  hostPort,
	}
}
