package ports

import (
	"context"
	"io"

	"github.com/betoschneider/slipway/internal/core/domain"
)

// ContainerService defines the core operations for managing containers.
// This interface allows us to switch between Docker, Podman, or Kubernetes
// without changing the business logic.
type ContainerService interface {
	ListContainers(ctx context.Context) ([]domain.Container, error)
	// StartContainer creates and starts a container from image with the
	// given port exposed and published on the host. A zero port means
	// "read the port the image declares".
	StartContainer(ctx context.Context, image string, port int) (string, error)
	StopContainer(ctx context.Context, id string) error
	GetContainerLogs(ctx context.Context, id string) (io.ReadCloser, error)
}
