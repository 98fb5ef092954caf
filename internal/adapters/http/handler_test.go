package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/betoschneider/slipway/internal/core/domain"
	"github.com/betoschneider/slipway/internal/core/ports"
)

type startCall struct {
	image string
	port  int
}

type fakeContainerService struct {
	containers []domain.Container
	logs       string
	startErr   error

	started []startCall
	stopped []string
}

func (f *fakeContainerService) ListContainers(ctx context.Context) ([]domain.Container, error) {
	return f.containers, nil
}

func (f *fakeContainerService) StartContainer(ctx context.Context, image string, port int) (string, error) {
	if f.startErr != nil {
		return "", f.startErr
	}
	f.started = append(f.started, startCall{image: image, port: port})
	return "cid-123", nil
}

func (f *fakeContainerService) StopContainer(ctx context.Context, id string) error {
	f.stopped = append(f.stopped, id)
	return nil
}

func (f *fakeContainerService) GetContainerLogs(ctx context.Context, id string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(f.logs)), nil
}

type fakeBuilderService struct {
	built    []ports.BuildRequest
	buildErr error
}

func (f *fakeBuilderService) BuildImage(ctx context.Context, req ports.BuildRequest) (string, error) {
	if f.buildErr != nil {
		return "", f.buildErr
	}
	f.built = append(f.built, req)
	return req.Image, nil
}

func newTestApp(service *fakeContainerService, builder *fakeBuilderService) *fiber.App {
	handler := NewAppHandler(service, builder)

	app := fiber.New()
	apps := app.Group("/api/v1/apps")
	apps.Get("/", handler.ListApps)
	apps.Post("/", handler.DeployApp)
	apps.Delete("/:id", handler.StopApp)
	apps.Get("/:id/logs", handler.GetAppLogs)
	return app
}

func TestListApps(t *testing.T) {
	service := &fakeContainerService{containers: []domain.Container{
		{ID: "abc123", Name: "dashboard", Image: "slipway-1a2b3c4d", State: "running", HostPort: 8505},
	}}
	app := newTestApp(service, &fakeBuilderService{})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/apps/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got []domain.Container
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, "dashboard", got[0].Name)
	assert.Equal(t, 8505, got[0].HostPort)
}

func TestDeployRequiresImageOrRepo(t *testing.T) {
	app := newTestApp(&fakeContainerService{}, &fakeBuilderService{})

	req := httptest.NewRequest("POST", "/api/v1/apps/", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestDeployExistingImage(t *testing.T) {
	service := &fakeContainerService{}
	app := newTestApp(service, &fakeBuilderService{})

	body, _ := json.Marshal(DeployRequest{Image: "registry.local/dashboard:v1"})
	req := httptest.NewRequest("POST", "/api/v1/apps/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	require.Len(t, service.started, 1)
	assert.Equal(t, "registry.local/dashboard:v1", service.started[0].image)
	// No port requested: the default recipe port is published.
	assert.Equal(t, domain.DefaultRecipe().Port, service.started[0].port)
}

func TestDeployBuildsFromRepo(t *testing.T) {
	service := &fakeContainerService{}
	builder := &fakeBuilderService{}
	app := newTestApp(service, builder)

	body, _ := json.Marshal(DeployRequest{RepoURL: "https://github.com/foo/dashboard"})
	req := httptest.NewRequest("POST", "/api/v1/apps/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	require.Len(t, builder.built, 1)
	assert.Equal(t, "https://github.com/foo/dashboard", builder.built[0].Source)
	assert.True(t, strings.HasPrefix(builder.built[0].Image, "slipway-"))
	require.NoError(t, builder.built[0].Recipe.Validate())

	require.Len(t, service.started, 1)
	assert.Equal(t, builder.built[0].Image, service.started[0].image)
}

func TestDeployWithPortOverride(t *testing.T) {
	service := &fakeContainerService{}
	builder := &fakeBuilderService{}
	app := newTestApp(service, builder)

	body, _ := json.Marshal(DeployRequest{RepoURL: "https://github.com/foo/dashboard", Port: 9000})
	req := httptest.NewRequest("POST", "/api/v1/apps/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	// The override must land in both halves of the recipe, not just the
	// exposed port.
	require.Len(t, builder.built, 1)
	assert.Equal(t, 9000, builder.built[0].Recipe.Port)
	assert.Equal(t, 9000, builder.built[0].Recipe.CommandPort())
	require.Len(t, service.started, 1)
	assert.Equal(t, 9000, service.started[0].port)
}

func TestDeployBuildFailure(t *testing.T) {
	service := &fakeContainerService{}
	builder := &fakeBuilderService{buildErr: errors.New("pip install failed")}
	app := newTestApp(service, builder)

	body, _ := json.Marshal(DeployRequest{RepoURL: "https://github.com/foo/dashboard"})
	req := httptest.NewRequest("POST", "/api/v1/apps/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	// A failed build never reaches the runtime.
	assert.Empty(t, service.started)
}

func TestStopApp(t *testing.T) {
	service := &fakeContainerService{}
	app := newTestApp(service, &fakeBuilderService{})

	resp, err := app.Test(httptest.NewRequest("DELETE", "/api/v1/apps/abc123", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"abc123"}, service.stopped)
}

func TestGetAppLogs(t *testing.T) {
	service := &fakeContainerService{logs: "2026-01-01 booted\n"}
	app := newTestApp(service, &fakeBuilderService{})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/apps/abc123/logs", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/plain", resp.Header.Get("Content-Type"))

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), "booted")
}
