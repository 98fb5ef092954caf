package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/betoschneider/slipway/internal/core/domain"
	"github.com/betoschneider/slipway/internal/core/ports"
)

type AppHandler struct {
	service ports.ContainerService
	builder ports.BuilderService
}

func NewAppHandler(service ports.ContainerService, builder ports.BuilderService) *AppHandler {
	return &AppHandler{service: service, builder: builder}
}

func (h *AppHandler) ListApps(c *fiber.Ctx) error {
	containers, err := h.service.ListContainers(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(containers)
}

type DeployRequest struct {
	Image   string `json:"image"`
	RepoURL string `json:"repo_url"`
	Port    int    `json:"port"`
}

// DeployApp either builds an image from a git repository and runs it, or
// runs an already existing image. The container is always started with the
// recipe's declared port published on the host.
//
// Note: the build is a blocking operation and might take time. In a real
// system we'd hand it to a background worker.
func (h *AppHandler) DeployApp(c *fiber.Ctx) error {
	var req DeployRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Image == "" && req.RepoURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Image name or Repo URL is required",
		})
	}

	recipe := domain.DefaultRecipe()
	if req.Port != 0 {
		recipe = recipe.WithPort(req.Port)
	}

	imageToRun := req.Image
	if req.RepoURL != "" {
		if imageToRun == "" {
			imageToRun = "slipway-" + uuid.NewString()[:8]
		}
		built, err := h.builder.BuildImage(c.Context(), ports.BuildRequest{
			Source: req.RepoURL,
			Image:  imageToRun,
			Recipe: recipe,
		})
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Build failed: " + err.Error(),
			})
		}
		imageToRun = built
	}

	containerID, err := h.service.StartContainer(c.Context(), imageToRun, recipe.Port)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":    containerID,
		"image": imageToRun,
		"port":  recipe.Port,
	})
}

func (h *AppHandler) StopApp(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Container ID is required",
		})
	}

	if err := h.service.StopContainer(c.Context(), id); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *AppHandler) GetAppLogs(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Container ID is required",
		})
	}

	logs, err := h.service.GetContainerLogs(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	c.Set("Content-Type", "text/plain")
	return c.SendStream(logs)
}
