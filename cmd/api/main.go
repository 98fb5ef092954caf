package main

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/betoschneider/slipway/internal/adapters/builder"
	"github.com/betoschneider/slipway/internal/adapters/docker"
	"github.com/betoschneider/slipway/internal/adapters/http"
	"github.com/betoschneider/slipway/internal/adapters/registry"
	"github.com/betoschneider/slipway/internal/config"
)

func main() {
	cfg := config.Load()

	// 1. Initialize Adapters (Infrastructure)
	dockerAdapter, err := docker.NewAdapter()
	if err != nil {
		log.Fatalf("Failed to initialize Docker adapter: %v", err)
	}

	builderAdapter, err := builder.NewBuilderAdapter(registry.NewResolver())
	if err != nil {
		log.Fatalf("Failed to initialize builder adapter: %v", err)
	}

	// 2. Initialize HTTP Handlers (Interface Adapters)
	// Dependency Injection: Injecting the Docker Adapter (which implements
	// ContainerService) and the Builder Adapter into the HTTP Handler.
	appHandler := http.NewAppHandler(dockerAdapter, builderAdapter)
	proxyHandler := http.NewProxyHandler(dockerAdapter, cfg.ProxyDomain)

	// 3. Setup Framework (Fiber)
	app := fiber.New()

	// 4. Define Routes
	// Subdomain traffic goes to the apps; everything else to the API.
	app.Use(proxyHandler.ProxyRequest)

	api := app.Group("/api")
	v1 := api.Group("/v1")

	apps := v1.Group("/apps")
	apps.Get("/", appHandler.ListApps)
	apps.Post("/", appHandler.DeployApp)
	apps.Delete("/:id", appHandler.StopApp)
	apps.Get("/:id/logs", appHandler.GetAppLogs)

	// 5. Start Server
	log.Println("Server starting on " + cfg.ListenAddr)
	if err := app.Listen(cfg.ListenAddr); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
