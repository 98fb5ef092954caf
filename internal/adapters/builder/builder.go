package builder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/archive"

	"github.com/betoschneider/slipway/internal/core/ports"
)

// Adapter implements ports.BuilderService using the Docker daemon. The
// build is strictly sequential: resolve the base image, stage the source,
// verify the manifest, render the recipe, build. Any step failing aborts
// the whole build; no partial image is tagged.
type Adapter struct {
	cli      *client.Client
	registry ports.RegistryService
}

func NewBuilderAdapter(registry ports.RegistryService) (*Adapter, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return &Adapter{cli: cli, registry: registry}, nil
}

// BuildImage stages the source, renders the recipe and builds an image.
func (a *Adapter) BuildImage(ctx context.Context, req ports.BuildRequest) (string, error) {
	if req.Image == "" {
		return "", fmt.Errorf("image tag is required")
	}
	if err := req.Recipe.Validate(); err != nil {
		return "", fmt.Errorf("invalid recipe: %w", err)
	}

	// 1. The base reference has to resolve before anything is staged.
	digest, err := a.registry.ResolveBaseImage(ctx, req.Recipe.BaseImage)
	if err != nil {
		return "", err
	}
	log.Printf("Base image %s resolved to %s", req.Recipe.BaseImage, digest)

	tmpDir, err := os.MkdirTemp("", "slipway-build-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir) // Clean up after build

	// 2. Stage the full source tree, preserving relative paths.
	if err := Stage(ctx, req.Source, tmpDir); err != nil {
		return "", err
	}

	// 3. The manifest must exist and parse before any image instruction is
	// rendered, so a corrupt manifest never reaches the daemon.
	specs, err := ReadManifest(filepath.Join(tmpDir, filepath.FromSlash(req.Recipe.Manifest)))
	if err != nil {
		return "", err
	}
	log.Printf("Installing %d dependencies from %s", len(specs), req.Recipe.Manifest)

	// 4. Render the recipe into the staging dir.
	containerfile := RenderContainerfile(req.Recipe)
	if err := os.WriteFile(filepath.Join(tmpDir, ContainerfileName), []byte(containerfile), 0o644); err != nil {
		return "", fmt.Errorf("failed to write build recipe: %w", err)
	}

	// 5. Create Build Context (Tar)
	tar, err := archive.TarWithOptions(tmpDir, &archive.TarOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to create build context: %w", err)
	}

	// 6. Build Docker Image
	log.Printf("Building image %s...", req.Image)
	resp, err := a.cli.ImageBuild(ctx, tar, types.ImageBuildOptions{
		Tags:       []string{req.Image},
		Dockerfile: ContainerfileName,
		Remove:     true, // Remove intermediate containers
	})
	if err != nil {
		return "", fmt.Errorf("failed to build image: %w", err)
	}
	defer resp.Body.Close()

	// The build isn't done until the daemon's message stream ends, and a
	// failing RUN step only shows up inside that stream.
	if err := drainBuildStream(resp.Body); err != nil {
		return "", fmt.Errorf("build failed: %w", err)
	}

	return req.Image, nil
}

// drainBuildStream consumes the daemon's JSON message stream and returns
// the first error it reports, if any.
func drainBuildStream(r io.Reader) error {
	dec := json.NewDecoder(r)
	for {
		var msg struct {
			Stream string `json:"stream"`
			Error  string `json:"error"`
		}
		if err := dec.Decode(&msg); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to read build output: %w", err)
		}
		if msg.Error != "" {
			return errors.New(msg.Error)
		}
	}
}
