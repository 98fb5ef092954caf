package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/betoschneider/slipway/internal/adapters/builder"
	"github.com/betoschneider/slipway/internal/adapters/docker"
	"github.com/betoschneider/slipway/internal/adapters/registry"
	"github.com/betoschneider/slipway/internal/core/domain"
	"github.com/betoschneider/slipway/internal/core/ports"
)

func main() {
	app := &cli.App{
		Name:  "slipway",
		Usage: "package an application into a container image and run it",
		Commands: []*cli.Command{
			renderCommand(),
			buildCommand(),
			runCommand(),
			upCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func recipeFlags() []cli.Flag {
	def := domain.DefaultRecipe()
	return []cli.Flag{
		&cli.StringFlag{Name: "base", Usage: "base runtime image", Value: def.BaseImage},
		&cli.StringFlag{Name: "workdir", Usage: "working directory inside the image", Value: def.Workdir},
		&cli.StringFlag{Name: "manifest", Usage: "dependency manifest path, relative to the working directory", Value: def.Manifest},
		&cli.IntFlag{Name: "port", Usage: "port the application listens on and the image exposes", Value: def.Port},
		&cli.StringFlag{Name: "command", Usage: "startup command, space separated"},
	}
}

// recipeFromFlags builds and validates a recipe from the common flags. An
// explicit --command is taken as is; otherwise the default command is
// rewritten to carry the chosen port.
func recipeFromFlags(c *cli.Context) (domain.Recipe, error) {
	recipe := domain.DefaultRecipe()
	recipe.BaseImage = c.String("base")
	recipe.Workdir = c.String("workdir")
	recipe.Manifest = c.String("manifest")

	if cmd := c.String("command"); cmd != "" {
		recipe.Command = strings.Fields(cmd)
		recipe.Port = c.Int("port")
	} else {
		recipe = recipe.WithPort(c.Int("port"))
	}

	if err := recipe.Validate(); err != nil {
		return domain.Recipe{}, err
	}
	return recipe, nil
}

func renderCommand() *cli.Command {
	return &cli.Command{
		Name:  "render",
		Usage: "print the container build recipe without building",
		Flags: recipeFlags(),
		Action: func(c *cli.Context) error {
			recipe, err := recipeFromFlags(c)
			if err != nil {
				return err
			}
			fmt.Print(builder.RenderContainerfile(recipe))
			return nil
		},
	}
}

func buildCommand() *cli.Command {
	return &cli.Command{
		Name:      "build",
		Usage:     "build an image from a source directory or git URL",
		ArgsUsage: "[source]",
		Flags: append(recipeFlags(),
			&cli.StringFlag{Name: "tag", Aliases: []string{"t"}, Usage: "tag for the built image"},
		),
		Action: func(c *cli.Context) error {
			image, err := buildFromContext(c)
			if err != nil {
				return err
			}
			fmt.Println(image)
			return nil
		},
	}
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "start a container from an image with its port published",
		ArgsUsage: "<image>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Usage: "override the port recorded on the image"},
		},
		Action: func(c *cli.Context) error {
			image := c.Args().First()
			if image == "" {
				return fmt.Errorf("an image is required")
			}
			return startImage(c, image, c.Int("port"))
		},
	}
}

func upCommand() *cli.Command {
	return &cli.Command{
		Name:      "up",
		Usage:     "build an image and immediately run it",
		ArgsUsage: "[source]",
		Flags: append(recipeFlags(),
			&cli.StringFlag{Name: "tag", Aliases: []string{"t"}, Usage: "tag for the built image"},
		),
		Action: func(c *cli.Context) error {
			image, err := buildFromContext(c)
			if err != nil {
				return err
			}
			return startImage(c, image, c.Int("port"))
		},
	}
}

func buildFromContext(c *cli.Context) (string, error) {
	recipe, err := recipeFromFlags(c)
	if err != nil {
		return "", err
	}

	source := c.Args().First()
	if source == "" {
		source = "."
	}
	tag := c.String("tag")
	if tag == "" {
		tag = "slipway-" + uuid.NewString()[:8]
	}

	builderAdapter, err := builder.NewBuilderAdapter(registry.NewResolver())
	if err != nil {
		return "", err
	}
	return builderAdapter.BuildImage(c.Context, ports.BuildRequest{
		Source: source,
		Image:  tag,
		Recipe: recipe,
	})
}

func startImage(c *cli.Context, image string, port int) error {
	dockerAdapter, err := docker.NewAdapter()
	if err != nil {
		return err
	}
	id, err := dockerAdapter.StartContainer(c.Context, image, port)
	if err != nil {
		return err
	}
	fmt.Println(id)
	return nil
}
