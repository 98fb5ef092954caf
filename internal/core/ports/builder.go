package ports

import (
	"context"

	"github.com/betoschneider/slipway/internal/core/domain"
)

// BuildRequest carries everything a build needs: where the source comes
// from (a local directory or a git URL), the tag for the resulting image,
// and the packaging recipe.
type BuildRequest struct {
	Source string
	Image  string
	Recipe domain.Recipe
}

// BuilderService defines operations for building container images from source code.
type BuilderService interface {
	// BuildImage stages the source, renders the recipe and builds an image
	// from it. It returns the tag of the built image or an error.
	BuildImage(ctx context.Context, req BuildRequest) (string, error)
}
