package registry

import (
	"context"
	"fmt"

	"github.com/google/go-containerregistry/pkg/name"
	"github.com/google/go-containerregistry/pkg/v1/remote"
)

// Resolver implements ports.RegistryService against a real container
// registry. References without a registry part default to docker.io
// (name.ParseReference handles the library/ prefix as well).
type Resolver struct {
	opts []remote.Option
}

func NewResolver(opts ...remote.Option) *Resolver {
	return &Resolver{opts: opts}
}

// ResolveBaseImage parses ref and asks the registry for its manifest
// descriptor. Only a HEAD request is made; no layers are fetched.
func (r *Resolver) ResolveBaseImage(ctx context.Context, ref string) (string, error) {
	parsed, err := name.ParseReference(ref)
	if err != nil {
		return "", fmt.Errorf("invalid base image reference %q: %w", ref, err)
	}

	opts := append([]remote.Option{remote.WithContext(ctx)}, r.opts...)
	desc, err := remote.Head(parsed, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base image %q: %w", parsed.String(), err)
	}
	return desc.Digest.String(), nil
}
