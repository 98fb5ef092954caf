package ports

import "context"

// RegistryService resolves image references against their registry.
type RegistryService interface {
	// ResolveBaseImage checks that ref points at an image the registry can
	// serve and returns its manifest digest. A reference that does not
	// resolve aborts the build before anything is staged.
	ResolveBaseImage(ctx context.Context, ref string) (string, error)
}
