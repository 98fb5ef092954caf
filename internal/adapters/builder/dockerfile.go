package builder

import (
	"fmt"
	"path"
	"strings"

	"github.com/betoschneider/slipway/internal/core/domain"
)

// ContainerfileName is the name the rendered build recipe is written under
// inside the staging directory. A name other than "Dockerfile" keeps us
// from clobbering a Dockerfile the application itself might ship.
const ContainerfileName = "Containerfile.slipway"

// RenderContainerfile turns a recipe into container build instructions.
// Rendering is deterministic: the same recipe always produces byte-identical
// output, so rebuilding an unchanged tree yields an equivalent image.
//
// The manifest is copied and installed before the rest of the tree so that
// source-only changes don't invalidate the dependency layer.
func RenderContainerfile(r domain.Recipe) string {
	manifest := path.Clean(r.Manifest)

	var b strings.Builder
	fmt.Fprintf(&b, "FROM %s\n\n", r.BaseImage)
	fmt.Fprintf(&b, "WORKDIR %s\n\n", r.Workdir)
	fmt.Fprintf(&b, "COPY %s %s\n", manifest, manifest)
	fmt.Fprintf(&b, "RUN pip install --no-cache-dir -r %s\n\n", manifest)
	b.WriteString("COPY . .\n\n")
	fmt.Fprintf(&b, "EXPOSE %d\n", r.Port)
	fmt.Fprintf(&b, "LABEL %s=%d\n\n", domain.PortLabel, r.Port)
	b.WriteString("CMD [")
	for i, arg := range r.Command {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%q", arg)
	}
	b.WriteString("]\n")
	return b.String()
}
