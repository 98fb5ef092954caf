package builder

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrEmptyManifest is returned when the dependency manifest exists but
// declares nothing to install.
var ErrEmptyManifest = errors.New("dependency manifest lists no packages")

// ReadManifest reads a dependency manifest from path and returns the
// declared specifiers. The build must not proceed past this point with a
// missing or empty manifest: failing here keeps the failure ahead of any
// image instruction being rendered.
func ReadManifest(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dependency manifest: %w", err)
	}
	defer f.Close()

	specs, err := parseManifest(f)
	if err != nil {
		return nil, fmt.Errorf("invalid dependency manifest %s: %w", path, err)
	}
	return specs, nil
}

// parseManifest handles the plain-text format: one specifier per line,
// blank lines and '#' comments skipped.
func parseManifest(r io.Reader) ([]string, error) {
	var specs []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		specs = append(specs, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(specs) == 0 {
		return nil, ErrEmptyManifest
	}
	return specs, nil
}
