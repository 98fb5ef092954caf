package builder

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
)

// Stage materializes the build source into dir. A source that looks like a
// git URL is shallow-cloned; anything else is treated as a local directory
// and copied into dir preserving relative paths.
func Stage(ctx context.Context, source, dir string) error {
	if isGitSource(source) {
		fmt.Printf("Cloning %s into %s...\n", source, dir)
		_, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
			URL:      source,
			Progress: os.Stdout,
			Depth:    1, // Shallow clone for speed
		})
		if err != nil {
			return fmt.Errorf("failed to clone repo: %w", err)
		}
		return nil
	}
	if err := copyTree(source, dir); err != nil {
		return fmt.Errorf("failed to stage source tree: %w", err)
	}
	return nil
}

func isGitSource(s string) bool {
	return strings.HasPrefix(s, "http://") ||
		strings.HasPrefix(s, "https://") ||
		strings.HasPrefix(s, "ssh://") ||
		strings.HasPrefix(s, "git@") ||
		strings.HasSuffix(s, ".git")
}

// copyTree copies every regular file under src into dst, keeping relative
// paths and file modes. Symlinks and other irregular files are skipped.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		return copyFile(p, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
