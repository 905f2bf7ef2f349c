package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"snaplog-go/internal/core"
)

// OSWorkspace implements core.Workspace on the real filesystem. All
// project-absolute paths ("/src/x.ts") resolve under a single root directory;
// FilePath normalization guarantees they cannot escape it.
type OSWorkspace struct {
	root string
}

var _ core.Workspace = (*OSWorkspace)(nil)

// NewOSWorkspace creates a workspace rooted at root, creating the directory
// if needed.
func NewOSWorkspace(root string) (*OSWorkspace, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving workspace root: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("creating workspace root: %w", err)
	}
	return &OSWorkspace{root: abs}, nil
}

// Root returns the absolute root directory of the workspace.
func (w *OSWorkspace) Root() string { return w.root }

func (w *OSWorkspace) resolve(p core.FilePath) string {
	return filepath.Join(w.root, filepath.FromSlash(p.Rel()))
}

func (w *OSWorkspace) ReadFile(p core.FilePath) ([]byte, error) {
	content, err := os.ReadFile(w.resolve(p))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", p, err)
	}
	return content, nil
}

func (w *OSWorkspace) WriteFile(p core.FilePath, content []byte) error {
	dest := w.resolve(p)
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("creating parent directories for %s: %w", p, err)
	}
	if err := os.WriteFile(dest, content, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", p, err)
	}
	return nil
}

func (w *OSWorkspace) DeleteFile(p core.FilePath) error {
	if err := os.Remove(w.resolve(p)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("deleting %s: %w", p, err)
	}
	return nil
}

func (w *OSWorkspace) Exists(p core.FilePath) (bool, error) {
	_, err := os.Stat(w.resolve(p))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("checking %s: %w", p, err)
	}
	return true, nil
}

func (w *OSWorkspace) Rename(oldPath, newPath core.FilePath) error {
	dest := w.resolve(newPath)
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("creating parent directories for %s: %w", newPath, err)
	}
	if err := os.Rename(w.resolve(oldPath), dest); err != nil {
		return fmt.Errorf("renaming %s to %s: %w", oldPath, newPath, err)
	}
	return nil
}

func (w *OSWorkspace) ListFiles(dir core.FilePath) ([]string, error) {
	entries, err := os.ReadDir(w.resolve(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &core.NotFoundError{Resource: "directory", Key: dir.String()}
		}
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	prefix := dir.String()
	if !dir.IsRoot() {
		prefix += "/"
	} else {
		prefix = "/"
	}

	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		paths = append(paths, prefix+e.Name())
	}
	sort.Strings(paths)
	return paths, nil
}
