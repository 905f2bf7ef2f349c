package testutil

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"snaplog-go/internal/core"
)

// MemoryWorkspace is an in-memory core.Workspace for testing. Paths behave
// like a flat map with directory semantics derived from prefixes; parent
// directories implicitly exist.
type MemoryWorkspace struct {
	mu    sync.Mutex
	files map[string][]byte

	// FailWrites, when set, makes every WriteFile call fail with this error.
	// Used to exercise partial-failure collection in revert paths.
	FailWrites error

	// FailPaths makes WriteFile and DeleteFile fail for specific paths only.
	FailPaths map[string]error
}

var _ core.Workspace = (*MemoryWorkspace)(nil)

// NewMemoryWorkspace creates an empty in-memory workspace.
func NewMemoryWorkspace() *MemoryWorkspace {
	return &MemoryWorkspace{
		files:     make(map[string][]byte),
		FailPaths: make(map[string]error),
	}
}

// Seed writes a file without going through the Workspace error hooks.
func (m *MemoryWorkspace) Seed(path string, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[core.MustFilePath(path).String()] = []byte(content)
}

// Content returns a file's content and whether it exists.
func (m *MemoryWorkspace) Content(path string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	content, ok := m.files[core.MustFilePath(path).String()]
	return string(content), ok
}

func (m *MemoryWorkspace) ReadFile(p core.FilePath) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	content, ok := m.files[p.String()]
	if !ok {
		return nil, fmt.Errorf("file does not exist: %s", p)
	}
	out := make([]byte, len(content))
	copy(out, content)
	return out, nil
}

func (m *MemoryWorkspace) WriteFile(p core.FilePath, content []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return m.FailWrites
	}
	if err := m.FailPaths[p.String()]; err != nil {
		return err
	}
	stored := make([]byte, len(content))
	copy(stored, content)
	m.files[p.String()] = stored
	return nil
}

func (m *MemoryWorkspace) DeleteFile(p core.FilePath) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.FailPaths[p.String()]; err != nil {
		return err
	}
	delete(m.files, p.String())
	return nil
}

func (m *MemoryWorkspace) Exists(p core.FilePath) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[p.String()]
	return ok, nil
}

func (m *MemoryWorkspace) Rename(oldPath, newPath core.FilePath) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	content, ok := m.files[oldPath.String()]
	if !ok {
		return fmt.Errorf("file does not exist: %s", oldPath)
	}
	m.files[newPath.String()] = content
	delete(m.files, oldPath.String())
	return nil
}

func (m *MemoryWorkspace) ListFiles(dir core.FilePath) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	prefix := dir.String()
	if !dir.IsRoot() {
		prefix += "/"
	}

	seen := make(map[string]bool)
	var paths []string
	for path := range m.files {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		rest := strings.TrimPrefix(path, prefix)
		// Only direct children; deeper entries surface as their directory.
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			rest = rest[:i]
		}
		entry := prefix + rest
		if !seen[entry] {
			seen[entry] = true
			paths = append(paths, entry)
		}
	}
	sort.Strings(paths)
	return paths, nil
}
