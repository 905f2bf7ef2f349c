package backup

import (
	"sync"

	"snaplog-go/internal/core"
)

// MemoryStore is an in-memory implementation of core.BackupStore, useful for
// tests and throwaway projects. Safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string]map[string][]byte // snapshotID -> path -> content
}

var _ core.BackupStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory backup store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string]map[string][]byte)}
}

func (m *MemoryStore) PutBackup(snapshotID string, path core.FilePath, content []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap, ok := m.blobs[snapshotID]
	if !ok {
		snap = make(map[string][]byte)
		m.blobs[snapshotID] = snap
	}
	stored := make([]byte, len(content))
	copy(stored, content)
	snap[path.String()] = stored
	return nil
}

func (m *MemoryStore) GetBackup(snapshotID string, path core.FilePath) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	content, ok := m.blobs[snapshotID][path.String()]
	if !ok {
		return nil, &core.NotFoundError{Resource: "backup", Key: snapshotID + ":" + path.String()}
	}
	out := make([]byte, len(content))
	copy(out, content)
	return out, nil
}
