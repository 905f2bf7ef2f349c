package backup

import (
	"fmt"
	"os"
	"path/filepath"

	"snaplog-go/internal/core"
)

// FilesystemStore keeps backup blobs as plain files:
//
//	<root>/
//	  <snapshotID>/
//	    src/x.ts      (pre-mutation content, mirroring the project layout)
//
// The per-snapshot directory makes a snapshot's backups one unit on disk,
// which keeps an eventual out-of-scope retention process trivial.
type FilesystemStore struct {
	root string
}

var _ core.BackupStore = (*FilesystemStore)(nil)

// NewFilesystemStore creates a filesystem backup store rooted at root.
func NewFilesystemStore(root string) (*FilesystemStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("creating backup root: %w", err)
	}
	return &FilesystemStore{root: root}, nil
}

func (f *FilesystemStore) blobPath(snapshotID string, path core.FilePath) string {
	return filepath.Join(f.root, snapshotID, filepath.FromSlash(path.Rel()))
}

// PutBackup stores the pre-mutation content for one change. Overwriting an
// existing blob with identical content is safe, so retried writes converge.
func (f *FilesystemStore) PutBackup(snapshotID string, path core.FilePath, content []byte) error {
	dest := f.blobPath(snapshotID, path)
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("creating backup directory: %w", err)
	}
	if err := os.WriteFile(dest, content, 0644); err != nil {
		return fmt.Errorf("writing backup blob: %w", err)
	}
	return nil
}

// GetBackup returns the pre-mutation content for one change.
func (f *FilesystemStore) GetBackup(snapshotID string, path core.FilePath) ([]byte, error) {
	content, err := os.ReadFile(f.blobPath(snapshotID, path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &core.NotFoundError{Resource: "backup", Key: snapshotID + ":" + path.String()}
		}
		return nil, fmt.Errorf("reading backup blob: %w", err)
	}
	return content, nil
}
