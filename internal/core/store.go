package core

// SnapshotStore persists immutable snapshot metadata. Implementations are
// expected to apply bounded retries with jittered backoff against transient
// failures of the underlying storage, so every caller-visible operation in
// this package must be safe to retry.
type SnapshotStore interface {
	// CreateSnapshot writes a new metadata record. Snapshot ids are unique;
	// writing an existing id is an error.
	CreateSnapshot(snap *Snapshot) error

	// GetSnapshot returns the full metadata for a snapshot, or a
	// NotFoundError if no such snapshot exists.
	GetSnapshot(id string) (*Snapshot, error)

	// ListSnapshots returns summaries for all snapshots, newest first
	// (descending timestamp; ties broken by descending insertion order).
	ListSnapshots() ([]SnapshotSummary, error)

	// Close releases the underlying storage.
	Close() error
}

// BackupStore persists pre-mutation file content, keyed by (snapshot id,
// path). Blobs exist only for edit and delete changes; create records
// nothing because nothing pre-existed.
type BackupStore interface {
	// PutBackup stores the pre-mutation content for one change.
	// Idempotent: re-storing the same key overwrites with identical content.
	PutBackup(snapshotID string, path FilePath, content []byte) error

	// GetBackup returns the pre-mutation content for one change.
	GetBackup(snapshotID string, path FilePath) ([]byte, error)
}

// PendingStore persists the path-keyed pending-change ledger.
type PendingStore interface {
	// LoadPending returns the full ledger, empty (never nil) if none saved.
	LoadPending() (map[string]PendingChange, error)

	// SavePending replaces the ledger wholesale: entries omitted from the
	// map are deleted, entries present overwrite prior values.
	SavePending(changes map[string]PendingChange) error
}

// Workspace is the project filesystem this engine mutates during revert.
// All paths are project-absolute FilePath values; implementations map them
// onto real storage. Text content is UTF-8.
type Workspace interface {
	// ReadFile returns the content of a file.
	ReadFile(path FilePath) ([]byte, error)

	// WriteFile writes content to a file, creating parent directories as
	// needed and truncating any existing content.
	WriteFile(path FilePath, content []byte) error

	// DeleteFile removes a file. Removing an absent file is a no-op.
	DeleteFile(path FilePath) error

	// Exists reports whether a file is present.
	Exists(path FilePath) (bool, error)

	// Rename moves a file, creating the destination's parent directories as
	// needed.
	Rename(oldPath, newPath FilePath) error

	// ListFiles returns the project-absolute paths of the entries directly
	// under a directory, sorted.
	ListFiles(dir FilePath) ([]string, error)
}
