package backup

import (
	"fmt"

	"snaplog-go/internal/core"
	"snaplog-go/internal/encryption"
)

// EncryptedStore wraps another backup store, encrypting blobs at rest with
// the configured passphrase. It composes over any backend, so filesystem and
// S3 stores get encryption without knowing about it.
type EncryptedStore struct {
	inner  core.BackupStore
	cipher *encryption.Cipher
}

var _ core.BackupStore = (*EncryptedStore)(nil)

// NewEncryptedStore wraps inner with at-rest encryption.
func NewEncryptedStore(inner core.BackupStore, cipher *encryption.Cipher) *EncryptedStore {
	return &EncryptedStore{inner: inner, cipher: cipher}
}

func (e *EncryptedStore) PutBackup(snapshotID string, path core.FilePath, content []byte) error {
	ciphertext, err := e.cipher.Encrypt(content)
	if err != nil {
		return fmt.Errorf("encrypting backup for %s: %w", path, err)
	}
	return e.inner.PutBackup(snapshotID, path, ciphertext)
}

func (e *EncryptedStore) GetBackup(snapshotID string, path core.FilePath) ([]byte, error) {
	ciphertext, err := e.inner.GetBackup(snapshotID, path)
	if err != nil {
		return nil, err
	}
	plain, err := e.cipher.Decrypt(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("decrypting backup for %s: %w", path, err)
	}
	return plain, nil
}
