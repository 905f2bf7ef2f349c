package backup

import (
	"context"
	"fmt"

	"snaplog-go/internal/config"
	"snaplog-go/internal/core"
	"snaplog-go/internal/encryption"
)

// NewStoreFromConfig creates a backup store based on the backups config type.
// When a passphrase is configured, the store is wrapped with at-rest
// encryption regardless of backend.
func NewStoreFromConfig(cfg config.BackupsConfig) (core.BackupStore, error) {
	var (
		store core.BackupStore
		err   error
	)
	switch cfg.Type {
	case "memory":
		store = NewMemoryStore()
	case "filesystem":
		if cfg.Root == "" {
			return nil, fmt.Errorf("root required for filesystem backups")
		}
		store, err = NewFilesystemStore(cfg.Root)
		if err != nil {
			return nil, fmt.Errorf("creating filesystem backup store: %w", err)
		}
	case "s3":
		store, err = NewS3Store(context.Background(), S3Options{
			Bucket:          cfg.S3Bucket,
			Prefix:          cfg.S3Prefix,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
		if err != nil {
			return nil, fmt.Errorf("creating s3 backup store: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown backup store type: %s", cfg.Type)
	}

	if cfg.Passphrase != "" {
		cipher, err := encryption.NewCipher(cfg.Passphrase)
		if err != nil {
			return nil, fmt.Errorf("configuring backup encryption: %w", err)
		}
		store = NewEncryptedStore(store, cipher)
	}

	return store, nil
}
