package encryption

import (
	"bytes"
	"fmt"
	"io"

	"filippo.io/age"
)

// Cipher encrypts and decrypts backup blobs with age's scrypt-based
// passphrase encryption. Revert reads backups unattended on the server, so
// the passphrase lives in configuration rather than behind an interactive
// unlock.
type Cipher struct {
	recipient *age.ScryptRecipient
	identity  *age.ScryptIdentity
}

// NewCipher creates a Cipher from a passphrase.
func NewCipher(passphrase string) (*Cipher, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("encryption passphrase must not be empty")
	}
	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return nil, fmt.Errorf("creating scrypt recipient: %w", err)
	}
	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, fmt.Errorf("creating scrypt identity: %w", err)
	}
	return &Cipher{recipient: recipient, identity: identity}, nil
}

// Encrypt returns the age ciphertext of plain.
func (c *Cipher) Encrypt(plain []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, c.recipient)
	if err != nil {
		return nil, fmt.Errorf("creating encrypted writer: %w", err)
	}
	if _, err := w.Write(plain); err != nil {
		return nil, fmt.Errorf("encrypting data: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalizing ciphertext: %w", err)
	}
	return buf.Bytes(), nil
}

// Decrypt returns the plaintext of an age ciphertext.
func (c *Cipher) Decrypt(ciphertext []byte) ([]byte, error) {
	r, err := age.Decrypt(bytes.NewReader(ciphertext), c.identity)
	if err != nil {
		return nil, fmt.Errorf("decrypting data: %w", err)
	}
	plain, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading plaintext: %w", err)
	}
	return plain, nil
}
