package encryption_test

import (
	"bytes"
	"testing"

	"snaplog-go/internal/encryption"
)

func TestCipher(t *testing.T) {
	t.Run("round-trips data", func(t *testing.T) {
		t.Parallel()
		cipher, err := encryption.NewCipher("correct horse")
		if err != nil {
			t.Fatalf("NewCipher() error = %v", err)
		}

		plain := []byte("file content before the edit")
		ciphertext, err := cipher.Encrypt(plain)
		if err != nil {
			t.Fatalf("Encrypt() error = %v", err)
		}
		if bytes.Contains(ciphertext, plain) {
			t.Error("ciphertext contains the plaintext")
		}

		got, err := cipher.Decrypt(ciphertext)
		if err != nil {
			t.Fatalf("Decrypt() error = %v", err)
		}
		if !bytes.Equal(got, plain) {
			t.Errorf("Decrypt() = %q, want %q", got, plain)
		}
	})

	t.Run("round-trips empty data", func(t *testing.T) {
		t.Parallel()
		cipher, err := encryption.NewCipher("correct horse")
		if err != nil {
			t.Fatalf("NewCipher() error = %v", err)
		}

		ciphertext, err := cipher.Encrypt(nil)
		if err != nil {
			t.Fatalf("Encrypt() error = %v", err)
		}
		got, err := cipher.Decrypt(ciphertext)
		if err != nil {
			t.Fatalf("Decrypt() error = %v", err)
		}
		if len(got) != 0 {
			t.Errorf("Decrypt() = %q, want empty", got)
		}
	})

	t.Run("wrong passphrase fails to decrypt", func(t *testing.T) {
		t.Parallel()
		right, err := encryption.NewCipher("right")
		if err != nil {
			t.Fatalf("NewCipher() error = %v", err)
		}
		wrong, err := encryption.NewCipher("wrong")
		if err != nil {
			t.Fatalf("NewCipher() error = %v", err)
		}

		ciphertext, err := right.Encrypt([]byte("data"))
		if err != nil {
			t.Fatalf("Encrypt() error = %v", err)
		}
		if _, err := wrong.Decrypt(ciphertext); err == nil {
			t.Error("expected decryption with the wrong passphrase to fail")
		}
	})

	t.Run("empty passphrase is rejected", func(t *testing.T) {
		t.Parallel()
		if _, err := encryption.NewCipher(""); err == nil {
			t.Error("expected error for empty passphrase")
		}
	})
}
