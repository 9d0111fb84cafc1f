package backup

import (
	"bytes"
	"errors"
	"testing"
)

func TestGenerateSalt(t *testing.T) {
	salt1, err := GenerateSalt()
	if err != nil {
		t.Fatalf("generate salt: %v", err)
	}
	if len(salt1) != saltSize {
		t.Errorf("salt length = %d, want %d", len(salt1), saltSize)
	}

	salt2, err := GenerateSalt()
	if err != nil {
		t.Fatalf("generate salt 2: %v", err)
	}
	if bytes.Equal(salt1, salt2) {
		t.Error("two salts should not be equal")
	}
}

func TestDeriveKey(t *testing.T) {
	salt := []byte("1234567890abcdef")

	key1 := DeriveKey("mypassphrase", salt)
	key2 := DeriveKey("mypassphrase", salt)
	if !bytes.Equal(key1, key2) {
		t.Error("same passphrase+salt should produce same key")
	}
	if len(key1) != keySize {
		t.Errorf("key length = %d, want %d", len(key1), keySize)
	}
	if bytes.Equal(key1, DeriveKey("otherphrase", salt)) {
		t.Error("different passphrases should produce different keys")
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	original := []byte("SQLite format 3\x00 shopping lists and items")

	enc, err := Encrypt(original, "test-passphrase-123")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if bytes.Contains(enc, original) {
		t.Error("ciphertext contains the plaintext")
	}

	dec, err := Decrypt(enc, "test-passphrase-123")
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if !bytes.Equal(dec, original) {
		t.Errorf("decrypted = %q, want %q", dec, original)
	}
}

func TestEncryptUsesFreshSalt(t *testing.T) {
	a, _ := Encrypt([]byte("same"), "passphrase")
	b, _ := Encrypt([]byte("same"), "passphrase")
	if bytes.Equal(a[:saltSize], b[:saltSize]) {
		t.Error("expected a different salt per payload")
	}
}

func TestDecryptWrongPassphrase(t *testing.T) {
	enc, err := Encrypt([]byte("secret data"), "correct-passphrase")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if _, err := Decrypt(enc, "wrong-passphrase"); err == nil {
		t.Error("expected error with wrong passphrase")
	}
}

func TestDecryptTampered(t *testing.T) {
	enc, _ := Encrypt([]byte("secret data"), "passphrase")
	enc[len(enc)-1] ^= 0xff
	if _, err := Decrypt(enc, "passphrase"); err == nil {
		t.Error("expected error for tampered ciphertext")
	}
}

func TestDecryptTooShort(t *testing.T) {
	_, err := Decrypt([]byte("short"), "passphrase")
	if !errors.Is(err, ErrTooShort) {
		t.Errorf("err = %v, want ErrTooShort", err)
	}
}
