package krypto

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// SaltLengthBytes is the enforced salt length for key derivation.
	SaltLengthBytes = 16
	// KeyLengthBytes is the derived symmetric key length (256-bit).
	KeyLengthBytes = 32
	// PBKDF2Iterations is the fixed iteration count. It must not change
	// without a storage format version bump: the same count is needed to
	// re-derive keys from salts embedded in existing ciphertext.
	PBKDF2Iterations = 310_000
)

// PBKDF2Params captures tunable parameters for PBKDF2-SHA256.
type PBKDF2Params struct {
	Iterations int
	SaltLen    int
	KeyLen     int
}

// DefaultPBKDF2Params returns the parameters used for vault secret keys.
func DefaultPBKDF2Params() PBKDF2Params {
	return PBKDF2Params{
		Iterations: PBKDF2Iterations,
		SaltLen:    SaltLengthBytes,
		KeyLen:     KeyLengthBytes,
	}
}

// DeriveKeyPBKDF2 derives a symmetric key from a passphrase and salt using
// PBKDF2 with a SHA-256 core. Derivation is deterministic: the same
// (passphrase, salt) pair always yields the same key.
func DeriveKeyPBKDF2(passphrase []byte, salt []byte, p PBKDF2Params) ([]byte, error) {
	if len(passphrase) == 0 {
		return nil, errors.New("passphrase is required")
	}
	if len(salt) != SaltLengthBytes {
		return nil, fmt.Errorf("salt must be %d bytes", SaltLengthBytes)
	}
	if p.Iterations <= 0 {
		return nil, errors.New("iteration count must be positive")
	}
	if p.KeyLen <= 0 {
		return nil, errors.New("key length must be positive")
	}

	key := pbkdf2.Key(passphrase, salt, p.Iterations, p.KeyLen, sha256.New)
	if len(key) != p.KeyLen {
		return nil, fmt.Errorf("derived key has unexpected length %d", len(key))
	}
	return key, nil
}

// NewRandomSalt returns a cryptographically secure random salt of length n bytes.
func NewRandomSalt(n int) ([]byte, error) {
	if n <= 0 {
		n = SaltLengthBytes
	}
	salt := make([]byte, n)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}
