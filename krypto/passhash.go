package krypto

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2Params captures tunable parameters for Argon2id password hashing.
// This hash authenticates the master account; it is never used as an
// encryption key.
type Argon2Params struct {
	MemoryKB    uint32
	Time        uint32
	Parallelism uint8
	SaltLen     int
	HashLen     uint32
}

// DefaultArgon2Params returns the parameters used for new master accounts.
func DefaultArgon2Params() Argon2Params {
	return Argon2Params{
		MemoryKB:    64 * 1024,
		Time:        3,
		Parallelism: 1,
		SaltLen:     SaltLengthBytes,
		HashLen:     32,
	}
}

// ErrHashMismatch indicates a password did not verify against a stored hash.
var ErrHashMismatch = errors.New("password hash mismatch")

// HashPassword hashes a password with Argon2id and returns a self-describing
// PHC-format string ($argon2id$v=19$m=...,t=...,p=...$salt$hash). The salt is
// generated per call; all parameters needed for verification are embedded.
func HashPassword(password string, p Argon2Params) (string, error) {
	if password == "" {
		return "", errors.New("password is required")
	}
	if p.MemoryKB == 0 || p.Time == 0 || p.Parallelism == 0 || p.HashLen == 0 {
		return "", errors.New("invalid argon2 parameters")
	}

	salt, err := NewRandomSalt(p.SaltLen)
	if err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt, p.Time, p.MemoryKB, p.Parallelism, p.HashLen)

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		p.MemoryKB, p.Time, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	)
	return encoded, nil
}

// VerifyPassword recomputes the Argon2id hash from the parameters embedded in
// encoded and compares in constant time. Returns ErrHashMismatch when the
// password does not match; any other error means the stored hash is unusable.
func VerifyPassword(password, encoded string) error {
	params, salt, hash, err := decodeHash(encoded)
	if err != nil {
		return err
	}

	computed := argon2.IDKey([]byte(password), salt, params.Time, params.MemoryKB, params.Parallelism, uint32(len(hash)))
	if subtle.ConstantTimeCompare(hash, computed) != 1 {
		return ErrHashMismatch
	}
	return nil
}

func decodeHash(encoded string) (Argon2Params, []byte, []byte, error) {
	var p Argon2Params

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return p, nil, nil, errors.New("malformed password hash")
	}
	if parts[1] != "argon2id" {
		return p, nil, nil, fmt.Errorf("unsupported hash algorithm %q", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return p, nil, nil, fmt.Errorf("parse hash version: %w", err)
	}
	if version != argon2.Version {
		return p, nil, nil, fmt.Errorf("incompatible argon2 version %d", version)
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.MemoryKB, &p.Time, &p.Parallelism); err != nil {
		return p, nil, nil, fmt.Errorf("parse hash parameters: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, fmt.Errorf("decode hash salt: %w", err)
	}
	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return p, nil, nil, fmt.Errorf("decode hash digest: %w", err)
	}
	p.SaltLen = len(salt)
	p.HashLen = uint32(len(hash))

	return p, salt, hash, nil
}
