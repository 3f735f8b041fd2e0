// Package vault implements the security core of SecurePM: the persisted
// ciphertext format, the unlocked-session encryption context, and the typed
// errors the storage and service layers report.
package vault

import "errors"

var (
	// ErrNotAuthenticated is returned when an encrypt/decrypt operation is
	// attempted without an active session. It is never bypassed with a
	// default key.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrAuthenticationFailed covers both a wrong passphrase and an unknown
	// username so callers cannot distinguish the two.
	ErrAuthenticationFailed = errors.New("invalid credentials")

	// ErrAccountExists is returned when creating a master account while one
	// already exists. Exactly one local identity is supported.
	ErrAccountExists = errors.New("master account already exists")

	// ErrDuplicateTitle is returned when an entry title collides with a
	// live (non-deleted) entry.
	ErrDuplicateTitle = errors.New("duplicate entry title")

	// ErrDuplicateCategory is returned when a category name is already
	// registered.
	ErrDuplicateCategory = errors.New("duplicate category name")

	// ErrMalformedCiphertext indicates a stored blob too short to contain
	// the salt and nonce header. It signals data corruption.
	ErrMalformedCiphertext = errors.New("malformed ciphertext")

	// ErrDecryptionFailed indicates an authentication-tag mismatch: wrong
	// passphrase, tampered data, or a corrupted salt/nonce. Distinct from
	// ErrMalformedCiphertext and never conflated with an empty secret.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrNotFound is returned when no entry matches the given id or title.
	ErrNotFound = errors.New("entry not found")
)
