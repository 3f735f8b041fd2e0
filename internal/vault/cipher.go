package vault

import (
	"encoding/base64"
	"fmt"

	"github.com/Hussein-Mazeh/SecurePM/krypto"
)

const (
	secretSaltLen  = krypto.SaltLengthBytes
	secretNonceLen = krypto.NonceLengthBytes
	// minBlobLen is the smallest decodable blob: salt and nonce with an
	// empty AEAD body.
	minBlobLen = secretSaltLen + secretNonceLen
)

// SealSecret encrypts plaintext under a key derived from the passphrase and a
// fresh random salt, and returns base64(salt || nonce || ciphertext). Both the
// salt and the AEAD nonce are generated per call; reusing either with the same
// key would break the confidentiality guarantees of the scheme.
func SealSecret(passphrase []byte, plaintext string) (string, error) {
	salt, err := krypto.NewRandomSalt(secretSaltLen)
	if err != nil {
		return "", fmt.Errorf("generate secret salt: %w", err)
	}

	key, err := krypto.DeriveKeyPBKDF2(passphrase, salt, krypto.DefaultPBKDF2Params())
	if err != nil {
		return "", fmt.Errorf("derive secret key: %w", err)
	}
	defer zeroize(key)

	nonce, ciphertext, err := krypto.EncryptChaCha20Poly1305(key, []byte(plaintext), nil)
	if err != nil {
		return "", fmt.Errorf("encrypt secret: %w", err)
	}

	blob := make([]byte, 0, len(salt)+len(nonce)+len(ciphertext))
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	blob = append(blob, ciphertext...)

	return base64.StdEncoding.EncodeToString(blob), nil
}

// OpenSecret decodes a sealed blob, re-derives the key from the passphrase and
// the salt embedded in the blob, and decrypts. A blob shorter than the
// salt+nonce header yields ErrMalformedCiphertext; a tag verification failure
// yields ErrDecryptionFailed.
func OpenSecret(passphrase []byte, sealed string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedCiphertext, err)
	}
	if len(raw) < minBlobLen {
		return "", fmt.Errorf("%w: %d bytes, need at least %d", ErrMalformedCiphertext, len(raw), minBlobLen)
	}

	salt := raw[:secretSaltLen]
	nonce := raw[secretSaltLen:minBlobLen]
	body := raw[minBlobLen:]

	key, err := krypto.DeriveKeyPBKDF2(passphrase, salt, krypto.DefaultPBKDF2Params())
	if err != nil {
		return "", fmt.Errorf("derive secret key: %w", err)
	}
	defer zeroize(key)

	plaintext, err := krypto.DecryptChaCha20Poly1305(key, nonce, body, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}

	return string(plaintext), nil
}

// zeroize overwrites sensitive byte slices in place to reduce lifetime in memory.
func zeroize(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}
