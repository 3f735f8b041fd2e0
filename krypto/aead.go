package krypto

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

// NonceLengthBytes is the ChaCha20-Poly1305 nonce size (96-bit).
const NonceLengthBytes = chacha20poly1305.NonceSize

// EncryptChaCha20Poly1305 encrypts plaintext with ChaCha20-Poly1305,
// returning the freshly generated nonce and the ciphertext (tag appended).
func EncryptChaCha20Poly1305(key, plaintext, aad []byte) (nonce, ciphertext []byte, err error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, nil, errors.New("chacha20-poly1305 requires a 32-byte key")
	}

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, nil, fmt.Errorf("create aead: %w", err)
	}

	nonce = make([]byte, NonceLengthBytes)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, nil, fmt.Errorf("generate nonce: %w", err)
	}

	ciphertext = aead.Seal(nil, nonce, plaintext, aad)
	return nonce, ciphertext, nil
}

// DecryptChaCha20Poly1305 decrypts and verifies a ChaCha20-Poly1305 ciphertext.
func DecryptChaCha20Poly1305(key, nonce, ciphertext, aad []byte) ([]byte, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, errors.New("chacha20-poly1305 requires a 32-byte key")
	}
	if len(nonce) != NonceLengthBytes {
		return nil, errors.New("invalid nonce size")
	}

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("create aead: %w", err)
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}
	return plaintext, nil
}
