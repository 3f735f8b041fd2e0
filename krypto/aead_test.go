package krypto

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	salt, err := NewRandomSalt(SaltLengthBytes)
	require.NoError(t, err)
	key, err := DeriveKeyPBKDF2([]byte("test-passphrase"), salt, DefaultPBKDF2Params())
	require.NoError(t, err)
	return key
}

func TestChaCha20Poly1305RoundTrip(t *testing.T) {
	key := testKey(t)

	nonce, ciphertext, err := EncryptChaCha20Poly1305(key, []byte("hunter2"), nil)
	require.NoError(t, err)
	require.Len(t, nonce, NonceLengthBytes)

	plaintext, err := DecryptChaCha20Poly1305(key, nonce, ciphertext, nil)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", string(plaintext))
}

func TestChaCha20Poly1305FreshNoncePerCall(t *testing.T) {
	key := testKey(t)

	n1, c1, err := EncryptChaCha20Poly1305(key, []byte("same input"), nil)
	require.NoError(t, err)
	n2, c2, err := EncryptChaCha20Poly1305(key, []byte("same input"), nil)
	require.NoError(t, err)

	assert.False(t, bytes.Equal(n1, n2), "nonces must differ between calls")
	assert.False(t, bytes.Equal(c1, c2), "ciphertexts must differ between calls")
}

func TestChaCha20Poly1305TamperDetection(t *testing.T) {
	key := testKey(t)

	nonce, ciphertext, err := EncryptChaCha20Poly1305(key, []byte("secret"), nil)
	require.NoError(t, err)

	for i := range ciphertext {
		mangled := append([]byte(nil), ciphertext...)
		mangled[i] ^= 0x01
		_, err := DecryptChaCha20Poly1305(key, nonce, mangled, nil)
		assert.Error(t, err, "flipped byte %d must fail verification", i)
	}
}

func TestChaCha20Poly1305WrongKey(t *testing.T) {
	k1 := testKey(t)
	k2 := testKey(t)
	require.False(t, bytes.Equal(k1, k2))

	nonce, ciphertext, err := EncryptChaCha20Poly1305(k1, []byte("secret"), nil)
	require.NoError(t, err)

	_, err = DecryptChaCha20Poly1305(k2, nonce, ciphertext, nil)
	assert.Error(t, err)
}

func TestChaCha20Poly1305KeyAndNonceValidation(t *testing.T) {
	_, _, err := EncryptChaCha20Poly1305(make([]byte, 16), []byte("x"), nil)
	assert.Error(t, err)

	key := testKey(t)
	_, err = DecryptChaCha20Poly1305(key, make([]byte, 8), []byte("x"), nil)
	assert.Error(t, err)
}
