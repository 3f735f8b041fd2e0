package krypto

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKeyPBKDF2Deterministic(t *testing.T) {
	salt, err := NewRandomSalt(SaltLengthBytes)
	require.NoError(t, err)

	k1, err := DeriveKeyPBKDF2([]byte("master-passphrase"), salt, DefaultPBKDF2Params())
	require.NoError(t, err)
	require.Len(t, k1, KeyLengthBytes)

	k2, err := DeriveKeyPBKDF2([]byte("master-passphrase"), salt, DefaultPBKDF2Params())
	require.NoError(t, err)
	assert.True(t, bytes.Equal(k1, k2), "same passphrase and salt must derive the same key")
}

func TestDeriveKeyPBKDF2SaltSensitivity(t *testing.T) {
	s1, err := NewRandomSalt(SaltLengthBytes)
	require.NoError(t, err)
	s2, err := NewRandomSalt(SaltLengthBytes)
	require.NoError(t, err)
	require.False(t, bytes.Equal(s1, s2))

	k1, err := DeriveKeyPBKDF2([]byte("master-passphrase"), s1, DefaultPBKDF2Params())
	require.NoError(t, err)
	k2, err := DeriveKeyPBKDF2([]byte("master-passphrase"), s2, DefaultPBKDF2Params())
	require.NoError(t, err)

	assert.False(t, bytes.Equal(k1, k2), "different salts must derive different keys")
}

func TestDeriveKeyPBKDF2Validation(t *testing.T) {
	salt, err := NewRandomSalt(SaltLengthBytes)
	require.NoError(t, err)

	_, err = DeriveKeyPBKDF2(nil, salt, DefaultPBKDF2Params())
	assert.Error(t, err)

	_, err = DeriveKeyPBKDF2([]byte("pw"), salt[:8], DefaultPBKDF2Params())
	assert.Error(t, err)

	bad := DefaultPBKDF2Params()
	bad.Iterations = 0
	_, err = DeriveKeyPBKDF2([]byte("pw"), salt, bad)
	assert.Error(t, err)
}

func TestNewRandomSaltLength(t *testing.T) {
	salt, err := NewRandomSalt(0)
	require.NoError(t, err)
	assert.Len(t, salt, SaltLengthBytes)

	salt, err = NewRandomSalt(24)
	require.NoError(t, err)
	assert.Len(t, salt, 24)
}
