// Copyright (c) 2026 Sentra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/sentra/internal/platform/sec"
)

/*
TestGenerateSecureToken verifies length, alphabet and uniqueness of
generated secrets.
*/
func TestGenerateSecureToken(t *testing.T) {
	// 1. Exact requested length, base64url alphabet only
	token, err := sec.GenerateSecureToken(60)
	require.NoError(t, err)
	assert.Len(t, token, 60)

	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	for _, r := range token {
		assert.True(t, strings.ContainsRune(alphabet, r), "unexpected character %q", r)
	}

	// 2. Two generations never collide
	other, err := sec.GenerateSecureToken(60)
	require.NoError(t, err)
	assert.NotEqual(t, token, other)

	// 3. Lengths that do not land on a base64 group boundary still work
	short, err := sec.GenerateSecureToken(20)
	require.NoError(t, err)
	assert.Len(t, short, 20)

	// 4. Non-positive lengths are rejected
	_, err = sec.GenerateSecureToken(0)
	assert.Error(t, err)
	_, err = sec.GenerateSecureToken(-5)
	assert.Error(t, err)
}

/*
TestHashToken verifies the digest is stable, hex-encoded sha256.
*/
func TestHashToken(t *testing.T) {
	digest := sec.HashToken("my-secret")

	expected := sha256.Sum256([]byte("my-secret"))
	assert.Equal(t, hex.EncodeToString(expected[:]), digest)
	assert.Len(t, digest, 64)

	// Deterministic, and sensitive to every input change
	assert.Equal(t, digest, sec.HashToken("my-secret"))
	assert.NotEqual(t, digest, sec.HashToken("my-secret2"))
}

/*
TestBcryptHasher verifies the hasher contract over HashPassword output.
*/
func TestBcryptHasher(t *testing.T) {
	hashed, err := sec.HashPassword("secret")
	require.NoError(t, err)
	assert.NotEqual(t, "secret", hashed)

	hasher := sec.BcryptHasher{}
	assert.True(t, hasher.Verify(hashed, "secret"))
	assert.False(t, hasher.Verify(hashed, "Secret"))
	assert.False(t, hasher.Verify("not-a-bcrypt-hash", "secret"))
}
