// Copyright (c) 2026 Sentra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/sentra/internal/platform/sec"
)

const testAppKey = "0123456789abcdef0123456789abcdef"

func newCodec(t *testing.T) *sec.CookieCodec {
	t.Helper()
	codec, err := sec.NewCookieCodec(testAppKey)
	require.NoError(t, err)
	return codec
}

/*
TestNewCookieCodec verifies the minimum key length requirement.
*/
func TestNewCookieCodec(t *testing.T) {
	_, err := sec.NewCookieCodec("too-short")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 32 bytes")

	_, err = sec.NewCookieCodec(testAppKey)
	assert.NoError(t, err)
}

/*
TestCookieCodec_SignUnsign verifies the signed round trip, tamper
detection and name binding.
*/
func TestCookieCodec_SignUnsign(t *testing.T) {
	codec := newCodec(t)

	// 1. Round trip
	signed := codec.Sign("session_id", "abc123")
	value, err := codec.Unsign("session_id", signed)
	require.NoError(t, err)
	assert.Equal(t, "abc123", value)

	// 2. Payload tampering is detected
	parts := strings.SplitN(signed, ".", 2)
	require.Len(t, parts, 2)
	forged := codec.Sign("session_id", "evil")
	forgedPayload := strings.SplitN(forged, ".", 2)[0]
	_, err = codec.Unsign("session_id", forgedPayload+"."+parts[1])
	assert.ErrorIs(t, err, sec.ErrCookieInvalid)

	// 3. A valid value replayed under a different cookie name fails
	_, err = codec.Unsign("other_cookie", signed)
	assert.ErrorIs(t, err, sec.ErrCookieInvalid)

	// 4. Garbage never round-trips
	for _, input := range []string{"", "no-dot", "a.b.c", "!!!.???"} {
		_, err := codec.Unsign("session_id", input)
		assert.ErrorIs(t, err, sec.ErrCookieInvalid, "input %q", input)
	}

	// 5. A codec derived from a different key rejects the value
	otherCodec, err := sec.NewCookieCodec(strings.Repeat("k", 32))
	require.NoError(t, err)
	_, err = otherCodec.Unsign("session_id", signed)
	assert.ErrorIs(t, err, sec.ErrCookieInvalid)
}

/*
TestCookieCodec_EncryptDecrypt verifies the sealed round trip and that any
tampering fails authentication.
*/
func TestCookieCodec_EncryptDecrypt(t *testing.T) {
	codec := newCodec(t)

	// 1. Round trip
	sealed, err := codec.Encrypt("remember_web", `{"id":"1","token":"t"}`)
	require.NoError(t, err)
	assert.NotContains(t, sealed, "token")

	plaintext, err := codec.Decrypt("remember_web", sealed)
	require.NoError(t, err)
	assert.Equal(t, `{"id":"1","token":"t"}`, plaintext)

	// 2. Fresh nonce per call: identical plaintexts seal differently
	again, err := codec.Encrypt("remember_web", `{"id":"1","token":"t"}`)
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again)

	// 3. Name binding through associated data
	_, err = codec.Decrypt("remember_admin", sealed)
	assert.ErrorIs(t, err, sec.ErrCookieInvalid)

	// 4. Flipping any ciphertext character fails authentication
	tampered := []byte(sealed)
	if tampered[len(tampered)-1] == 'A' {
		tampered[len(tampered)-1] = 'B'
	} else {
		tampered[len(tampered)-1] = 'A'
	}
	_, err = codec.Decrypt("remember_web", string(tampered))
	assert.ErrorIs(t, err, sec.ErrCookieInvalid)

	// 5. Undecodable and truncated inputs
	_, err = codec.Decrypt("remember_web", "%%%")
	assert.ErrorIs(t, err, sec.ErrCookieInvalid)
	_, err = codec.Decrypt("remember_web", "AAAA")
	assert.ErrorIs(t, err, sec.ErrCookieInvalid)
}
