// Copyright (c) 2026 Sentra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/sentra/internal/auth"
	"github.com/taibuivan/sentra/internal/platform/sec"
)

func writeToken(t *testing.T, provider auth.TokenProvider, secret string, expiresAt *time.Time) *auth.Token {
	t.Helper()

	token := &auth.Token{
		UserID:    "user-1",
		Type:      "opaque_token",
		Name:      "CLI token",
		TokenHash: sec.HashToken(secret),
		ExpiresAt: expiresAt,
	}

	id, err := provider.Write(context.Background(), token)
	require.NoError(t, err)
	require.NotEmpty(t, id)
	require.Equal(t, id, token.ID)
	return token
}

/*
TestTokenProvider_RoundTrip verifies that a written token reads back with
the correct secret and only with the correct secret.
*/
func TestTokenProvider_RoundTrip(t *testing.T) {
	provider := auth.NewMemoryTokenProvider()
	token := writeToken(t, provider, "raw-secret", nil)

	// 1. Correct secret returns the record
	read, err := provider.Read(context.Background(), token.ID, "raw-secret", "opaque_token")
	require.NoError(t, err)
	require.NotNil(t, read)
	assert.Equal(t, token.UserID, read.UserID)
	assert.Equal(t, token.TokenHash, read.TokenHash)

	// 2. Any other secret misses
	read, err = provider.Read(context.Background(), token.ID, "raw-secre", "opaque_token")
	require.NoError(t, err)
	assert.Nil(t, read)

	// 3. The right secret under the wrong type misses
	read, err = provider.Read(context.Background(), token.ID, "raw-secret", "remember_token")
	require.NoError(t, err)
	assert.Nil(t, read)
}

/*
TestTokenProvider_Expiry verifies freshness: a token expiring now becomes
unreadable, a token without expiry stays readable.
*/
func TestTokenProvider_Expiry(t *testing.T) {
	provider := auth.NewMemoryTokenProvider()

	// 1. Born-expired token never reads back
	now := time.Now()
	expired := writeToken(t, provider, "secret-a", &now)

	time.Sleep(5 * time.Millisecond)
	read, err := provider.Read(context.Background(), expired.ID, "secret-a", "opaque_token")
	require.NoError(t, err)
	assert.Nil(t, read)

	// 2. Eternal token survives a delay
	eternal := writeToken(t, provider, "secret-b", nil)

	time.Sleep(20 * time.Millisecond)
	read, err = provider.Read(context.Background(), eternal.ID, "secret-b", "opaque_token")
	require.NoError(t, err)
	assert.NotNil(t, read)

	// 3. Future expiry still reads back before the deadline
	future := time.Now().Add(time.Hour)
	fresh := writeToken(t, provider, "secret-c", &future)

	read, err = provider.Read(context.Background(), fresh.ID, "secret-c", "opaque_token")
	require.NoError(t, err)
	assert.NotNil(t, read)
}

/*
TestTokenProvider_DestroyIdempotence verifies that destroy removes the
token and that destroying twice never errors.
*/
func TestTokenProvider_DestroyIdempotence(t *testing.T) {
	provider := auth.NewMemoryTokenProvider()
	token := writeToken(t, provider, "raw-secret", nil)

	// 1. Destroy removes the record
	require.NoError(t, provider.Destroy(context.Background(), token.ID, "opaque_token"))

	read, err := provider.Read(context.Background(), token.ID, "raw-secret", "opaque_token")
	require.NoError(t, err)
	assert.Nil(t, read)

	// 2. A second destroy is a no-op
	require.NoError(t, provider.Destroy(context.Background(), token.ID, "opaque_token"))

	// 3. Destroying a token that never existed is a no-op too
	require.NoError(t, provider.Destroy(context.Background(), "ghost", "opaque_token"))
}
