// Copyright (c) 2026 Sentra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/sentra/internal/auth"
	"github.com/taibuivan/sentra/internal/platform/sec"
)

func newOATGuard(provider auth.UserProvider, tokens auth.TokenProvider, request *http.Request) *auth.OATGuard {
	return auth.NewOATGuard("api", provider, tokens, &spyEmitter{}, request, auth.OATGuardConfig{})
}

func bearerRequest(value string) *http.Request {
	request := newRequest()
	request.Header.Set("Authorization", "Bearer "+value)
	return request
}

/*
TestOATGuard_BearerFormat verifies the issued credential shape: a base64url
token id and the raw secret joined by a single dot, resolvable through the
token provider.
*/
func TestOATGuard_BearerFormat(t *testing.T) {
	provider := auth.NewMemoryUserProvider(sec.BcryptHasher{})
	user := seedUser(t, provider)
	tokens := auth.NewMemoryTokenProvider()

	// 1. Issue a token
	guard := newOATGuard(provider, tokens, newRequest())
	issued, err := guard.Login(context.Background(), &user, auth.TokenOptions{})
	require.NoError(t, err)

	assert.Equal(t, auth.DefaultOpaqueTokenName, issued.Token.Name)
	assert.True(t, strings.HasPrefix(issued.Bearer(), "Bearer "))

	// 2. Split the credential into (id, secret)
	encodedID, secret, found := strings.Cut(issued.Value, ".")
	require.True(t, found)
	assert.Len(t, secret, auth.OpaqueTokenSecretLength)

	rawID, err := base64.RawURLEncoding.DecodeString(encodedID)
	require.NoError(t, err)
	assert.Equal(t, issued.Token.ID, string(rawID))

	// 3. The provider resolves the pair back to the owning user
	read, err := tokens.Read(context.Background(), string(rawID), secret, auth.DefaultOpaqueTokenType)
	require.NoError(t, err)
	require.NotNil(t, read)
	assert.Equal(t, user.ID, read.UserID)
}

/*
TestOATGuard_AuthenticateRoundTrip verifies that an issued credential
authenticates a later request.
*/
func TestOATGuard_AuthenticateRoundTrip(t *testing.T) {
	provider := auth.NewMemoryUserProvider(sec.BcryptHasher{})
	user := seedUser(t, provider)
	tokens := auth.NewMemoryTokenProvider()

	issuer := newOATGuard(provider, tokens, newRequest())
	issued, err := issuer.Attempt(context.Background(), "virk@adonisjs.com", "secret", auth.TokenOptions{
		Name: "CI token",
	})
	require.NoError(t, err)
	assert.Equal(t, "CI token", issued.Token.Name)

	// 1. A fresh guard carrying the credential authenticates
	verifier := newOATGuard(provider, tokens, bearerRequest(issued.Value))
	resolved, err := verifier.Authenticate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, user.ID, resolved.ID)
	assert.True(t, verifier.IsAuthenticated())
	require.NotNil(t, verifier.Token())
	assert.Equal(t, issued.Token.ID, verifier.Token().ID)
}

/*
TestOATGuard_FailureShapesCollapse verifies that every failure mode yields
the same generic invalid-token error.
*/
func TestOATGuard_FailureShapesCollapse(t *testing.T) {
	provider := auth.NewMemoryUserProvider(sec.BcryptHasher{})
	user := seedUser(t, provider)
	tokens := auth.NewMemoryTokenProvider()

	issuer := newOATGuard(provider, tokens, newRequest())
	issued, err := issuer.Login(context.Background(), &user, auth.TokenOptions{})
	require.NoError(t, err)

	encodedID, secret, _ := strings.Cut(issued.Value, ".")

	tests := []struct {
		name  string
		setup func(request *http.Request)
	}{
		{name: "missing header", setup: func(*http.Request) {}},
		{name: "wrong scheme", setup: func(r *http.Request) {
			r.Header.Set("Authorization", "Basic "+issued.Value)
		}},
		{name: "no dot separator", setup: func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+encodedID+secret)
		}},
		{name: "two dots", setup: func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+encodedID+"."+secret+".extra")
		}},
		{name: "undecodable id", setup: func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer %%%."+secret)
		}},
		{name: "wrong secret", setup: func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+encodedID+"."+strings.Repeat("x", len(secret)))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := newRequest()
			tt.setup(request)

			guard := newOATGuard(provider, tokens, request)
			_, err := guard.Authenticate(context.Background())

			var authErr *auth.AuthenticationError
			require.ErrorAs(t, err, &authErr)
			assert.Equal(t, auth.CodeInvalidAPIToken, authErr.Code)
			assert.False(t, guard.IsAuthenticated())
		})
	}

	// Orphaned token: the owning user vanished after issuance
	provider.Remove(user.ID)
	guard := newOATGuard(provider, tokens, bearerRequest(issued.Value))
	_, err = guard.Authenticate(context.Background())

	var authErr *auth.AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, auth.CodeInvalidAPIToken, authErr.Code)
}

/*
TestOATGuard_Expiry verifies that ExpiresIn converts to an absolute expiry
honored by authentication.
*/
func TestOATGuard_Expiry(t *testing.T) {
	provider := auth.NewMemoryUserProvider(sec.BcryptHasher{})
	user := seedUser(t, provider)
	tokens := auth.NewMemoryTokenProvider()

	issuer := newOATGuard(provider, tokens, newRequest())
	issued, err := issuer.Login(context.Background(), &user, auth.TokenOptions{
		ExpiresIn: time.Millisecond,
	})
	require.NoError(t, err)
	require.NotNil(t, issued.Token.ExpiresAt)

	time.Sleep(10 * time.Millisecond)

	guard := newOATGuard(provider, tokens, bearerRequest(issued.Value))
	_, err = guard.Authenticate(context.Background())

	var authErr *auth.AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, auth.CodeInvalidAPIToken, authErr.Code)
}

/*
TestOATGuard_Logout verifies server-side revocation and that logout without
a prior login is safe.
*/
func TestOATGuard_Logout(t *testing.T) {
	provider := auth.NewMemoryUserProvider(sec.BcryptHasher{})
	user := seedUser(t, provider)
	tokens := auth.NewMemoryTokenProvider()

	issuer := newOATGuard(provider, tokens, newRequest())
	issued, err := issuer.Login(context.Background(), &user, auth.TokenOptions{})
	require.NoError(t, err)

	// 1. Authenticate then logout destroys the token
	guard := newOATGuard(provider, tokens, bearerRequest(issued.Value))
	_, err = guard.Authenticate(context.Background())
	require.NoError(t, err)
	require.NoError(t, guard.Logout(context.Background()))
	assert.True(t, guard.IsLoggedOut())

	// 2. The credential is dead immediately
	replay := newOATGuard(provider, tokens, bearerRequest(issued.Value))
	assert.False(t, replay.Check(context.Background()))

	// 3. Logout without any established token is a no-op
	idle := newOATGuard(provider, tokens, newRequest())
	assert.NoError(t, idle.Logout(context.Background()))
}
