// Copyright (c) 2026 Sentra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/sentra/internal/auth"
	"github.com/taibuivan/sentra/internal/platform/sec"
)

// fakeJWTService hands out predictable signed strings and remembers the
// claims behind them, standing in for the RS256 token service.
type fakeJWTService struct {
	issued map[string]*sec.AuthClaims
}

func newFakeJWTService() *fakeJWTService {
	return &fakeJWTService{issued: make(map[string]*sec.AuthClaims)}
}

func (s *fakeJWTService) GenerateAccessToken(userID, username string, ttl time.Duration) (string, error) {
	signed := fmt.Sprintf("signed-%d", len(s.issued)+1)
	s.issued[signed] = &sec.AuthClaims{UserID: userID, Username: username}
	return signed, nil
}

func (s *fakeJWTService) VerifyToken(tokenString string) (*sec.AuthClaims, error) {
	claims, ok := s.issued[tokenString]
	if !ok {
		return nil, fmt.Errorf("unknown token")
	}
	return claims, nil
}

/*
TestJWTGuard_ThroughExtend verifies the jwt guard plugs in through the
manager's driver registry and authenticates a bearer token end to end.
*/
func TestJWTGuard_ThroughExtend(t *testing.T) {
	config := managerConfig()
	config.Guards["machine"] = auth.GuardMapping{
		Driver:   "jwt",
		Provider: auth.ProviderMapping{Driver: auth.ProviderMemory},
	}

	manager, err := auth.NewManager(config, managerDeps())
	require.NoError(t, err)

	service := newFakeJWTService()
	manager.Extend("jwt", func(gc auth.GuardContext) (auth.Guard, error) {
		return auth.NewJWTGuard(gc.Name, gc.Provider, service, gc.Request, time.Hour), nil
	})

	provider, _ := manager.Memory()
	user := seedUser(t, provider)

	// 1. Attempt on one request issues a signed token
	issueFacade := manager.ForRequest(httptest.NewRecorder(), newRequest())
	issuer, err := issueFacade.Use("machine")
	require.NoError(t, err)

	jwtGuard, ok := issuer.(*auth.JWTGuard)
	require.True(t, ok)

	signed, err := jwtGuard.Attempt(context.Background(), "virk@adonisjs.com", "secret")
	require.NoError(t, err)
	require.NotEmpty(t, signed)
	assert.True(t, jwtGuard.IsAuthenticated())

	// 2. The token authenticates a fresh request
	request := newRequest()
	request.Header.Set("Authorization", "Bearer "+signed)

	verifyFacade := manager.ForRequest(httptest.NewRecorder(), request)
	verifier, err := verifyFacade.Use("machine")
	require.NoError(t, err)

	resolved, err := verifier.Authenticate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)
}

/*
TestJWTGuard_Failures verifies a missing header, an unverifiable token, and
a deleted account all collapse to the generic invalid-token error.
*/
func TestJWTGuard_Failures(t *testing.T) {
	provider := auth.NewMemoryUserProvider(sec.BcryptHasher{})
	user := seedUser(t, provider)
	service := newFakeJWTService()

	issuer := auth.NewJWTGuard("machine", provider, service, newRequest(), time.Hour)
	signed, err := issuer.Attempt(context.Background(), "virk@adonisjs.com", "secret")
	require.NoError(t, err)

	var authErr *auth.AuthenticationError

	// 1. Missing header
	bare := auth.NewJWTGuard("machine", provider, service, newRequest(), time.Hour)
	_, err = bare.Authenticate(context.Background())
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, auth.CodeInvalidAPIToken, authErr.Code)

	// 2. Token the service never issued
	forged := newRequest()
	forged.Header.Set("Authorization", "Bearer forged")
	_, err = auth.NewJWTGuard("machine", provider, service, forged, time.Hour).Authenticate(context.Background())
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, auth.CodeInvalidAPIToken, authErr.Code)

	// 3. A fresh token for a since-deleted account
	provider.Remove(user.ID)
	stale := newRequest()
	stale.Header.Set("Authorization", "Bearer "+signed)

	guard := auth.NewJWTGuard("machine", provider, service, stale, time.Hour)
	_, err = guard.Authenticate(context.Background())
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, auth.CodeInvalidAPIToken, authErr.Code)

	// 4. The one-shot latch holds the failed outcome
	resolved, err := guard.Authenticate(context.Background())
	require.NoError(t, err)
	assert.Nil(t, resolved)
	assert.False(t, guard.Check(context.Background()))
}
