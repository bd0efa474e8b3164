// Copyright (c) 2026 Sentra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/taibuivan/sentra/internal/platform/sec"
)

// JWTService is the slice of [sec.TokenService] the jwt guard consumes.
type JWTService interface {
	GenerateAccessToken(userID, username string, timeToLive time.Duration) (string, error)
	VerifyToken(tokenString string) (*sec.AuthClaims, error)
}

// JWTGuard authenticates through a signed RS256 bearer token.
//
// It is not one of the built-in drivers. Applications register it through
// [Manager.Extend], which is how any custom guard plugs in. Unlike the
// opaque token guard there is no server-side revocation: an issued token
// stays valid until its expiry.
type JWTGuard struct {
	guardState

	provider UserProvider
	service  JWTService
	request  *http.Request
	ttl      time.Duration
}

// NewJWTGuard builds a request-scoped jwt guard. A zero ttl defaults to
// one hour.
func NewJWTGuard(name string, provider UserProvider, service JWTService, request *http.Request, ttl time.Duration) *JWTGuard {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &JWTGuard{
		guardState: guardState{name: name},
		provider:   provider,
		service:    service,
		request:    request,
		ttl:        ttl,
	}
}

// Login issues a signed access token for an already-resolved user.
func (g *JWTGuard) Login(ctx context.Context, user *User) (string, error) {
	providerUser := g.provider.UserFor(user)

	id, ok := providerUser.ID()
	if !ok {
		return "", fmt.Errorf("jwt_guard_login_missing_user_id")
	}

	signed, err := g.service.GenerateAccessToken(id, user.Username, g.ttl)
	if err != nil {
		return "", err
	}

	g.markAuthenticated(providerUser.User())
	return signed, nil
}

// Attempt verifies uid/password credentials then issues a token.
func (g *JWTGuard) Attempt(ctx context.Context, uid, password string) (string, error) {
	providerUser, err := VerifyCredentials(ctx, g.provider, g.name, uid, password)
	if err != nil {
		return "", err
	}
	return g.Login(ctx, providerUser.User())
}

// Authenticate verifies the bearer JWT and re-resolves the user record, so
// deleted accounts fail even while their token is still fresh. Every
// failure collapses to E_INVALID_API_TOKEN.
func (g *JWTGuard) Authenticate(ctx context.Context) (*User, error) {
	if g.authenticationAttempted {
		return g.user, nil
	}
	g.authenticationAttempted = true

	const prefix = "Bearer "
	header := g.request.Header.Get("Authorization")
	if !strings.HasPrefix(header, prefix) {
		return nil, ErrInvalidAPIToken(g.name)
	}

	claims, err := g.service.VerifyToken(header[len(prefix):])
	if err != nil {
		return nil, ErrInvalidAPIToken(g.name)
	}

	providerUser, err := g.provider.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if _, found := providerUser.ID(); !found {
		return nil, ErrInvalidAPIToken(g.name)
	}

	g.markAuthenticated(providerUser.User())
	return g.user, nil
}

// Check calls Authenticate and swallows any failure.
func (g *JWTGuard) Check(ctx context.Context) bool {
	_, err := g.Authenticate(ctx)
	return err == nil && g.isAuthenticated
}
