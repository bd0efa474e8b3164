// Copyright (c) 2026 Sentra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"net/http"
)

// BasicAuthGuard authenticates through the Authorization Basic header.
//
// It is deliberately stateless: Basic auth presents credentials on every
// request, so every Authenticate call fully re-verifies and nothing is
// cached across calls. A revoked password takes effect on the very next
// request. There is no session, no cookie, and no one-shot latch.
type BasicAuthGuard struct {
	guardState

	provider UserProvider
	request  *http.Request
}

// NewBasicAuthGuard builds a request-scoped basic auth guard.
func NewBasicAuthGuard(name string, provider UserProvider, request *http.Request) *BasicAuthGuard {
	return &BasicAuthGuard{
		guardState: guardState{name: name},
		provider:   provider,
		request:    request,
	}
}

// Authenticate parses and re-verifies the Basic credentials. A missing
// header, wrong scheme or undecodable payload yields
// E_INVALID_BASIC_CREDENTIALS; uid and password failures keep their usual
// distinguishable codes.
func (g *BasicAuthGuard) Authenticate(ctx context.Context) (*User, error) {
	g.authenticationAttempted = true

	// Full re-verification on every call. Drop any previously resolved
	// identity first so a failure never leaves stale state behind.
	g.user = nil
	g.isAuthenticated = false

	uid, password, ok := g.request.BasicAuth()
	if !ok {
		return nil, ErrInvalidBasicCredentials(g.name)
	}

	providerUser, err := VerifyCredentials(ctx, g.provider, g.name, uid, password)
	if err != nil {
		return nil, err
	}

	g.markAuthenticated(providerUser.User())
	return g.user, nil
}

// Check calls Authenticate and swallows any failure.
func (g *BasicAuthGuard) Check(ctx context.Context) bool {
	_, err := g.Authenticate(ctx)
	return err == nil && g.isAuthenticated
}
