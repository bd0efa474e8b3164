// Copyright (c) 2026 Sentra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/taibuivan/sentra/internal/platform/sec"
)

// TokenOptions tunes an individual opaque token issuance.
type TokenOptions struct {
	// Name is the display label. Empty means [DefaultOpaqueTokenName].
	Name string
	// ExpiresIn converts to an absolute expiry at issuance time.
	// Zero means the token never expires.
	ExpiresIn time.Duration
	// Meta is persisted alongside the token.
	Meta map[string]any
}

// OpaqueToken is the issuance result handed back to the client exactly
// once. Value is the only place the raw secret ever appears.
type OpaqueToken struct {
	// Token is the persisted record (hash, never the secret).
	Token *Token
	// Value is the bearer credential: base64url(tokenID) + "." + secret.
	Value string
}

// Bearer renders the full Authorization header value.
func (t *OpaqueToken) Bearer() string { return "Bearer " + t.Value }

// OATGuard authenticates a request through a bearer opaque access token.
//
// Opaque rather than self-contained signed tokens: revocation is a
// server-side delete with immediate effect, where a signed token would
// stay valid until its expiry regardless of server state.
type OATGuard struct {
	guardState

	provider UserProvider
	tokens   TokenProvider
	emitter  Emitter
	request  *http.Request

	tokenType string

	// token is the record established this request via Login or
	// Authenticate; Logout destroys it.
	token *Token
}

// OATGuardConfig tunes an individual opaque token guard mapping.
type OATGuardConfig struct {
	// TokenType namespaces this mapping's tokens in storage.
	// Empty means [DefaultOpaqueTokenType].
	TokenType string
}

// NewOATGuard builds a request-scoped opaque token guard.
func NewOATGuard(
	name string,
	provider UserProvider,
	tokens TokenProvider,
	emitter Emitter,
	request *http.Request,
	config OATGuardConfig,
) *OATGuard {
	if config.TokenType == "" {
		config.TokenType = DefaultOpaqueTokenType
	}
	return &OATGuard{
		guardState: guardState{name: name},
		provider:   provider,
		tokens:     tokens,
		emitter:    emitter,
		request:    request,
		tokenType:  config.TokenType,
	}
}

// Token returns the token established this request, nil when none.
func (g *OATGuard) Token() *Token { return g.token }

/*
Login issues a fresh opaque token for an already-resolved user.

Description: Generates a 60-char raw secret, persists only its sha256
digest, and returns the bearer credential base64url(tokenID) + "." + secret
alongside the persisted record. The raw secret is unrecoverable after this
call.

Parameters:
  - ctx: context.Context
  - user: *User (must have an id)
  - options: TokenOptions (name, expiry, meta)

Returns:
  - *OpaqueToken: Credential plus persisted metadata
  - error: Programmer errors (missing id) or token store failures
*/
func (g *OATGuard) Login(ctx context.Context, user *User, options TokenOptions) (*OpaqueToken, error) {
	providerUser := g.provider.UserFor(user)

	userID, ok := providerUser.ID()
	if !ok {
		return nil, fmt.Errorf("oat_guard_login_missing_user_id")
	}

	secret, err := sec.GenerateSecureToken(OpaqueTokenSecretLength)
	if err != nil {
		return nil, fmt.Errorf("oat_guard_secret_failed: %w", err)
	}

	name := options.Name
	if name == "" {
		name = DefaultOpaqueTokenName
	}

	var expiresAt *time.Time
	if options.ExpiresIn > 0 {
		at := time.Now().Add(options.ExpiresIn)
		expiresAt = &at
	}

	token := &Token{
		UserID:    userID,
		Type:      g.tokenType,
		Name:      name,
		TokenHash: sec.HashToken(secret),
		Meta:      options.Meta,
		ExpiresAt: expiresAt,
	}

	tokenID, err := g.tokens.Write(ctx, token)
	if err != nil {
		return nil, err
	}

	g.markAuthenticated(providerUser.User())
	g.token = token

	g.emitter.Emit(EventAPILogin, APILoginEvent{
		GuardName: g.name,
		User:      g.user,
		Token:     token,
	})

	encodedID := base64.RawURLEncoding.EncodeToString([]byte(tokenID))
	return &OpaqueToken{
		Token: token,
		Value: encodedID + "." + secret,
	}, nil
}

// LoginViaID resolves the user by primary key then issues a token.
func (g *OATGuard) LoginViaID(ctx context.Context, id string, options TokenOptions) (*OpaqueToken, error) {
	providerUser, err := g.provider.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, ok := providerUser.ID(); !ok {
		return nil, ErrInvalidUID(g.name)
	}
	return g.Login(ctx, providerUser.User(), options)
}

// Attempt verifies uid/password credentials then issues a token.
func (g *OATGuard) Attempt(ctx context.Context, uid, password string, options TokenOptions) (*OpaqueToken, error) {
	providerUser, err := VerifyCredentials(ctx, g.provider, g.name, uid, password)
	if err != nil {
		return nil, err
	}
	return g.Login(ctx, providerUser.User(), options)
}

/*
Authenticate verifies the Authorization Bearer credential.

Description: Parses "Bearer <base64url(id)>.<secret>", performs the token
provider's three-way read, and resolves the owning user. Every failure
shape (missing header, malformed credential, unknown id, hash mismatch,
expiry, orphaned token) collapses to E_INVALID_API_TOKEN so an attacker
learns nothing about which check failed.

One-shot latch per instance, as with the session guard.
*/
func (g *OATGuard) Authenticate(ctx context.Context) (*User, error) {
	if g.authenticationAttempted {
		return g.user, nil
	}
	g.authenticationAttempted = true

	tokenID, secret, ok := g.parseBearer()
	if !ok {
		return nil, ErrInvalidAPIToken(g.name)
	}

	token, err := g.tokens.Read(ctx, tokenID, secret, g.tokenType)
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, ErrInvalidAPIToken(g.name)
	}

	providerUser, err := g.provider.FindByID(ctx, token.UserID)
	if err != nil {
		return nil, err
	}
	if _, found := providerUser.ID(); !found {
		// Orphaned token: the owning user was deleted.
		return nil, ErrInvalidAPIToken(g.name)
	}

	g.markAuthenticated(providerUser.User())
	g.token = token

	g.emitter.Emit(EventAPIAuthenticate, APIAuthenticateEvent{
		GuardName: g.name,
		User:      g.user,
		Token:     token,
	})

	return g.user, nil
}

// Check calls Authenticate and swallows any failure.
func (g *OATGuard) Check(ctx context.Context) bool {
	_, err := g.Authenticate(ctx)
	return err == nil && g.isAuthenticated
}

// Logout destroys the token established this request, server-side. Safe to
// call without a prior login or authenticate.
func (g *OATGuard) Logout(ctx context.Context) error {
	if g.token != nil && g.token.ID != "" {
		if err := g.tokens.Destroy(ctx, g.token.ID, g.tokenType); err != nil {
			return err
		}
	}

	g.token = nil
	g.reset()
	return nil
}

// parseBearer extracts (tokenID, secret) from the Authorization header.
// The credential must be exactly one base64url id and one secret joined by
// a single dot.
func (g *OATGuard) parseBearer() (string, string, bool) {
	const prefix = "Bearer "

	header := g.request.Header.Get("Authorization")
	if !strings.HasPrefix(header, prefix) {
		return "", "", false
	}

	encodedID, secret, found := strings.Cut(header[len(prefix):], ".")
	if !found || encodedID == "" || secret == "" || strings.Contains(secret, ".") {
		return "", "", false
	}

	rawID, err := base64.RawURLEncoding.DecodeString(encodedID)
	if err != nil {
		return "", "", false
	}

	return string(rawID), secret, true
}
