// Copyright (c) 2026 Sentra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"crypto/subtle"
	"time"
)

// Token is one opaque authentication token, hash-at-rest.
//
// The raw secret is never part of this record. Only its digest is, so a
// leaked database dump or Redis snapshot yields no usable bearer secrets.
// The ID is an opaque handle distinct from both the secret and the hash;
// presenting the ID alone grants nothing.
type Token struct {
	// ID is the opaque handle assigned by the token provider on Write.
	ID string `json:"id"`
	// UserID is the owning user's primary key.
	UserID string `json:"user_id"`
	// Type namespaces token kinds. Tokens of different types for the same
	// user are independent.
	Type string `json:"type"`
	// Name is the display label.
	Name string `json:"name"`
	// TokenHash is the hex sha256 digest of the raw secret.
	TokenHash string `json:"-"`
	// Meta is a free-form bag persisted alongside the token.
	Meta map[string]any `json:"meta,omitempty"`
	// ExpiresAt is the absolute expiry; nil means the token never expires.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	// CreatedAt is the issuance timestamp.
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the token's expiry has passed at now.
func (t *Token) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && !t.ExpiresAt.After(now)
}

// matchesSecret re-derives the digest of rawSecret and compares it to the
// stored hash in constant time.
func (t *Token) matchesSecret(hashOf func(string) string, rawSecret string) bool {
	derived := hashOf(rawSecret)
	return subtle.ConstantTimeCompare([]byte(derived), []byte(t.TokenHash)) == 1
}

// TokenProvider persists and validates opaque tokens over a pluggable
// storage backend.
type TokenProvider interface {
	// Write persists the token, assigns its ID, and returns that ID. For
	// backends with native expiry a non-nil ExpiresAt becomes a TTL of
	// max(0, ExpiresAt-now).
	Write(ctx context.Context, token *Token) (string, error)

	// Read looks up (id, type), re-derives the hash of rawSecret, and
	// returns the record only when it exists, the hash matches, and the
	// token is fresh (ExpiresAt nil or in the future). All three checks
	// are required; any failure returns (nil, nil).
	Read(ctx context.Context, id, rawSecret, tokenType string) (*Token, error)

	// Destroy deletes unconditionally. Destroying a missing token is not
	// an error.
	Destroy(ctx context.Context, id, tokenType string) error

	// WithConnection overrides the underlying connection for subsequent
	// calls, backend permitting. Returns the provider for chaining.
	WithConnection(conn any) TokenProvider
}
