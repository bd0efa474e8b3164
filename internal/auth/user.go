// Copyright (c) 2026 Sentra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the credential verification and session/token
authentication core of Sentra.

# Architecture

Three layers cooperate, leaves first:

  - User providers locate user records by id, uid or remember-me token and
    normalize them into a uniform [ProviderUser] wrapper.
  - Token providers persist opaque access tokens hash-at-rest with optional
    expiry, pluggable over PostgreSQL, Redis or memory.
  - Guards decide how a request proves identity: cookie session plus
    remember-me token ([SessionGuard]), bearer opaque token ([OATGuard]),
    or the Authorization Basic header ([BasicAuthGuard]).

The [Manager] resolves named guard+provider mappings into per-request
instances and exposes registries so applications can plug in their own
guard and provider drivers.

# Concurrency

Guard instances are request-scoped and carry private mutable state; they
must never be shared across requests. Providers and the manager are safe
for concurrent use.
*/
package auth

import (
	"errors"
	"time"
)

// User is the persisted account record resolved by user providers.
type User struct {
	// ID is the UUIDv7 primary key.
	ID string `json:"id"`
	// Username is a unique, user-chosen handle.
	Username string `json:"username"`
	// Email is the unique contact address.
	Email string `json:"email"`
	// PasswordHash is the bcrypt digest of the account password. Never serialized.
	PasswordHash string `json:"-"`
	// DisplayName is the public profile name.
	DisplayName string `json:"display_name"`
	// RememberMeToken is the current remember-me secret, empty when none issued.
	RememberMeToken string `json:"-"`
	// CreatedAt is the account creation timestamp.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt tracks the last mutation.
	UpdatedAt time.Time `json:"updated_at"`
}

// Hasher verifies plain-text passwords against stored digests.
//
// [sec.BcryptHasher] is the production implementation.
type Hasher interface {
	Verify(storedHash, plain string) bool
}

// ErrNoUser is returned when a mutating ProviderUser accessor is called on
// a wrapper holding no record. This is a programmer error.
var ErrNoUser = errors.New("auth: provider user holds no record")

// ProviderUser bridges a raw user record (or the absence of one) to the
// uniform shape guards consume.
//
// A wrapper is constructed per lookup and never re-fetches: once built from
// a real record, ID() is stable for the wrapper's lifetime.
type ProviderUser struct {
	user   *User
	hasher Hasher
}

// NewProviderUser wraps user, which may be nil for a miss.
func NewProviderUser(user *User, hasher Hasher) *ProviderUser {
	return &ProviderUser{user: user, hasher: hasher}
}

// User returns the underlying record, nil when the lookup missed.
func (p *ProviderUser) User() *User { return p.user }

// ID returns the record identifier. ok is false when no record is held.
func (p *ProviderUser) ID() (string, bool) {
	if p.user == nil {
		return "", false
	}
	return p.user.ID, true
}

// VerifyPassword compares plain against the record's stored password hash.
// It returns [ErrNoUser] when the wrapper holds no record.
func (p *ProviderUser) VerifyPassword(plain string) (bool, error) {
	if p.user == nil {
		return false, ErrNoUser
	}
	return p.hasher.Verify(p.user.PasswordHash, plain), nil
}

// RememberMeToken returns the stored remember-me secret, empty when none.
func (p *ProviderUser) RememberMeToken() string {
	if p.user == nil {
		return ""
	}
	return p.user.RememberMeToken
}

// SetRememberMeToken mutates the in-memory record's remember-me secret.
// Persisting the change is the provider's job, not the wrapper's.
func (p *ProviderUser) SetRememberMeToken(value string) error {
	if p.user == nil {
		return ErrNoUser
	}
	p.user.RememberMeToken = value
	return nil
}
