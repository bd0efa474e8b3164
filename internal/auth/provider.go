// Copyright (c) 2026 Sentra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
)

// HookEvent names a provider lifecycle event hooks can attach to.
type HookEvent string

// HookFindUser fires around every lookup query (FindByID, FindByUID,
// FindByRememberMeToken).
const HookFindUser HookEvent = "findUser"

// BeforeHook runs immediately before a lookup query executes. A non-nil
// error aborts the lookup.
type BeforeHook func(ctx context.Context) error

// AfterHook runs immediately after a lookup finds a record. It never runs
// for misses. A non-nil error aborts the operation.
type AfterHook func(ctx context.Context, user *User) error

// UserProvider abstracts locating a user record over a storage strategy.
//
// Lookups that find nothing return a [ProviderUser] wrapping nil and a nil
// error; only infrastructure failures surface as errors. Malformed provider
// configuration errors at call time, not construction time.
type UserProvider interface {
	// FindByID resolves a user by primary key.
	FindByID(ctx context.Context, id string) (*ProviderUser, error)

	// FindByUID resolves a user by checking the value against the ordered
	// list of configured uid columns in a single round trip.
	FindByUID(ctx context.Context, uid string) (*ProviderUser, error)

	// FindByRememberMeToken resolves a user matched by id AND exact
	// equality of the stored remember-me token.
	FindByRememberMeToken(ctx context.Context, id, token string) (*ProviderUser, error)

	// UserFor wraps an already-in-hand record without querying.
	UserFor(user *User) *ProviderUser

	// UpdateRememberMeToken persists a new remember-me secret for a user.
	UpdateRememberMeToken(ctx context.Context, id, token string) error

	// Before registers a hook invoked before each lookup query, in
	// registration order. Returns the provider for chaining.
	Before(event HookEvent, hook BeforeHook) UserProvider

	// After registers a hook invoked after a record is found, in
	// registration order. Returns the provider for chaining.
	After(event HookEvent, hook AfterHook) UserProvider

	// WithConnection overrides the underlying connection for subsequent
	// calls. The accepted type is backend specific. Returns the provider
	// for chaining.
	WithConnection(conn any) UserProvider
}

// findUserHooks holds the Before/After callbacks shared by both provider
// implementations.
type findUserHooks struct {
	before []BeforeHook
	after  []AfterHook
}

func (h *findUserHooks) add(event HookEvent, before BeforeHook, after AfterHook) {
	if event != HookFindUser {
		return
	}
	if before != nil {
		h.before = append(h.before, before)
	}
	if after != nil {
		h.after = append(h.after, after)
	}
}

func (h *findUserHooks) runBefore(ctx context.Context) error {
	for _, hook := range h.before {
		if err := hook(ctx); err != nil {
			return fmt.Errorf("auth_provider_before_hook_failed: %w", err)
		}
	}
	return nil
}

func (h *findUserHooks) runAfter(ctx context.Context, user *User) error {
	if user == nil {
		return nil
	}
	for _, hook := range h.after {
		if err := hook(ctx, user); err != nil {
			return fmt.Errorf("auth_provider_after_hook_failed: %w", err)
		}
	}
	return nil
}

// VerifyCredentials is the pure credential check shared by the session and
// basic auth guards. It mutates nothing.
//
// Failure taxonomy: an unknown uid yields [CodeInvalidUID], a hash mismatch
// yields [CodeInvalidPassword]. The two stay distinguishable so clients can
// render field-specific messages.
func VerifyCredentials(ctx context.Context, provider UserProvider, guardName, uid, password string) (*ProviderUser, error) {
	providerUser, err := provider.FindByUID(ctx, uid)
	if err != nil {
		return nil, err
	}

	if _, ok := providerUser.ID(); !ok {
		return nil, ErrInvalidUID(guardName)
	}

	matched, err := providerUser.VerifyPassword(password)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, ErrInvalidPassword(guardName)
	}

	return providerUser, nil
}
