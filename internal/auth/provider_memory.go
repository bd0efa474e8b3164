// Copyright (c) 2026 Sentra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"sync"

	"github.com/taibuivan/sentra/pkg/normalize"
)

// MemoryUserProvider is a mutex-guarded in-memory [UserProvider].
//
// It is the reference implementation for the provider contract and the
// backend of choice in tests and single-node development setups. Records
// are stored by value so callers never alias internal state.
type MemoryUserProvider struct {
	mu     sync.RWMutex
	users  map[string]User
	hasher Hasher
	hooks  findUserHooks
}

// NewMemoryUserProvider builds an empty in-memory provider.
func NewMemoryUserProvider(hasher Hasher) *MemoryUserProvider {
	return &MemoryUserProvider{
		users:  make(map[string]User),
		hasher: hasher,
	}
}

// Add stores or replaces a user record. It is a setup helper, not part of
// the [UserProvider] contract.
func (p *MemoryUserProvider) Add(user User) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.users[user.ID] = user
}

// Remove deletes a user record if present.
func (p *MemoryUserProvider) Remove(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.users, id)
}

// find runs hooks around the supplied match function.
func (p *MemoryUserProvider) find(ctx context.Context, match func(User) bool) (*ProviderUser, error) {
	if err := p.hooks.runBefore(ctx); err != nil {
		return nil, err
	}

	var found *User
	p.mu.RLock()
	for _, user := range p.users {
		if match(user) {
			clone := user
			found = &clone
			break
		}
	}
	p.mu.RUnlock()

	if err := p.hooks.runAfter(ctx, found); err != nil {
		return nil, err
	}

	return NewProviderUser(found, p.hasher), nil
}

// FindByID resolves a user by primary key. Misses wrap nil.
func (p *MemoryUserProvider) FindByID(ctx context.Context, id string) (*ProviderUser, error) {
	return p.find(ctx, func(u User) bool { return u.ID == id })
}

// FindByUID resolves a user by normalized email or username.
func (p *MemoryUserProvider) FindByUID(ctx context.Context, uid string) (*ProviderUser, error) {
	needle := normalize.UID(uid)
	return p.find(ctx, func(u User) bool {
		return normalize.UID(u.Email) == needle || normalize.UID(u.Username) == needle
	})
}

// FindByRememberMeToken resolves a user matched by id AND the exact stored
// remember-me token.
func (p *MemoryUserProvider) FindByRememberMeToken(ctx context.Context, id, token string) (*ProviderUser, error) {
	return p.find(ctx, func(u User) bool {
		return u.ID == id && u.RememberMeToken != "" && u.RememberMeToken == token
	})
}

// UserFor wraps an already-in-hand record without a lookup.
func (p *MemoryUserProvider) UserFor(user *User) *ProviderUser {
	return NewProviderUser(user, p.hasher)
}

// UpdateRememberMeToken persists a new remember-me secret. Unknown ids are
// a no-op, matching the UPDATE semantics of the database provider.
func (p *MemoryUserProvider) UpdateRememberMeToken(ctx context.Context, id, token string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	user, ok := p.users[id]
	if !ok {
		return nil
	}
	user.RememberMeToken = token
	p.users[id] = user
	return nil
}

// Before registers a pre-lookup hook.
func (p *MemoryUserProvider) Before(event HookEvent, hook BeforeHook) UserProvider {
	p.hooks.add(event, hook, nil)
	return p
}

// After registers a post-lookup hook.
func (p *MemoryUserProvider) After(event HookEvent, hook AfterHook) UserProvider {
	p.hooks.add(event, nil, hook)
	return p
}

// WithConnection is a no-op for the in-memory backend.
func (p *MemoryUserProvider) WithConnection(conn any) UserProvider { return p }
