// Copyright (c) 2026 Sentra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"sync"
	"time"

	"github.com/taibuivan/sentra/internal/platform/sec"
	"github.com/taibuivan/sentra/pkg/uuidv7"
)

// MemoryTokenProvider is a mutex-guarded in-memory [TokenProvider] used by
// tests and single-node development setups.
type MemoryTokenProvider struct {
	mu     sync.RWMutex
	tokens map[string]Token
}

// NewMemoryTokenProvider builds an empty in-memory token provider.
func NewMemoryTokenProvider() *MemoryTokenProvider {
	return &MemoryTokenProvider{tokens: make(map[string]Token)}
}

func (p *MemoryTokenProvider) key(tokenType, id string) string {
	return tokenType + ":" + id
}

// Write persists the token and returns its newly assigned UUIDv7 id.
func (p *MemoryTokenProvider) Write(ctx context.Context, token *Token) (string, error) {
	token.ID = uuidv7.Must()
	token.CreatedAt = time.Now()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.tokens[p.key(token.Type, token.ID)] = *token

	return token.ID, nil
}

// Read retrieves a token by (id, type) and applies the three-way check:
// existence, constant-time hash equality, freshness. Any failure yields
// (nil, nil).
func (p *MemoryTokenProvider) Read(ctx context.Context, id, rawSecret, tokenType string) (*Token, error) {
	p.mu.RLock()
	stored, ok := p.tokens[p.key(tokenType, id)]
	p.mu.RUnlock()

	if !ok {
		return nil, nil
	}

	token := stored
	if !token.matchesSecret(sec.HashToken, rawSecret) {
		return nil, nil
	}
	if token.Expired(time.Now()) {
		return nil, nil
	}

	return &token, nil
}

// Destroy deletes the token. Deleting a missing token is a no-op.
func (p *MemoryTokenProvider) Destroy(ctx context.Context, id, tokenType string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.tokens, p.key(tokenType, id))
	return nil
}

// WithConnection is a no-op for the in-memory backend.
func (p *MemoryTokenProvider) WithConnection(conn any) TokenProvider { return p }
