// Copyright (c) 2026 Sentra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"sync"
)

// MemoryStore is a mutex-guarded in-memory session store for tests and
// single-node development. Unlike [Store] it has no cookie transport; the
// caller owns sharing one instance across the requests that should share
// a session.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string

	// Regenerations counts id rotations so tests can assert the
	// anti-fixation step ran.
	Regenerations int
}

// NewMemoryStore builds an empty in-memory session.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Get returns the value stored under key.
func (s *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.values[key]
	return value, ok, nil
}

// Put stores value under key.
func (s *MemoryStore) Put(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Forget removes key.
func (s *MemoryStore) Forget(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// Regenerate rotates the (notional) session id. Values are preserved.
func (s *MemoryStore) Regenerate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Regenerations++
	return nil
}
