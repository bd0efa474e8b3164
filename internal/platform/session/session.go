// Copyright (c) 2026 Sentra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package session implements server-side HTTP sessions over Redis.

# Architecture

A [Manager] is shared across requests and stamps out one [Store] per
request. The store lazily resolves its session id from a signed cookie,
keeps values in a Redis hash under that id, and can rotate the id while
preserving values (the anti-fixation step guards perform on login).

Values never live in the cookie; the cookie carries only the signed
session id.
*/
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/sentra/internal/platform/constants"
	"github.com/taibuivan/sentra/internal/platform/sec"
	"github.com/taibuivan/sentra/pkg/uuidv7"
)

// Manager builds per-request session stores over a shared Redis client.
type Manager struct {
	client *redis.Client
	codec  *sec.CookieCodec
	ttl    time.Duration
}

// NewManager creates a session manager. A zero ttl falls back to
// [constants.SessionTTL].
func NewManager(client *redis.Client, codec *sec.CookieCodec, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = constants.SessionTTL
	}
	return &Manager{client: client, codec: codec, ttl: ttl}
}

// ForRequest builds the request's session store.
func (m *Manager) ForRequest(w http.ResponseWriter, r *http.Request) *Store {
	return &Store{manager: m, writer: w, request: r}
}

// Store is one request's view of its session. Not safe for concurrent use.
type Store struct {
	manager *Manager
	writer  http.ResponseWriter
	request *http.Request

	// id is resolved lazily from the signed cookie. Empty until first use.
	id string
}

// key is the Redis hash holding this session's values.
func (s *Store) key() string { return constants.RedisPrefixSession + s.id }

// ensureID resolves the session id, minting a fresh one (and setting the
// signed cookie) when the request carries none or carries a forged one.
func (s *Store) ensureID() {
	if s.id != "" {
		return
	}

	if cookie, err := s.request.Cookie(constants.SessionCookieName); err == nil {
		if id, err := s.manager.codec.Unsign(constants.SessionCookieName, cookie.Value); err == nil {
			s.id = id
			return
		}
	}

	s.setID(uuidv7.Must())
}

// setID adopts a new session id and re-issues the signed cookie.
func (s *Store) setID(id string) {
	s.id = id
	http.SetCookie(s.writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    s.manager.codec.Sign(constants.SessionCookieName, id),
		Path:     "/",
		MaxAge:   int(s.manager.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Get returns the value stored under key, with ok reporting presence.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	s.ensureID()

	value, err := s.manager.client.HGet(ctx, s.key(), key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("session_get_failed: %w", err)
	}

	return value, true, nil
}

// Put stores value under key and refreshes the session TTL.
func (s *Store) Put(ctx context.Context, key, value string) error {
	s.ensureID()

	pipe := s.manager.client.TxPipeline()
	pipe.HSet(ctx, s.key(), key, value)
	pipe.Expire(ctx, s.key(), s.manager.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("session_put_failed: %w", err)
	}

	return nil
}

// Forget removes key from the session. Missing keys are a no-op.
func (s *Store) Forget(ctx context.Context, key string) error {
	s.ensureID()

	if err := s.manager.client.HDel(ctx, s.key(), key).Err(); err != nil {
		return fmt.Errorf("session_forget_failed: %w", err)
	}

	return nil
}

// Regenerate rotates the session id while preserving stored values. The
// old Redis hash is renamed to the new id and the signed cookie is
// re-issued, so an attacker-planted pre-login id never survives a login.
func (s *Store) Regenerate(ctx context.Context) error {
	s.ensureID()

	oldKey := s.key()
	newID := uuidv7.Must()
	newKey := constants.RedisPrefixSession + newID

	exists, err := s.manager.client.Exists(ctx, oldKey).Result()
	if err != nil {
		return fmt.Errorf("session_regenerate_failed: %w", err)
	}
	if exists > 0 {
		if err := s.manager.client.Rename(ctx, oldKey, newKey).Err(); err != nil {
			return fmt.Errorf("session_regenerate_failed: %w", err)
		}
	}

	s.setID(newID)
	return nil
}
