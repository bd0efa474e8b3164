// Copyright (c) 2026 Sentra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/sentra/internal/platform/constants"
	"github.com/taibuivan/sentra/internal/platform/sec"
	"github.com/taibuivan/sentra/pkg/uuidv7"
)

// RedisTokenProvider persists opaque tokens as JSON values with native TTL.
//
// A token with an expiry maps to a Redis TTL, so expired tokens vanish on
// their own without a reaper.
type RedisTokenProvider struct {
	client *redis.Client
}

// NewRedisTokenProvider builds a provider over the shared Redis client.
func NewRedisTokenProvider(client *redis.Client) *RedisTokenProvider {
	return &RedisTokenProvider{client: client}
}

// key builds the storage key. The type namespace is part of the key, so
// tokens of different types never collide.
func (p *RedisTokenProvider) key(tokenType, id string) string {
	return constants.RedisPrefixToken + tokenType + ":" + id
}

// Write persists the token and returns its newly assigned UUIDv7 id.
//
// A non-nil ExpiresAt becomes a native TTL of max(0, ExpiresAt-now). Redis
// treats an expiration of zero as "no TTL", so an already-expired token is
// clamped to a 1ms TTL instead, which keeps it born-dead rather than
// accidentally eternal.
func (p *RedisTokenProvider) Write(ctx context.Context, token *Token) (string, error) {
	token.ID = uuidv7.Must()
	token.CreatedAt = time.Now()

	payload, err := json.Marshal(redisTokenRecord{
		UserID:    token.UserID,
		Name:      token.Name,
		TokenHash: token.TokenHash,
		Meta:      token.Meta,
		ExpiresAt: token.ExpiresAt,
		CreatedAt: token.CreatedAt,
	})
	if err != nil {
		return "", fmt.Errorf("redis_token_provider_marshal_failed: %w", err)
	}

	var ttl time.Duration
	if token.ExpiresAt != nil {
		ttl = time.Until(*token.ExpiresAt)
		if ttl <= 0 {
			ttl = time.Millisecond
		}
	}

	if err := p.client.Set(ctx, p.key(token.Type, token.ID), payload, ttl).Err(); err != nil {
		return "", fmt.Errorf("redis_token_provider_write_failed: %w", err)
	}

	return token.ID, nil
}

// Read retrieves a token by (id, type) and validates hash and freshness.
// Any failed check yields (nil, nil).
func (p *RedisTokenProvider) Read(ctx context.Context, id, rawSecret, tokenType string) (*Token, error) {
	payload, err := p.client.Get(ctx, p.key(tokenType, id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis_token_provider_read_failed: %w", err)
	}

	var record redisTokenRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("redis_token_provider_unmarshal_failed: %w", err)
	}

	token := &Token{
		ID:        id,
		UserID:    record.UserID,
		Type:      tokenType,
		Name:      record.Name,
		TokenHash: record.TokenHash,
		Meta:      record.Meta,
		ExpiresAt: record.ExpiresAt,
		CreatedAt: record.CreatedAt,
	}

	if !token.matchesSecret(sec.HashToken, rawSecret) {
		return nil, nil
	}

	// The TTL already evicts expired tokens; this guards the window where
	// the key outlives its logical expiry by a tick.
	if token.Expired(time.Now()) {
		return nil, nil
	}

	return token, nil
}

// Destroy deletes the token. Deleting a missing token is a no-op.
func (p *RedisTokenProvider) Destroy(ctx context.Context, id, tokenType string) error {
	if err := p.client.Del(ctx, p.key(tokenType, id)).Err(); err != nil {
		return fmt.Errorf("redis_token_provider_destroy_failed: %w", err)
	}
	return nil
}

// WithConnection returns a copy bound to conn when it is a [*redis.Client].
func (p *RedisTokenProvider) WithConnection(conn any) TokenProvider {
	client, ok := conn.(*redis.Client)
	if !ok {
		return p
	}

	clone := *p
	clone.client = client
	return &clone
}

// redisTokenRecord is the stored JSON shape. The id and type live in the
// key, not the value.
type redisTokenRecord struct {
	UserID    string         `json:"user_id"`
	Name      string         `json:"name"`
	TokenHash string         `json:"token_hash"`
	Meta      map[string]any `json:"meta,omitempty"`
	ExpiresAt *time.Time     `json:"expires_at,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
