// Copyright (c) 2026 Sentra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/sentra/internal/platform/dberr"
	"github.com/taibuivan/sentra/internal/platform/sec"
	"github.com/taibuivan/sentra/pkg/uuidv7"
)

// PostgresTokenProvider persists opaque tokens in the users.token table.
//
// Expiry is enforced at read time, not by a background reaper; stale rows
// are deleted lazily when a read finds them expired.
type PostgresTokenProvider struct {
	conn Querier
}

// NewPostgresTokenProvider builds a provider over conn (typically the
// shared [*pgxpool.Pool]).
func NewPostgresTokenProvider(conn Querier) *PostgresTokenProvider {
	return &PostgresTokenProvider{conn: conn}
}

/*
Write persists the token and returns its newly assigned UUIDv7 id.

Parameters:
  - ctx: context.Context
  - token: *Token (ID and CreatedAt are assigned here)

Returns:
  - string: The opaque token id
  - error: Database constraint violations or connectivity errors
*/
func (p *PostgresTokenProvider) Write(ctx context.Context, token *Token) (string, error) {
	const query = `
		INSERT INTO users.token (
			id, userid, type, name, tokenhash, meta, expiresat, createdat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	token.ID = uuidv7.Must()
	token.CreatedAt = time.Now()

	_, err := p.conn.Exec(ctx, query,
		token.ID,
		token.UserID,
		token.Type,
		token.Name,
		token.TokenHash,
		token.Meta,
		token.ExpiresAt,
		token.CreatedAt,
	)

	if err != nil {
		return "", dberr.Wrap(err, "postgres_token_provider_write_failed")
	}

	return token.ID, nil
}

/*
Read retrieves a token by (id, type) and validates it.

Description: Performs the three-way check. The row must exist, the sha256
digest of rawSecret must equal the stored hash (constant-time compare), and
the token must be unexpired. Any failed check yields (nil, nil).
*/
func (p *PostgresTokenProvider) Read(ctx context.Context, id, rawSecret, tokenType string) (*Token, error) {
	const query = `
		SELECT id, userid, type, name, tokenhash, meta, expiresat, createdat
		FROM users.token
		WHERE id = $1 AND type = $2`

	token := &Token{}
	err := p.conn.QueryRow(ctx, query, id, tokenType).Scan(
		&token.ID,
		&token.UserID,
		&token.Type,
		&token.Name,
		&token.TokenHash,
		&token.Meta,
		&token.ExpiresAt,
		&token.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("postgres_token_provider_read_failed: %w", err)
	}

	if !token.matchesSecret(sec.HashToken, rawSecret) {
		return nil, nil
	}

	if token.Expired(time.Now()) {
		// Lazy cleanup. The row can never validate again.
		_ = p.Destroy(ctx, id, tokenType)
		return nil, nil
	}

	return token, nil
}

// Destroy hard-deletes the token. Deleting a missing token is a no-op.
func (p *PostgresTokenProvider) Destroy(ctx context.Context, id, tokenType string) error {
	const query = `DELETE FROM users.token WHERE id = $1 AND type = $2`

	if _, err := p.conn.Exec(ctx, query, id, tokenType); err != nil {
		return dberr.Wrap(err, "postgres_token_provider_destroy_failed")
	}

	return nil
}

// WithConnection returns a copy of the provider bound to conn when it
// implements [Querier].
func (p *PostgresTokenProvider) WithConnection(conn any) TokenProvider {
	querier, ok := conn.(Querier)
	if !ok {
		return p
	}

	clone := *p
	clone.conn = querier
	return &clone
}
