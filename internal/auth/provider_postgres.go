// Copyright (c) 2026 Sentra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/sentra/internal/platform/dberr"
	"github.com/taibuivan/sentra/pkg/normalize"
)

// Querier is the slice of the pgx API the database provider needs. It is
// satisfied by [*pgxpool.Pool] and by [pgx.Tx], so [WithConnection] can
// scope lookups to a transaction.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// identifierRegex accepts schema-qualified SQL identifiers. Configured
// table and column names are validated against it before interpolation;
// values are always bound as parameters.
var identifierRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*(\.[a-zA-Z_][a-zA-Z0-9_]*)?$`)

// DatabaseProviderConfig describes the table shape a [DatabaseUserProvider]
// queries. Zero values fall back to the users.account schema.
type DatabaseProviderConfig struct {
	// Table is the (optionally schema-qualified) user table name.
	Table string
	// IDColumn holds the primary key.
	IDColumn string
	// UIDColumns is the ordered list of unique identifier columns checked
	// by FindByUID. At least one is required.
	UIDColumns []string
	// RememberMeColumn stores the remember-me secret.
	RememberMeColumn string
}

func (c *DatabaseProviderConfig) applyDefaults() {
	if c.Table == "" {
		c.Table = "users.account"
	}
	if c.IDColumn == "" {
		c.IDColumn = "id"
	}
	if len(c.UIDColumns) == 0 {
		c.UIDColumns = []string{"email", "username"}
	}
	if c.RememberMeColumn == "" {
		c.RememberMeColumn = "remembermetoken"
	}
}

// validate checks every configured identifier. It runs at call time so a
// misconfigured provider fails on first use, not at construction.
func (c *DatabaseProviderConfig) validate() error {
	names := append([]string{c.Table, c.IDColumn, c.RememberMeColumn}, c.UIDColumns...)
	for _, name := range names {
		if !identifierRegex.MatchString(name) {
			return fmt.Errorf("auth_provider_bad_identifier: %q", name)
		}
	}
	return nil
}

// DatabaseUserProvider locates users through raw table queries over pgx.
//
// One instance may serve concurrent requests as long as WithConnection is
// not used to alias it onto different transactions simultaneously; the
// override mutates a copy, so chained use is safe.
type DatabaseUserProvider struct {
	conn   Querier
	hasher Hasher
	config DatabaseProviderConfig
	hooks  findUserHooks
}

// NewDatabaseUserProvider builds a provider over conn (typically the shared
// [*pgxpool.Pool]).
func NewDatabaseUserProvider(conn Querier, hasher Hasher, config DatabaseProviderConfig) *DatabaseUserProvider {
	config.applyDefaults()
	return &DatabaseUserProvider{conn: conn, hasher: hasher, config: config}
}

// columns is the fixed scan list for users.account rows.
const columns = "id, username, email, passwordhash, displayname, COALESCE(remembermetoken, ''), createdat, updatedat"

func (p *DatabaseUserProvider) scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.DisplayName,
		&user.RememberMeToken,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("auth_provider_scan_failed: %w", err)
	}

	return user, nil
}

// findOne runs the before hooks, executes the query, then runs the after
// hooks when a record was found. Misses wrap nil.
func (p *DatabaseUserProvider) findOne(ctx context.Context, query string, args ...any) (*ProviderUser, error) {
	if err := p.config.validate(); err != nil {
		return nil, err
	}
	if err := p.hooks.runBefore(ctx); err != nil {
		return nil, err
	}

	user, err := p.scanUser(p.conn.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, err
	}

	if err := p.hooks.runAfter(ctx, user); err != nil {
		return nil, err
	}

	return NewProviderUser(user, p.hasher), nil
}

/*
FindByID retrieves a user record by its primary key.

Parameters:
  - ctx: context.Context
  - id: string (UUID primary key)

Returns:
  - *ProviderUser: Wrapper holding the record, or nil record on miss
  - error: Hook aborts or database errors; never "not found"
*/
func (p *DatabaseUserProvider) FindByID(ctx context.Context, id string) (*ProviderUser, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		columns, p.config.Table, p.config.IDColumn)

	return p.findOne(ctx, query, id)
}

/*
FindByUID retrieves a user record by one of the configured uid columns.

Description: The uid is normalized (NFKC + case fold) and checked against
every configured column in a single round trip; the query ORs across all of
them.

Parameters:
  - ctx: context.Context
  - uid: string (e-mail, username, or any configured identifier)

Returns:
  - *ProviderUser: Wrapper holding the first matching record
  - error: Hook aborts or database errors
*/
func (p *DatabaseUserProvider) FindByUID(ctx context.Context, uid string) (*ProviderUser, error) {
	predicates := make([]string, len(p.config.UIDColumns))
	for i, column := range p.config.UIDColumns {
		predicates[i] = fmt.Sprintf("%s = $1", column)
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s LIMIT 1`,
		columns, p.config.Table, strings.Join(predicates, " OR "))

	return p.findOne(ctx, query, normalize.UID(uid))
}

/*
FindByRememberMeToken retrieves a user matched by id AND the exact stored
remember-me token. Either mismatch wraps a nil record.
*/
func (p *DatabaseUserProvider) FindByRememberMeToken(ctx context.Context, id, token string) (*ProviderUser, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2`,
		columns, p.config.Table, p.config.IDColumn, p.config.RememberMeColumn)

	return p.findOne(ctx, query, id, token)
}

// UserFor wraps an already-in-hand record without touching the database.
func (p *DatabaseUserProvider) UserFor(user *User) *ProviderUser {
	return NewProviderUser(user, p.hasher)
}

// UpdateRememberMeToken persists a new remember-me secret for a user.
func (p *DatabaseUserProvider) UpdateRememberMeToken(ctx context.Context, id, token string) error {
	if err := p.config.validate(); err != nil {
		return err
	}

	query := fmt.Sprintf(`UPDATE %s SET %s = $1, updatedat = $2 WHERE %s = $3`,
		p.config.Table, p.config.RememberMeColumn, p.config.IDColumn)

	if _, err := p.conn.Exec(ctx, query, token, time.Now(), id); err != nil {
		return dberr.Wrap(err, "auth_provider_update_remember_token_failed")
	}

	return nil
}

// Before registers a pre-lookup hook.
func (p *DatabaseUserProvider) Before(event HookEvent, hook BeforeHook) UserProvider {
	p.hooks.add(event, hook, nil)
	return p
}

// After registers a post-lookup hook.
func (p *DatabaseUserProvider) After(event HookEvent, hook AfterHook) UserProvider {
	p.hooks.add(event, nil, hook)
	return p
}

// WithConnection returns a copy of the provider bound to conn, which must
// implement [Querier] (a pool or a transaction). Passing anything else
// leaves the connection untouched; the mistake surfaces on first query
// through the unchanged binding.
func (p *DatabaseUserProvider) WithConnection(conn any) UserProvider {
	querier, ok := conn.(Querier)
	if !ok {
		return p
	}

	clone := *p
	clone.conn = querier
	return &clone
}
