// Copyright (c) 2026 Sentra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/taibuivan/sentra/internal/platform/sec"
)

// SessionStore is the narrow session contract the session guard consumes.
//
// Regenerate rotates the session id while preserving stored values, which
// is the anti-fixation step performed on every login.
type SessionStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
	Forget(ctx context.Context, key string) error
	Regenerate(ctx context.Context) error
}

// CookieJar is the narrow cookie contract the session guard consumes.
//
// Implementations own transport-level integrity: values handed to Set must
// reach Get unmodified or not at all, so the production jar encrypts and
// authenticates, and Get reports tampered cookies as absent.
type CookieJar interface {
	Get(name string) (string, bool)
	Set(name, value string, maxAge time.Duration)
	Clear(name string)
}

// rememberPayload is the JSON body of the remember-me cookie.
type rememberPayload struct {
	ID    string `json:"id"`
	Token string `json:"token"`
}

// SessionGuard authenticates a request through the host session store plus
// an optional long-lived remember-me cookie.
//
// # State Machine
//
// Anonymous -> (Login | successful Authenticate) -> Authenticated ->
// (Logout) -> LoggedOut. AuthenticationAttempted tracks whether
// Authenticate ran this request, independent of outcome, and makes the
// method a one-shot latch: a second call returns the latched outcome
// without redoing work or re-raising a prior failure.
type SessionGuard struct {
	guardState

	provider UserProvider
	session  SessionStore
	cookies  CookieJar
	emitter  Emitter
	request  *http.Request

	// rememberAge is the remember-me cookie lifetime.
	rememberAge time.Duration
	// redirectTo is attached to authentication failures for browser flows.
	redirectTo string

	viaRemember bool
}

// SessionGuardConfig tunes an individual session guard mapping.
type SessionGuardConfig struct {
	// RememberAge overrides the remember-me cookie lifetime.
	// Zero means [DefaultRememberMeAge].
	RememberAge time.Duration
	// RedirectTo is where browser clients are sent on auth failure.
	RedirectTo string
}

// NewSessionGuard builds a request-scoped session guard.
func NewSessionGuard(
	name string,
	provider UserProvider,
	session SessionStore,
	cookies CookieJar,
	emitter Emitter,
	request *http.Request,
	config SessionGuardConfig,
) *SessionGuard {
	if config.RememberAge <= 0 {
		config.RememberAge = DefaultRememberMeAge
	}
	return &SessionGuard{
		guardState:  guardState{name: name},
		provider:    provider,
		session:     session,
		cookies:     cookies,
		emitter:     emitter,
		request:     request,
		rememberAge: config.RememberAge,
		redirectTo:  config.RedirectTo,
	}
}

// ViaRemember reports whether the current identity came from the
// remember-me cookie rather than the primary session key.
func (g *SessionGuard) ViaRemember() bool { return g.viaRemember }

// sessionKey is namespaced by guard name so two session guard mappings
// sharing one request never collide.
func (g *SessionGuard) sessionKey() string { return SessionKeyPrefix + g.name }

func (g *SessionGuard) cookieName() string { return RememberCookiePrefix + g.name }

/*
Login marks user as authenticated for this request and its session.

Description: Stores the user id under the guard's session key and
regenerates the session id to defeat session fixation. When remember is
true a remember-me secret is ensured (reusing the user's existing one,
generating a fresh 20-char secret otherwise), persisted through the
provider, and set as a long-lived encrypted cookie binding {id, token}.
When remember is false any stale remember cookie is cleared.

Parameters:
  - ctx: context.Context
  - user: *User (already-resolved record; must have an id)
  - remember: bool

Returns:
  - error: Programmer errors (missing id) or store/provider failures
*/
func (g *SessionGuard) Login(ctx context.Context, user *User, remember bool) error {
	providerUser := g.provider.UserFor(user)

	id, ok := providerUser.ID()
	if !ok {
		return fmt.Errorf("session_guard_login_missing_user_id")
	}

	rawRememberToken := ""
	if remember {
		token := providerUser.RememberMeToken()
		if token == "" {
			generated, err := sec.GenerateSecureToken(RememberMeTokenLength)
			if err != nil {
				return fmt.Errorf("session_guard_remember_token_failed: %w", err)
			}
			token = generated

			if err := providerUser.SetRememberMeToken(token); err != nil {
				return err
			}
			if err := g.provider.UpdateRememberMeToken(ctx, id, token); err != nil {
				return err
			}
		}
		rawRememberToken = token

		if err := g.setRememberCookie(id, token); err != nil {
			return err
		}
	} else {
		g.cookies.Clear(g.cookieName())
	}

	if err := g.session.Put(ctx, g.sessionKey(), id); err != nil {
		return fmt.Errorf("session_guard_session_put_failed: %w", err)
	}
	if err := g.session.Regenerate(ctx); err != nil {
		return fmt.Errorf("session_guard_session_regenerate_failed: %w", err)
	}

	g.markAuthenticated(providerUser.User())

	g.emitter.Emit(EventSessionLogin, SessionLoginEvent{
		GuardName:     g.name,
		User:          g.user,
		Request:       g.request,
		RememberToken: rawRememberToken,
	})

	return nil
}

// LoginViaID resolves the user by primary key and logs them in.
func (g *SessionGuard) LoginViaID(ctx context.Context, id string, remember bool) error {
	providerUser, err := g.provider.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if _, ok := providerUser.ID(); !ok {
		return ErrInvalidUID(g.name)
	}
	return g.Login(ctx, providerUser.User(), remember)
}

// Attempt composes VerifyCredentials and Login.
func (g *SessionGuard) Attempt(ctx context.Context, uid, password string, remember bool) (*User, error) {
	user, err := g.VerifyCredentials(ctx, uid, password)
	if err != nil {
		return nil, err
	}
	if err := g.Login(ctx, user, remember); err != nil {
		return nil, err
	}
	return user, nil
}

// VerifyCredentials is the pure credential check. Guard state is not
// mutated.
func (g *SessionGuard) VerifyCredentials(ctx context.Context, uid, password string) (*User, error) {
	providerUser, err := VerifyCredentials(ctx, g.provider, g.name, uid, password)
	if err != nil {
		return nil, err
	}
	return providerUser.User(), nil
}

/*
Authenticate resolves the request identity.

Description: Resolution order is (a) the primary session value, failing on
a stale id, (b) the remember-me cookie, verifying the encrypted payload and
the stored token, re-issuing the cookie with a sliding expiry and
re-establishing the primary session, (c) failure with E_INVALID_AUTH_SESSION.
All failure shapes collapse to that one error.

The method is a one-shot latch per instance. A second call returns the
latched user (nil after a prior failure) and never re-raises the prior
error.
*/
func (g *SessionGuard) Authenticate(ctx context.Context) (*User, error) {
	if g.authenticationAttempted {
		return g.user, nil
	}
	g.authenticationAttempted = true

	// ── 1. Primary session value ──────────────────────────────────────
	if id, ok, err := g.session.Get(ctx, g.sessionKey()); err != nil {
		return nil, fmt.Errorf("session_guard_session_get_failed: %w", err)
	} else if ok {
		providerUser, err := g.provider.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if _, found := providerUser.ID(); !found {
			// Stale session: the id no longer maps to a user.
			return nil, ErrInvalidSession(g.name, g.redirectTo)
		}

		g.markAuthenticated(providerUser.User())
		g.viaRemember = false
		g.emitAuthenticated(false)
		return g.user, nil
	}

	// ── 2. Remember-me cookie ─────────────────────────────────────────
	if raw, ok := g.cookies.Get(g.cookieName()); ok {
		var payload rememberPayload
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			return nil, ErrInvalidSession(g.name, g.redirectTo)
		}

		providerUser, err := g.provider.FindByRememberMeToken(ctx, payload.ID, payload.Token)
		if err != nil {
			return nil, err
		}
		if _, found := providerUser.ID(); !found {
			return nil, ErrInvalidSession(g.name, g.redirectTo)
		}

		g.markAuthenticated(providerUser.User())
		g.viaRemember = true

		// Sliding expiry plus session re-establishment, so the next
		// request in this session skips remember-token verification.
		if err := g.setRememberCookie(payload.ID, payload.Token); err != nil {
			return nil, err
		}
		if err := g.session.Put(ctx, g.sessionKey(), payload.ID); err != nil {
			return nil, fmt.Errorf("session_guard_session_put_failed: %w", err)
		}

		g.emitAuthenticated(true)
		return g.user, nil
	}

	// ── 3. Nothing usable ─────────────────────────────────────────────
	return nil, ErrInvalidSession(g.name, g.redirectTo)
}

// Check calls Authenticate and swallows any failure.
func (g *SessionGuard) Check(ctx context.Context) bool {
	_, err := g.Authenticate(ctx)
	return err == nil && g.isAuthenticated
}

/*
Logout clears the guard's session key and remember-me cookie and resets
the guard to the logged-out state.

When recycleRememberToken is true the stored remember-me secret is rotated
first, which invalidates every previously issued remember cookie and
defeats replay of a stolen one. Rotation needs a known user, so an
authentication attempt is forced (and its failure ignored) when none ran
yet this request.
*/
func (g *SessionGuard) Logout(ctx context.Context, recycleRememberToken bool) error {
	if recycleRememberToken {
		if !g.authenticationAttempted {
			g.Check(ctx)
		}

		if g.user != nil {
			token, err := sec.GenerateSecureToken(RememberMeTokenLength)
			if err != nil {
				return fmt.Errorf("session_guard_remember_token_failed: %w", err)
			}
			if err := g.provider.UpdateRememberMeToken(ctx, g.user.ID, token); err != nil {
				return err
			}
		}
	}

	if err := g.session.Forget(ctx, g.sessionKey()); err != nil {
		return fmt.Errorf("session_guard_session_forget_failed: %w", err)
	}
	g.cookies.Clear(g.cookieName())

	g.reset()
	g.viaRemember = false
	return nil
}

func (g *SessionGuard) setRememberCookie(id, token string) error {
	payload, err := json.Marshal(rememberPayload{ID: id, Token: token})
	if err != nil {
		return fmt.Errorf("session_guard_remember_payload_failed: %w", err)
	}
	g.cookies.Set(g.cookieName(), string(payload), g.rememberAge)
	return nil
}

func (g *SessionGuard) emitAuthenticated(viaRemember bool) {
	g.emitter.Emit(EventSessionAuthenticate, SessionAuthenticateEvent{
		GuardName:   g.name,
		User:        g.user,
		Request:     g.request,
		ViaRemember: viaRemember,
	})
}
