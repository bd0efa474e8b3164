// Copyright (c) 2026 Sentra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"log/slog"
	"net/http"
)

// Emitter is the fire-and-forget event sink guards publish to.
//
// Implementations must not block the authentication flow; slow consumers
// should buffer internally.
type Emitter interface {
	Emit(event string, payload any)
}

// # Payloads

// SessionLoginEvent is published after a session guard login.
type SessionLoginEvent struct {
	GuardName string
	User      *User
	Request   *http.Request
	// RememberToken is the raw remember-me secret when remember was
	// requested, empty otherwise.
	RememberToken string
}

// SessionAuthenticateEvent is published after a successful session guard
// authenticate call.
type SessionAuthenticateEvent struct {
	GuardName string
	User      *User
	Request   *http.Request
	// ViaRemember is true when identity came from the remember-me cookie
	// rather than the primary session key.
	ViaRemember bool
}

// APILoginEvent is published after an opaque token guard issues a token.
type APILoginEvent struct {
	GuardName string
	User      *User
	Token     *Token
}

// APIAuthenticateEvent is published after a bearer token verifies.
type APIAuthenticateEvent struct {
	GuardName string
	User      *User
	Token     *Token
}

// # Default Emitter

// LogEmitter publishes events as structured log records. It is the default
// emitter when the application wires no other sink.
type LogEmitter struct {
	Logger *slog.Logger
}

// Emit logs the event name with a payload-specific attribute set.
func (e *LogEmitter) Emit(event string, payload any) {
	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}

	switch p := payload.(type) {
	case SessionLoginEvent:
		logger.Info("auth_event",
			slog.String("event", event),
			slog.String("guard", p.GuardName),
			slog.String("user_id", p.User.ID),
			slog.Bool("remembered", p.RememberToken != ""),
		)
	case SessionAuthenticateEvent:
		logger.Info("auth_event",
			slog.String("event", event),
			slog.String("guard", p.GuardName),
			slog.String("user_id", p.User.ID),
			slog.Bool("via_remember", p.ViaRemember),
		)
	case APILoginEvent:
		logger.Info("auth_event",
			slog.String("event", event),
			slog.String("guard", p.GuardName),
			slog.String("user_id", p.User.ID),
			slog.String("token_id", p.Token.ID),
		)
	case APIAuthenticateEvent:
		logger.Info("auth_event",
			slog.String("event", event),
			slog.String("guard", p.GuardName),
			slog.String("user_id", p.User.ID),
			slog.String("token_id", p.Token.ID),
		)
	default:
		logger.Info("auth_event", slog.String("event", event))
	}
}
