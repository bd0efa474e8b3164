// Copyright (c) 2026 Sentra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "time"

// # Secret Sizing

const (
	// RememberMeTokenLength is the character length of remember-me secrets.
	RememberMeTokenLength = 20

	// OpaqueTokenSecretLength is the character length of opaque access token secrets.
	OpaqueTokenSecretLength = 60
)

// # Defaults

const (
	// DefaultRememberMeAge is the lifetime of the remember-me cookie.
	DefaultRememberMeAge = 5 * 365 * 24 * time.Hour

	// DefaultOpaqueTokenName is the display label assigned to opaque tokens
	// issued without an explicit name.
	DefaultOpaqueTokenName = "Opaque Access Token"

	// DefaultOpaqueTokenType namespaces opaque access tokens in storage.
	DefaultOpaqueTokenType = "opaque_token"
)

// # Storage Key Namespacing
//
// Session keys and cookie names carry the guard mapping name so that two
// session guards sharing one request never read each other's state.

const (
	// SessionKeyPrefix prefixes the session key holding the user id.
	SessionKeyPrefix = "auth_"

	// RememberCookiePrefix prefixes the long-lived remember-me cookie name.
	RememberCookiePrefix = "remember_"
)

// # Event Names

const (
	EventSessionLogin        = "auth:session:login"
	EventSessionAuthenticate = "auth:session:authenticate"
	EventAPILogin            = "auth:api:login"
	EventAPIAuthenticate     = "auth:api:authenticate"
)
