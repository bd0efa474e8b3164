// Copyright (c) 2026 Sentra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"

	"github.com/taibuivan/sentra/internal/platform/apperr"
)

// # Machine Codes

const (
	// CodeInvalidUID means the uid matched none of the configured identifier columns.
	CodeInvalidUID = "E_INVALID_AUTH_UID"

	// CodeInvalidPassword means the uid matched but the password hash did not.
	CodeInvalidPassword = "E_INVALID_AUTH_PASSWORD"

	// CodeInvalidSession covers every session guard authentication failure.
	CodeInvalidSession = "E_INVALID_AUTH_SESSION"

	// CodeInvalidAPIToken covers every token guard authentication failure.
	//
	// Missing header, malformed header, hash mismatch, expiry and orphaned
	// tokens all map here so a bearer-token attacker learns nothing about
	// which check failed.
	CodeInvalidAPIToken = "E_INVALID_API_TOKEN"

	// CodeInvalidBasicCredentials covers basic auth credential failures.
	CodeInvalidBasicCredentials = "E_INVALID_BASIC_CREDENTIALS"
)

// AuthenticationError is the error type raised by guards.
//
// It embeds an [apperr.AppError] so the HTTP edge can render it directly,
// and carries the guard mapping name plus an optional redirect target for
// browser-facing flows.
type AuthenticationError struct {
	*apperr.AppError

	// GuardName identifies which guard mapping raised the error.
	GuardName string

	// RedirectTo is where a browser client should be sent on failure.
	// Empty for API guards.
	RedirectTo string
}

// Unwrap exposes the embedded AppError to [errors.As] traversal.
func (e *AuthenticationError) Unwrap() error { return e.AppError }

// # Constructors
//
// uid and password failures stay distinguishable (field-specific client
// messages). Session and token failures each collapse to one generic error.

// ErrInvalidUID reports that no user matched the supplied uid.
func ErrInvalidUID(guardName string) *AuthenticationError {
	return &AuthenticationError{
		AppError:  apperr.New(CodeInvalidUID, "User not found", http.StatusBadRequest),
		GuardName: guardName,
	}
}

// ErrInvalidPassword reports a password hash mismatch for a known uid.
func ErrInvalidPassword(guardName string) *AuthenticationError {
	return &AuthenticationError{
		AppError:  apperr.New(CodeInvalidPassword, "Password mis-match", http.StatusBadRequest),
		GuardName: guardName,
	}
}

// ErrInvalidSession reports that the request carries no usable session
// state: missing session value and missing or unverifiable remember cookie.
func ErrInvalidSession(guardName, redirectTo string) *AuthenticationError {
	return &AuthenticationError{
		AppError:   apperr.New(CodeInvalidSession, "Invalid session", http.StatusUnauthorized),
		GuardName:  guardName,
		RedirectTo: redirectTo,
	}
}

// ErrInvalidAPIToken reports a generic opaque token failure.
func ErrInvalidAPIToken(guardName string) *AuthenticationError {
	return &AuthenticationError{
		AppError:  apperr.New(CodeInvalidAPIToken, "Invalid API token", http.StatusUnauthorized),
		GuardName: guardName,
	}
}

// ErrInvalidBasicCredentials reports a missing or unverifiable Basic header.
func ErrInvalidBasicCredentials(guardName string) *AuthenticationError {
	return &AuthenticationError{
		AppError:  apperr.New(CodeInvalidBasicCredentials, "Invalid basic auth credentials", http.StatusUnauthorized),
		GuardName: guardName,
	}
}
