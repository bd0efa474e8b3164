// Copyright (c) 2026 Sentra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "context"

// Guard is the contract every authenticator implements.
//
// One guard instance serves exactly one request. Instances carry private
// mutable state and no internal locking; they must never be shared across
// requests or goroutines.
type Guard interface {
	// Name returns the guard mapping name ("web", "api", ...).
	Name() string

	// User returns the resolved identity, nil while anonymous.
	User() *User

	// IsAuthenticated reports whether this instance verified identity.
	IsAuthenticated() bool

	// IsLoggedIn reports whether a user is present.
	IsLoggedIn() bool

	// IsGuest is the inverse of IsLoggedIn.
	IsGuest() bool

	// IsLoggedOut reports whether Logout ran on this instance.
	IsLoggedOut() bool

	// AuthenticationAttempted reports whether Authenticate ran this
	// request, independent of outcome.
	AuthenticationAttempted() bool

	// Authenticate verifies the request credentials and resolves the user.
	Authenticate(ctx context.Context) (*User, error)

	// Check calls Authenticate, swallows any failure, and returns the
	// boolean outcome.
	Check(ctx context.Context) bool
}

// guardState is the per-request mutable state embedded by every stateful
// guard.
type guardState struct {
	name                    string
	user                    *User
	isAuthenticated         bool
	isLoggedOut             bool
	authenticationAttempted bool
}

func (s *guardState) Name() string                  { return s.name }
func (s *guardState) User() *User                   { return s.user }
func (s *guardState) IsAuthenticated() bool         { return s.isAuthenticated }
func (s *guardState) IsLoggedIn() bool              { return s.user != nil }
func (s *guardState) IsGuest() bool                 { return s.user == nil }
func (s *guardState) IsLoggedOut() bool             { return s.isLoggedOut }
func (s *guardState) AuthenticationAttempted() bool { return s.authenticationAttempted }

// markAuthenticated records a verified identity.
func (s *guardState) markAuthenticated(user *User) {
	s.user = user
	s.isAuthenticated = true
	s.isLoggedOut = false
}

// reset returns the guard to the logged-out state.
func (s *guardState) reset() {
	s.user = nil
	s.isAuthenticated = false
	s.isLoggedOut = true
}
