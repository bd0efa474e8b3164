// Copyright (c) 2026 Sentra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/sentra/internal/platform/request"
	"github.com/taibuivan/sentra/internal/platform/respond"
	"github.com/taibuivan/sentra/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the authentication HTTP endpoints.
//
// # Scope
//
// This handler is a thin transport layer over the guard manager: it decodes
// and validates payloads, drives the session and opaque token guards, and
// renders their outcomes. All authentication semantics live in the guards.
type Handler struct {
	manager *Manager

	// sessionGuard and oatGuard name the mappings driven by the cookie
	// endpoints and the token endpoints respectively.
	sessionGuard string
	oatGuard     string
}

// NewHandler constructs a new [Handler] over the shared manager.
func NewHandler(manager *Manager, sessionGuard, oatGuard string) *Handler {
	return &Handler{
		manager:      manager,
		sessionGuard: sessionGuard,
		oatGuard:     oatGuard,
	}
}

// Routes returns a [chi.Router] configured with the authentication routes.
//
// # Endpoints
//   - POST   /login  : Session login (uid + password, optional remember).
//   - POST   /logout : Session logout (?renew=true recycles the remember token).
//   - GET    /me     : Returns the session-authenticated user.
//   - POST   /tokens : Issues an opaque access token.
//   - DELETE /tokens : Revokes the presented opaque access token.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/login", handler.login)
	router.Post("/logout", handler.logout)
	router.Get("/me", handler.me)

	router.Post("/tokens", handler.issueToken)
	router.Delete("/tokens", handler.revokeToken)

	return router
}

// # Request Payloads

type loginRequest struct {
	UID      string `json:"uid"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

type issueTokenRequest struct {
	UID      string `json:"uid"`
	Password string `json:"password"`
	Name     string `json:"name"`
	// ExpiresIn is the token lifetime in seconds. Zero means no expiry.
	ExpiresIn int64 `json:"expires_in"`
}

type issuedTokenResponse struct {
	Type      string     `json:"type"`
	Token     string     `json:"token"`
	Name      string     `json:"name"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

/*
login establishes a cookie session from uid and password credentials.

POST /api/v1/auth/login

Description: Verifies credentials through the session guard, regenerates the
session id, and optionally issues a remember-me cookie.

Request:
  - Body: loginRequest (UID, Password, Remember)

Response:
  - 200: User: The authenticated user profile
  - 400: E_INVALID_AUTH_UID / E_INVALID_AUTH_PASSWORD: Credential failure
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required("uid", input.UID)
	validator.Required("password", input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	guard, err := handler.manager.ForRequest(writer, request).Session(handler.sessionGuard)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := guard.Attempt(request.Context(), input.UID, input.Password, input.Remember)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
logout tears down the cookie session.

POST /api/v1/auth/logout?renew=true

Description: Clears the guard's session key and remember-me cookie. With
renew=true the stored remember-me secret is rotated first, invalidating
every previously issued remember cookie.

Response:
  - 204: Session cleared
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	guard, err := handler.manager.ForRequest(writer, request).Session(handler.sessionGuard)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	recycle := request.URL.Query().Get("renew") == "true"
	if err := guard.Logout(request.Context(), recycle); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
me returns the session-authenticated user.

GET /api/v1/auth/me

Response:
  - 200: User: The authenticated user profile
  - 401: E_INVALID_AUTH_SESSION: No usable session state
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	guard, err := handler.manager.ForRequest(writer, request).Session(handler.sessionGuard)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := guard.Authenticate(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
issueToken exchanges uid and password credentials for an opaque access token.

POST /api/v1/auth/tokens

Description: Verifies credentials through the opaque token guard and issues
a bearer credential. The raw secret appears only in this response.

Request:
  - Body: issueTokenRequest (UID, Password, Name, ExpiresIn)

Response:
  - 201: issuedTokenResponse: Bearer credential and metadata
  - 400: E_INVALID_AUTH_UID / E_INVALID_AUTH_PASSWORD: Credential failure
*/
func (handler *Handler) issueToken(writer http.ResponseWriter, request *http.Request) {
	var input issueTokenRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required("uid", input.UID)
	validator.Required("password", input.Password)
	validator.Custom("expires_in", input.ExpiresIn < 0, "Must not be negative")

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	guard, err := handler.manager.ForRequest(writer, request).OAT(handler.oatGuard)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	issued, err := guard.Attempt(request.Context(), input.UID, input.Password, TokenOptions{
		Name:      input.Name,
		ExpiresIn: time.Duration(input.ExpiresIn) * time.Second,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, issuedTokenResponse{
		Type:      "bearer",
		Token:     issued.Value,
		Name:      issued.Token.Name,
		ExpiresAt: issued.Token.ExpiresAt,
	})
}

/*
revokeToken destroys the presented opaque access token server-side.

DELETE /api/v1/auth/tokens

Description: Authenticates the bearer credential, then hard-deletes its
token record. Revocation takes effect immediately.

Response:
  - 204: Token destroyed
  - 401: E_INVALID_API_TOKEN: Missing, malformed or unverifiable credential
*/
func (handler *Handler) revokeToken(writer http.ResponseWriter, request *http.Request) {
	guard, err := handler.manager.ForRequest(writer, request).OAT(handler.oatGuard)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if _, err := guard.Authenticate(request.Context()); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := guard.Logout(request.Context()); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
