// Copyright (c) 2026 Sentra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package middleware provides the HTTP middleware chain for the Sentra API server.
//
// # Architecture
//
// Middleware intercepts incoming HTTP requests to apply global policies
// before they reach the domain handlers. This includes cross-cutting concerns
// like Logging, AuthZ/AuthN, Rate Limiting, and CORS.
package middleware

import (
	"net/http"

	"github.com/taibuivan/sentra/internal/auth"
	"github.com/taibuivan/sentra/internal/platform/ctxutil"
	"github.com/taibuivan/sentra/internal/platform/respond"
)

// Authenticate attaches the per-request auth façade and silently probes the
// named guard.
//
// # Flow
//  1. Build the request's [*auth.Auth] façade and inject it into context.
//  2. Resolve the named guard mapping and run its Check (failures are
//     swallowed; the request proceeds as anonymous).
//  3. On success, inject the resolved [*auth.User] for downstream handlers
//     and the structured logger.
//
// # Parameters
//   - manager: The shared guard manager.
//   - guardName: The mapping to probe. Empty means the configured default.
//
// # Returns
//   - An [http.Handler] middleware.
func Authenticate(manager *auth.Manager, guardName string) func(http.Handler) http.Handler {
	if guardName == "" {
		guardName = manager.DefaultGuardName()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// ── 1. Façade Injection ───────────────────────────────────────────
			facade := manager.ForRequest(writer, request)
			ctx := ctxutil.WithAuth(request.Context(), facade)

			// ── 2. Silent Guard Probe ─────────────────────────────────────────
			guard, err := facade.Use(guardName)
			if err != nil {
				// Unknown mapping or driver is a wiring bug, not a client error.
				respond.Error(writer, request, err)
				return
			}

			// ── 3. Identity Injection ─────────────────────────────────────────
			if guard.Check(ctx) {
				ctx = ctxutil.WithUser(ctx, guard.User())
			}

			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests whose named guard does not authenticate.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate] so the façade is
// present. It re-uses the request's cached guard instance, so the probe in
// [Authenticate] and this enforcement observe the same one-shot latch.
//
// # Flow
//  1. Retrieve the [*auth.Auth] façade from context.
//  2. Resolve the named guard and require IsAuthenticated.
//  3. If anonymous, abort with the guard's authentication error.
func RequireAuth(manager *auth.Manager, guardName string) func(http.Handler) http.Handler {
	if guardName == "" {
		guardName = manager.DefaultGuardName()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			facade := ctxutil.GetAuth(request.Context())
			if facade == nil {
				facade = manager.ForRequest(writer, request)
			}

			guard, err := facade.Use(guardName)
			if err != nil {
				respond.Error(writer, request, err)
				return
			}

			if _, err := guard.Authenticate(request.Context()); err != nil {
				respond.Error(writer, request, err)
				return
			}
			if !guard.IsAuthenticated() {
				respond.Error(writer, request, auth.ErrInvalidSession(guardName, ""))
				return
			}

			ctx := ctxutil.WithUser(request.Context(), guard.User())
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}
