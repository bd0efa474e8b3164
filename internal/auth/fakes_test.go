// Copyright (c) 2026 Sentra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/taibuivan/sentra/internal/auth"
	"github.com/taibuivan/sentra/internal/platform/sec"
	"github.com/taibuivan/sentra/internal/platform/session"
	"github.com/taibuivan/sentra/pkg/uuidv7"
)

// newFakeSession returns an in-memory SessionStore shared between guard
// instances to simulate consecutive requests of one browser session.
func newFakeSession() *session.MemoryStore {
	return session.NewMemoryStore()
}

// fakeCookieJar keeps cookie values in a map. Values pass through verbatim,
// matching the production jar's promise that Get returns exactly what Set
// stored (or nothing).
type fakeCookieJar struct {
	values map[string]string
	maxAge map[string]time.Duration
}

func newFakeCookieJar() *fakeCookieJar {
	return &fakeCookieJar{
		values: make(map[string]string),
		maxAge: make(map[string]time.Duration),
	}
}

func (j *fakeCookieJar) Get(name string) (string, bool) {
	value, ok := j.values[name]
	return value, ok
}

func (j *fakeCookieJar) Set(name, value string, maxAge time.Duration) {
	j.values[name] = value
	j.maxAge[name] = maxAge
}

func (j *fakeCookieJar) Clear(name string) {
	delete(j.values, name)
	delete(j.maxAge, name)
}

// spyEmitter records every emitted event for assertions.
type spyEmitter struct {
	mu     sync.Mutex
	events []string
}

func (e *spyEmitter) Emit(event string, payload any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
}

func (e *spyEmitter) names() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.events...)
}

// # Seed Helpers

// seedUser inserts virk with the password "secret" and returns the record.
func seedUser(t *testing.T, provider *auth.MemoryUserProvider) auth.User {
	t.Helper()

	hash, err := sec.HashPassword("secret")
	require.NoError(t, err)

	user := auth.User{
		ID:           uuidv7.Must(),
		Username:     "virk",
		Email:        "virk@adonisjs.com",
		PasswordHash: hash,
		DisplayName:  "Virk",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	provider.Add(user)
	return user
}

// rememberCookieValue returns the raw remember cookie payload for a user,
// built the same way the guard builds it.
func rememberCookieValue(t *testing.T, id, token string) string {
	t.Helper()

	payload, err := json.Marshal(map[string]string{"id": id, "token": token})
	require.NoError(t, err)
	return string(payload)
}

// newRequest builds a bare GET request for guard construction.
func newRequest() *http.Request {
	return httptest.NewRequest(http.MethodGet, "/", nil)
}
