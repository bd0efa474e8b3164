// Copyright (c) 2026 Sentra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"net/http"
	"time"

	"github.com/taibuivan/sentra/internal/platform/sec"
)

// CookieJar reads and writes encrypted HTTP cookies for one request.
//
// Values are sealed with AES-256-GCM through [sec.CookieCodec], with the
// cookie name as associated data. Tampered or foreign cookies surface as
// absent, never as errors; the guard layer treats both the same.
type CookieJar struct {
	writer  http.ResponseWriter
	request *http.Request
	codec   *sec.CookieCodec

	// secure marks written cookies Secure. Enabled outside development.
	secure bool
}

// NewCookieJar builds the request's cookie jar.
func NewCookieJar(w http.ResponseWriter, r *http.Request, codec *sec.CookieCodec, secure bool) *CookieJar {
	return &CookieJar{writer: w, request: r, codec: codec, secure: secure}
}

// Get returns the decrypted value of the named cookie. ok is false when
// the cookie is absent or fails authentication.
func (j *CookieJar) Get(name string) (string, bool) {
	cookie, err := j.request.Cookie(name)
	if err != nil {
		return "", false
	}

	value, err := j.codec.Decrypt(name, cookie.Value)
	if err != nil {
		return "", false
	}

	return value, true
}

// Set writes an encrypted, httpOnly cookie with the given lifetime.
func (j *CookieJar) Set(name, value string, maxAge time.Duration) {
	sealed, err := j.codec.Encrypt(name, value)
	if err != nil {
		// Encryption only fails on a broken key, caught at startup.
		return
	}

	http.SetCookie(j.writer, &http.Cookie{
		Name:     name,
		Value:    sealed,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   j.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear expires the named cookie immediately.
func (j *CookieJar) Clear(name string) {
	http.SetCookie(j.writer, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   j.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
