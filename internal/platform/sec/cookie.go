// Copyright (c) 2026 Sentra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// CookieCodec signs and encrypts cookie values with keys derived from the
// application key.
//
// # Formats
//
//   - Signed:    base64url(value) + "." + base64url(HMAC-SHA256(name + ":" + value))
//   - Encrypted: base64url(nonce || AES-256-GCM(value, aad=name))
//
// The cookie name participates as associated data in both schemes, so a
// valid value copied under a different cookie name fails verification.
// One application-wide key signs everything; rotating APP_KEY invalidates
// every cookie issued under the previous key.
type CookieCodec struct {
	key []byte // 32-byte key derived from the app key
}

// ErrCookieInvalid is returned when a cookie value fails signature or
// decryption checks. Callers treat it the same as an absent cookie.
var ErrCookieInvalid = errors.New("sec: cookie verification failed")

// NewCookieCodec derives the codec key from the application key.
func NewCookieCodec(appKey string) (*CookieCodec, error) {
	if len(appKey) < 32 {
		return nil, fmt.Errorf("sec: app key must be at least 32 bytes, got %d", len(appKey))
	}

	derived := sha256.Sum256([]byte(appKey))
	return &CookieCodec{key: derived[:]}, nil
}

// # Signing

// Sign produces a tamper-evident encoding of value bound to the cookie name.
func (codec *CookieCodec) Sign(name, value string) string {
	mac := codec.mac(name, value)
	return base64.RawURLEncoding.EncodeToString([]byte(value)) + "." + base64.RawURLEncoding.EncodeToString(mac)
}

// Unsign verifies a signed cookie value and returns the original payload.
func (codec *CookieCodec) Unsign(name, signed string) (string, error) {
	parts := strings.Split(signed, ".")
	if len(parts) != 2 {
		return "", ErrCookieInvalid
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return "", ErrCookieInvalid
	}

	mac, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return "", ErrCookieInvalid
	}

	expected := codec.mac(name, string(payload))
	if subtle.ConstantTimeCompare(mac, expected) != 1 {
		return "", ErrCookieInvalid
	}

	return string(payload), nil
}

// # Encryption

// Encrypt seals value with AES-256-GCM, using the cookie name as associated
// data. A fresh 12-byte nonce is generated per call and prepended to the
// ciphertext.
func (codec *CookieCodec) Encrypt(name, value string) (string, error) {
	gcm, err := codec.gcm()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("sec: failed to generate nonce: %w", err)
	}

	sealed := gcm.Seal(nonce, nonce, []byte(value), []byte(name))
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by [CookieCodec.Encrypt]. Any tampering
// with the ciphertext, the nonce, or the cookie name fails authentication.
func (codec *CookieCodec) Decrypt(name, encoded string) (string, error) {
	sealed, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrCookieInvalid
	}

	gcm, err := codec.gcm()
	if err != nil {
		return "", err
	}

	if len(sealed) < gcm.NonceSize() {
		return "", ErrCookieInvalid
	}

	nonce, ciphertext := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, []byte(name))
	if err != nil {
		return "", ErrCookieInvalid
	}

	return string(plaintext), nil
}

// # Internals

func (codec *CookieCodec) mac(name, value string) []byte {
	h := hmac.New(sha256.New, codec.key)
	h.Write([]byte(name))
	h.Write([]byte(":"))
	h.Write([]byte(value))
	return h.Sum(nil)
}

func (codec *CookieCodec) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(codec.key)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to initialize cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to initialize GCM: %w", err)
	}

	return gcm, nil
}
