// Copyright (c) 2026 Sentra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, random secrets,
// cookie signing/encryption, JWT signing) from the domain logic. It acts as
// an Infrastructure service injected into the guard layer via narrow
// interfaces.
package sec

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// GenerateSecureToken returns a URL-safe random string of exactly length
// characters, sourced from the OS CSPRNG.
//
// It is used for remember-me secrets and opaque access token secrets. The
// output alphabet is base64url, so the value is safe to transport in
// cookies and Authorization headers without further encoding.
func GenerateSecureToken(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("sec: token length must be positive, got %d", length)
	}

	// base64 expands 3 bytes into 4 characters; over-provision and slice.
	raw := make([]byte, (length*3)/4+3)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("sec: failed to read random bytes: %w", err)
	}

	encoded := base64.RawURLEncoding.EncodeToString(raw)
	return encoded[:length], nil
}

// HashToken returns the hex-encoded SHA-256 digest of a raw secret.
//
// Only this digest is ever persisted. A leaked database dump or Redis
// snapshot therefore never yields usable bearer secrets.
func HashToken(rawToken string) string {
	digest := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(digest[:])
}
