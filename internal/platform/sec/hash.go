// Copyright (c) 2026 Sentra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plain-text password using the bcrypt algorithm.
func HashPassword(plainTextPassword string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckPasswordHash compares a plain-text password with its hashed version.
func CheckPasswordHash(plainTextPassword, existingHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextPassword))
	return err == nil
}

// BcryptHasher adapts the bcrypt functions to the hasher contract expected
// by user providers (Verify(storedHash, plain) -> bool).
//
// It is stateless and safe to share across requests.
type BcryptHasher struct{}

// Verify reports whether plain matches the stored bcrypt hash.
// bcrypt performs a constant-time comparison internally.
func (BcryptHasher) Verify(storedHash, plain string) bool {
	return CheckPasswordHash(plain, storedHash)
}
