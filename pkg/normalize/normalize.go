// Copyright (c) 2026 Sentra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package normalize canonicalizes user-supplied identifier values before
// they are compared against stored columns.
//
// # Why normalize?
//
// A uid (email or username) typed as "Virk@Example.COM" and the stored
// "virk@example.com" must resolve to the same account. Unicode NFKC folding
// additionally collapses visually-equivalent compatibility forms so that
// lookups behave consistently across clients and keyboards.
package normalize

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// UID canonicalizes a unique-identifier value (email or username) for lookup.
//
// The value is NFKC-normalized, lowercased, and trimmed of surrounding
// whitespace. The result is what providers send to the database, which is
// why uid columns are expected to store canonicalized values as well.
func UID(value string) string {
	folded := norm.NFKC.String(value)
	return strings.ToLower(strings.TrimSpace(folded))
}
