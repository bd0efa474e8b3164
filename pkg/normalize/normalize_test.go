// Copyright (c) 2026 Sentra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package normalize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/sentra/pkg/normalize"
)

/*
TestUID verifies canonicalization of identifier values.
*/
func TestUID(t *testing.T) {
	// 1. Case folding and trimming
	assert.Equal(t, "virk@example.com", normalize.UID("  Virk@Example.COM "))

	// 2. Already-canonical input is untouched
	assert.Equal(t, "romain", normalize.UID("romain"))

	// 3. Compatibility forms collapse (fullwidth latin -> ascii)
	assert.Equal(t, "abc", normalize.UID("ａｂｃ"))
}
