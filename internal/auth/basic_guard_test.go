// Copyright (c) 2026 Sentra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/sentra/internal/auth"
	"github.com/taibuivan/sentra/internal/platform/sec"
)

/*
TestBasicGuard_Authenticate verifies credential verification through the
Authorization Basic header.
*/
func TestBasicGuard_Authenticate(t *testing.T) {
	provider := auth.NewMemoryUserProvider(sec.BcryptHasher{})
	user := seedUser(t, provider)

	// 1. Valid credentials resolve the user
	request := newRequest()
	request.SetBasicAuth("virk@adonisjs.com", "secret")

	guard := auth.NewBasicAuthGuard("basic", provider, request)
	resolved, err := guard.Authenticate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, user.ID, resolved.ID)
	assert.True(t, guard.IsAuthenticated())

	// 2. A missing header is a generic basic-credentials failure
	bare := auth.NewBasicAuthGuard("basic", provider, newRequest())
	_, err = bare.Authenticate(context.Background())

	var authErr *auth.AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, auth.CodeInvalidBasicCredentials, authErr.Code)

	// 3. Unknown uid and bad password keep their distinguishable codes
	wrongUID := newRequest()
	wrongUID.SetBasicAuth("nope@adonisjs.com", "secret")
	_, err = auth.NewBasicAuthGuard("basic", provider, wrongUID).Authenticate(context.Background())
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, auth.CodeInvalidUID, authErr.Code)

	wrongPassword := newRequest()
	wrongPassword.SetBasicAuth("virk@adonisjs.com", "nope")
	_, err = auth.NewBasicAuthGuard("basic", provider, wrongPassword).Authenticate(context.Background())
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, auth.CodeInvalidPassword, authErr.Code)
}

/*
TestBasicGuard_Stateless verifies that nothing is cached across calls: a
password change takes effect on the very next verification, and a failed
re-verification drops the previously resolved identity.
*/
func TestBasicGuard_Stateless(t *testing.T) {
	provider := auth.NewMemoryUserProvider(sec.BcryptHasher{})
	user := seedUser(t, provider)

	request := newRequest()
	request.SetBasicAuth("virk@adonisjs.com", "secret")

	// 1. First verification succeeds
	guard := auth.NewBasicAuthGuard("basic", provider, request)
	_, err := guard.Authenticate(context.Background())
	require.NoError(t, err)
	require.True(t, guard.IsAuthenticated())

	// 2. Rotate the stored password out from under the guard
	rotated, err := bcrypt.GenerateFromPassword([]byte("changed"), bcrypt.MinCost)
	require.NoError(t, err)
	user.PasswordHash = string(rotated)
	provider.Add(user)

	// 3. The same guard instance re-verifies and now fails
	_, err = guard.Authenticate(context.Background())
	var authErr *auth.AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, auth.CodeInvalidPassword, authErr.Code)
	assert.False(t, guard.IsAuthenticated())
	assert.Nil(t, guard.User())

	// 4. A fresh guard on a request carrying the new password succeeds
	updated := newRequest()
	updated.SetBasicAuth("virk@adonisjs.com", "changed")
	assert.True(t, auth.NewBasicAuthGuard("basic", provider, updated).Check(context.Background()))
}
