// Copyright (c) 2026 Sentra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/sentra/internal/auth"
	"github.com/taibuivan/sentra/internal/platform/sec"
)

func managerConfig() auth.Config {
	return auth.Config{
		Default: "web",
		Guards: map[string]auth.GuardMapping{
			"web": {
				Driver:   auth.DriverSession,
				Provider: auth.ProviderMapping{Driver: auth.ProviderMemory},
			},
			"api": {
				Driver:     auth.DriverOAT,
				Provider:   auth.ProviderMapping{Driver: auth.ProviderMemory},
				TokenStore: auth.TokenStoreMemory,
			},
			"basic": {
				Driver:   auth.DriverBasic,
				Provider: auth.ProviderMapping{Driver: auth.ProviderMemory},
			},
		},
	}
}

func managerDeps() auth.Dependencies {
	return auth.Dependencies{
		Hasher:  sec.BcryptHasher{},
		Emitter: &spyEmitter{},
		Sessions: func(http.ResponseWriter, *http.Request) auth.SessionStore {
			return newFakeSession()
		},
		Cookies: func(http.ResponseWriter, *http.Request) auth.CookieJar {
			return newFakeCookieJar()
		},
	}
}

/*
TestManager_Validation verifies configuration errors surface at
construction time rather than on the first request.
*/
func TestManager_Validation(t *testing.T) {
	// 1. Missing default mapping name
	_, err := auth.NewManager(auth.Config{}, managerDeps())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth_manager_missing_default_guard")

	// 2. Default names a mapping that does not exist
	config := managerConfig()
	config.Default = "mobile"
	_, err = auth.NewManager(config, managerDeps())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth_manager_unknown_default_guard")

	// 3. Missing hasher
	deps := managerDeps()
	deps.Hasher = nil
	_, err = auth.NewManager(managerConfig(), deps)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth_manager_missing_hasher")
}

/*
TestManager_UseResolvesAndCaches verifies each mapping resolves to its
driver's guard type and repeated Use calls within one request return the
same instance.
*/
func TestManager_UseResolvesAndCaches(t *testing.T) {
	manager, err := auth.NewManager(managerConfig(), managerDeps())
	require.NoError(t, err)

	facade := manager.ForRequest(httptest.NewRecorder(), newRequest())

	// 1. Driver to guard type
	web, err := facade.Use("web")
	require.NoError(t, err)
	assert.IsType(t, &auth.SessionGuard{}, web)

	api, err := facade.Use("api")
	require.NoError(t, err)
	assert.IsType(t, &auth.OATGuard{}, api)

	basic, err := facade.Use("basic")
	require.NoError(t, err)
	assert.IsType(t, &auth.BasicAuthGuard{}, basic)

	// 2. Cached per request
	again, err := facade.Use("web")
	require.NoError(t, err)
	assert.Same(t, web, again)

	// 3. Guard() resolves the default mapping
	byDefault, err := facade.Guard()
	require.NoError(t, err)
	assert.Same(t, web, byDefault)
	assert.Equal(t, "web", manager.DefaultGuardName())

	// 4. Typed accessors assert the concrete driver
	sessionGuard, err := facade.Session("web")
	require.NoError(t, err)
	assert.Same(t, web, sessionGuard)

	_, err = facade.Session("api")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth_manager_guard_not_session")

	oatGuard, err := facade.OAT("api")
	require.NoError(t, err)
	assert.Same(t, api, oatGuard)

	_, err = facade.OAT("web")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth_manager_guard_not_oat")
}

/*
TestManager_UnknownNames verifies unknown mapping and driver names fail
with descriptive errors.
*/
func TestManager_UnknownNames(t *testing.T) {
	config := managerConfig()
	config.Guards["odd"] = auth.GuardMapping{
		Driver:   "carrier-pigeon",
		Provider: auth.ProviderMapping{Driver: auth.ProviderMemory},
	}
	config.Guards["lost"] = auth.GuardMapping{
		Driver:   auth.DriverBasic,
		Provider: auth.ProviderMapping{Driver: "ldap"},
	}

	manager, err := auth.NewManager(config, managerDeps())
	require.NoError(t, err)

	facade := manager.ForRequest(httptest.NewRecorder(), newRequest())

	_, err = facade.Use("mobile")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth_manager_unknown_guard")

	_, err = facade.Use("odd")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth_manager_unknown_guard_driver")

	_, err = facade.Use("lost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth_manager_unknown_provider_driver")
}

/*
TestManager_Extend verifies custom guard and provider drivers registered
through the extension registries resolve like the built-ins.
*/
func TestManager_Extend(t *testing.T) {
	config := managerConfig()
	config.Guards["service"] = auth.GuardMapping{
		Driver:   "signature",
		Provider: auth.ProviderMapping{Driver: "fixture"},
	}

	manager, err := auth.NewManager(config, managerDeps())
	require.NoError(t, err)

	var sawName string
	manager.ExtendProvider("fixture", func(m *auth.Manager, _ auth.ProviderMapping) (auth.UserProvider, error) {
		provider, _ := m.Memory()
		return provider, nil
	})
	manager.Extend("signature", func(ctx auth.GuardContext) (auth.Guard, error) {
		sawName = ctx.Name
		return auth.NewBasicAuthGuard(ctx.Name, ctx.Provider, ctx.Request), nil
	})

	facade := manager.ForRequest(httptest.NewRecorder(), newRequest())
	guard, err := facade.Use("service")
	require.NoError(t, err)

	assert.Equal(t, "service", sawName)
	assert.Equal(t, "service", guard.Name())
}

/*
TestManager_MemoryBackendsPersist verifies the memory provider and token
store are process-wide singletons, so state written during one request is
visible to the next.
*/
func TestManager_MemoryBackendsPersist(t *testing.T) {
	manager, err := auth.NewManager(managerConfig(), managerDeps())
	require.NoError(t, err)

	provider, tokens := manager.Memory()
	user := seedUser(t, provider)

	// 1. Issue a token on one request
	first := manager.ForRequest(httptest.NewRecorder(), newRequest())
	apiGuard, err := first.OAT("api")
	require.NoError(t, err)
	issued, err := apiGuard.Login(context.Background(), &user, auth.TokenOptions{})
	require.NoError(t, err)

	// 2. A brand-new request authenticates against the same backends
	request := newRequest()
	request.Header.Set("Authorization", issued.Bearer())

	second := manager.ForRequest(httptest.NewRecorder(), request)
	verifier, err := second.OAT("api")
	require.NoError(t, err)

	resolved, err := verifier.Authenticate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)

	// 3. Memory() keeps handing out the same instances
	providerAgain, tokensAgain := manager.Memory()
	assert.Same(t, provider, providerAgain)
	assert.Same(t, tokens, tokensAgain)
}
