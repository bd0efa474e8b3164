// Copyright (c) 2026 Sentra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// # Driver Names

const (
	DriverSession = "session"
	DriverOAT     = "oat"
	DriverBasic   = "basic"

	ProviderDatabase = "database"
	ProviderMemory   = "memory"

	TokenStorePostgres = "postgres"
	TokenStoreRedis    = "redis"
	TokenStoreMemory   = "memory"
)

// ProviderMapping selects and configures the user provider of one guard
// mapping.
type ProviderMapping struct {
	// Driver is "database", "memory", or a driver registered through
	// [Manager.ExtendProvider].
	Driver string
	// Database configures the database driver.
	Database DatabaseProviderConfig
}

// GuardMapping is the configuration of one named guard.
type GuardMapping struct {
	// Driver is "session", "oat", "basic", or a driver registered through
	// [Manager.Extend].
	Driver string
	// Provider selects the user provider backing this guard.
	Provider ProviderMapping
	// TokenStore selects the token backend for the oat driver:
	// "postgres", "redis" or "memory".
	TokenStore string
	// Session tunes the session driver.
	Session SessionGuardConfig
	// OAT tunes the oat driver.
	OAT OATGuardConfig
}

// Config is the full guard mapping table.
type Config struct {
	// Default names the mapping used when callers ask for no specific one.
	Default string
	// Guards maps mapping names to their configuration.
	Guards map[string]GuardMapping
}

// Dependencies carries the shared infrastructure guards are built from.
// All fields are safe for concurrent use; optional backends may be nil
// when no mapping references them.
type Dependencies struct {
	Pool    *pgxpool.Pool
	Redis   *redis.Client
	Hasher  Hasher
	Emitter Emitter

	// Sessions builds the per-request session store.
	Sessions func(w http.ResponseWriter, r *http.Request) SessionStore
	// Cookies builds the per-request cookie jar.
	Cookies func(w http.ResponseWriter, r *http.Request) CookieJar
}

// GuardContext is everything a guard factory needs to build one instance.
type GuardContext struct {
	// Name is the mapping name being resolved.
	Name string
	// Mapping is that mapping's configuration.
	Mapping GuardMapping
	// Provider is the already-resolved user provider.
	Provider UserProvider
	// Request and Writer are the request being served.
	Request *http.Request
	Writer  http.ResponseWriter
	// Session and Cookies are the per-request collaborators, shared by
	// every guard of the request.
	Session SessionStore
	Cookies CookieJar
	// Manager grants factories access to shared dependencies.
	Manager *Manager
}

// GuardFactory builds one request-scoped guard instance.
type GuardFactory func(ctx GuardContext) (Guard, error)

// ProviderFactory builds a user provider for a mapping. Providers may be
// shared across requests, so factories are free to return singletons.
type ProviderFactory func(m *Manager, mapping ProviderMapping) (UserProvider, error)

/*
Manager resolves named guard mappings into per-request guard instances.

# Extension

Unknown driver names route to factories registered through [Manager.Extend]
and [Manager.ExtendProvider] instead of failing outright, so applications
add their own guards and providers without touching the manager. The
built-in drivers are pre-registered through the same registries.

# Concurrency

The Manager is shared across requests and safe for concurrent use. The
[Auth] façades it hands out are request-scoped and are not.
*/
type Manager struct {
	config Config
	deps   Dependencies

	mu                sync.RWMutex
	guardFactories    map[string]GuardFactory
	providerFactories map[string]ProviderFactory

	// Shared singletons for the memory backends so state survives across
	// requests within one process.
	memoryOnce     sync.Once
	memoryProvider *MemoryUserProvider
	memoryTokens   *MemoryTokenProvider
}

// NewManager builds a manager with the built-in drivers registered.
func NewManager(config Config, deps Dependencies) (*Manager, error) {
	if config.Default == "" {
		return nil, fmt.Errorf("auth_manager_missing_default_guard")
	}
	if _, ok := config.Guards[config.Default]; !ok {
		return nil, fmt.Errorf("auth_manager_unknown_default_guard: %q", config.Default)
	}
	if deps.Hasher == nil {
		return nil, fmt.Errorf("auth_manager_missing_hasher")
	}
	if deps.Emitter == nil {
		deps.Emitter = &LogEmitter{}
	}

	m := &Manager{
		config:            config,
		deps:              deps,
		guardFactories:    make(map[string]GuardFactory),
		providerFactories: make(map[string]ProviderFactory),
	}

	m.registerBuiltins()
	return m, nil
}

// Extend registers (or replaces) a guard driver factory.
func (m *Manager) Extend(driver string, factory GuardFactory) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.guardFactories[driver] = factory
}

// ExtendProvider registers (or replaces) a user provider driver factory.
func (m *Manager) ExtendProvider(driver string, factory ProviderFactory) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.providerFactories[driver] = factory
}

// Dependencies exposes the shared infrastructure to extension factories.
func (m *Manager) Dependencies() Dependencies { return m.deps }

// DefaultGuardName returns the configured default mapping name.
func (m *Manager) DefaultGuardName() string { return m.config.Default }

// Memory returns the process-wide memory backends, creating them on first
// use. The same instances serve every request, so seeded users and issued
// tokens persist across requests.
func (m *Manager) Memory() (*MemoryUserProvider, *MemoryTokenProvider) {
	m.memoryOnce.Do(func() {
		m.memoryProvider = NewMemoryUserProvider(m.deps.Hasher)
		m.memoryTokens = NewMemoryTokenProvider()
	})
	return m.memoryProvider, m.memoryTokens
}

// ForRequest returns the per-request [Auth] façade.
func (m *Manager) ForRequest(w http.ResponseWriter, r *http.Request) *Auth {
	return &Auth{
		manager: m,
		writer:  w,
		request: r,
		guards:  make(map[string]Guard),
	}
}

// resolveProvider builds the user provider for a mapping.
func (m *Manager) resolveProvider(mapping ProviderMapping) (UserProvider, error) {
	m.mu.RLock()
	factory, ok := m.providerFactories[mapping.Driver]
	m.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("auth_manager_unknown_provider_driver: %q", mapping.Driver)
	}
	return factory(m, mapping)
}

// resolveTokens builds the token provider for an oat mapping.
func (m *Manager) resolveTokens(store string) (TokenProvider, error) {
	switch store {
	case TokenStorePostgres, "":
		if m.deps.Pool == nil {
			return nil, fmt.Errorf("auth_manager_missing_pgx_pool")
		}
		return NewPostgresTokenProvider(m.deps.Pool), nil
	case TokenStoreRedis:
		if m.deps.Redis == nil {
			return nil, fmt.Errorf("auth_manager_missing_redis_client")
		}
		return NewRedisTokenProvider(m.deps.Redis), nil
	case TokenStoreMemory:
		_, tokens := m.Memory()
		return tokens, nil
	default:
		return nil, fmt.Errorf("auth_manager_unknown_token_store: %q", store)
	}
}

// registerBuiltins wires the stock drivers through the same registries
// user extensions go through.
func (m *Manager) registerBuiltins() {
	m.ExtendProvider(ProviderDatabase, func(m *Manager, mapping ProviderMapping) (UserProvider, error) {
		if m.deps.Pool == nil {
			return nil, fmt.Errorf("auth_manager_missing_pgx_pool")
		}
		return NewDatabaseUserProvider(m.deps.Pool, m.deps.Hasher, mapping.Database), nil
	})

	m.ExtendProvider(ProviderMemory, func(m *Manager, _ ProviderMapping) (UserProvider, error) {
		provider, _ := m.Memory()
		return provider, nil
	})

	m.Extend(DriverSession, func(ctx GuardContext) (Guard, error) {
		if ctx.Session == nil || ctx.Cookies == nil {
			return nil, fmt.Errorf("auth_manager_missing_session_infrastructure")
		}
		return NewSessionGuard(
			ctx.Name, ctx.Provider, ctx.Session, ctx.Cookies,
			ctx.Manager.deps.Emitter, ctx.Request, ctx.Mapping.Session,
		), nil
	})

	m.Extend(DriverOAT, func(ctx GuardContext) (Guard, error) {
		tokens, err := ctx.Manager.resolveTokens(ctx.Mapping.TokenStore)
		if err != nil {
			return nil, err
		}
		return NewOATGuard(
			ctx.Name, ctx.Provider, tokens,
			ctx.Manager.deps.Emitter, ctx.Request, ctx.Mapping.OAT,
		), nil
	})

	m.Extend(DriverBasic, func(ctx GuardContext) (Guard, error) {
		return NewBasicAuthGuard(ctx.Name, ctx.Provider, ctx.Request), nil
	})
}

/*
Auth is the per-request façade over the manager.

It resolves and caches one guard instance per mapping name for the
lifetime of the request, so repeated Use calls observe the same guard
state (including the one-shot authentication latch). Like the guards it
hands out, a façade must not be shared across requests.
*/
type Auth struct {
	manager *Manager
	writer  http.ResponseWriter
	request *http.Request
	guards  map[string]Guard

	session SessionStore
	cookies CookieJar
}

// Use resolves the named guard mapping, caching the instance per request.
func (a *Auth) Use(name string) (Guard, error) {
	if guard, ok := a.guards[name]; ok {
		return guard, nil
	}

	mapping, ok := a.manager.config.Guards[name]
	if !ok {
		return nil, fmt.Errorf("auth_manager_unknown_guard: %q", name)
	}

	a.manager.mu.RLock()
	factory, ok := a.manager.guardFactories[mapping.Driver]
	a.manager.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("auth_manager_unknown_guard_driver: %q", mapping.Driver)
	}

	provider, err := a.manager.resolveProvider(mapping.Provider)
	if err != nil {
		return nil, err
	}

	guard, err := factory(GuardContext{
		Name:     name,
		Mapping:  mapping,
		Provider: provider,
		Request:  a.request,
		Writer:   a.writer,
		Session:  a.sessionStore(),
		Cookies:  a.cookieJar(),
		Manager:  a.manager,
	})
	if err != nil {
		return nil, err
	}

	a.guards[name] = guard
	return guard, nil
}

// Guard resolves the default mapping.
func (a *Auth) Guard() (Guard, error) {
	return a.Use(a.manager.config.Default)
}

// Session resolves a mapping and asserts it is a [*SessionGuard].
func (a *Auth) Session(name string) (*SessionGuard, error) {
	guard, err := a.Use(name)
	if err != nil {
		return nil, err
	}
	sessionGuard, ok := guard.(*SessionGuard)
	if !ok {
		return nil, fmt.Errorf("auth_manager_guard_not_session: %q", name)
	}
	return sessionGuard, nil
}

// OAT resolves a mapping and asserts it is an [*OATGuard].
func (a *Auth) OAT(name string) (*OATGuard, error) {
	guard, err := a.Use(name)
	if err != nil {
		return nil, err
	}
	oatGuard, ok := guard.(*OATGuard)
	if !ok {
		return nil, fmt.Errorf("auth_manager_guard_not_oat: %q", name)
	}
	return oatGuard, nil
}

// sessionStore lazily builds the request's session store, shared by every
// guard of the request.
func (a *Auth) sessionStore() SessionStore {
	if a.session == nil && a.manager.deps.Sessions != nil {
		a.session = a.manager.deps.Sessions(a.writer, a.request)
	}
	return a.session
}

// cookieJar lazily builds the request's cookie jar.
func (a *Auth) cookieJar() CookieJar {
	if a.cookies == nil && a.manager.deps.Cookies != nil {
		a.cookies = a.manager.deps.Cookies(a.writer, a.request)
	}
	return a.cookies
}
