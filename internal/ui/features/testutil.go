// Package features provides shared test utilities for UI feature tests.
package features

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapdash/internal/catalog"
	"github.com/leapstack-labs/leapdash/internal/metrics"
	"github.com/leapstack-labs/leapdash/internal/pages"
	"github.com/leapstack-labs/leapdash/internal/state"
	"github.com/leapstack-labs/leapdash/internal/testutil"
	"github.com/leapstack-labs/leapdash/internal/ui/notifier"
)

// TestFixture holds all dependencies needed for UI handler tests.
type TestFixture struct {
	Registry     *pages.Registry
	Catalog      *catalog.Catalog
	Visits       *state.SQLiteStore
	Notifier     *notifier.Notifier
	Metrics      *metrics.Collector
	SessionStore *sessions.CookieStore

	// RoutesFile is set when the fixture was built from a custom route tree.
	RoutesFile string
}

// FixtureOption customizes SetupTestFixture.
type FixtureOption func(*fixtureOptions)

type fixtureOptions struct {
	routesYAML string
	timeout    time.Duration
	loaders    map[string]pages.Loader
}

// WithRoutes builds the catalog from a route tree written as YAML.
func WithRoutes(yaml string) FixtureOption {
	return func(o *fixtureOptions) { o.routesYAML = yaml }
}

// WithPreloadTimeout sets the page registry timeout.
func WithPreloadTimeout(d time.Duration) FixtureOption {
	return func(o *fixtureOptions) { o.timeout = d }
}

// WithLoader registers an extra page loader after the built-in fixtures.
func WithLoader(key string, loader pages.Loader) FixtureOption {
	return func(o *fixtureOptions) {
		if o.loaders == nil {
			o.loaders = map[string]pages.Loader{}
		}
		o.loaders[key] = loader
	}
}

// SetupTestFixture creates a catalog over the built-in pages, an in-memory
// visit store, a notifier and a cookie session store.
func SetupTestFixture(t *testing.T, opts ...FixtureOption) *TestFixture {
	t.Helper()

	var o fixtureOptions
	for _, opt := range opts {
		opt(&o)
	}

	logger := testutil.NewTestLogger(t)
	m := metrics.New()

	reg := pages.NewRegistry(pages.RegistryConfig{
		Timeout:  o.timeout,
		Observer: m.ObservePreload,
		Logger:   logger,
	})
	_, err := pages.RegisterBuiltins(reg)
	require.NoError(t, err)
	for key, loader := range o.loaders {
		reg.Register(key, loader)
	}

	fx := &TestFixture{
		Registry:     reg,
		Notifier:     notifier.New(),
		Metrics:      m,
		SessionStore: NewTestSessionStore(),
	}

	src := catalog.Source{}
	if o.routesYAML != "" {
		fx.RoutesFile = filepath.Join(t.TempDir(), "routes.yaml")
		require.NoError(t, os.WriteFile(fx.RoutesFile, []byte(o.routesYAML), 0o600))
		src.RoutesFile = fx.RoutesFile
	}
	fx.Catalog, err = catalog.New(src, reg, logger)
	require.NoError(t, err)

	fx.Visits = SetupTestStore(t)
	return fx
}

// SetupTestStore creates a migrated in-memory visit store.
func SetupTestStore(t *testing.T) *state.SQLiteStore {
	t.Helper()

	store := state.NewSQLiteStore(testutil.NewTestLogger(t))
	require.NoError(t, store.Open(state.MemoryPath))
	require.NoError(t, store.Migrate())

	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// RequestWithTimeout wraps a request with a context timeout. The context is
// cancelled when the test ends.
func RequestWithTimeout(t *testing.T, r *http.Request, timeout time.Duration) *http.Request {
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	t.Cleanup(cancel)
	return r.WithContext(ctx)
}

// WithCookies copies the cookies a previous response set onto r.
func WithCookies(r *http.Request, from http.Header) *http.Request {
	resp := http.Response{Header: from}
	for _, c := range resp.Cookies() {
		r.AddCookie(c)
	}
	return r
}

// NewTestSessionStore creates a session store for testing.
func NewTestSessionStore() *sessions.CookieStore {
	return sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!"))
}
