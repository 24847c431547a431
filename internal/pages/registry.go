// Package pages holds the registry of dashboard pages.
//
// Every leaf route is bound to a page by key. Pages are loaded lazily: the
// first preload of a key runs its Loader once, later preloads return the
// cached page. Concurrent preloads of the same key share one load.
package pages

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/a-h/templ"
	"golang.org/x/sync/singleflight"
)

// DefaultPreloadTimeout bounds a single page load when no timeout is configured.
const DefaultPreloadTimeout = 10 * time.Second

var (
	// ErrPageNotFound is returned when no loader is registered for a key.
	ErrPageNotFound = errors.New("page not found")

	// ErrPreloadTimeout is returned when a page does not finish loading in time.
	ErrPreloadTimeout = errors.New("page preload timed out")
)

// Recent is a recently visited page, shown on pages that list history.
type Recent struct {
	Key       string
	Label     string
	Href      string
	VisitedAt time.Time
}

// RenderContext carries the per-request data a page renders with.
type RenderContext struct {
	Key    string
	Label  string
	Lookup func(name string) string
	Recent []Recent
}

// T translates name through the context lookup, falling back to name.
func (rc RenderContext) T(name string) string {
	if rc.Lookup == nil {
		return name
	}
	return rc.Lookup(name)
}

// textOr translates name, using def when no table has it.
func (rc RenderContext) textOr(name, def string) string {
	if s := rc.T(name); s != name {
		return s
	}
	return def
}

// Page is a loaded page.
type Page interface {
	Render(rc RenderContext) templ.Component
}

// PageFunc adapts a function to the Page interface.
type PageFunc func(rc RenderContext) templ.Component

// Render calls f(rc).
func (f PageFunc) Render(rc RenderContext) templ.Component { return f(rc) }

// Loader loads the page bound to a key.
type Loader func(ctx context.Context) (Page, error)

// PreloadObserver is notified after every preload attempt.
type PreloadObserver func(key string, elapsed time.Duration, err error)

// RegistryConfig configures a Registry.
type RegistryConfig struct {
	Timeout  time.Duration
	Observer PreloadObserver
	Logger   *slog.Logger
}

// Registry maps page keys to loaders and caches loaded pages.
type Registry struct {
	mu      sync.RWMutex
	loaders map[string]Loader
	loaded  map[string]Page
	// gens counts registrations per key; a load only caches its result
	// when no Register happened while it ran.
	gens map[string]uint64

	group    singleflight.Group
	timeout  time.Duration
	observer PreloadObserver
	logger   *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(cfg RegistryConfig) *Registry {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultPreloadTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{
		loaders:  make(map[string]Loader),
		loaded:   make(map[string]Page),
		gens:     make(map[string]uint64),
		timeout:  timeout,
		observer: cfg.Observer,
		logger:   logger,
	}
}

// Register binds a loader to key, replacing any previous loader and
// dropping a cached page for that key.
func (r *Registry) Register(key string, loader Loader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaders[key] = loader
	delete(r.loaded, key)
	r.gens[key]++
	// later preloads start a fresh load instead of joining one that runs
	// the replaced loader
	r.group.Forget(key)
}

// Has reports whether a loader is registered for key.
func (r *Registry) Has(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.loaders[key]
	return ok
}

// Keys returns the registered keys in sorted order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.loaders))
	for k := range r.loaders {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Resolve returns a handle for key. The page is not loaded.
func (r *Registry) Resolve(key string) (*Handle, error) {
	if !r.Has(key) {
		return nil, fmt.Errorf("%w: %s", ErrPageNotFound, key)
	}
	return &Handle{key: key, registry: r}, nil
}

// Handle is a lazily loaded reference to a registered page.
type Handle struct {
	key      string
	registry *Registry
}

// Key returns the page key.
func (h *Handle) Key() string { return h.key }

// Loaded reports whether the page is already cached.
func (h *Handle) Loaded() bool {
	h.registry.mu.RLock()
	defer h.registry.mu.RUnlock()
	_, ok := h.registry.loaded[h.key]
	return ok
}

// Preload loads the page if needed and returns it. The wait ends when the
// page is loaded, the registry timeout elapses, or ctx is done, whichever
// comes first. A failed load is not cached.
func (h *Handle) Preload(ctx context.Context) (Page, error) {
	return h.registry.preload(ctx, h.key)
}

func (r *Registry) preload(ctx context.Context, key string) (Page, error) {
	r.mu.RLock()
	page, ok := r.loaded[key]
	_, registered := r.loaders[key]
	r.mu.RUnlock()
	if ok {
		return page, nil
	}
	if !registered {
		return nil, fmt.Errorf("%w: %s", ErrPageNotFound, key)
	}

	start := time.Now()
	ch := r.group.DoChan(key, func() (any, error) {
		r.mu.RLock()
		cached, ok := r.loaded[key]
		loader, registered := r.loaders[key]
		gen := r.gens[key]
		r.mu.RUnlock()
		if ok {
			return cached, nil
		}
		if !registered {
			return nil, fmt.Errorf("%w: %s", ErrPageNotFound, key)
		}

		// The load outlives any single waiter so that a cancelled request
		// does not fail the others sharing it.
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()

		p, err := loader(loadCtx)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		if r.gens[key] == gen {
			r.loaded[key] = p
		}
		r.mu.Unlock()
		return p, nil
	})

	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	var err error
	select {
	case res := <-ch:
		if res.Err == nil {
			page = res.Val.(Page)
		} else {
			err = fmt.Errorf("load page %s: %w", key, res.Err)
		}
	case <-timer.C:
		err = fmt.Errorf("%w: %s after %s", ErrPreloadTimeout, key, r.timeout)
	case <-ctx.Done():
		err = fmt.Errorf("preload %s: %w", key, ctx.Err())
	}

	elapsed := time.Since(start)
	if r.observer != nil {
		r.observer(key, elapsed, err)
	}
	if err != nil {
		r.logger.Warn("page preload failed", "key", key, "elapsed", elapsed, "error", err)
		return nil, err
	}
	r.logger.Debug("page preloaded", "key", key, "elapsed", elapsed)
	return page, nil
}
