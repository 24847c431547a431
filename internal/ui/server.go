// Package ui serves the dashboard shell over HTTP.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/leapdash/internal/catalog"
	"github.com/leapstack-labs/leapdash/internal/metrics"
	"github.com/leapstack-labs/leapdash/internal/pages"
	"github.com/leapstack-labs/leapdash/internal/state"
	"github.com/leapstack-labs/leapdash/internal/ui/features/shell"
	"github.com/leapstack-labs/leapdash/internal/ui/layout"
	"github.com/leapstack-labs/leapdash/internal/ui/notifier"
	"github.com/leapstack-labs/leapdash/internal/ui/router"
)

const (
	watchDebounce = 100 * time.Millisecond
	pruneInterval = time.Hour
)

// Server is the main UI server.
type Server struct {
	catalog      *catalog.Catalog
	registry     *pages.Registry
	pagesDir     string
	visits       state.Store
	retention    time.Duration
	metrics      *metrics.Collector
	settings     layout.Settings
	sessionStore *sessions.CookieStore
	port         int
	watch        bool
	isDev        bool
	logger       *slog.Logger
	notifier     *notifier.Notifier
}

// Config holds configuration for the UI server.
type Config struct {
	Catalog  *catalog.Catalog
	Registry *pages.Registry
	// PagesDir holds extra page fixtures; empty when only built-ins are used.
	PagesDir string
	// Visits is optional; nil disables visit history.
	Visits           state.Store
	HistoryRetention time.Duration
	Metrics          *metrics.Collector
	Settings         layout.Settings
	Port             int
	Watch            bool
	IsDev            bool
	SessionSecret    string
	Logger           *slog.Logger
}

// NewServer creates a new UI server instance.
func NewServer(cfg Config) *Server {
	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.MaxAge(86400 * 30) // 30 days
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	m := cfg.Metrics
	if m == nil {
		m = metrics.New()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Server{
		catalog:      cfg.Catalog,
		registry:     cfg.Registry,
		pagesDir:     cfg.PagesDir,
		visits:       cfg.Visits,
		retention:    cfg.HistoryRetention,
		metrics:      m,
		settings:     cfg.Settings,
		sessionStore: sessionStore,
		port:         cfg.Port,
		watch:        cfg.Watch,
		isDev:        cfg.IsDev,
		logger:       logger,
		notifier:     notifier.New(),
	}
}

// Handler builds the HTTP handler with all middleware and routes.
func (s *Server) Handler() (http.Handler, error) {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	deps := router.Deps{
		Shell: shell.Config{
			Catalog:  s.catalog,
			Sessions: s.sessionStore,
			Notifier: s.notifier,
			Metrics:  s.metrics,
			Visits:   s.visits,
			Settings: s.settings,
			Logger:   s.logger,
			IsDev:    s.isDev,
		},
		Catalog: s.catalog,
		Metrics: s.metrics,
		Logger:  s.logger,
		IsDev:   s.isDev,
	}
	if err := router.SetupRoutes(r, deps); err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}
	return r, nil
}

// Serve starts the UI server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting UI server", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	eg, egctx := errgroup.WithContext(ctx)

	handler, err := s.Handler()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.watch {
		eg.Go(func() error {
			return s.watchFiles(egctx)
		})
	}

	if s.visits != nil && s.retention > 0 {
		eg.Go(func() error {
			s.pruneHistory(egctx)
			return nil
		})
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down UI server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// Notifier returns the server's notifier for SSE updates.
func (s *Server) Notifier() *notifier.Notifier {
	return s.notifier
}

// Reload rebuilds pages and the catalog, then tells open shells to refresh.
// A failed reload keeps serving the previous catalog.
func (s *Server) Reload(kind notifier.Kind) error {
	if kind == notifier.PagesChanged && s.pagesDir != "" {
		if _, err := pages.RegisterFS(s.registry, os.DirFS(s.pagesDir)); err != nil {
			s.logger.Error("reload pages failed", "dir", s.pagesDir, "error", err)
			return err
		}
	}

	err := s.catalog.Reload()
	s.metrics.CatalogReload(err)
	if err != nil {
		s.logger.Error("reload catalog failed, keeping previous routes", "error", err)
		return err
	}

	s.notifier.Broadcast(kind)
	return nil
}

// pruneHistory drops old visits now and then every pruneInterval.
func (s *Server) pruneHistory(ctx context.Context) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()
	for {
		if _, err := s.visits.Prune(ctx, time.Now().Add(-s.retention)); err != nil && ctx.Err() == nil {
			s.logger.Warn("prune visit history", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// watchTarget classifies a changed file.
type watchTarget struct {
	routesFile string
	localeDir  string
	pagesDir   string
}

func (t watchTarget) classify(name string) (notifier.Kind, bool) {
	name = filepath.Clean(name)
	switch {
	case t.routesFile != "" && name == t.routesFile:
		return notifier.CatalogReloaded, true
	case filepath.Ext(name) != ".yaml" && filepath.Ext(name) != ".yml":
		return "", false
	case t.localeDir != "" && filepath.Dir(name) == t.localeDir:
		return notifier.CatalogReloaded, true
	case t.pagesDir != "" && isWithin(t.pagesDir, name):
		return notifier.PagesChanged, true
	}
	return "", false
}

func isWithin(dir, name string) bool {
	rel, err := filepath.Rel(dir, name)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// watchFiles reloads the catalog when route, locale or page files change.
func (s *Server) watchFiles(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	target := watchTarget{}
	for _, p := range s.catalog.WatchPaths() {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		info, err := os.Stat(p)
		switch {
		case err != nil:
			s.logger.Error("failed to watch path", "path", p, "error", err)
			continue
		case info.IsDir():
			target.localeDir = p
			err = watcher.Add(p)
		default:
			// editors replace files on save, so watch the directory
			target.routesFile = p
			err = watcher.Add(filepath.Dir(p))
		}
		if err != nil {
			s.logger.Error("failed to watch path", "path", p, "error", err)
		}
	}
	if s.pagesDir != "" {
		target.pagesDir = filepath.Clean(s.pagesDir)
		if abs, err := filepath.Abs(target.pagesDir); err == nil {
			target.pagesDir = abs
		}
		if err := watchDirRecursive(watcher, target.pagesDir); err != nil {
			s.logger.Error("failed to watch pages directory", "error", err)
		}
	}

	var (
		debounce <-chan time.Time
		pending  notifier.Kind
	)

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-debounce:
			debounce = nil
			kind := pending
			pending = ""
			s.logger.Debug("files changed, reloading", "kind", kind)
			_ = s.Reload(kind)

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if event.Op&fsnotify.Create != 0 && target.pagesDir != "" && isWithin(target.pagesDir, event.Name) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = watcher.Add(event.Name)
				}
			}
			kind, ok := target.classify(event.Name)
			if !ok {
				continue
			}
			// a page change also reloads the catalog, so it wins
			if pending != notifier.PagesChanged {
				pending = kind
			}
			debounce = time.After(watchDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher error", "error", err)
		}
	}
}

// watchDirRecursive adds a directory and all subdirectories to the watcher.
func watchDirRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
