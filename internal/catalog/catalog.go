// Package catalog keeps the live route tree, its flattened routes and the
// locale tables as one immutable snapshot that can be reloaded from disk.
package catalog

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"golang.org/x/text/language"

	"github.com/leapstack-labs/leapdash/internal/locale"
	"github.com/leapstack-labs/leapdash/internal/routes"
)

// Source says where the catalog reads from. Empty paths select the built-in
// route tree and locale tables.
type Source struct {
	RoutesFile    string
	LocaleDir     string
	DefaultRoute  string
	DefaultLocale language.Tag
}

// Snapshot is one consistent view of routes and labels. Never modified after
// creation.
type Snapshot struct {
	Tree         []routes.Node
	Table        *routes.Table
	Locales      *locale.Bundle
	DefaultRoute string
}

// Default returns the default route.
func (s *Snapshot) Default() (routes.Route, bool) {
	return s.Table.Find(s.DefaultRoute)
}

// InitialKey is the selection a freshly mounted shell starts with: the key
// the URL path names if it is known, else the default route.
func (s *Snapshot) InitialKey(urlPath string) string {
	if r, ok := s.Table.Match(urlPath); ok {
		return r.Key
	}
	return s.DefaultRoute
}

// Catalog serves snapshots and rebuilds them on Reload.
type Catalog struct {
	src      Source
	registry routes.PageResolver
	logger   *slog.Logger

	mu   sync.RWMutex
	snap *Snapshot
}

// New loads the initial snapshot.
func New(src Source, registry routes.PageResolver, logger *slog.Logger) (*Catalog, error) {
	if src.DefaultRoute == "" {
		src.DefaultRoute = routes.DefaultRoute
	}
	if src.DefaultLocale == language.Und {
		src.DefaultLocale = language.AmericanEnglish
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := &Catalog{src: src, registry: registry, logger: logger}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Snapshot returns the current snapshot.
func (c *Catalog) Snapshot() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// Reload rebuilds the snapshot from the source. On error the previous
// snapshot stays in place.
func (c *Catalog) Reload() error {
	snap, err := c.build()
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()

	leaves, groups := routes.Count(snap.Tree)
	c.logger.Info("catalog loaded",
		"routes", leaves,
		"groups", groups,
		"locales", len(snap.Locales.Tags()),
		"default_route", snap.DefaultRoute,
	)
	return nil
}

func (c *Catalog) build() (*Snapshot, error) {
	tree, err := routes.LoadFile(c.src.RoutesFile)
	if err != nil {
		return nil, err
	}
	flat, err := routes.Flatten(tree, c.registry)
	if err != nil {
		return nil, err
	}
	table := routes.NewTable(flat)
	if _, ok := table.Find(c.src.DefaultRoute); !ok {
		return nil, fmt.Errorf("%w: default route %q is not a leaf", routes.ErrInvalidTree, c.src.DefaultRoute)
	}

	var tables map[language.Tag]locale.Table
	if c.src.LocaleDir == "" {
		tables, err = locale.Builtin()
	} else {
		tables, err = locale.LoadDir(c.src.LocaleDir)
	}
	if err != nil {
		return nil, err
	}
	bundle, err := locale.NewBundle(c.src.DefaultLocale, tables)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		Tree:         tree,
		Table:        table,
		Locales:      bundle,
		DefaultRoute: c.src.DefaultRoute,
	}, nil
}

// WatchPaths returns the files and directories a watcher should observe to
// keep the catalog current. Built-in sources contribute nothing.
func (c *Catalog) WatchPaths() []string {
	var paths []string
	if c.src.RoutesFile != "" {
		paths = append(paths, filepath.Clean(c.src.RoutesFile))
	}
	if c.src.LocaleDir != "" {
		paths = append(paths, filepath.Clean(c.src.LocaleDir))
	}
	return paths
}
