// Package commands implements the leapdash subcommands.
package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapdash/internal/catalog"
	"github.com/leapstack-labs/leapdash/internal/cli/config"
	"github.com/leapstack-labs/leapdash/internal/cli/output"
	"github.com/leapstack-labs/leapdash/internal/pages"
)

// CommandContext holds common dependencies for command execution.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext collects the config, logger and renderer for cmd.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := config.GetConfig(cmd.Context())
	mode, err := output.ParseMode(cfg.OutputFormat)
	if err != nil {
		mode = output.ModeAuto
	}
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode),
	}
}

// newRegistry registers the built-in pages and, when configured, the
// fixtures in pages_dir, which may override built-ins.
func newRegistry(cfg *config.Config, logger *slog.Logger, observer pages.PreloadObserver) (*pages.Registry, error) {
	registry := pages.NewRegistry(pages.RegistryConfig{
		Timeout:  cfg.PreloadTimeout,
		Observer: observer,
		Logger:   logger,
	})
	builtin, err := pages.RegisterBuiltins(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register built-in pages: %w", err)
	}
	logger.Debug("registered built-in pages", "count", len(builtin))

	if cfg.PagesDir != "" {
		extra, err := pages.RegisterFS(registry, os.DirFS(cfg.PagesDir))
		if err != nil {
			return nil, err
		}
		logger.Debug("registered pages", "dir", cfg.PagesDir, "count", len(extra))
	}
	return registry, nil
}

// loadCatalog builds the page registry and the route catalog from cfg.
func loadCatalog(cfg *config.Config, logger *slog.Logger, observer pages.PreloadObserver) (*catalog.Catalog, *pages.Registry, error) {
	if err := cfg.ValidateDirectories(); err != nil {
		return nil, nil, err
	}
	tag, err := cfg.Locale()
	if err != nil {
		return nil, nil, err
	}
	registry, err := newRegistry(cfg, logger, observer)
	if err != nil {
		return nil, nil, err
	}
	cat, err := catalog.New(catalog.Source{
		RoutesFile:    cfg.RoutesFile,
		LocaleDir:     cfg.LocaleDir,
		DefaultRoute:  cfg.DefaultRoute,
		DefaultLocale: tag,
	}, registry, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load routes: %w", err)
	}
	return cat, registry, nil
}

// labelLookup returns the label table for lang, or the fallback locale when
// lang is empty or unsupported.
func labelLookup(snap *catalog.Snapshot, lang string) func(string) string {
	return snap.Locales.Table(snap.Locales.Match(lang, "")).Lookup()
}
