package commands

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapdash/internal/cli/config"
	"github.com/leapstack-labs/leapdash/internal/metrics"
	"github.com/leapstack-labs/leapdash/internal/state"
	"github.com/leapstack-labs/leapdash/internal/ui"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Open bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard server",
		Long: `Start the admin dashboard: navbar, side menu built from the route tree,
and the selected page, with navigation and menu collapse streamed over SSE.

Route tree, locale tables and page fixtures are reloaded when they change
on disk (disable with --watch=false).`,
		Example: `  # Serve the built-in dashboard on the default port
  leapdash serve

  # Serve a custom route tree on port 3000
  leapdash serve --routes ./routes.yaml --port 3000

  # Keep visit history in memory only
  leapdash serve --state :memory:`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().Int("port", 0, fmt.Sprintf("Port to serve on (default: %d)", config.DefaultPort))
	cmd.Flags().Bool("watch", true, "Reload routes, locales and pages when they change")
	cmd.Flags().Bool("dev", false, "Enable the development live-reload endpoint")
	cmd.Flags().BoolVar(&opts.Open, "open", false, "Open the dashboard in a browser")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cc := NewCommandContext(cmd)
	cfg, logger := cc.Cfg, cc.Logger

	collector := metrics.New()
	cat, registry, err := loadCatalog(cfg, logger, collector.ObservePreload)
	if err != nil {
		return err
	}

	store := state.NewSQLiteStore(logger)
	if err := store.Open(cfg.StatePath); err != nil {
		return fmt.Errorf("failed to open state store: %w", err)
	}
	defer func() { _ = store.Close() }()
	if err := store.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate state store: %w", err)
	}

	if cfg.Server.SessionSecret == config.DefaultSessionSecret {
		logger.Warn("using the development session secret; set LEAPDASH_SESSION_SECRET in production")
	}

	server := ui.NewServer(ui.Config{
		Catalog:          cat,
		Registry:         registry,
		PagesDir:         cfg.PagesDir,
		Visits:           store,
		HistoryRetention: cfg.HistoryRetention,
		Metrics:          collector,
		Settings:         cfg.Settings,
		Port:             cfg.Server.Port,
		Watch:            cfg.Server.Watch,
		IsDev:            cfg.Server.Dev,
		SessionSecret:    cfg.Server.SessionSecret,
		Logger:           logger,
	})

	url := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	cc.Renderer.Success("Serving dashboard on " + url)
	cc.Renderer.Muted("Press Ctrl+C to stop")
	if opts.Open {
		go openBrowser(url)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.Serve(ctx)
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(context.Background(), "open", url)
	case "linux":
		cmd = exec.CommandContext(context.Background(), "xdg-open", url)
	case "windows":
		cmd = exec.CommandContext(context.Background(), "rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return
	}

	_ = cmd.Start()
}
