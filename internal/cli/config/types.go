// Package config loads the leapdash CLI configuration.
//
// Values are layered with koanf: built-in defaults, then leapdash.yaml, then
// LEAPDASH_ environment variables, then flags that were set explicitly.
package config

import (
	"time"

	"github.com/leapstack-labs/leapdash/internal/pages"
	"github.com/leapstack-labs/leapdash/internal/routes"
	"github.com/leapstack-labs/leapdash/internal/ui/layout"
)

// ServerConfig holds configuration for the HTTP server.
type ServerConfig struct {
	Port          int    `koanf:"port"`
	SessionSecret string `koanf:"session_secret"`
	Watch         bool   `koanf:"watch"`
	Dev           bool   `koanf:"dev"`
}

// Config holds all CLI configuration options.
type Config struct {
	Server           ServerConfig    `koanf:"server"`
	Settings         layout.Settings `koanf:"settings"`
	RoutesFile       string          `koanf:"routes_file"`
	DefaultRoute     string          `koanf:"default_route"`
	LocaleDir        string          `koanf:"locale_dir"`
	DefaultLocale    string          `koanf:"default_locale"`
	PagesDir         string          `koanf:"pages_dir"`
	PreloadTimeout   time.Duration   `koanf:"preload_timeout"`
	StatePath        string          `koanf:"state_path"`
	HistoryRetention time.Duration   `koanf:"history_retention"`
	LogLevel         string          `koanf:"log_level"`
	LogFormat        string          `koanf:"log_format"`
	Verbose          bool            `koanf:"verbose"`
	OutputFormat     string          `koanf:"output"`

	// ProjectRoot anchors relative paths. ConfigFile is empty when no file
	// was found.
	ProjectRoot string `koanf:"-"`
	ConfigFile  string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultPort             = 8780
	DefaultStateFile        = ".leapdash/state.db"
	MemoryStatePath         = ":memory:" // history lives only as long as the process
	DefaultLocale           = "en-US"
	DefaultHistoryRetention = 30 * 24 * time.Hour
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
	DefaultOutput           = "auto" // TTY=text, otherwise markdown
	DefaultSessionSecret    = "leapdash-dev-secret-change-in-production" //nolint:gosec
)

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:          DefaultPort,
			SessionSecret: DefaultSessionSecret,
			Watch:         true,
		},
		Settings:         layout.DefaultSettings(),
		DefaultRoute:     routes.DefaultRoute,
		DefaultLocale:    DefaultLocale,
		PreloadTimeout:   pages.DefaultPreloadTimeout,
		StatePath:        DefaultStateFile,
		HistoryRetention: DefaultHistoryRetention,
		LogLevel:         DefaultLogLevel,
		LogFormat:        DefaultLogFormat,
		OutputFormat:     DefaultOutput,
	}
}

func defaultValues() map[string]any {
	d := Default()
	return map[string]any{
		"server.port":           d.Server.Port,
		"server.session_secret": d.Server.SessionSecret,
		"server.watch":          d.Server.Watch,
		"server.dev":            d.Server.Dev,
		"settings.navbar":       d.Settings.Navbar,
		"settings.menu":         d.Settings.Menu,
		"settings.footer":       d.Settings.Footer,
		"settings.menu_width":   d.Settings.MenuWidth,
		"default_route":         d.DefaultRoute,
		"default_locale":        d.DefaultLocale,
		"preload_timeout":       d.PreloadTimeout.String(),
		"state_path":            d.StatePath,
		"history_retention":     d.HistoryRetention.String(),
		"log_level":             d.LogLevel,
		"log_format":            d.LogFormat,
		"verbose":               false,
		"output":                d.OutputFormat,
	}
}
