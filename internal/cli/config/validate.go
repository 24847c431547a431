package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/text/language"
)

// Validate checks values that can be judged without loading the route tree.
// An unknown default route is reported by the catalog when it loads.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Settings.MenuWidth <= 0 {
		errs = append(errs, fmt.Errorf("settings.menu_width must be positive, got %d", c.Settings.MenuWidth))
	}
	if c.DefaultRoute == "" {
		errs = append(errs, errors.New("default_route is required"))
	}
	if _, err := c.Locale(); err != nil {
		errs = append(errs, err)
	}
	if c.PreloadTimeout <= 0 {
		errs = append(errs, fmt.Errorf("preload_timeout must be positive, got %s", c.PreloadTimeout))
	}
	if c.HistoryRetention < 0 {
		errs = append(errs, fmt.Errorf("history_retention must not be negative, got %s", c.HistoryRetention))
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		errs = append(errs, fmt.Errorf("invalid log_level %q", c.LogLevel))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("invalid log_format %q: want text or json", c.LogFormat))
	}
	switch c.OutputFormat {
	case "", "auto", "text", "markdown", "json":
	default:
		errs = append(errs, fmt.Errorf("invalid output %q: want auto, text, markdown or json", c.OutputFormat))
	}

	return errors.Join(errs...)
}

// Locale parses default_locale.
func (c *Config) Locale() (language.Tag, error) {
	tag, err := language.Parse(c.DefaultLocale)
	if err != nil {
		return language.Und, fmt.Errorf("invalid default_locale %q: %w", c.DefaultLocale, err)
	}
	return tag, nil
}

// ValidateDirectories checks that configured files and directories exist.
func (c *Config) ValidateDirectories() error {
	if c.RoutesFile != "" {
		if _, err := os.Stat(c.RoutesFile); os.IsNotExist(err) {
			return fmt.Errorf("routes file does not exist: %s\nHint: remove routes_file to use the built-in route tree", c.RoutesFile)
		}
	}
	for name, dir := range map[string]string{"locale": c.LocaleDir, "pages": c.PagesDir} {
		if dir == "" {
			continue
		}
		info, err := os.Stat(dir)
		if os.IsNotExist(err) {
			return fmt.Errorf("%s directory does not exist: %s", name, dir)
		}
		if err == nil && !info.IsDir() {
			return fmt.Errorf("%s directory is not a directory: %s", name, dir)
		}
	}
	return nil
}
