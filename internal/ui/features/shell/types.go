// Package shell serves the dashboard shell: full page loads, menu
// navigation, collapse toggling and live updates after catalog reloads.
package shell

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/leapdash/internal/catalog"
	"github.com/leapstack-labs/leapdash/internal/metrics"
	"github.com/leapstack-labs/leapdash/internal/state"
	"github.com/leapstack-labs/leapdash/internal/ui/layout"
	"github.com/leapstack-labs/leapdash/internal/ui/notifier"
)

// RecentLimit caps the visit history shown on pages.
const RecentLimit = 5

// ErrUnknownRoute is reported to the browser when a menu key is not in the
// current route table.
var ErrUnknownRoute = errors.New("unknown route")

// Config wires the shell handlers.
type Config struct {
	Catalog  *catalog.Catalog
	Sessions sessions.Store
	Notifier *notifier.Notifier
	Metrics  *metrics.Collector
	// Visits is optional; nil disables visit history.
	Visits   state.Store
	Settings layout.Settings
	StateTTL time.Duration
	Logger   *slog.Logger
	IsDev    bool
}

// navigatingSignals drives the client progress indicator.
type navigatingSignals struct {
	Navigating bool `json:"navigating"`
}
