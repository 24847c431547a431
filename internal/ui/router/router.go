// Package router sets up HTTP routes for the UI server.
package router

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/leapdash/internal/catalog"
	"github.com/leapstack-labs/leapdash/internal/metrics"
	shellFeature "github.com/leapstack-labs/leapdash/internal/ui/features/shell"
	"github.com/leapstack-labs/leapdash/internal/ui/resources"
)

// Deps are the services the routes need.
type Deps struct {
	Shell   shellFeature.Config
	Catalog *catalog.Catalog
	Metrics *metrics.Collector
	Logger  *slog.Logger
	IsDev   bool
}

// SetupRoutes configures all routes for the UI server.
func SetupRoutes(router chi.Router, deps Deps) error {
	// Hot reload endpoint for dev mode
	if deps.IsDev {
		setupReload(router)
	}

	router.Handle("/static/*", resources.Handler(deps.Logger))
	router.Handle("/metrics", deps.Metrics.Handler())
	router.Get("/healthz", healthz(deps.Catalog))

	shellFeature.SetupRoutes(router, deps.Shell)
	return nil
}

type health struct {
	Status       string   `json:"status"`
	Routes       int      `json:"routes"`
	DefaultRoute string   `json:"default_route"`
	Locales      []string `json:"locales"`
}

func healthz(c *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		snap := c.Snapshot()
		h := health{
			Status:       "ok",
			Routes:       snap.Table.Len(),
			DefaultRoute: snap.DefaultRoute,
		}
		for _, tag := range snap.Locales.Tags() {
			h.Locales = append(h.Locales, tag.String())
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(h)
	}
}

func setupReload(router chi.Router) {
	reloadChan := make(chan struct{}, 1)
	var hotReloadOnce sync.Once

	router.Get("/reload", func(w http.ResponseWriter, r *http.Request) {
		sse := datastar.NewSSE(w, r)
		reload := func() { _ = sse.ExecuteScript("window.location.reload()") }
		hotReloadOnce.Do(reload)
		select {
		case <-reloadChan:
			reload()
		case <-r.Context().Done():
		}
	})

	router.Get("/hotreload", func(w http.ResponseWriter, _ *http.Request) {
		select {
		case reloadChan <- struct{}{}:
		default:
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}
