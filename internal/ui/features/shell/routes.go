package shell

import (
	"github.com/go-chi/chi/v5"
)

// SetupRoutes registers the shell endpoints. The page handler takes every GET
// path no more specific route claims.
func SetupRoutes(router chi.Router, cfg Config) *Handlers {
	handlers := NewHandlers(cfg)

	router.Post("/shell/navigate", handlers.Navigate)
	router.Post("/shell/collapse", handlers.Collapse)
	router.Get("/shell/updates", handlers.Updates)
	router.Get("/*", handlers.Page)

	return handlers
}
