package shell

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/leapdash/internal/catalog"
	"github.com/leapstack-labs/leapdash/internal/metrics"
	"github.com/leapstack-labs/leapdash/internal/pages"
	"github.com/leapstack-labs/leapdash/internal/state"
	"github.com/leapstack-labs/leapdash/internal/ui/features/common/components"
	"github.com/leapstack-labs/leapdash/internal/ui/layout"
	"github.com/leapstack-labs/leapdash/internal/ui/notifier"
)

// Handlers provides HTTP handlers for the shell.
type Handlers struct {
	catalog  *catalog.Catalog
	sessions sessions.Store
	notifier *notifier.Notifier
	metrics  *metrics.Collector
	visits   state.Store
	settings layout.Settings
	logger   *slog.Logger
	isDev    bool

	states *states
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(cfg Config) *Handlers {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	m := cfg.Metrics
	if m == nil {
		m = metrics.New()
	}
	return &Handlers{
		catalog:  cfg.Catalog,
		sessions: cfg.Sessions,
		notifier: cfg.Notifier,
		metrics:  m,
		visits:   cfg.Visits,
		settings: cfg.Settings,
		logger:   logger,
		isDev:    cfg.IsDev,
		states:   newStates(cfg.StateTTL),
	}
}

// Page renders the full document for a URL path. Paths that match no route
// redirect to the default route. Every full load mounts a fresh shell.
func (h *Handlers) Page(w http.ResponseWriter, r *http.Request) {
	snap := h.catalog.Snapshot()

	route, ok := snap.Table.Match(r.URL.Path)
	if !ok {
		def, _ := snap.Default()
		http.Redirect(w, r, def.URL(), http.StatusFound)
		return
	}

	query := r.URL.Query()
	bs, err := h.ensureSession(w, r, explicitLang(query.Get("lang")))
	if err != nil {
		h.logger.Error("session unavailable", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	sid := bs.id

	st := viewState{
		layout: layout.Mount(snap.InitialKey(r.URL.Path), layout.ParseOverrides(query)),
		lang:   snap.Locales.Match(bs.lang, r.Header.Get("Accept-Language")),
	}
	h.states.put(sid, st)
	if n := h.states.prune(); n > 0 {
		h.logger.Debug("pruned idle shell state", "count", n)
	}

	page, err := route.Page.Preload(r.Context())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, pages.ErrPreloadTimeout) {
			status = http.StatusGatewayTimeout
		}
		http.Error(w, err.Error(), status)
		return
	}
	h.recordVisit(r.Context(), sid, route.Key)

	shell := h.buildShell(r.Context(), snap, sid, st, route, page)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := components.Document(shell).Render(r.Context(), w); err != nil {
		h.logger.Error("render page", "key", route.Key, "err", err)
	}
}

// explicitLang normalizes a ?lang= value. Values that do not parse are
// dropped so they never replace a stored choice.
func explicitLang(v string) string {
	if v == "" {
		return ""
	}
	tag, err := language.Parse(v)
	if err != nil {
		return ""
	}
	return tag.String()
}

// Navigate handles a menu click. It preloads the target page while the
// client shows the progress indicator, then selects the key, swaps the shell
// and pushes the route URL onto the browser history.
func (h *Handlers) Navigate(w http.ResponseWriter, r *http.Request) {
	sid, _ := h.sessionID(r)
	sse := datastar.NewSSE(w, r)

	if _, ok := h.states.get(sid); !ok {
		// no mounted shell for this browser, start over with a full load
		_ = sse.ExecuteScript("window.location.reload()")
		return
	}

	key := r.URL.Query().Get("key")
	snap := h.catalog.Snapshot()
	route, ok := snap.Table.Find(key)
	if !ok {
		h.metrics.Navigation(metrics.UnknownKey, metrics.OutcomeUnknown)
		h.logger.Warn("navigate to unknown route", "key", key)
		_ = sse.MarshalAndPatchSignals(navigatingSignals{Navigating: false})
		_ = sse.ConsoleError(fmt.Errorf("%w: %q", ErrUnknownRoute, key))
		return
	}

	_ = sse.MarshalAndPatchSignals(navigatingSignals{Navigating: true})

	page, err := route.Page.Preload(r.Context())
	if err != nil {
		h.metrics.Navigation(key, metrics.NavigationOutcome(err))
		h.logger.Warn("navigate preload failed", "key", key, "err", err)
		_ = sse.MarshalAndPatchSignals(navigatingSignals{Navigating: false})
		_ = sse.ConsoleError(fmt.Errorf("load %s: %w", key, err))
		return
	}

	st, ok := h.states.update(sid, func(s viewState) viewState {
		s.layout = s.layout.Select(key)
		return s
	})
	if !ok {
		_ = sse.ExecuteScript("window.location.reload()")
		return
	}
	h.recordVisit(r.Context(), sid, key)

	shell := h.buildShell(r.Context(), snap, sid, st, route, page)
	if err := sse.PatchElementTempl(components.AppShell(shell)); err != nil {
		h.logger.Debug("navigate patch not delivered", "key", key, "err", err)
		return
	}
	_ = sse.ExecuteScript(historyScript(route.URL(), shell.Title))
	_ = sse.MarshalAndPatchSignals(navigatingSignals{Navigating: false})
	h.metrics.Navigation(key, metrics.OutcomeSuccess)
}

// Collapse flips the side menu between collapsed and expanded.
func (h *Handlers) Collapse(w http.ResponseWriter, r *http.Request) {
	sid, _ := h.sessionID(r)
	sse := datastar.NewSSE(w, r)

	st, ok := h.states.update(sid, func(s viewState) viewState {
		s.layout = s.layout.ToggleCollapse()
		return s
	})
	if !ok {
		_ = sse.ExecuteScript("window.location.reload()")
		return
	}

	if err := h.patchShell(r.Context(), sse, sid, st); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// Updates is the long-lived SSE stream. It sends nothing up front since the
// page is already rendered, and re-renders the shell on every change event.
func (h *Handlers) Updates(w http.ResponseWriter, r *http.Request) {
	sid, _ := h.sessionID(r)
	sse := datastar.NewSSE(w, r)

	updates := h.notifier.Subscribe()
	defer h.notifier.Unsubscribe(updates)
	h.metrics.SubscriberAdded()
	defer h.metrics.SubscriberRemoved()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-updates:
			if !ok {
				return
			}
			st, found := h.states.get(sid)
			if !found {
				_ = sse.ExecuteScript("window.location.reload()")
				return
			}
			h.logger.Debug("pushing shell update", "event", ev.Kind)
			if err := h.patchShell(ctx, sse, sid, st); err != nil {
				_ = sse.ConsoleError(err)
				// keep the stream open, the next event may succeed
			}
		}
	}
}

// patchShell re-renders the shell for the current selection. A selection
// that vanished from the route table falls back to the default route.
func (h *Handlers) patchShell(ctx context.Context, sse *datastar.ServerSentEventGenerator, sid string, st viewState) error {
	snap := h.catalog.Snapshot()
	route, ok := snap.Table.Find(st.layout.Selected)
	if !ok {
		route, _ = snap.Default()
	}
	page, err := route.Page.Preload(ctx)
	if err != nil {
		return fmt.Errorf("load %s: %w", route.Key, err)
	}
	return sse.PatchElementTempl(components.AppShell(h.buildShell(ctx, snap, sid, st, route, page)))
}

func (h *Handlers) recordVisit(ctx context.Context, sid, key string) {
	if h.visits == nil {
		return
	}
	if _, err := h.visits.Record(ctx, state.Visit{SessionID: sid, RouteKey: key}); err != nil {
		h.logger.Warn("record visit", "key", key, "err", err)
	}
}

// historyScript updates the address bar and document title after a
// navigation.
func historyScript(url, title string) string {
	u, _ := json.Marshal(url)
	t, _ := json.Marshal(title)
	return fmt.Sprintf(`window.history.pushState({}, "", %s); document.title = %s`, u, t)
}
