package shell

import (
	"context"
	"net/url"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/leapstack-labs/leapdash/internal/catalog"
	"github.com/leapstack-labs/leapdash/internal/pages"
	"github.com/leapstack-labs/leapdash/internal/routes"
	"github.com/leapstack-labs/leapdash/internal/ui/features/common"
	"github.com/leapstack-labs/leapdash/internal/ui/features/common/components"
	"github.com/leapstack-labs/leapdash/internal/ui/layout"
)

// buildShell assembles the shell for one session showing route.
func (h *Handlers) buildShell(ctx context.Context, snap *catalog.Snapshot, sid string, st viewState, route routes.Route, page pages.Page) components.Shell {
	lookup := snap.Locales.Table(st.lang).Lookup()
	label := lookup(route.Name)
	siteTitle := lookup("site.title")

	rc := pages.RenderContext{
		Key:    route.Key,
		Label:  label,
		Lookup: lookup,
		Recent: h.recent(ctx, snap, sid, lookup),
	}

	return components.Shell{
		Lang:  st.lang.String(),
		Title: label + " - " + siteTitle,
		Labels: components.Labels{
			SiteTitle: siteTitle,
			Collapse:  lookup("navbar.collapse"),
			Expand:    lookup("navbar.expand"),
			Language:  lookup("navbar.language"),
			Footer:    lookup("footer.text"),
			Loading:   lookup("progress.loading"),
		},
		Langs:    langOptions(snap.Locales.Tags(), st.lang, route.URL(), st.layout.Overrides),
		View:     layout.Compute(h.settings, st.layout),
		Menu:     common.BuildMenu(snap.Tree, lookup),
		Selected: st.layout.Selected,
		Content:  page.Render(rc),
		IsDev:    h.isDev,
	}
}

// recent lists the session's latest visits that still resolve to a route.
func (h *Handlers) recent(ctx context.Context, snap *catalog.Snapshot, sid string, lookup func(string) string) []pages.Recent {
	if h.visits == nil || sid == "" {
		return nil
	}
	visits, err := h.visits.Recent(ctx, sid, RecentLimit)
	if err != nil {
		h.logger.Warn("load visit history", "err", err)
		return nil
	}
	out := make([]pages.Recent, 0, len(visits))
	for _, v := range visits {
		r, ok := snap.Table.Find(v.RouteKey)
		if !ok {
			continue
		}
		out = append(out, pages.Recent{
			Key:       r.Key,
			Label:     lookup(r.Name),
			Href:      r.URL(),
			VisitedAt: v.VisitedAt,
		})
	}
	return out
}

// langOptions builds the language switcher. Each link reloads the current
// route in that language and keeps active URL overrides.
func langOptions(tags []language.Tag, active language.Tag, path string, overrides layout.Overrides) []components.LangOption {
	opts := make([]components.LangOption, 0, len(tags))
	for _, tag := range tags {
		q := overrides.Query()
		q.Set("lang", tag.String())
		u := url.URL{Path: path, RawQuery: q.Encode()}
		opts = append(opts, components.LangOption{
			Tag:    tag.String(),
			Label:  display.Self.Name(tag),
			Href:   u.String(),
			Active: tag == active,
		})
	}
	return opts
}
