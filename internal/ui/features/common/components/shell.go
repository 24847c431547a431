package components

import (
	"context"
	"net/url"

	"github.com/a-h/templ"

	"github.com/leapstack-labs/leapdash/internal/ui/markup"
	"github.com/leapstack-labs/leapdash/internal/ui/resources"
)

// Element ids patched over SSE.
const (
	AppShellID = "app-shell"
	ProgressID = "progress"
)

// Document renders a complete HTML page around the shell.
func Document(s Shell) templ.Component {
	return markup.Func(func(ctx context.Context, m *markup.Writer) {
		m.Raw("<!doctype html>")
		m.Printf(`<html lang="%s"><head><meta charset="utf-8">`, s.Lang)
		m.Raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		m.Printf(`<title>%s</title>`, s.Title)
		m.Printf(`<link rel="stylesheet" href="%s">`, resources.StaticPath("shell.css"))
		m.Printf(`<script type="module" src="%s"></script>`, resources.DatastarURL)
		m.Raw(`</head><body data-signals="{navigating: false}" data-init="@get('/shell/updates')">`)
		if s.IsDev {
			m.Raw(`<div hidden data-init="@get('/reload', {openWhenHidden: true})"></div>`)
		}
		m.Component(ctx, progress(s.Labels.Loading))
		m.Component(ctx, AppShell(s))
		m.Raw(`</body></html>`)
	})
}

// progress is the top-of-page loading bar, visible while a navigation runs.
// It lives outside the shell so patches never reset it.
func progress(label string) templ.Component {
	return markup.Func(func(_ context.Context, m *markup.Writer) {
		m.Printf(`<div id="%s" class="progress" role="progressbar" data-show="$navigating" style="display: none">`, ProgressID)
		m.Printf(`<div class="progress-bar"></div><span class="sr-only">%s</span></div>`, label)
	})
}

// AppShell renders navbar, side menu, content and footer. Its root id lets
// SSE patches replace it wholesale.
func AppShell(s Shell) templ.Component {
	return markup.Func(func(ctx context.Context, m *markup.Writer) {
		class := templ.Classes("layout", templ.KV("collapsed", s.View.Collapsed))
		m.Printf(`<div id="%s" class="%s" data-selected="%s">`, AppShellID, class.String(), s.Selected)
		if s.View.ShowNavbar {
			m.Component(ctx, navbar(s))
		}
		m.Raw(`<div class="layout-body">`)
		if s.View.ShowMenu {
			m.Component(ctx, sider(s))
		}
		if style := s.View.ContentStyle(); style != "" {
			m.Printf(`<main class="layout-content" style="%s">`, style)
		} else {
			m.Raw(`<main class="layout-content">`)
		}
		m.Raw(`<div class="content">`)
		m.Component(ctx, s.Content)
		m.Raw(`</div>`)
		if s.View.ShowFooter {
			m.Printf(`<footer class="layout-footer">%s</footer>`, s.Labels.Footer)
		}
		m.Raw(`</main></div></div>`)
	})
}

func navbar(s Shell) templ.Component {
	return markup.Func(func(_ context.Context, m *markup.Writer) {
		m.Raw(`<header class="layout-navbar">`)
		m.Printf(`<a class="logo" href="/">%s</a>`, s.Labels.SiteTitle)
		if len(s.Langs) > 1 {
			m.Printf(`<nav class="lang-switch" aria-label="%s">`, s.Labels.Language)
			for _, l := range s.Langs {
				class := templ.Classes("lang", templ.KV("active", l.Active))
				m.Printf(`<a class="%s" href="%s" hreflang="%s">%s</a>`, class.String(), string(templ.URL(l.Href)), l.Tag, l.Label)
			}
			m.Raw(`</nav>`)
		}
		m.Raw(`</header>`)
	})
}

func sider(s Shell) templ.Component {
	return markup.Func(func(ctx context.Context, m *markup.Writer) {
		class := templ.Classes("layout-sider", templ.KV("collapsed", s.View.Collapsed))
		m.Printf(`<aside class="%s" style="%s">`, class.String(), s.View.SiderStyle())
		m.Raw(`<div class="menu-wrapper"><ul class="menu" role="menu">`)
		for _, n := range s.Menu {
			m.Component(ctx, menuNode(n, s.Selected))
		}
		m.Raw(`</ul></div>`)

		icon, label := "menu-fold", s.Labels.Collapse
		if s.View.Collapsed {
			icon, label = "menu-unfold", s.Labels.Expand
		}
		m.Printf(`<button type="button" class="collapse-btn" aria-label="%s" data-on:click="@post('/shell/collapse')">`, label)
		writeIcon(m, icon)
		m.Raw(`</button></aside>`)
	})
}

// NavigateAction is the client expression a menu entry runs on click.
func NavigateAction(key string) string {
	return "$navigating = true; @post('/shell/navigate?key=" + url.QueryEscape(key) + "')"
}

func menuNode(n MenuNode, selected string) templ.Component {
	return markup.Func(func(ctx context.Context, m *markup.Writer) {
		if n.IsGroup() {
			m.Printf(`<li class="menu-group" data-key="%s" data-depth="%d"><details open><summary>`, n.Key, n.Depth)
			writeIcon(m, n.Icon)
			m.Printf(`<span class="menu-label">%s</span></summary><ul class="submenu">`, n.Label)
			for _, c := range n.Children {
				m.Component(ctx, menuNode(c, selected))
			}
			m.Raw(`</ul></details></li>`)
			return
		}

		class := templ.Classes("menu-item", templ.KV("selected", n.Key == selected)).String()
		action := NavigateAction(n.Key)
		if n.Href != "" {
			// route paths come from config files, so they go through templ's
			// URL sanitizer
			m.Printf(`<li class="%s" role="menuitem" data-key="%s" data-depth="%d">`, class, n.Key, n.Depth)
			m.Printf(`<a href="%s" data-on:click__prevent="%s">`, string(templ.URL(n.Href)), action)
			writeIcon(m, n.Icon)
			m.Printf(`<span class="menu-label">%s</span></a></li>`, n.Label)
			return
		}
		m.Printf(`<li class="%s" role="menuitem" tabindex="0" data-key="%s" data-depth="%d" data-on:click="%s">`, class, n.Key, n.Depth, action)
		writeIcon(m, n.Icon)
		m.Printf(`<span class="menu-label">%s</span></li>`, n.Label)
	})
}
