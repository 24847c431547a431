package shell

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/leapstack-labs/leapdash/internal/pages"
	"github.com/leapstack-labs/leapdash/internal/testutil"
	"github.com/leapstack-labs/leapdash/internal/ui/features"
	"github.com/leapstack-labs/leapdash/internal/ui/layout"
	"github.com/leapstack-labs/leapdash/internal/ui/notifier"
)

// =============================================================================
// Test Setup Helpers
// =============================================================================

func setupTestHandlers(t *testing.T, opts ...features.FixtureOption) (*Handlers, *features.TestFixture) {
	t.Helper()

	fixture := features.SetupTestFixture(t, opts...)
	handlers := NewHandlers(Config{
		Catalog:  fixture.Catalog,
		Sessions: fixture.SessionStore,
		Notifier: fixture.Notifier,
		Metrics:  fixture.Metrics,
		Visits:   fixture.Visits,
		Settings: layout.DefaultSettings(),
		Logger:   testutil.NewTestLogger(t),
	})
	return handlers, fixture
}

// mount performs a full page load and returns the response with its cookie.
func mount(t *testing.T, h *Handlers, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Page(rec, httptest.NewRequest(http.MethodGet, target, nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return rec
}

func post(t *testing.T, h http.HandlerFunc, target string, session http.Header) string {
	t.Helper()
	req := features.WithCookies(httptest.NewRequest(http.MethodPost, target, nil), session)
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec.Body.String()
}

func parse(t *testing.T, body string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(body))
	require.NoError(t, err)
	return doc
}

func countClass(root *html.Node, class string) int {
	n := 0
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode {
			for _, a := range node.Attr {
				if a.Key == "class" && containsField(a.Val, class) {
					n++
				}
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return n
}

func containsField(s, f string) bool {
	for _, x := range strings.Fields(s) {
		if x == f {
			return true
		}
	}
	return false
}

const exampleRoutes = `
routes:
  - key: dashboard/workplace
    name: menu.dashboard.workplace
  - key: list
    name: menu.list
    children:
      - key: list/card
        name: menu.list.cardList
`

// =============================================================================
// Page Tests - full HTML responses
// =============================================================================

func TestPage(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		header   map[string]string
		wantBody []string
	}{
		{
			name:   "default route",
			target: "/dashboard/workplace",
			wantBody: []string{
				"<!doctype html>",
				"<title>Workplace - Arco Pro</title>",
				`data-init="@get('/shell/updates')"`,
				`id="app-shell"`,
				`data-page="dashboard/workplace"`,
				`padding-left: 220px; padding-top: 60px;`,
			},
		},
		{
			name:   "nested route selected",
			target: "/list/card",
			wantBody: []string{
				`data-selected="list/card"`,
				`class="menu-item selected" role="menuitem" tabindex="0" data-key="list/card"`,
			},
		},
		{
			name:     "chinese via accept-language",
			target:   "/dashboard/workplace",
			header:   map[string]string{"Accept-Language": "zh-CN,zh;q=0.9"},
			wantBody: []string{`<html lang="zh-CN">`, "工作台"},
		},
		{
			name:     "explicit lang wins",
			target:   "/dashboard/workplace?lang=en-US",
			header:   map[string]string{"Accept-Language": "zh-CN"},
			wantBody: []string{`<html lang="en-US">`, "Workplace"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := setupTestHandlers(t)

			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			h.Page(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Header().Get("Set-Cookie"), sessionName+"=")
			body := rec.Body.String()
			for _, want := range tt.wantBody {
				assert.Contains(t, body, want, "response should contain %q", want)
			}
		})
	}
}

func TestPage_RedirectsUnknownPath(t *testing.T) {
	h, _ := setupTestHandlers(t)

	for _, target := range []string{"/", "/nope", "/dashboard"} {
		rec := httptest.NewRecorder()
		h.Page(rec, httptest.NewRequest(http.MethodGet, target, nil))

		assert.Equal(t, http.StatusFound, rec.Code, target)
		assert.Equal(t, "/dashboard/workplace", rec.Header().Get("Location"), target)
	}
}

func TestPage_MenuMatchesTree(t *testing.T) {
	h, _ := setupTestHandlers(t)
	doc := parse(t, mount(t, h, "/dashboard/workplace").Body.String())

	assert.Equal(t, 16, countClass(doc, "menu-item"), "one entry per leaf")
	assert.Equal(t, 8, countClass(doc, "menu-group"), "one group per interior node")
}

func TestPage_ExampleTree(t *testing.T) {
	h, _ := setupTestHandlers(t, features.WithRoutes(exampleRoutes))
	body := mount(t, h, "/dashboard/workplace").Body.String()
	doc := parse(t, body)

	assert.Equal(t, 2, countClass(doc, "menu-item"))
	assert.Equal(t, 1, countClass(doc, "menu-group"))
	assert.Contains(t, body, `<a href="/dashboard/workplace"`)
	assert.NotContains(t, body, `<a href="/list/card"`, "nested leaves are not links")
}

func TestPage_QueryDisablesMenu(t *testing.T) {
	h, _ := setupTestHandlers(t)
	body := mount(t, h, "/dashboard/workplace?menu=false&footer=false").Body.String()
	doc := parse(t, body)

	assert.Zero(t, countClass(doc, "layout-sider"))
	assert.Zero(t, countClass(doc, "layout-footer"))
	assert.NotContains(t, body, "padding-left")
	assert.Contains(t, body, `style="padding-top: 60px;"`)
}

func TestPage_PreloadFailure(t *testing.T) {
	h, _ := setupTestHandlers(t,
		features.WithRoutes(exampleRoutes+"  - key: broken\n    name: Broken\n"),
		features.WithLoader("broken", func(context.Context) (pages.Page, error) {
			return nil, errors.New("module missing")
		}),
	)

	rec := httptest.NewRecorder()
	h.Page(rec, httptest.NewRequest(http.MethodGet, "/broken", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "module missing")
}

func TestPage_RecordsVisit(t *testing.T) {
	h, fixture := setupTestHandlers(t)
	mount(t, h, "/list/card")

	n, err := fixture.Visits.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPage_LangChoiceKeptInSession(t *testing.T) {
	h, _ := setupTestHandlers(t)
	session := mount(t, h, "/dashboard/workplace?lang=zh-CN").Header()

	load := func(target, accept string, header http.Header) *httptest.ResponseRecorder {
		t.Helper()
		req := features.WithCookies(httptest.NewRequest(http.MethodGet, target, nil), header)
		req.Header.Set("Accept-Language", accept)
		rec := httptest.NewRecorder()
		h.Page(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		return rec
	}

	rec := load("/dashboard/monitor", "en-US", session)
	assert.Contains(t, rec.Body.String(), `<html lang="zh-CN">`, "stored choice wins over Accept-Language")

	rec = load("/dashboard/monitor?lang=en-US", "zh-CN", session)
	assert.Contains(t, rec.Body.String(), `<html lang="en-US">`)
	switched := rec.Header()
	require.NotEmpty(t, switched.Values("Set-Cookie"), "a new choice is saved")

	rec = load("/dashboard/workplace", "zh-CN", switched)
	assert.Contains(t, rec.Body.String(), `<html lang="en-US">`)

	rec = load("/dashboard/workplace?lang=!!", "en-US", session)
	assert.Contains(t, rec.Body.String(), `<html lang="zh-CN">`, "unparseable values keep the stored choice")
}

// =============================================================================
// Navigate Tests - SSE responses
// =============================================================================

func TestNavigate(t *testing.T) {
	h, fixture := setupTestHandlers(t)
	session := mount(t, h, "/dashboard/workplace?footer=false").Header()

	body := post(t, h.Navigate, "/shell/navigate?key=list%2Fcard", session)

	assert.Contains(t, body, `"navigating":true`)
	assert.Contains(t, body, "datastar-patch-elements")
	assert.Contains(t, body, `data-selected="list/card"`)
	assert.Contains(t, body, `data-page="list/card"`)
	assert.Contains(t, body, "pushState")
	assert.Contains(t, body, `/list/card`)
	assert.Contains(t, body, `"navigating":false`)
	assert.Contains(t, body, "layout-footer", "navigation drops the query overrides")

	sid := sessionFromHeader(t, h, session)
	st, ok := h.states.get(sid)
	require.True(t, ok)
	assert.Equal(t, []string{"list/card"}, st.layout.SelectedKeys())

	recent, err := fixture.Visits.Recent(context.Background(), sid, 5)
	require.NoError(t, err)
	keys := make([]string, 0, len(recent))
	for _, v := range recent {
		keys = append(keys, v.RouteKey)
	}
	assert.ElementsMatch(t, []string{"dashboard/workplace", "list/card"}, keys)
}

func TestNavigate_WorkplaceShowsHistory(t *testing.T) {
	h, _ := setupTestHandlers(t)
	session := mount(t, h, "/list/card").Header()

	body := post(t, h.Navigate, "/shell/navigate?key=dashboard%2Fworkplace", session)
	assert.Contains(t, body, `href="/list/card"`)
	assert.Contains(t, body, "Card List")
}

func TestNavigate_UnknownKey(t *testing.T) {
	h, fixture := setupTestHandlers(t)
	session := mount(t, h, "/dashboard/workplace").Header()

	body := post(t, h.Navigate, "/shell/navigate?key=missing", session)

	assert.Contains(t, body, "console.error")
	assert.Contains(t, body, "unknown route")
	assert.Contains(t, body, `"navigating":false`)
	assert.NotContains(t, body, `id="app-shell"`)

	st, ok := h.states.get(sessionFromHeader(t, h, session))
	require.True(t, ok)
	assert.Equal(t, "dashboard/workplace", st.layout.Selected, "selection unchanged")

	post(t, h.Navigate, "/shell/navigate?key=other-missing", session)
	rec := httptest.NewRecorder()
	fixture.Metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `leapdash_navigations_total{key="_unknown",outcome="unknown"} 2`)
	assert.NotContains(t, rec.Body.String(), `key="missing"`)
}

func TestNavigate_PreloadTimeout(t *testing.T) {
	block := make(chan struct{})
	t.Cleanup(func() { close(block) })

	h, _ := setupTestHandlers(t,
		features.WithRoutes(exampleRoutes+"  - key: slow\n    name: Slow\n"),
		features.WithPreloadTimeout(20*time.Millisecond),
		features.WithLoader("slow", func(context.Context) (pages.Page, error) {
			<-block
			return nil, errors.New("released")
		}),
	)
	session := mount(t, h, "/dashboard/workplace").Header()

	body := post(t, h.Navigate, "/shell/navigate?key=slow", session)
	assert.Contains(t, body, "console.error")
	assert.Contains(t, body, "timed out")
	assert.Contains(t, body, `"navigating":false`)
	assert.NotContains(t, body, "pushState")
}

func TestNavigate_WithoutSessionReloads(t *testing.T) {
	h, _ := setupTestHandlers(t)

	body := post(t, h.Navigate, "/shell/navigate?key=list%2Fcard", http.Header{})
	assert.Contains(t, body, "window.location.reload()")
}

// =============================================================================
// Collapse Tests
// =============================================================================

func TestCollapse_TogglesTwice(t *testing.T) {
	h, _ := setupTestHandlers(t)
	session := mount(t, h, "/dashboard/workplace").Header()

	first := post(t, h.Collapse, "/shell/collapse", session)
	assert.Contains(t, first, "width: 48px")
	assert.Contains(t, first, "padding-left: 48px")

	second := post(t, h.Collapse, "/shell/collapse", session)
	assert.Contains(t, second, "width: 220px")
	assert.Contains(t, second, "padding-left: 220px")
}

func TestCollapse_SurvivesNavigate(t *testing.T) {
	h, _ := setupTestHandlers(t)
	session := mount(t, h, "/dashboard/workplace").Header()

	post(t, h.Collapse, "/shell/collapse", session)
	body := post(t, h.Navigate, "/shell/navigate?key=list%2Fcard", session)
	assert.Contains(t, body, "width: 48px")
}

// =============================================================================
// Updates Tests - long-lived SSE stream
// =============================================================================

func TestUpdates_SendsShellOnBroadcast(t *testing.T) {
	h, fixture := setupTestHandlers(t)
	session := mount(t, h, "/list/card").Header()

	req := features.WithCookies(httptest.NewRequest(http.MethodGet, "/shell/updates", nil), session)
	req = features.RequestWithTimeout(t, req, 500*time.Millisecond)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		h.Updates(rec, req)
		close(done)
	}()

	require.Eventually(t, func() bool { return fixture.Notifier.Len() == 1 }, time.Second, 5*time.Millisecond)
	fixture.Notifier.Broadcast(notifier.CatalogReloaded)

	<-done

	body := rec.Body.String()
	assert.GreaterOrEqual(t, strings.Count(body, "event:"), 1)
	assert.Contains(t, body, `data-selected="list/card"`)
	assert.Equal(t, 0, fixture.Notifier.Len(), "stream unsubscribes on exit")
}

func TestUpdates_NoInitialState(t *testing.T) {
	h, _ := setupTestHandlers(t)
	session := mount(t, h, "/list/card").Header()

	req := features.WithCookies(httptest.NewRequest(http.MethodGet, "/shell/updates", nil), session)
	req = features.RequestWithTimeout(t, req, 50*time.Millisecond)
	rec := httptest.NewRecorder()
	h.Updates(rec, req)

	assert.Equal(t, 0, strings.Count(rec.Body.String(), "event:"))
}

func TestUpdates_SelectionRemovedByReload(t *testing.T) {
	h, fixture := setupTestHandlers(t, features.WithRoutes(exampleRoutes))
	session := mount(t, h, "/list/card").Header()

	// drop list/card from the tree, then reload
	require.NoError(t, writeFile(fixture.RoutesFile, `
routes:
  - key: dashboard/workplace
    name: menu.dashboard.workplace
`))
	require.NoError(t, fixture.Catalog.Reload())

	req := features.WithCookies(httptest.NewRequest(http.MethodGet, "/shell/updates", nil), session)
	req = features.RequestWithTimeout(t, req, 500*time.Millisecond)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		h.Updates(rec, req)
		close(done)
	}()
	require.Eventually(t, func() bool { return fixture.Notifier.Len() == 1 }, time.Second, 5*time.Millisecond)
	fixture.Notifier.Broadcast(notifier.CatalogReloaded)
	<-done

	assert.Contains(t, rec.Body.String(), `data-page="dashboard/workplace"`)
}

func sessionFromHeader(t *testing.T, h *Handlers, header http.Header) string {
	t.Helper()
	req := features.WithCookies(httptest.NewRequest(http.MethodGet, "/", nil), header)
	sid, ok := h.sessionID(req)
	require.True(t, ok)
	return sid
}
