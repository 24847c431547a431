package routes

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapdash/internal/pages"
)

// PageResolver binds a leaf key to a lazily loaded page.
type PageResolver interface {
	Resolve(key string) (*pages.Handle, error)
}

// Route is a flattened leaf with its page handle.
type Route struct {
	Key   string
	Name  string
	Path  string // explicit path from the tree, may be empty
	Depth int
	Page  *pages.Handle
}

// URL returns the explicit path of the route or "/" + key.
func (r Route) URL() string {
	if r.Path != "" {
		return r.Path
	}
	return "/" + r.Key
}

// Flatten returns the leaves of tree in pre-order, each bound to its page.
// The tree is not modified. A leaf whose key has no page is an error.
func Flatten(tree []Node, resolver PageResolver) ([]Route, error) {
	leaves := Leaves(tree)
	out := make([]Route, 0, len(leaves))
	for _, l := range leaves {
		handle, err := resolver.Resolve(l.Key)
		if err != nil {
			return nil, fmt.Errorf("route %q: %w", l.Key, err)
		}
		out = append(out, Route{
			Key:   l.Key,
			Name:  l.Name,
			Path:  l.Path,
			Depth: l.Depth,
			Page:  handle,
		})
	}
	return out, nil
}

// Table indexes flattened routes by key and by URL.
type Table struct {
	routes []Route
	byKey  map[string]int
	byURL  map[string]int
}

// NewTable builds a table from flattened routes. Earlier routes win on
// duplicate keys or URLs.
func NewTable(routes []Route) *Table {
	t := &Table{
		routes: routes,
		byKey:  make(map[string]int, len(routes)),
		byURL:  make(map[string]int, len(routes)),
	}
	for i, r := range routes {
		if _, ok := t.byKey[r.Key]; !ok {
			t.byKey[r.Key] = i
		}
		if _, ok := t.byURL[r.URL()]; !ok {
			t.byURL[r.URL()] = i
		}
	}
	return t
}

// Routes returns the flattened routes in tree order.
func (t *Table) Routes() []Route {
	return t.routes
}

// Len returns the number of routes.
func (t *Table) Len() int {
	return len(t.routes)
}

// Find looks a route up by key.
func (t *Table) Find(key string) (Route, bool) {
	i, ok := t.byKey[key]
	if !ok {
		return Route{}, false
	}
	return t.routes[i], true
}

// Match resolves a URL path to a route. The path matches a route's URL or,
// as a prefix, any sub-path below it.
func (t *Table) Match(urlPath string) (Route, bool) {
	p := "/" + strings.Trim(urlPath, "/")
	if i, ok := t.byURL[p]; ok {
		return t.routes[i], true
	}
	best, bestLen := -1, 0
	for i, r := range t.routes {
		u := r.URL()
		if strings.HasPrefix(p, u+"/") && len(u) > bestLen {
			best, bestLen = i, len(u)
		}
	}
	if best < 0 {
		return Route{}, false
	}
	return t.routes[best], true
}

// KeyFromPath returns the key a URL path names: the path without its leading
// slash.
func KeyFromPath(urlPath string) string {
	return strings.Trim(urlPath, "/")
}
