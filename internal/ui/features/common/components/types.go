// Package components renders the dashboard shell as templ components.
package components

import (
	"github.com/a-h/templ"

	"github.com/leapstack-labs/leapdash/internal/ui/layout"
)

// MenuNode is one entry of the side menu. Groups have children; leaves do
// not. Only top-level leaves carry an Href.
type MenuNode struct {
	Key      string     `json:"key"`
	Label    string     `json:"label"`
	Href     string     `json:"href,omitempty"`
	Icon     string     `json:"icon,omitempty"`
	Depth    int        `json:"depth"`
	Children []MenuNode `json:"children,omitempty"`
}

// IsGroup reports whether the node renders as a collapsible group.
func (n MenuNode) IsGroup() bool {
	return len(n.Children) > 0
}

// LangOption is one entry of the navbar language switcher.
type LangOption struct {
	Tag    string
	Label  string
	Href   string
	Active bool
}

// Labels are the localized strings of the shell chrome.
type Labels struct {
	SiteTitle string
	Collapse  string
	Expand    string
	Language  string
	Footer    string
	Loading   string
}

// Shell is everything AppShell needs to render.
type Shell struct {
	Lang     string
	Title    string
	Labels   Labels
	Langs    []LangOption
	View     layout.View
	Menu     []MenuNode
	Selected string
	Content  templ.Component
	IsDev    bool
}
