package components

import "github.com/leapstack-labs/leapdash/internal/ui/markup"

// iconPaths holds 24x24 outline paths keyed by icon name.
var iconPaths = map[string]string{
	"dashboard":          "M3 13h8V3H3zm10 8h8V11h-8zM3 21h8v-6H3zm10-18v6h8V3z",
	"list":               "M4 6h16M4 12h16M4 18h16",
	"settings":           "M12 15a3 3 0 1 0 0-6 3 3 0 0 0 0 6zm7.4-3a7.4 7.4 0 0 0-.1-1.3l2-1.6-2-3.4-2.4 1a7.3 7.3 0 0 0-2.2-1.3L14.3 3h-4l-.4 2.4a7.3 7.3 0 0 0-2.2 1.3l-2.4-1-2 3.4 2 1.6a7.4 7.4 0 0 0 0 2.6l-2 1.6 2 3.4 2.4-1a7.3 7.3 0 0 0 2.2 1.3l.4 2.4h4l.4-2.4a7.3 7.3 0 0 0 2.2-1.3l2.4 1 2-3.4-2-1.6c.1-.4.1-.9.1-1.3z",
	"file":               "M14 3H6v18h12V7zm0 0v4h4",
	"apps":               "M4 4h6v6H4zm10 0h6v6h-6zM4 14h6v6H4zm10 0h6v6h-6z",
	"check-circle":       "M12 21a9 9 0 1 0 0-18 9 9 0 0 0 0 18zm-4-9 3 3 5-6",
	"exclamation-circle": "M12 21a9 9 0 1 0 0-18 9 9 0 0 0 0 18zm0-13v5m0 3v.5",
	"user":               "M12 12a4 4 0 1 0 0-8 4 4 0 0 0 0 8zm-7 9a7 7 0 0 1 14 0",
	"menu-fold":          "M4 6h16M10 12h10M4 18h16M8 9l-4 3 4 3",
	"menu-unfold":        "M4 6h16M4 12h10M4 18h16M16 9l4 3-4 3",
}

// writeIcon writes an inline SVG icon. Unknown names write nothing.
func writeIcon(m *markup.Writer, name string) {
	d, ok := iconPaths[name]
	if !ok {
		return
	}
	m.Printf(`<svg class="icon icon-%s" viewBox="0 0 24 24" width="16" height="16" fill="none" stroke="currentColor" stroke-width="2" aria-hidden="true"><path d="%s"/></svg>`, name, d)
}
