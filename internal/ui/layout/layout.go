// Package layout computes what the dashboard shell shows and how large each
// part is, from settings, URL overrides and the per-browser UI state.
package layout

import (
	"net/url"
	"strconv"
)

const (
	// NavbarHeight is the fixed navbar height in pixels.
	NavbarHeight = 60
	// CollapsedMenuWidth is the side menu width while collapsed.
	CollapsedMenuWidth = 48
	// DefaultMenuWidth is used when settings leave the width unset.
	DefaultMenuWidth = 220
)

// Settings are the externally owned visibility flags and menu width.
type Settings struct {
	Navbar    bool `koanf:"navbar"`
	Menu      bool `koanf:"menu"`
	Footer    bool `koanf:"footer"`
	MenuWidth int  `koanf:"menu_width"`
}

// DefaultSettings shows every part at the default width.
func DefaultSettings() Settings {
	return Settings{Navbar: true, Menu: true, Footer: true, MenuWidth: DefaultMenuWidth}
}

// Overrides are URL query flags that can force a part off. A nil field means
// the query did not mention it.
type Overrides struct {
	Navbar *bool
	Menu   *bool
	Footer *bool
}

// ParseOverrides reads the navbar, menu and footer query parameters. Only
// values that parse as booleans count.
func ParseOverrides(q url.Values) Overrides {
	flag := func(name string) *bool {
		if !q.Has(name) {
			return nil
		}
		v, err := strconv.ParseBool(q.Get(name))
		if err != nil {
			return nil
		}
		return &v
	}
	return Overrides{
		Navbar: flag("navbar"),
		Menu:   flag("menu"),
		Footer: flag("footer"),
	}
}

// Query encodes the overrides back into query parameters.
func (o Overrides) Query() url.Values {
	q := url.Values{}
	set := func(name string, v *bool) {
		if v != nil {
			q.Set(name, strconv.FormatBool(*v))
		}
	}
	set("navbar", o.Navbar)
	set("menu", o.Menu)
	set("footer", o.Footer)
	return q
}

func allowed(setting bool, override *bool) bool {
	return setting && (override == nil || *override)
}

// State is the UI state owned by one mounted shell.
type State struct {
	Collapsed bool
	Selected  string
	Overrides Overrides
}

// Mount returns the state of a freshly mounted shell.
func Mount(initialKey string, overrides Overrides) State {
	return State{Selected: initialKey, Overrides: overrides}
}

// ToggleCollapse flips the collapsed flag.
func (s State) ToggleCollapse() State {
	s.Collapsed = !s.Collapsed
	return s
}

// Select records a completed navigation to key. The new URL carries no query,
// so URL overrides no longer apply.
func (s State) Select(key string) State {
	s.Selected = key
	s.Overrides = Overrides{}
	return s
}

// SelectedKeys returns the selection as the menu expects it.
func (s State) SelectedKeys() []string {
	if s.Selected == "" {
		return nil
	}
	return []string{s.Selected}
}

// View is the computed geometry and visibility of the shell.
type View struct {
	ShowNavbar  bool
	ShowMenu    bool
	ShowFooter  bool
	Collapsed   bool
	MenuWidth   int
	PaddingLeft int
	PaddingTop  int
}

// Compute derives the view for the given settings and state.
func Compute(settings Settings, state State) View {
	width := settings.MenuWidth
	if width <= 0 {
		width = DefaultMenuWidth
	}
	if state.Collapsed {
		width = CollapsedMenuWidth
	}

	v := View{
		ShowNavbar: allowed(settings.Navbar, state.Overrides.Navbar),
		ShowMenu:   allowed(settings.Menu, state.Overrides.Menu),
		ShowFooter: allowed(settings.Footer, state.Overrides.Footer),
		Collapsed:  state.Collapsed,
		MenuWidth:  width,
	}
	if v.ShowMenu {
		v.PaddingLeft = width
	}
	if v.ShowNavbar {
		v.PaddingTop = NavbarHeight
	}
	return v
}

// ContentStyle returns the inline style of the content area.
func (v View) ContentStyle() string {
	s := ""
	if v.PaddingLeft > 0 {
		s += "padding-left: " + strconv.Itoa(v.PaddingLeft) + "px;"
	}
	if v.PaddingTop > 0 {
		if s != "" {
			s += " "
		}
		s += "padding-top: " + strconv.Itoa(v.PaddingTop) + "px;"
	}
	return s
}

// SiderStyle returns the inline style of the side menu.
func (v View) SiderStyle() string {
	s := "width: " + strconv.Itoa(v.MenuWidth) + "px;"
	if v.PaddingTop > 0 {
		s += " padding-top: " + strconv.Itoa(v.PaddingTop) + "px;"
	}
	return s
}
