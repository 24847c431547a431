package layout

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func boolPtr(b bool) *bool { return &b }

func TestParseOverrides(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  Overrides
	}{
		{"empty", "", Overrides{}},
		{"menu off", "menu=false", Overrides{Menu: boolPtr(false)}},
		{"all", "navbar=0&menu=true&footer=false", Overrides{Navbar: boolPtr(false), Menu: boolPtr(true), Footer: boolPtr(false)}},
		{"garbage ignored", "menu=maybe", Overrides{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, ParseOverrides(q))
		})
	}
}

func TestOverrides_QueryRoundTrip(t *testing.T) {
	o := Overrides{Menu: boolPtr(false), Footer: boolPtr(true)}
	assert.Equal(t, "footer=true&menu=false", o.Query().Encode())
	assert.Equal(t, o, ParseOverrides(o.Query()))
}

func TestCompute_Visibility(t *testing.T) {
	tests := []struct {
		name      string
		settings  Settings
		overrides Overrides
		want      View
	}{
		{
			name:     "everything shown",
			settings: DefaultSettings(),
			want: View{ShowNavbar: true, ShowMenu: true, ShowFooter: true,
				MenuWidth: 220, PaddingLeft: 220, PaddingTop: NavbarHeight},
		},
		{
			name:      "menu disabled by query",
			settings:  DefaultSettings(),
			overrides: Overrides{Menu: boolPtr(false)},
			want: View{ShowNavbar: true, ShowMenu: false, ShowFooter: true,
				MenuWidth: 220, PaddingLeft: 0, PaddingTop: NavbarHeight},
		},
		{
			name:      "query cannot enable a part settings hide",
			settings:  Settings{Navbar: false, Menu: true, Footer: false, MenuWidth: 200},
			overrides: Overrides{Navbar: boolPtr(true), Footer: boolPtr(true)},
			want: View{ShowNavbar: false, ShowMenu: true, ShowFooter: false,
				MenuWidth: 200, PaddingLeft: 200, PaddingTop: 0},
		},
		{
			name:     "zero width falls back to default",
			settings: Settings{Menu: true},
			want:     View{ShowMenu: true, MenuWidth: DefaultMenuWidth, PaddingLeft: DefaultMenuWidth},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.settings, State{Overrides: tt.overrides})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToggleCollapse_TwiceRestoresWidth(t *testing.T) {
	settings := Settings{Navbar: true, Menu: true, Footer: true, MenuWidth: 240}
	s := Mount("dashboard", Overrides{})

	before := Compute(settings, s)
	once := Compute(settings, s.ToggleCollapse())
	twice := Compute(settings, s.ToggleCollapse().ToggleCollapse())

	assert.Equal(t, 240, before.MenuWidth)
	assert.Equal(t, CollapsedMenuWidth, once.MenuWidth)
	assert.Equal(t, CollapsedMenuWidth, once.PaddingLeft)
	assert.True(t, once.Collapsed)
	assert.Equal(t, before, twice)
}

func TestSelect(t *testing.T) {
	s := Mount("dashboard", Overrides{Menu: boolPtr(false)}).ToggleCollapse()

	next := s.Select("list/card")
	assert.Equal(t, "list/card", next.Selected)
	assert.Equal(t, []string{"list/card"}, next.SelectedKeys())
	assert.True(t, next.Collapsed, "navigation keeps collapse state")
	assert.Equal(t, Overrides{}, next.Overrides, "navigation drops URL overrides")

	assert.Nil(t, State{}.SelectedKeys())
}

func TestStyles(t *testing.T) {
	v := Compute(DefaultSettings(), State{})
	assert.Equal(t, "padding-left: 220px; padding-top: 60px;", v.ContentStyle())
	assert.Equal(t, "width: 220px; padding-top: 60px;", v.SiderStyle())

	hidden := Compute(Settings{}, State{})
	assert.Equal(t, "", hidden.ContentStyle())
}
