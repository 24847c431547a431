package pages

import (
	"context"

	"github.com/a-h/templ"

	"github.com/leapstack-labs/leapdash/internal/ui/markup"
)

type fixturePage struct {
	fx *Fixture
}

// FixtureOf returns the parsed fixture behind a page loaded from one, or nil.
func FixtureOf(p Page) *Fixture {
	if fp, ok := p.(fixturePage); ok {
		return fp.fx
	}
	return nil
}

func (p fixturePage) Render(rc RenderContext) templ.Component {
	fx := p.fx
	return markup.Func(func(_ context.Context, m *markup.Writer) {
		m.Printf(`<section class="page page-%s" data-page="%s">`, fx.Kind, rc.Key)
		m.Printf(`<header class="page-header"><h1>%s</h1>`, rc.Label)
		if fx.Summary != "" && fx.Kind != KindResult && fx.Kind != KindException {
			m.Printf(`<p class="page-summary">%s</p>`, fx.Summary)
		}
		m.Raw(`</header>`)

		switch fx.Kind {
		case KindWorkplace:
			renderStats(m, fx.Stats)
			renderRecent(m, rc)
			renderLinks(m, rc.textOr("page.quickLinks", "Quick links"), fx.Links)
		case KindStats:
			renderStats(m, fx.Stats)
		case KindTable:
			renderTable(m, fx.Columns, fx.Rows)
		case KindCards:
			renderCards(m, fx.Cards)
		case KindSteps:
			renderSteps(m, fx.Steps)
			renderFields(m, fx.Fields, true)
		case KindForm:
			renderFields(m, fx.Fields, true)
		case KindDescriptions:
			renderFields(m, fx.Fields, false)
		case KindResult:
			m.Printf(`<div class="result result-%s"><p>%s</p>`, fx.Status, fx.Summary)
			renderLinks(m, "", fx.Links)
			m.Raw(`</div>`)
		case KindException:
			m.Printf(`<div class="exception"><p class="exception-code">%s</p><p>%s</p>`, fx.Code, fx.Summary)
			renderLinks(m, "", fx.Links)
			m.Raw(`</div>`)
		}
		m.Raw(`</section>`)
	})
}

func renderStats(m *markup.Writer, stats []Stat) {
	if len(stats) == 0 {
		return
	}
	m.Raw(`<div class="stats">`)
	for _, s := range stats {
		m.Printf(`<div class="stat"><span class="stat-label">%s</span><span class="stat-value">%s</span>`, s.Label, s.Value)
		if s.Trend != "" {
			m.Printf(`<span class="stat-trend trend-%s"></span>`, s.Trend)
		}
		m.Raw(`</div>`)
	}
	m.Raw(`</div>`)
}

func renderRecent(m *markup.Writer, rc RenderContext) {
	m.Printf(`<div class="recent"><h2>%s</h2>`, rc.textOr("page.recent", "Recently visited"))
	if len(rc.Recent) == 0 {
		m.Printf(`<p class="empty">%s</p></div>`, rc.textOr("page.recentEmpty", "Nothing visited yet."))
		return
	}
	m.Raw(`<ul>`)
	for _, r := range rc.Recent {
		m.Printf(`<li><a href="%s">%s</a> <time datetime="%s">%s</time></li>`,
			r.Href, r.Label, r.VisitedAt.UTC().Format("2006-01-02T15:04:05Z"), r.VisitedAt.Format("Jan 2 15:04"))
	}
	m.Raw(`</ul></div>`)
}

func renderLinks(m *markup.Writer, heading string, links []Link) {
	if len(links) == 0 {
		return
	}
	m.Raw(`<nav class="links">`)
	if heading != "" {
		m.Printf(`<h2>%s</h2>`, heading)
	}
	for _, l := range links {
		m.Printf(`<a class="link" href="%s">%s</a>`, l.Href, l.Label)
	}
	m.Raw(`</nav>`)
}

func renderTable(m *markup.Writer, columns []string, rows [][]string) {
	m.Raw(`<table class="table"><thead><tr>`)
	for _, c := range columns {
		m.Printf(`<th>%s</th>`, c)
	}
	m.Raw(`</tr></thead><tbody>`)
	for _, row := range rows {
		m.Raw(`<tr>`)
		for _, cell := range row {
			m.Printf(`<td>%s</td>`, cell)
		}
		m.Raw(`</tr>`)
	}
	m.Raw(`</tbody></table>`)
}

func renderCards(m *markup.Writer, cards []Card) {
	m.Raw(`<div class="cards">`)
	for _, c := range cards {
		m.Printf(`<article class="card"><h3>%s</h3><p>%s</p>`, c.Title, c.Description)
		if c.Tag != "" {
			m.Printf(`<span class="tag">%s</span>`, c.Tag)
		}
		m.Raw(`</article>`)
	}
	m.Raw(`</div>`)
}

func renderSteps(m *markup.Writer, steps []string) {
	m.Raw(`<ol class="steps">`)
	for i, s := range steps {
		class := "step"
		if i == 0 {
			class = "step step-current"
		}
		m.Printf(`<li class="%s">%s</li>`, class, s)
	}
	m.Raw(`</ol>`)
}

func renderFields(m *markup.Writer, fields []Field, editable bool) {
	group := "\x00"
	open := false
	for _, f := range fields {
		if f.Group != group {
			if open {
				m.Raw(`</dl></fieldset>`)
			}
			m.Raw(`<fieldset class="field-group">`)
			if f.Group != "" {
				m.Printf(`<legend>%s</legend>`, f.Group)
			}
			m.Raw(`<dl>`)
			group, open = f.Group, true
		}
		m.Printf(`<dt>%s</dt>`, f.Label)
		if editable {
			m.Printf(`<dd><input type="text" name="%s" value="%s"></dd>`, f.Label, f.Value)
		} else {
			m.Printf(`<dd>%s</dd>`, f.Value)
		}
	}
	if open {
		m.Raw(`</dl></fieldset>`)
	}
}
