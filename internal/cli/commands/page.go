package commands

import (
	"bytes"
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapdash/internal/cli/output"
	"github.com/leapstack-labs/leapdash/internal/pages"
)

// PageOutput is the JSON document printed by `leapdash page <key> -o json`.
type PageOutput struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	URL   string `json:"url"`
	Kind  string `json:"kind,omitempty"`
	HTML  string `json:"html"`
}

// NewPageCommand creates the page command.
func NewPageCommand() *cobra.Command {
	var lang string

	cmd := &cobra.Command{
		Use:   "page <key>",
		Short: "Preload and render one page",
		Long: `Preload the page bound to a route key and print its content.

Terminal and markdown output convert the rendered HTML to markdown; JSON
output carries the HTML itself. Useful to check a page fixture without
starting the server.`,
		Example: `  # Render the workplace page
  leapdash page dashboard/workplace

  # Raw HTML of a custom page
  leapdash page reports/weekly --pages-dir ./pages -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPage(cmd, args[0], lang)
		},
	}

	cmd.Flags().StringVar(&lang, "lang", "", "Label language (default: default_locale)")
	return cmd
}

func runPage(cmd *cobra.Command, key, lang string) error {
	cc := NewCommandContext(cmd)
	cat, _, err := loadCatalog(cc.Cfg, cc.Logger, nil)
	if err != nil {
		return err
	}
	snap := cat.Snapshot()
	route, ok := snap.Table.Find(key)
	if !ok {
		return fmt.Errorf("unknown route %q: run `leapdash routes` to list the keys", key)
	}

	page, err := route.Page.Preload(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load page %s: %w", key, err)
	}

	lookup := labelLookup(snap, lang)
	rc := pages.RenderContext{Key: route.Key, Label: lookup(route.Name), Lookup: lookup}
	var buf bytes.Buffer
	if err := page.Render(rc).Render(cmd.Context(), &buf); err != nil {
		return fmt.Errorf("failed to render page %s: %w", key, err)
	}

	r := cc.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		out := PageOutput{Key: route.Key, Label: rc.Label, URL: route.URL(), HTML: buf.String()}
		if fx := pages.FixtureOf(page); fx != nil {
			out.Kind = fx.Kind
		}
		return r.JSON(out)
	}

	md, err := htmltomarkdown.ConvertString(buf.String())
	if err != nil {
		return fmt.Errorf("failed to convert page %s to markdown: %w", key, err)
	}
	r.Println(strings.TrimSpace(md))
	r.Println("")
	if r.EffectiveMode() == output.ModeMarkdown {
		r.Println(output.FormatKeyValue("URL", route.URL()))
	} else {
		r.Muted(route.URL())
	}
	return nil
}
