package commands

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss/tree"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapdash/internal/cli/output"
	"github.com/leapstack-labs/leapdash/internal/ui/features/common"
	"github.com/leapstack-labs/leapdash/internal/ui/features/common/components"
)

// MenuOutput is the JSON document printed by `leapdash menu -o json`.
type MenuOutput struct {
	Title    string                `json:"title"`
	Entries  int                   `json:"entries"`
	Groups   int                   `json:"groups"`
	MaxDepth int                   `json:"max_depth"`
	Menu     []components.MenuNode `json:"menu"`
}

// NewMenuCommand creates the menu command.
func NewMenuCommand() *cobra.Command {
	var lang string

	cmd := &cobra.Command{
		Use:   "menu",
		Short: "Show the side menu built from the route tree",
		Long: `Show the side menu exactly as the shell renders it: groups with
their children, leaves with their labels.`,
		Example: `  # Show the menu of the built-in tree
  leapdash menu

  # Show the menu in Chinese
  leapdash menu --lang zh-CN`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMenu(cmd, lang)
		},
	}

	cmd.Flags().StringVar(&lang, "lang", "", "Label language (default: default_locale)")
	return cmd
}

func runMenu(cmd *cobra.Command, lang string) error {
	cc := NewCommandContext(cmd)
	cat, _, err := loadCatalog(cc.Cfg, cc.Logger, nil)
	if err != nil {
		return err
	}
	snap := cat.Snapshot()
	lookup := labelLookup(snap, lang)
	menu := common.BuildMenu(snap.Tree, lookup)
	entries, groups := common.CountMenu(menu)
	title := lookup("site.title")

	r := cc.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(MenuOutput{
			Title:    title,
			Entries:  entries,
			Groups:   groups,
			MaxDepth: common.MaxDepth(menu),
			Menu:     menu,
		})
	case output.ModeMarkdown:
		r.Header(1, title)
		var b strings.Builder
		writeMenuMarkdown(&b, menu, 0)
		r.Printf("%s", b.String())
		r.Println("")
		r.Println(output.FormatKeyValue("Entries", entries))
		r.Println(output.FormatKeyValue("Groups", groups))
	default:
		styles := r.Styles()
		t := tree.Root(styles.Header.Render(title)).
			Enumerator(tree.RoundedEnumerator).
			EnumeratorStyle(styles.Muted)
		addMenuChildren(t, menu, styles)
		r.Println(t.String())
		r.Println("")
		r.Muted(fmt.Sprintf("%d entries, %d groups", entries, groups))
	}
	return nil
}

func addMenuChildren(t *tree.Tree, menu []components.MenuNode, styles *output.Styles) {
	for _, n := range menu {
		label := n.Label + " " + styles.Muted.Render("("+n.Key+")")
		if !n.IsGroup() {
			t.Child(label)
			continue
		}
		sub := tree.Root(styles.Bold.Render(n.Label)).
			Enumerator(tree.RoundedEnumerator).
			EnumeratorStyle(styles.Muted)
		addMenuChildren(sub, n.Children, styles)
		t.Child(sub)
	}
}

func writeMenuMarkdown(b *strings.Builder, menu []components.MenuNode, indent int) {
	pad := strings.Repeat("  ", indent)
	for _, n := range menu {
		if n.IsGroup() {
			fmt.Fprintf(b, "%s- **%s**\n", pad, n.Label)
			writeMenuMarkdown(b, n.Children, indent+1)
			continue
		}
		if n.Href != "" {
			fmt.Fprintf(b, "%s- [%s](%s) `%s`\n", pad, n.Label, n.Href, n.Key)
			continue
		}
		fmt.Fprintf(b, "%s- %s `%s`\n", pad, n.Label, n.Key)
	}
}
