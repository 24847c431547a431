package common

import (
	"github.com/leapstack-labs/leapdash/internal/routes"
	"github.com/leapstack-labs/leapdash/internal/ui/features/common/components"
)

// BuildMenu mirrors the route tree as menu nodes with localized labels.
// Top-level leaves link to "/"+key; deeper leaves are plain entries inside
// their group. A node with an empty children list is a leaf.
func BuildMenu(tree []routes.Node, lookup func(string) string) []components.MenuNode {
	return buildMenu(tree, lookup, 1)
}

func buildMenu(nodes []routes.Node, lookup func(string) string, depth int) []components.MenuNode {
	out := make([]components.MenuNode, 0, len(nodes))
	for _, n := range nodes {
		item := components.MenuNode{
			Key:   n.Key,
			Label: lookup(n.Name),
			Icon:  IconFor(n.Key),
			Depth: depth,
		}
		switch {
		case n.IsGroup():
			item.Children = buildMenu(n.Children, lookup, depth+1)
		case n.IsLeaf():
			if depth == 1 {
				item.Href = "/" + n.Key
			}
		default:
			// neither a leaf nor a group: nothing to show
			continue
		}
		out = append(out, item)
	}
	return out
}

// IconFor returns the icon for a menu key, or "" when it has none.
func IconFor(key string) string {
	return groupIcons[key]
}

// CountMenu returns the number of entries and groups in a menu.
func CountMenu(menu []components.MenuNode) (entries, groups int) {
	for _, n := range menu {
		if n.IsGroup() {
			groups++
			e, g := CountMenu(n.Children)
			entries += e
			groups += g
			continue
		}
		entries++
	}
	return entries, groups
}

// MaxDepth returns the deepest menu level, 0 for an empty menu.
func MaxDepth(menu []components.MenuNode) int {
	deepest := 0
	for _, n := range menu {
		d := n.Depth
		if n.IsGroup() {
			if cd := MaxDepth(n.Children); cd > d {
				d = cd
			}
		}
		if d > deepest {
			deepest = d
		}
	}
	return deepest
}
