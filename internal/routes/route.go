// Package routes defines the dashboard route tree and the walks that derive
// the flattened leaf list and the side menu from it.
package routes

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidTree is returned when a route tree violates its structural rules.
var ErrInvalidTree = errors.New("invalid route tree")

// Node is one entry of the route tree.
//
// A node with a key and no non-empty children is a leaf and is bound to a
// page. A node with children is a group. An empty children list still makes
// a leaf.
type Node struct {
	Key      string `yaml:"key" json:"key"`
	Name     string `yaml:"name" json:"name"`
	Path     string `yaml:"path,omitempty" json:"path,omitempty"`
	Children []Node `yaml:"children,omitempty" json:"children,omitempty"`
}

// IsLeaf reports whether the node is bound to a page.
func (n Node) IsLeaf() bool {
	return n.Key != "" && len(n.Children) == 0
}

// IsGroup reports whether the node has child routes.
func (n Node) IsGroup() bool {
	return len(n.Children) > 0
}

// URL returns the navigation target of the node: its explicit path, or the
// key rooted at "/".
func (n Node) URL() string {
	if n.Path != "" {
		return n.Path
	}
	return "/" + n.Key
}

// Walk visits the tree in pre-order. Depth starts at 1 for top-level nodes.
// Returning an error from fn stops the walk.
func Walk(tree []Node, fn func(n Node, depth int) error) error {
	var travel func(nodes []Node, depth int) error
	travel = func(nodes []Node, depth int) error {
		for _, n := range nodes {
			if err := fn(n, depth); err != nil {
				return err
			}
			if n.IsGroup() {
				if err := travel(n.Children, depth+1); err != nil {
					return err
				}
			}
		}
		return nil
	}
	return travel(tree, 1)
}

// Leaf is a leaf node together with its position in the tree.
type Leaf struct {
	Node
	Depth   int
	Parents []string
}

// Leaves returns the leaf nodes in pre-order without resolving any page.
func Leaves(tree []Node) []Leaf {
	var out []Leaf
	var travel func(nodes []Node, depth int, parents []string)
	travel = func(nodes []Node, depth int, parents []string) {
		for _, n := range nodes {
			switch {
			case n.IsGroup():
				next := append(append([]string(nil), parents...), n.Key)
				travel(n.Children, depth+1, next)
			case n.IsLeaf():
				out = append(out, Leaf{Node: n, Depth: depth, Parents: parents})
			}
		}
	}
	travel(tree, 1, nil)
	return out
}

// Count returns the number of leaves and groups in the tree.
func Count(tree []Node) (leaves, groups int) {
	_ = Walk(tree, func(n Node, _ int) error {
		switch {
		case n.IsGroup():
			groups++
		case n.IsLeaf():
			leaves++
		}
		return nil
	})
	return leaves, groups
}

// Validate checks that leaf keys are unique and explicit paths are rooted.
func Validate(tree []Node) error {
	seen := make(map[string]struct{})
	urls := make(map[string]string)
	return Walk(tree, func(n Node, _ int) error {
		if !n.IsLeaf() {
			return nil
		}
		if _, dup := seen[n.Key]; dup {
			return fmt.Errorf("%w: duplicate leaf key %q", ErrInvalidTree, n.Key)
		}
		seen[n.Key] = struct{}{}

		if n.Path != "" && !strings.HasPrefix(n.Path, "/") {
			return fmt.Errorf("%w: path %q of %q must start with /", ErrInvalidTree, n.Path, n.Key)
		}
		if other, dup := urls[n.URL()]; dup {
			return fmt.Errorf("%w: %q and %q share url %s", ErrInvalidTree, other, n.Key, n.URL())
		}
		urls[n.URL()] = n.Key
		return nil
	})
}
