package routes

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk layout of a route tree.
type File struct {
	Routes []Node `yaml:"routes"`
}

// Parse decodes a YAML route tree and validates it.
func Parse(data []byte) ([]Node, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse route tree: %w", err)
	}
	if len(f.Routes) == 0 {
		return nil, fmt.Errorf("%w: no routes defined", ErrInvalidTree)
	}
	if err := Validate(f.Routes); err != nil {
		return nil, err
	}
	return f.Routes, nil
}

// LoadFile reads a route tree from path. An empty path yields the built-in
// tree.
func LoadFile(path string) ([]Node, error) {
	if path == "" {
		return DefaultTree(), nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("read route tree: %w", err)
	}
	tree, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tree, nil
}
