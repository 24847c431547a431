package pages

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures
var builtinFS embed.FS

// Page kinds understood by the fixture renderer.
const (
	KindWorkplace    = "workplace"
	KindStats        = "stats"
	KindTable        = "table"
	KindCards        = "cards"
	KindForm         = "form"
	KindSteps        = "steps"
	KindDescriptions = "descriptions"
	KindResult       = "result"
	KindException    = "exception"
)

var knownKinds = map[string]bool{
	KindWorkplace:    true,
	KindStats:        true,
	KindTable:        true,
	KindCards:        true,
	KindForm:         true,
	KindSteps:        true,
	KindDescriptions: true,
	KindResult:       true,
	KindException:    true,
}

// Fixture is the declarative content of a page, read from a YAML file whose
// path is derived from the page key.
type Fixture struct {
	Kind    string     `yaml:"kind"`
	Summary string     `yaml:"summary"`
	Stats   []Stat     `yaml:"stats"`
	Columns []string   `yaml:"columns"`
	Rows    [][]string `yaml:"rows"`
	Cards   []Card     `yaml:"cards"`
	Fields  []Field    `yaml:"fields"`
	Steps   []string   `yaml:"steps"`
	Status  string     `yaml:"status"`
	Code    string     `yaml:"code"`
	Links   []Link     `yaml:"links"`
}

// Stat is a single figure on a stats or workplace page.
type Stat struct {
	Label string `yaml:"label"`
	Value string `yaml:"value"`
	Trend string `yaml:"trend"`
}

// Card is one entry of a card list.
type Card struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Tag         string `yaml:"tag"`
}

// Field is a labeled value, optionally grouped.
type Field struct {
	Group string `yaml:"group"`
	Label string `yaml:"label"`
	Value string `yaml:"value"`
}

// Link is a navigation shortcut.
type Link struct {
	Label string `yaml:"label"`
	Href  string `yaml:"href"`
}

// FixturePath returns the file that backs key inside a fixture filesystem.
func FixturePath(key string) string {
	return path.Clean(strings.Trim(key, "/")) + ".yaml"
}

// FixtureLoader returns a loader that parses the fixture for key from fsys.
func FixtureLoader(fsys fs.FS, key string) Loader {
	return func(ctx context.Context) (Page, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := fs.ReadFile(fsys, FixturePath(key))
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: no fixture for %s", ErrPageNotFound, key)
		}
		if err != nil {
			return nil, fmt.Errorf("read fixture %s: %w", key, err)
		}
		fx, err := ParseFixture(data)
		if err != nil {
			return nil, fmt.Errorf("fixture %s: %w", key, err)
		}
		return fixturePage{fx: fx}, nil
	}
}

// ParseFixture decodes and checks a fixture document.
func ParseFixture(data []byte) (*Fixture, error) {
	var fx Fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if !knownKinds[fx.Kind] {
		return nil, fmt.Errorf("unknown page kind %q", fx.Kind)
	}
	for i, row := range fx.Rows {
		if len(fx.Columns) > 0 && len(row) != len(fx.Columns) {
			return nil, fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(fx.Columns))
		}
	}
	return &fx, nil
}

// RegisterFS registers a fixture loader for every *.yaml file in fsys. The
// page key is the file path without its extension.
func RegisterFS(r *Registry, fsys fs.FS) ([]string, error) {
	var keys []string
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".yaml" {
			return nil
		}
		key := strings.TrimSuffix(p, ".yaml")
		r.Register(key, FixtureLoader(fsys, key))
		keys = append(keys, key)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("register pages: %w", err)
	}
	return keys, nil
}

// RegisterBuiltins registers the pages bundled with the binary.
func RegisterBuiltins(r *Registry) ([]string, error) {
	sub, err := fs.Sub(builtinFS, "fixtures")
	if err != nil {
		return nil, err
	}
	return RegisterFS(r, sub)
}
