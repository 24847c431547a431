// Package locale loads label tables and picks one per request.
package locale

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed tables/*.yaml
var builtinFS embed.FS

// Table maps a label name to its display string.
type Table map[string]string

// Lookup returns a function resolving names through t, falling back to the
// name itself when t has no entry.
func (t Table) Lookup() func(name string) string {
	return func(name string) string {
		if v, ok := t[name]; ok && v != "" {
			return v
		}
		return name
	}
}

// Bundle holds the tables of every supported language.
type Bundle struct {
	tags     []language.Tag
	tables   map[language.Tag]Table
	matcher  language.Matcher
	fallback language.Tag
}

// NewBundle creates a bundle. The fallback language must have a table.
func NewBundle(fallback language.Tag, tables map[language.Tag]Table) (*Bundle, error) {
	if _, ok := tables[fallback]; !ok {
		return nil, fmt.Errorf("no table for fallback locale %s", fallback)
	}

	// The fallback goes first so the matcher defaults to it.
	tags := []language.Tag{fallback}
	others := make([]language.Tag, 0, len(tables)-1)
	for tag := range tables {
		if tag != fallback {
			others = append(others, tag)
		}
	}
	sort.Slice(others, func(i, j int) bool { return others[i].String() < others[j].String() })
	tags = append(tags, others...)

	return &Bundle{
		tags:     tags,
		tables:   tables,
		matcher:  language.NewMatcher(tags),
		fallback: fallback,
	}, nil
}

// Tags returns the supported languages, fallback first.
func (b *Bundle) Tags() []language.Tag {
	return b.tags
}

// Fallback returns the fallback language.
func (b *Bundle) Fallback() language.Tag {
	return b.fallback
}

// Match picks the best supported language. An explicit choice (for example
// a ?lang= parameter) wins over the Accept-Language header.
func (b *Bundle) Match(explicit, acceptLanguage string) language.Tag {
	var prefs []language.Tag
	if explicit != "" {
		if tag, err := language.Parse(explicit); err == nil {
			prefs = append(prefs, tag)
		}
	}
	if acceptLanguage != "" {
		if tags, _, err := language.ParseAcceptLanguage(acceptLanguage); err == nil {
			prefs = append(prefs, tags...)
		}
	}
	if len(prefs) == 0 {
		return b.fallback
	}
	_, idx, conf := b.matcher.Match(prefs...)
	if conf == language.No {
		return b.fallback
	}
	return b.tags[idx]
}

// Table returns the table for tag, or the fallback table.
func (b *Bundle) Table(tag language.Tag) Table {
	if t, ok := b.tables[tag]; ok {
		return t
	}
	return b.tables[b.fallback]
}

// Builtin returns the tables bundled with the binary.
func Builtin() (map[language.Tag]Table, error) {
	sub, err := fs.Sub(builtinFS, "tables")
	if err != nil {
		return nil, err
	}
	return LoadFS(sub)
}

// LoadDir reads every <lang>.yaml file in dir.
func LoadDir(dir string) (map[language.Tag]Table, error) {
	return LoadFS(os.DirFS(dir))
}

// LoadFS reads every <lang>.yaml file at the root of fsys.
func LoadFS(fsys fs.FS) (map[language.Tag]Table, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read locale tables: %w", err)
	}

	tables := make(map[language.Tag]Table)
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".yaml" {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".yaml")
		tag, err := language.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("locale file %s: %w", e.Name(), err)
		}
		data, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Name(), err)
		}
		var t Table
		if err := yaml.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("parse %s: %w", e.Name(), err)
		}
		tables[tag] = t
	}
	if len(tables) == 0 {
		return nil, fmt.Errorf("no locale tables found")
	}
	return tables, nil
}
