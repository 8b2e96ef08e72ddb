package routeload

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"calcio-stop/internal/catalog"

	"gopkg.in/yaml.v3"
)

//go:embed routes.yaml
var defaultRoutes []byte

// Table maps page paths to the stores they need.
type Table struct {
	exact    map[string][]string
	prefixes []prefixRule
}

type prefixRule struct {
	prefix string
	stores []string
}

type tableFile struct {
	Routes map[string][]string `yaml:"routes"`
}

// DefaultTable parses the embedded route table.
func DefaultTable() (*Table, error) {
	return ParseTable(defaultRoutes)
}

// ParseTable reads a YAML route table. Every store must be a known store name.
func ParseTable(data []byte) (*Table, error) {
	var file tableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse route table: %w", err)
	}

	t := &Table{exact: make(map[string][]string)}
	for pattern, stores := range file.Routes {
		for _, s := range stores {
			if !catalog.Known(s) {
				return nil, fmt.Errorf("route %s: unknown store %q", pattern, s)
			}
		}

		if prefix, ok := strings.CutSuffix(pattern, "/*"); ok {
			t.prefixes = append(t.prefixes, prefixRule{prefix: Normalize(prefix) + "/", stores: stores})
			continue
		}
		t.exact[Normalize(pattern)] = stores
	}

	// Longest prefix wins.
	sort.Slice(t.prefixes, func(i, j int) bool {
		return len(t.prefixes[i].prefix) > len(t.prefixes[j].prefix)
	})

	return t, nil
}

// Stores returns the stores needed by path. Unknown paths need nothing.
func (t *Table) Stores(path string) []string {
	path = Normalize(path)
	if stores, ok := t.exact[path]; ok {
		return stores
	}
	for _, rule := range t.prefixes {
		if strings.HasPrefix(path, rule.prefix) && len(path) > len(rule.prefix) {
			return rule.stores
		}
	}
	return nil
}

// Needs reports whether path depends on any of the named stores.
func (t *Table) Needs(path string, names []string) bool {
	for _, s := range t.Stores(path) {
		for _, name := range names {
			if s == name {
				return true
			}
		}
	}
	return false
}

// Normalize strips the query string, fragment and trailing slash.
func Normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimSpace(path)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}
