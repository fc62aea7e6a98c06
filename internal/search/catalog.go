// Package search provides the master ingredient catalog and the matching
// rules used by the ingredient picker:
//
//   - Catalog is an immutable, concurrency-safe list loaded once from the
//     bundled ingredients.json (or an override file)
//   - Matches implements the case-insensitive name/query rule
//   - Debounced wraps a catalog with a latest-wins, delayed filter pipeline
//
// The package does not log; callers decide what to report.
package search

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tbourn/go-recipe-book/internal/domain"
)

//go:embed ingredients.json
var bundled []byte

// Option configures LoadCatalog.
type Option func(*config)

type config struct {
	path     string
	maxItems int
}

// WithFile loads the catalog from path instead of the bundled list. An empty
// path keeps the bundled list.
func WithFile(path string) Option {
	return func(c *config) {
		c.path = strings.TrimSpace(path)
	}
}

// WithMaxItems caps the number of catalog entries (0 = no cap).
func WithMaxItems(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.maxItems = n
		}
	}
}

// Catalog is the master ingredient list. It is read-only after construction.
type Catalog struct {
	items []domain.Ingredient
	index map[string]int
}

// LoadCatalog builds the catalog from the bundled list or the configured file.
func LoadCatalog(opts ...Option) (*Catalog, error) {
	var cfg config
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.path == "" {
		return decodeCatalog(bytes.NewReader(bundled), cfg)
	}
	f, err := os.Open(cfg.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return decodeCatalog(f, cfg)
}

// NewCatalog builds a catalog from items. Entries are normalized; blank names
// are dropped and the first entry wins for duplicate names.
func NewCatalog(items []domain.Ingredient) *Catalog {
	c := &Catalog{index: make(map[string]int, len(items))}
	for _, in := range items {
		in = in.Normalize()
		if in.Name == "" {
			continue
		}
		key := domain.Fold(in.Name)
		if _, dup := c.index[key]; dup {
			continue
		}
		c.index[key] = len(c.items)
		c.items = append(c.items, in)
	}
	return c
}

func decodeCatalog(r io.Reader, cfg config) (*Catalog, error) {
	var items []domain.Ingredient
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode ingredient catalog: %w", err)
	}
	if cfg.maxItems > 0 && len(items) > cfg.maxItems {
		items = items[:cfg.maxItems]
	}
	return NewCatalog(items), nil
}

// Len returns the number of entries.
func (c *Catalog) Len() int { return len(c.items) }

// All returns a copy of every entry in catalog order.
func (c *Catalog) All() []domain.Ingredient {
	return c.Filter("")
}

// Lookup finds an entry by name, case-insensitively.
func (c *Catalog) Lookup(name string) (domain.Ingredient, bool) {
	i, ok := c.index[domain.Fold(name)]
	if !ok {
		return domain.Ingredient{}, false
	}
	return clone(c.items[i]), true
}

// Filter returns the entries matching query in catalog order. A blank query
// returns the whole list.
func (c *Catalog) Filter(query string) []domain.Ingredient {
	out := make([]domain.Ingredient, 0, len(c.items))
	for _, in := range c.items {
		if Matches(in.Name, query) {
			out = append(out, clone(in))
		}
	}
	return out
}

func clone(in domain.Ingredient) domain.Ingredient {
	in.Metrics = append([]string(nil), in.Metrics...)
	return in
}
