package search

import (
	"time"

	"github.com/tbourn/go-recipe-book/internal/domain"
	"github.com/tbourn/go-recipe-book/internal/live"
)

// DefaultDebounce is the quiet period before an ingredient query is applied.
const DefaultDebounce = 500 * time.Millisecond

// Debounced filters a catalog as the user types. Each Search restarts the
// quiet period; only the latest query is ever published and a superseded
// computation never overwrites a newer one.
type Debounced struct {
	catalog *Catalog
	deb     *live.Debouncer
	results *live.Value[[]domain.Ingredient]
}

// NewDebounced returns a pipeline whose initial result is the full catalog.
func NewDebounced(c *Catalog, delay time.Duration) *Debounced {
	return &Debounced{
		catalog: c,
		deb:     live.NewDebouncer(delay),
		results: live.NewValue(c.All()),
	}
}

// Search schedules filtering for query.
func (d *Debounced) Search(query string) {
	d.deb.Trigger(func(latest live.Latest) {
		res := d.catalog.Filter(query)
		latest(func() { d.results.Set(res) })
	})
}

// Results returns the most recently published result.
func (d *Debounced) Results() []domain.Ingredient { return d.results.Get() }

// Subscribe streams published results, starting with the current one.
func (d *Debounced) Subscribe() (<-chan []domain.Ingredient, func()) {
	return d.results.Subscribe()
}

// Close stops any pending search.
func (d *Debounced) Close() { d.deb.Stop() }
