package services

import (
	"context"
	"sync"

	"github.com/tbourn/go-recipe-book/internal/domain"
	"github.com/tbourn/go-recipe-book/internal/live"
	"github.com/tbourn/go-recipe-book/internal/repository"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DefaultSearchLimit caps browse results.
const DefaultSearchLimit = 4

// SearchStatus is the phase of a browse search.
type SearchStatus string

const (
	SearchLoading SearchStatus = "loading"
	SearchSuccess SearchStatus = "success"
)

// BrowseState is the browse screen snapshot. Results is only meaningful
// when Status is SearchSuccess.
type BrowseState struct {
	Query   string          `json:"query"`
	Status  SearchStatus    `json:"status"`
	Results []domain.Recipe `json:"results"`
}

// BrowseController runs name searches over the recipe store.
type BrowseController struct {
	recipes repository.RecipeRepository
	limit   int

	mu    sync.Mutex
	query string
	seq   uint64
	state *live.Value[BrowseState]
}

// NewBrowseController restores a browse session with query. A limit <= 0
// uses DefaultSearchLimit.
func NewBrowseController(recipes repository.RecipeRepository, limit int, query string) *BrowseController {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	return &BrowseController{
		recipes: recipes,
		limit:   limit,
		query:   query,
		state:   live.NewValue(BrowseState{Query: query, Status: SearchLoading, Results: []domain.Recipe{}}),
	}
}

// Query returns the query to persist across restarts.
func (b *BrowseController) Query() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.query
}

// State returns the current snapshot.
func (b *BrowseController) State() BrowseState { return b.state.Get() }

// Subscribe streams snapshots, starting with the current one.
func (b *BrowseController) Subscribe() (<-chan BrowseState, func()) { return b.state.Subscribe() }

// SetQuery stores q, publishes a loading state and then the results. When a
// newer query has arrived meanwhile the results are dropped.
func (b *BrowseController) SetQuery(ctx context.Context, q string) error {
	b.mu.Lock()
	b.query = q
	b.seq++
	seq := b.seq
	b.state.Set(BrowseState{Query: q, Status: SearchLoading, Results: []domain.Recipe{}})
	b.mu.Unlock()

	return b.refresh(ctx, q, seq)
}

// Search runs a one-off query without touching the session state.
func (b *BrowseController) Search(ctx context.Context, q string) ([]domain.Recipe, error) {
	ctx, span := otel.Tracer("services/BrowseController").Start(ctx, "Search",
		trace.WithAttributes(
			attribute.String("search.query", q),
			attribute.Int("search.limit", b.limit),
		),
	)
	defer span.End()

	res, err := b.recipes.SearchByName(ctx, q, b.limit)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("search.results", len(res)))
	return res, nil
}

// Run re-executes the current query whenever the recipe store changes. It
// returns when ctx is done or a search fails.
func (b *BrowseController) Run(ctx context.Context) error {
	changes, cancel := b.recipes.Changes()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
			b.mu.Lock()
			q, seq := b.query, b.seq
			b.mu.Unlock()
			if err := b.refresh(ctx, q, seq); err != nil {
				return err
			}
		}
	}
}

func (b *BrowseController) refresh(ctx context.Context, q string, seq uint64) error {
	res, err := b.Search(ctx, q)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if seq == b.seq {
		b.state.Set(BrowseState{Query: q, Status: SearchSuccess, Results: res})
	}
	return nil
}
