// Package store exposes the recipe table and the preferences document as
// live data sources. Reads delegate to the repo package; every successful
// write publishes a change notification that subscribers can react to.
package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-recipe-book/internal/domain"
	"github.com/tbourn/go-recipe-book/internal/live"
	"github.com/tbourn/go-recipe-book/internal/repo"
)

// Recipes is the live recipe store. It is safe for concurrent use; writes
// are serialized by the database engine.
type Recipes struct {
	db      *gorm.DB
	version *live.Value[uint64]
}

// NewRecipes returns a Recipes store over db.
func NewRecipes(db *gorm.DB) *Recipes {
	return &Recipes{db: db, version: live.NewValue[uint64](0)}
}

// DB returns the underlying handle.
func (s *Recipes) DB() *gorm.DB { return s.db }

// Changes subscribes to the store's change counter. The channel yields the
// current version immediately and the latest version after each write.
func (s *Recipes) Changes() (<-chan uint64, func()) { return s.version.Subscribe() }

// Version returns the number of writes observed since construction.
func (s *Recipes) Version() uint64 { return s.version.Get() }

func (s *Recipes) changed() {
	s.version.Update(func(v uint64) uint64 { return v + 1 })
}

// Insert stores a new recipe and returns its id.
func (s *Recipes) Insert(ctx context.Context, r domain.Recipe) (int64, error) {
	id, err := repo.InsertRecipe(ctx, s.db, r)
	if err != nil {
		return 0, err
	}
	s.changed()
	return id, nil
}

// Update replaces the recipe with r.ID.
func (s *Recipes) Update(ctx context.Context, r domain.Recipe) error {
	if err := repo.UpdateRecipe(ctx, s.db, r); err != nil {
		return err
	}
	s.changed()
	return nil
}

// Delete removes the recipe; absent ids are a no-op.
func (s *Recipes) Delete(ctx context.Context, id int64) error {
	if err := repo.DeleteRecipe(ctx, s.db, id); err != nil {
		return err
	}
	s.changed()
	return nil
}

// Touch marks the recipe as used at the given time.
func (s *Recipes) Touch(ctx context.Context, id int64, at time.Time) error {
	if err := repo.TouchRecipe(ctx, s.db, id, at); err != nil {
		return err
	}
	s.changed()
	return nil
}

// FindByID returns the recipe or repo.ErrNotFound.
func (s *Recipes) FindByID(ctx context.Context, id int64) (*domain.Recipe, error) {
	return repo.FindRecipe(ctx, s.db, id)
}

// SearchByName returns recipes whose name contains query case-insensitively.
func (s *Recipes) SearchByName(ctx context.Context, query string, limit int) ([]domain.Recipe, error) {
	return repo.SearchRecipesByName(ctx, s.db, query, limit)
}

// ListRecent returns recipes ordered by last use.
func (s *Recipes) ListRecent(ctx context.Context, limit int) ([]domain.Recipe, error) {
	return repo.ListRecentRecipes(ctx, s.db, limit)
}

// ListByCategory returns recipes in c; CategoryAll matches every recipe.
func (s *Recipes) ListByCategory(ctx context.Context, c domain.Category, limit int) ([]domain.Recipe, error) {
	return repo.ListRecipesByCategory(ctx, s.db, c, limit)
}

// ListLatest returns the most recently created recipes.
func (s *Recipes) ListLatest(ctx context.Context, limit int) ([]domain.Recipe, error) {
	return repo.ListRecipes(ctx, s.db, limit)
}

// Stats summarises the table for cache validators.
func (s *Recipes) Stats(ctx context.Context) (repo.RecipeStats, error) {
	return repo.RecipesStats(ctx, s.db)
}
