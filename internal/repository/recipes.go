// Package repository exposes the recipe and preferences stores to the
// controllers. Implementations forward every call unchanged; they exist so
// that controllers depend on these contracts rather than on storage.
package repository

import (
	"context"
	"time"

	"github.com/tbourn/go-recipe-book/internal/domain"
	"github.com/tbourn/go-recipe-book/internal/repo"
	"github.com/tbourn/go-recipe-book/internal/store"
)

// ErrNotFound is returned by Find for an absent recipe.
var ErrNotFound = repo.ErrNotFound

// RecipeRepository is the recipe data source and command sink.
type RecipeRepository interface {
	Insert(ctx context.Context, r domain.Recipe) (int64, error)
	Update(ctx context.Context, r domain.Recipe) error
	Delete(ctx context.Context, id int64) error
	Touch(ctx context.Context, id int64, at time.Time) error
	Find(ctx context.Context, id int64) (*domain.Recipe, error)
	SearchByName(ctx context.Context, query string, limit int) ([]domain.Recipe, error)
	ListRecent(ctx context.Context, limit int) ([]domain.Recipe, error)
	ListByCategory(ctx context.Context, c domain.Category, limit int) ([]domain.Recipe, error)
	ListLatest(ctx context.Context, limit int) ([]domain.Recipe, error)
	// Changes yields a new value after every write to the recipe store.
	Changes() (<-chan uint64, func())
}

var _ RecipeRepository = (*recipeRepository)(nil)

type recipeRepository struct {
	s *store.Recipes
}

// NewRecipeRepository returns a RecipeRepository backed by s.
func NewRecipeRepository(s *store.Recipes) RecipeRepository {
	return &recipeRepository{s: s}
}

func (r *recipeRepository) Insert(ctx context.Context, rec domain.Recipe) (int64, error) {
	return r.s.Insert(ctx, rec)
}

func (r *recipeRepository) Update(ctx context.Context, rec domain.Recipe) error {
	return r.s.Update(ctx, rec)
}

func (r *recipeRepository) Delete(ctx context.Context, id int64) error {
	return r.s.Delete(ctx, id)
}

func (r *recipeRepository) Touch(ctx context.Context, id int64, at time.Time) error {
	return r.s.Touch(ctx, id, at)
}

func (r *recipeRepository) Find(ctx context.Context, id int64) (*domain.Recipe, error) {
	return r.s.FindByID(ctx, id)
}

func (r *recipeRepository) SearchByName(ctx context.Context, query string, limit int) ([]domain.Recipe, error) {
	return r.s.SearchByName(ctx, query, limit)
}

func (r *recipeRepository) ListRecent(ctx context.Context, limit int) ([]domain.Recipe, error) {
	return r.s.ListRecent(ctx, limit)
}

func (r *recipeRepository) ListByCategory(ctx context.Context, c domain.Category, limit int) ([]domain.Recipe, error) {
	return r.s.ListByCategory(ctx, c, limit)
}

func (r *recipeRepository) ListLatest(ctx context.Context, limit int) ([]domain.Recipe, error) {
	return r.s.ListLatest(ctx, limit)
}

func (r *recipeRepository) Changes() (<-chan uint64, func()) {
	return r.s.Changes()
}
