package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/tbourn/go-recipe-book/internal/domain"
	"github.com/tbourn/go-recipe-book/internal/repository"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DetailsController serves the read-only recipe view.
type DetailsController struct {
	Recipes repository.RecipeRepository
	Prefs   repository.PreferencesRepository
	Now     func() time.Time
}

// NewDetailsController returns a DetailsController using the wall clock.
func NewDetailsController(recipes repository.RecipeRepository, prefs repository.PreferencesRepository) *DetailsController {
	return &DetailsController{Recipes: recipes, Prefs: prefs, Now: time.Now}
}

// Open loads a recipe for display, remembers it as the last opened one and
// refreshes its last-used date.
func (d *DetailsController) Open(ctx context.Context, id int64) (*domain.Recipe, error) {
	ctx, span := otel.Tracer("services/DetailsController").Start(ctx, "Open",
		trace.WithAttributes(attribute.Int64("recipe.id", id)),
	)
	defer span.End()

	r, err := d.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := d.Prefs.SetLastOpenedRecipe(ctx, &id); err != nil {
		return nil, err
	}
	now := d.Now()
	if err := d.Recipes.Touch(ctx, id, now); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	r.LastUsedDate = now.Unix()
	return r, nil
}

// Share returns the plain-text rendering of a recipe.
func (d *DetailsController) Share(ctx context.Context, id int64) (string, error) {
	r, err := d.find(ctx, id)
	if err != nil {
		return "", err
	}
	return ShareText(*r), nil
}

func (d *DetailsController) find(ctx context.Context, id int64) (*domain.Recipe, error) {
	r, err := d.Recipes.Find(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrRecipeNotFound
	}
	return r, err
}

// ShareText formats r for sharing:
//
//	<name>
//	Ingredients:
//	<name> - <amount> <metric>
//	Preparation:
//	<content>
func ShareText(r domain.Recipe) string {
	var b strings.Builder
	b.WriteString(r.Name)
	b.WriteString("\nIngredients:\n")
	for _, in := range r.Ingredients {
		b.WriteString(in.Name)
		b.WriteString(" - ")
		b.WriteString(strconv.FormatFloat(in.Amount, 'f', -1, 64))
		b.WriteString(" ")
		b.WriteString(in.Metric)
		b.WriteString("\n")
	}
	b.WriteString("Preparation:\n")
	b.WriteString(r.Content)
	return b.String()
}
