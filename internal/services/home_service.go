package services

import (
	"context"

	"github.com/tbourn/go-recipe-book/internal/domain"
	"github.com/tbourn/go-recipe-book/internal/live"
	"github.com/tbourn/go-recipe-book/internal/repository"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DefaultHomeLimit caps the recipes shown per category.
const DefaultHomeLimit = 12

// ListStatus is the phase of a home screen list.
type ListStatus string

const (
	ListLoading  ListStatus = "loading"
	ListShown    ListStatus = "shown"
	ListNotShown ListStatus = "not_shown"
)

// RecipesView is the category list projection.
type RecipesView struct {
	Status   ListStatus      `json:"status"`
	Category domain.Category `json:"category"`
	Recipes  []domain.Recipe `json:"recipes"`
}

// DraftsView is the drafts list projection.
type DraftsView struct {
	Status ListStatus     `json:"status"`
	Drafts []domain.Draft `json:"drafts"`
}

// HomeState is the home screen snapshot.
type HomeState struct {
	Category domain.Category `json:"category"`
	Recipes  RecipesView     `json:"recipes"`
	Drafts   DraftsView      `json:"drafts"`
}

// HomeController keeps the home lists in step with storage and the selected
// category. The category lives only as long as the controller.
type HomeController struct {
	recipes repository.RecipeRepository
	prefs   repository.PreferencesRepository
	limit   int

	category *live.Value[domain.Category]
	state    *live.Value[HomeState]
}

// NewHomeController returns a controller showing category, or
// domain.CategoryAll when category is invalid. A limit <= 0 uses
// DefaultHomeLimit.
func NewHomeController(recipes repository.RecipeRepository, prefs repository.PreferencesRepository, limit int, category domain.Category) *HomeController {
	if limit <= 0 {
		limit = DefaultHomeLimit
	}
	if !category.Valid() {
		category = domain.CategoryAll
	}
	return &HomeController{
		recipes:  recipes,
		prefs:    prefs,
		limit:    limit,
		category: live.NewValue(category),
		state: live.NewValue(HomeState{
			Category: category,
			Recipes:  RecipesView{Status: ListLoading, Category: category, Recipes: []domain.Recipe{}},
			Drafts:   DraftsView{Status: ListLoading, Drafts: []domain.Draft{}},
		}),
	}
}

// Category returns the selected category.
func (h *HomeController) Category() domain.Category { return h.category.Get() }

// SelectCategory switches the category list.
func (h *HomeController) SelectCategory(c domain.Category) error {
	if !c.Valid() {
		return domain.ErrInvalidCategory
	}
	h.category.Set(c)
	return nil
}

// State returns the current snapshot.
func (h *HomeController) State() HomeState { return h.state.Get() }

// Subscribe streams snapshots, starting with the current one.
func (h *HomeController) Subscribe() (<-chan HomeState, func()) { return h.state.Subscribe() }

// Run keeps the state current until ctx is done. The category list is
// recomputed, through a loading phase, when the category changes and
// silently when the recipe store changes; the drafts list follows the
// preferences document.
func (h *HomeController) Run(ctx context.Context) error {
	prefs, cancelPrefs, err := h.prefs.Watch(ctx)
	if err != nil {
		return err
	}
	defer cancelPrefs()
	cats, cancelCats := h.category.Subscribe()
	defer cancelCats()
	changes, cancelChanges := h.recipes.Changes()
	defer cancelChanges()

	cur := h.category.Get()
	for {
		select {
		case <-ctx.Done():
			return nil
		case c := <-cats:
			cur = c
			h.state.Update(func(s HomeState) HomeState {
				s.Category = c
				s.Recipes = RecipesView{Status: ListLoading, Category: c, Recipes: []domain.Recipe{}}
				return s
			})
			if err := h.refreshRecipes(ctx, cur); err != nil {
				return err
			}
		case <-changes:
			if err := h.refreshRecipes(ctx, cur); err != nil {
				return err
			}
		case p := <-prefs:
			dv := draftsView(p)
			h.state.Update(func(s HomeState) HomeState {
				s.Drafts = dv
				return s
			})
		}
	}
}

// Snapshot computes both lists once for category.
func (h *HomeController) Snapshot(ctx context.Context, c domain.Category) (HomeState, error) {
	ctx, span := otel.Tracer("services/HomeController").Start(ctx, "Snapshot",
		trace.WithAttributes(attribute.String("recipe.category", string(c))),
	)
	defer span.End()

	c = c.OrAll()
	if !c.Valid() {
		return HomeState{}, domain.ErrInvalidCategory
	}
	rv, err := h.recipesView(ctx, c)
	if err != nil {
		return HomeState{}, err
	}
	p, err := h.prefs.Preferences(ctx)
	if err != nil {
		return HomeState{}, err
	}
	return HomeState{Category: c, Recipes: rv, Drafts: draftsView(p)}, nil
}

func (h *HomeController) refreshRecipes(ctx context.Context, c domain.Category) error {
	rv, err := h.recipesView(ctx, c)
	if err != nil {
		return err
	}
	h.state.Update(func(s HomeState) HomeState {
		// a newer category may have been selected while we were querying
		if s.Category == c {
			s.Recipes = rv
		}
		return s
	})
	return nil
}

func (h *HomeController) recipesView(ctx context.Context, c domain.Category) (RecipesView, error) {
	rs, err := h.recipes.ListByCategory(ctx, c, h.limit)
	if err != nil {
		return RecipesView{}, err
	}
	status := ListShown
	if len(rs) == 0 {
		status = ListNotShown
	}
	return RecipesView{Status: status, Category: c, Recipes: rs}, nil
}

func draftsView(p domain.UserPreferences) DraftsView {
	ds := p.DraftList()
	if len(ds) == 0 {
		return DraftsView{Status: ListNotShown, Drafts: []domain.Draft{}}
	}
	return DraftsView{Status: ListShown, Drafts: ds}
}
