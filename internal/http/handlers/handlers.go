// Package handlers exposes the recipe book over HTTP. Handlers are thin:
// they bind and validate input, call the controllers in the services
// package and translate results and errors into JSON responses.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-recipe-book/internal/domain"
	"github.com/tbourn/go-recipe-book/internal/repository"
	"github.com/tbourn/go-recipe-book/internal/search"
	"github.com/tbourn/go-recipe-book/internal/services"
)

// IdempotencyStore remembers the recipe created for an Idempotency-Key.
type IdempotencyStore interface {
	// Lookup returns the recipe id stored for (scope, key), or found=false.
	Lookup(ctx context.Context, scope, key string, now time.Time) (recipeID int64, found bool, err error)
	// Remember stores recipeID for (scope, key).
	Remember(ctx context.Context, scope, key string, recipeID int64, status int) error
}

// Limits are the list sizes served by default; clients may ask for fewer or
// more up to MaxLimit.
type Limits struct {
	Search, Home, Latest, Recent, Max int
}

// Deps are the collaborators of Handlers.
type Deps struct {
	Recipes  repository.RecipeRepository
	Prefs    repository.PreferencesRepository
	Catalog  *search.Catalog
	Sessions *services.Sessions
	Idem     IdempotencyStore
	// Validator returns an opaque token that changes whenever the recipe
	// table changes; it backs the ETag of list endpoints. Optional.
	Validator func(ctx context.Context) (string, error)
	Limits    Limits
	// EditOptions are applied to every editor the API opens.
	EditOptions []services.EditOption
}

// Handlers groups the API endpoints.
type Handlers struct {
	d       Deps
	browse  *services.BrowseController
	details *services.DetailsController
}

// New returns Handlers over d, filling zero limits with defaults.
func New(d Deps) *Handlers {
	if d.Limits.Search <= 0 {
		d.Limits.Search = services.DefaultSearchLimit
	}
	if d.Limits.Home <= 0 {
		d.Limits.Home = services.DefaultHomeLimit
	}
	if d.Limits.Latest <= 0 {
		d.Limits.Latest = 10
	}
	if d.Limits.Recent <= 0 {
		d.Limits.Recent = 10
	}
	if d.Limits.Max <= 0 {
		d.Limits.Max = 100
	}
	if d.Catalog == nil {
		d.Catalog = search.NewCatalog(nil)
	}
	if d.Sessions == nil {
		d.Sessions = services.NewSessions(0)
	}
	return &Handlers{
		d:       d,
		browse:  services.NewBrowseController(d.Recipes, d.Limits.Search, ""),
		details: services.NewDetailsController(d.Recipes, d.Prefs),
	}
}

// Register mounts every endpoint on g.
func (h *Handlers) Register(g gin.IRoutes) {
	// Recipes
	g.GET("/recipes", h.ListRecipes)
	g.GET("/recipes/recent", h.ListRecent)
	g.GET("/recipes/search", h.SearchRecipes)
	g.POST("/recipes", h.CreateRecipe)
	g.GET("/recipes/:id", h.GetRecipe)
	g.GET("/recipes/:id/share", h.ShareRecipe)
	g.DELETE("/recipes/:id", h.DeleteRecipe)
	g.GET("/categories/:category/recipes", h.ListByCategory)

	// Home, drafts and preferences
	g.GET("/home", h.Home)
	g.GET("/home/stream", h.HomeStream)
	g.GET("/drafts", h.ListDrafts)
	g.DELETE("/drafts/:id", h.DeleteDraft)
	g.GET("/preferences", h.GetPreferences)
	g.PUT("/preferences/section", h.SetSection)
	g.GET("/ingredients", h.ListIngredients)

	// Editor sessions
	g.POST("/edits", h.OpenEdit)
	g.GET("/edits/:sid", h.GetEdit)
	g.PATCH("/edits/:sid", h.PatchEdit)
	g.DELETE("/edits/:sid", h.DeleteEdit)
	g.POST("/edits/:sid/ingredients", h.AddIngredient)
	g.GET("/edits/:sid/ingredients", h.SearchEditIngredients)
	g.PUT("/edits/:sid/ingredients/:name", h.UpdateIngredient)
	g.DELETE("/edits/:sid/ingredients/:name", h.RemoveIngredient)
	g.POST("/edits/:sid/ingredients/:name/editing", h.StartIngredientEditing)
	g.PUT("/edits/:sid/editing", h.FinishIngredientEditing)
	g.DELETE("/edits/:sid/editing", h.CancelIngredientEditing)
	g.DELETE("/edits/:sid/message", h.ClearMessage)
	g.POST("/edits/:sid/save", h.SaveEdit)
	g.POST("/edits/:sid/draft", h.SaveEditDraft)
	g.POST("/edits/:sid/exit", h.ExitEdit)
}

// parseCategory reads an optional category; empty means ALL.
func parseCategory(s string) (domain.Category, error) {
	if s == "" {
		return domain.CategoryAll, nil
	}
	return domain.ParseCategory(s)
}

// checkETag sets a weak ETag derived from the recipe table and reports
// whether the client's copy is current (and 304 has been written).
func (h *Handlers) checkETag(c *gin.Context, resource string) bool {
	if h.d.Validator == nil {
		return false
	}
	v, err := h.d.Validator(c.Request.Context())
	if err != nil {
		return false
	}
	etag := `W/"` + resource + ":" + v + `"`
	c.Header("ETag", etag)
	if c.GetHeader("If-None-Match") == etag {
		c.Status(http.StatusNotModified)
		return true
	}
	return false
}
