package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-recipe-book/internal/domain"
	"github.com/tbourn/go-recipe-book/internal/http/middleware"
	"github.com/tbourn/go-recipe-book/internal/repository"
	"github.com/tbourn/go-recipe-book/internal/services"
	"github.com/tbourn/go-recipe-book/internal/utils"
)

// CreateRecipeRequest is the payload of POST /recipes.
type CreateRecipeRequest struct {
	Name        string              `json:"name" example:"Pancakes"`
	Content     string              `json:"content" example:"Mix everything and fry."`
	Category    string              `json:"category,omitempty" example:"FOOD"`
	Ingredients []domain.Ingredient `json:"ingredients"`
}

// RecipesResponse wraps a recipe list.
type RecipesResponse struct {
	Recipes []domain.Recipe `json:"recipes"`
}

// ListRecipes godoc
// @ID          listRecipes
// @Summary     Latest recipes
// @Description Most recently created recipes first. Supports a weak ETag via If-None-Match.
// @Tags        Recipes
// @Produce     json
// @Param       limit          query   int     false "Maximum items"  minimum(1) maximum(100) default(10)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
// @Success     200  {object}  handlers.RecipesResponse
// @Success     304  {string}  string "Not Modified"
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /recipes [get]
func (h *Handlers) ListRecipes(c *gin.Context) {
	if h.checkETag(c, "recipes?"+c.Request.URL.RawQuery) {
		return
	}
	limit := utils.Limit(c.Query("limit"), h.d.Limits.Latest, h.d.Limits.Max)
	rs, err := h.d.Recipes.ListLatest(c.Request.Context(), limit)
	if err != nil {
		serviceError(c, err)
		return
	}
	ok(c, http.StatusOK, RecipesResponse{Recipes: rs})
}

// ListRecent godoc
// @ID          listRecentRecipes
// @Summary     Recently used recipes
// @Tags        Recipes
// @Produce     json
// @Param       limit  query  int  false "Maximum items"  minimum(1) maximum(100) default(10)
// @Success     200  {object}  handlers.RecipesResponse
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /recipes/recent [get]
func (h *Handlers) ListRecent(c *gin.Context) {
	if h.checkETag(c, "recent?"+c.Request.URL.RawQuery) {
		return
	}
	limit := utils.Limit(c.Query("limit"), h.d.Limits.Recent, h.d.Limits.Max)
	rs, err := h.d.Recipes.ListRecent(c.Request.Context(), limit)
	if err != nil {
		serviceError(c, err)
		return
	}
	ok(c, http.StatusOK, RecipesResponse{Recipes: rs})
}

// SearchRecipes godoc
// @ID          searchRecipes
// @Summary     Search recipes by name
// @Description Case-insensitive substring match on the recipe name.
// @Tags        Recipes
// @Produce     json
// @Param       q  query  string  false "Name fragment"  example(apple)
// @Success     200  {object}  handlers.RecipesResponse
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /recipes/search [get]
func (h *Handlers) SearchRecipes(c *gin.Context) {
	rs, err := h.browse.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		serviceError(c, err)
		return
	}
	ok(c, http.StatusOK, RecipesResponse{Recipes: rs})
}

// ListByCategory godoc
// @ID          listRecipesByCategory
// @Summary     Recipes in a category
// @Description ALL matches every recipe.
// @Tags        Recipes
// @Produce     json
// @Param       category  path   string  true  "Category"  Enums(ALL, CAKES, COOKIES, FOOD)
// @Param       limit     query  int     false "Maximum items"  minimum(1) maximum(100) default(12)
// @Success     200  {object}  handlers.RecipesResponse
// @Failure     400  {object}  handlers.ErrorResponse "Invalid category"
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /categories/{category}/recipes [get]
func (h *Handlers) ListByCategory(c *gin.Context) {
	cat, err := domain.ParseCategory(c.Param("category"))
	if err != nil {
		serviceError(c, err)
		return
	}
	limit := utils.Limit(c.Query("limit"), h.d.Limits.Home, h.d.Limits.Max)
	rs, err := h.d.Recipes.ListByCategory(c.Request.Context(), cat, limit)
	if err != nil {
		serviceError(c, err)
		return
	}
	ok(c, http.StatusOK, RecipesResponse{Recipes: rs})
}

// CreateRecipe godoc
// @ID          createRecipe
// @Summary     Create a recipe
// @Description Validates and stores a recipe in one call. A repeated Idempotency-Key returns the first result.
// @Tags        Recipes
// @Accept      json
// @Produce     json
// @Param       Idempotency-Key  header  string  false "Key for safe retries"
// @Param       body             body    handlers.CreateRecipeRequest  true  "Recipe"
// @Success     201  {object}  domain.Recipe
// @Success     200  {object}  domain.Recipe "Replayed"
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     422  {object}  handlers.ErrorResponse "empty_draft or unknown_metric"
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /recipes [post]
func (h *Handlers) CreateRecipe(c *gin.Context) {
	ctx := c.Request.Context()
	key, hasKey := middleware.GetIdempotencyKey(c)
	scope := middleware.IdempotencyScope(c)

	if hasKey && middleware.IsReplay(c) && h.d.Idem != nil {
		if id, found, err := h.d.Idem.Lookup(ctx, scope, key, time.Now().UTC()); err == nil && found {
			if prev, err := h.d.Recipes.Find(ctx, id); err == nil {
				c.Header(middleware.HeaderIdempotencyReplayed, "true")
				ok(c, http.StatusOK, prev)
				return
			}
		}
	}

	var req CreateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	cat, err := parseCategory(req.Category)
	if err != nil {
		serviceError(c, err)
		return
	}

	ed := services.NewEditController(h.d.Recipes, h.d.Prefs, h.d.Catalog, services.EditingNew{}, h.d.EditOptions...)
	defer ed.Close()
	if err := applyRecipe(ed, req, cat); err != nil {
		serviceError(c, err)
		return
	}
	if err := ed.Save(ctx); err != nil {
		serviceError(c, err)
		return
	}

	created, err := h.d.Recipes.Find(ctx, ed.State().RecipeID)
	if err != nil {
		serviceError(c, err)
		return
	}
	if hasKey && h.d.Idem != nil {
		if err := h.d.Idem.Remember(ctx, scope, key, created.ID, http.StatusCreated); err != nil {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("store idempotency key")
		}
	}
	ok(c, http.StatusCreated, created)
}

func applyRecipe(ed *services.EditController, req CreateRecipeRequest, cat domain.Category) error {
	if err := ed.SetName(req.Name); err != nil {
		return err
	}
	if err := ed.SetContent(req.Content); err != nil {
		return err
	}
	if err := ed.SelectCategory(cat); err != nil {
		return err
	}
	for _, in := range req.Ingredients {
		if err := ed.AddIngredient(in); err != nil {
			return err
		}
	}
	return nil
}

// GetRecipe godoc
// @ID          getRecipe
// @Summary     Open a recipe
// @Description Returns the recipe, remembers it as last opened and refreshes its last-used date.
// @Tags        Recipes
// @Produce     json
// @Param       id  path  int  true  "Recipe ID"
// @Success     200  {object}  domain.Recipe
// @Failure     400  {object}  handlers.ErrorResponse "Invalid id"
// @Failure     404  {object}  handlers.ErrorResponse "Recipe not found"
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /recipes/{id} [get]
func (h *Handlers) GetRecipe(c *gin.Context) {
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		serviceError(c, err)
		return
	}
	r, err := h.details.Open(c.Request.Context(), id)
	if err != nil {
		serviceError(c, err)
		return
	}
	ok(c, http.StatusOK, r)
}

// ShareRecipe godoc
// @ID          shareRecipe
// @Summary     Recipe as shareable text
// @Tags        Recipes
// @Produce     plain
// @Param       id  path  int  true  "Recipe ID"
// @Success     200  {string}  string "Share text"
// @Failure     400  {object}  handlers.ErrorResponse "Invalid id"
// @Failure     404  {object}  handlers.ErrorResponse "Recipe not found"
// @Router      /recipes/{id}/share [get]
func (h *Handlers) ShareRecipe(c *gin.Context) {
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		serviceError(c, err)
		return
	}
	text, err := h.details.Share(c.Request.Context(), id)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.String(http.StatusOK, text)
}

// DeleteRecipe godoc
// @ID          deleteRecipe
// @Summary     Delete a recipe
// @Description Deleting a missing recipe succeeds.
// @Tags        Recipes
// @Param       id  path  int  true  "Recipe ID"
// @Success     204  {string}  string "No Content"
// @Failure     400  {object}  handlers.ErrorResponse "Invalid id"
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /recipes/{id} [delete]
func (h *Handlers) DeleteRecipe(c *gin.Context) {
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		serviceError(c, err)
		return
	}
	if err := h.d.Recipes.Delete(c.Request.Context(), id); err != nil && !errors.Is(err, repository.ErrNotFound) {
		serviceError(c, err)
		return
	}
	noContent(c)
}
