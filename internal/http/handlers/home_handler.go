package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/tbourn/go-recipe-book/internal/domain"
	"github.com/tbourn/go-recipe-book/internal/http/middleware"
	"github.com/tbourn/go-recipe-book/internal/services"
	"github.com/tbourn/go-recipe-book/internal/utils"
)

// SectionRequest is the payload of PUT /preferences/section.
type SectionRequest struct {
	Section string `json:"section" binding:"required" example:"browse"`
}

// DraftsResponse wraps the draft list.
type DraftsResponse struct {
	Drafts []domain.Draft `json:"drafts"`
}

// IngredientsResponse wraps catalog entries.
type IngredientsResponse struct {
	Ingredients []domain.Ingredient `json:"ingredients"`
}

// Home godoc
// @ID          getHome
// @Summary     Home screen
// @Description Recipes of the selected category plus the saved drafts, newest edit first.
// @Tags        Home
// @Produce     json
// @Param       category  query  string  false "Category"  Enums(ALL, CAKES, COOKIES, FOOD) default(ALL)
// @Param       limit     query  int     false "Maximum recipes"  minimum(1) maximum(100) default(12)
// @Success     200  {object}  services.HomeState
// @Failure     400  {object}  handlers.ErrorResponse "Invalid category"
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /home [get]
func (h *Handlers) Home(c *gin.Context) {
	cat, err := parseCategory(c.Query("category"))
	if err != nil {
		serviceError(c, err)
		return
	}
	limit := utils.Limit(c.Query("limit"), h.d.Limits.Home, h.d.Limits.Max)
	hc := services.NewHomeController(h.d.Recipes, h.d.Prefs, limit, cat)
	st, err := hc.Snapshot(c.Request.Context(), cat)
	if err != nil {
		serviceError(c, err)
		return
	}
	ok(c, http.StatusOK, st)
}

// HomeStream godoc
// @ID          streamHome
// @Summary     Live home screen
// @Description Server-sent events; every "home" event carries a full services.HomeState.
// @Tags        Home
// @Produce     text/event-stream
// @Param       category  query  string  false "Category"  Enums(ALL, CAKES, COOKIES, FOOD) default(ALL)
// @Param       limit     query  int     false "Maximum recipes"  minimum(1) maximum(100) default(12)
// @Success     200  {object}  services.HomeState
// @Failure     400  {object}  handlers.ErrorResponse "Invalid category"
// @Router      /home/stream [get]
func (h *Handlers) HomeStream(c *gin.Context) {
	cat, err := parseCategory(c.Query("category"))
	if err != nil {
		serviceError(c, err)
		return
	}
	limit := utils.Limit(c.Query("limit"), h.d.Limits.Home, h.d.Limits.Max)

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	hc := services.NewHomeController(h.d.Recipes, h.d.Prefs, limit, cat)
	states, unsubscribe := hc.Subscribe()
	defer unsubscribe()
	g.Go(func() error { return hc.Run(gctx) })

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(io.Writer) bool {
		select {
		case <-gctx.Done():
			return false
		case st, open := <-states:
			if !open {
				return false
			}
			c.SSEvent("home", st)
			return true
		}
	})

	cancel()
	if err := g.Wait(); err != nil {
		middleware.LoggerFrom(c).Warn().Err(err).Msg("home stream stopped")
	}
}

// ListDrafts godoc
// @ID          listDrafts
// @Summary     Saved drafts
// @Tags        Drafts
// @Produce     json
// @Success     200  {object}  handlers.DraftsResponse
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /drafts [get]
func (h *Handlers) ListDrafts(c *gin.Context) {
	p, err := h.d.Prefs.Preferences(c.Request.Context())
	if err != nil {
		serviceError(c, err)
		return
	}
	ok(c, http.StatusOK, DraftsResponse{Drafts: p.DraftList()})
}

// DeleteDraft godoc
// @ID          deleteDraft
// @Summary     Discard a draft
// @Description Removing an unknown draft succeeds.
// @Tags        Drafts
// @Param       id  path  string  true  "Draft ID"
// @Success     204  {string}  string "No Content"
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /drafts/{id} [delete]
func (h *Handlers) DeleteDraft(c *gin.Context) {
	if err := h.d.Prefs.RemoveDraft(c.Request.Context(), c.Param("id")); err != nil {
		serviceError(c, err)
		return
	}
	noContent(c)
}

// GetPreferences godoc
// @ID          getPreferences
// @Summary     User preferences
// @Tags        Preferences
// @Produce     json
// @Success     200  {object}  domain.UserPreferences
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /preferences [get]
func (h *Handlers) GetPreferences(c *gin.Context) {
	p, err := h.d.Prefs.Preferences(c.Request.Context())
	if err != nil {
		serviceError(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

// SetSection godoc
// @ID          setSelectedSection
// @Summary     Remember the selected section
// @Tags        Preferences
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.SectionRequest  true  "Section route"
// @Success     200  {object}  domain.UserPreferences
// @Failure     400  {object}  handlers.ErrorResponse "Unknown section"
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /preferences/section [put]
func (h *Handlers) SetSection(c *gin.Context) {
	var req SectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if !domain.ValidSection(req.Section) {
		fail(c, http.StatusBadRequest, ErrCodeInvalidSection, "unknown section")
		return
	}
	ctx := c.Request.Context()
	if err := h.d.Prefs.SetSelectedSection(ctx, req.Section); err != nil {
		serviceError(c, err)
		return
	}
	p, err := h.d.Prefs.Preferences(ctx)
	if err != nil {
		serviceError(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

// ListIngredients godoc
// @ID          listIngredients
// @Summary     Ingredient catalog
// @Description Entries whose name contains q, ignoring case. An empty q lists everything.
// @Tags        Ingredients
// @Produce     json
// @Param       q  query  string  false "Name fragment"  example(sug)
// @Success     200  {object}  handlers.IngredientsResponse
// @Router      /ingredients [get]
func (h *Handlers) ListIngredients(c *gin.Context) {
	ok(c, http.StatusOK, IngredientsResponse{Ingredients: h.d.Catalog.Filter(c.Query("q"))})
}
