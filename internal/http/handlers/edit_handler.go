package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-recipe-book/internal/domain"
	"github.com/tbourn/go-recipe-book/internal/search"
	"github.com/tbourn/go-recipe-book/internal/services"
)

// searchWait bounds how long an ingredient search request waits for the
// debounced result before answering with the current one.
const searchWait = 2*search.DefaultDebounce + 250*time.Millisecond

// OpenEditRequest selects what an editor session edits. Both fields empty
// starts a new recipe; a recipe id takes precedence over a draft id.
type OpenEditRequest struct {
	RecipeID int64  `json:"recipe_id,omitempty" example:"42"`
	DraftID  string `json:"draft_id,omitempty" example:"5b0c6c8e-0f59-4b5e-9a51-41b2f8b8f0c1"`
}

// PatchEditRequest changes editor fields; absent fields are left alone.
type PatchEditRequest struct {
	Name     *string `json:"name,omitempty" example:"Apple pie"`
	Content  *string `json:"content,omitempty" example:"Peel the apples."`
	Category *string `json:"category,omitempty" example:"CAKES"`
}

// IngredientRequest is one ingredient line.
type IngredientRequest struct {
	Name    string   `json:"name" binding:"required" example:"Flour"`
	Amount  float64  `json:"amount" example:"250"`
	Metric  string   `json:"metric" example:"g"`
	Metrics []string `json:"metrics,omitempty"`
}

func (r IngredientRequest) ingredient() domain.Ingredient {
	return domain.Ingredient{Name: r.Name, Amount: r.Amount, Metric: r.Metric, Metrics: r.Metrics}
}

// FinishEditingRequest applies the amount and metric of the ingredient
// being edited.
type FinishEditingRequest struct {
	Amount float64 `json:"amount" example:"2"`
	Metric string  `json:"metric" binding:"required" example:"cup"`
}

// EditSessionResponse is an editor snapshot addressed by session id.
type EditSessionResponse struct {
	SessionID string             `json:"session_id" example:"0f8fad5b-d9cb-469f-a165-70867728950e"`
	Route     string             `json:"route"      example:"recipe/3/edit"`
	State     services.EditState `json:"state"`
}

// session resolves :sid or writes 404.
func (h *Handlers) session(c *gin.Context) (*services.EditController, bool) {
	ed, err := h.d.Sessions.Get(c.Param("sid"))
	if err != nil {
		serviceError(c, err)
		return nil, false
	}
	return ed, true
}

func (h *Handlers) state(c *gin.Context, ed *services.EditController) {
	ok(c, http.StatusOK, EditSessionResponse{SessionID: c.Param("sid"), Route: ed.Target().Route(), State: ed.State()})
}

// OpenEdit godoc
// @ID          openEdit
// @Summary     Open an editor session
// @Description Loads a recipe or draft, or starts a new recipe when the body is empty.
// @Tags        Edits
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.OpenEditRequest  false  "What to edit"
// @Success     201  {object}  handlers.EditSessionResponse
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse "Recipe or draft not found"
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /edits [post]
func (h *Handlers) OpenEdit(c *gin.Context) {
	var req OpenEditRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
			return
		}
	}

	target := services.TargetFromRoute(req.RecipeID, req.DraftID)
	ed := services.NewEditController(h.d.Recipes, h.d.Prefs, h.d.Catalog, target, h.d.EditOptions...)
	if err := ed.Load(c.Request.Context()); err != nil {
		ed.Close()
		serviceError(c, err)
		return
	}
	sid := h.d.Sessions.Open(ed)
	ok(c, http.StatusCreated, EditSessionResponse{SessionID: sid, Route: ed.Target().Route(), State: ed.State()})
}

// GetEdit godoc
// @ID          getEdit
// @Summary     Editor snapshot
// @Tags        Edits
// @Produce     json
// @Param       sid  path  string  true  "Session ID"
// @Success     200  {object}  handlers.EditSessionResponse
// @Failure     404  {object}  handlers.ErrorResponse "Session not found"
// @Router      /edits/{sid} [get]
func (h *Handlers) GetEdit(c *gin.Context) {
	ed, found := h.session(c)
	if !found {
		return
	}
	h.state(c, ed)
}

// PatchEdit godoc
// @ID          patchEdit
// @Summary     Change name, content or category
// @Tags        Edits
// @Accept      json
// @Produce     json
// @Param       sid   path  string                     true  "Session ID"
// @Param       body  body  handlers.PatchEditRequest  true  "Fields to change"
// @Success     200  {object}  handlers.EditSessionResponse
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse "Session not found"
// @Failure     409  {object}  handlers.ErrorResponse "Session closed"
// @Router      /edits/{sid} [patch]
func (h *Handlers) PatchEdit(c *gin.Context) {
	ed, found := h.session(c)
	if !found {
		return
	}
	var req PatchEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if req.Category != nil {
		cat, err := domain.ParseCategory(*req.Category)
		if err != nil {
			serviceError(c, err)
			return
		}
		if err := ed.SelectCategory(cat); err != nil {
			serviceError(c, err)
			return
		}
	}
	if req.Name != nil {
		if err := ed.SetName(*req.Name); err != nil {
			serviceError(c, err)
			return
		}
	}
	if req.Content != nil {
		if err := ed.SetContent(*req.Content); err != nil {
			serviceError(c, err)
			return
		}
	}
	h.state(c, ed)
}

// DeleteEdit godoc
// @ID          deleteEdit
// @Summary     Delete the edited recipe
// @Description Removes the recipe and the draft behind the session and ends it. No validation applies.
// @Tags        Edits
// @Param       sid  path  string  true  "Session ID"
// @Success     204  {string}  string "No Content"
// @Failure     404  {object}  handlers.ErrorResponse "Session not found"
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /edits/{sid} [delete]
func (h *Handlers) DeleteEdit(c *gin.Context) {
	ed, found := h.session(c)
	if !found {
		return
	}
	if err := ed.Delete(c.Request.Context()); err != nil {
		serviceError(c, err)
		return
	}
	_, _ = h.d.Sessions.Remove(c.Param("sid"))
	noContent(c)
}

// AddIngredient godoc
// @ID          addEditIngredient
// @Summary     Add an ingredient
// @Description Units of catalog ingredients come from the catalog; the metric must be one of them.
// @Tags        Edits
// @Accept      json
// @Produce     json
// @Param       sid   path  string                      true  "Session ID"
// @Param       body  body  handlers.IngredientRequest  true  "Ingredient"
// @Success     200  {object}  handlers.EditSessionResponse
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse "Session not found"
// @Failure     422  {object}  handlers.ErrorResponse "Unknown metric"
// @Router      /edits/{sid}/ingredients [post]
func (h *Handlers) AddIngredient(c *gin.Context) {
	ed, found := h.session(c)
	if !found {
		return
	}
	var req IngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if err := ed.AddIngredient(req.ingredient()); err != nil {
		serviceError(c, err)
		return
	}
	h.state(c, ed)
}

// SearchEditIngredients godoc
// @ID          searchEditIngredients
// @Summary     Filter the ingredient picker
// @Description Applies q after the quiet period and returns the published result. Newer queries on the same session supersede older ones.
// @Tags        Edits
// @Produce     json
// @Param       sid  path   string  true   "Session ID"
// @Param       q    query  string  false  "Name fragment"
// @Success     200  {object}  handlers.IngredientsResponse
// @Failure     404  {object}  handlers.ErrorResponse "Session not found"
// @Router      /edits/{sid}/ingredients [get]
func (h *Handlers) SearchEditIngredients(c *gin.Context) {
	ed, found := h.session(c)
	if !found {
		return
	}
	results, cancel := ed.SubscribeIngredients()
	defer cancel()
	<-results

	ed.SearchIngredients(c.Query("q"))

	timer := time.NewTimer(searchWait)
	defer timer.Stop()
	select {
	case got, open := <-results:
		if open {
			ok(c, http.StatusOK, IngredientsResponse{Ingredients: got})
			return
		}
	case <-timer.C:
	case <-c.Request.Context().Done():
		return
	}
	ok(c, http.StatusOK, IngredientsResponse{Ingredients: ed.Ingredients()})
}

// UpdateIngredient godoc
// @ID          updateEditIngredient
// @Summary     Replace an ingredient
// @Tags        Edits
// @Accept      json
// @Produce     json
// @Param       sid   path  string                      true  "Session ID"
// @Param       name  path  string                      true  "Ingredient name"
// @Param       body  body  handlers.IngredientRequest  true  "New amount and metric"
// @Success     200  {object}  handlers.EditSessionResponse
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse "Session or ingredient not found"
// @Failure     422  {object}  handlers.ErrorResponse "Unknown metric"
// @Router      /edits/{sid}/ingredients/{name} [put]
func (h *Handlers) UpdateIngredient(c *gin.Context) {
	ed, found := h.session(c)
	if !found {
		return
	}
	var req IngredientRequest
	req.Name = c.Param("name")
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	req.Name = c.Param("name")
	if err := ed.UpdateIngredient(req.ingredient()); err != nil {
		serviceError(c, err)
		return
	}
	h.state(c, ed)
}

// RemoveIngredient godoc
// @ID          removeEditIngredient
// @Summary     Remove an ingredient
// @Description Removes every ingredient with that name.
// @Tags        Edits
// @Produce     json
// @Param       sid   path  string  true  "Session ID"
// @Param       name  path  string  true  "Ingredient name"
// @Success     200  {object}  handlers.EditSessionResponse
// @Failure     404  {object}  handlers.ErrorResponse "Session not found"
// @Router      /edits/{sid}/ingredients/{name} [delete]
func (h *Handlers) RemoveIngredient(c *gin.Context) {
	ed, found := h.session(c)
	if !found {
		return
	}
	if err := ed.RemoveIngredient(c.Param("name")); err != nil {
		serviceError(c, err)
		return
	}
	h.state(c, ed)
}

// StartIngredientEditing godoc
// @ID          startIngredientEditing
// @Summary     Start editing an ingredient
// @Tags        Edits
// @Produce     json
// @Param       sid   path  string  true  "Session ID"
// @Param       name  path  string  true  "Ingredient name"
// @Success     200  {object}  handlers.EditSessionResponse
// @Failure     404  {object}  handlers.ErrorResponse "Session or ingredient not found"
// @Router      /edits/{sid}/ingredients/{name}/editing [post]
func (h *Handlers) StartIngredientEditing(c *gin.Context) {
	ed, found := h.session(c)
	if !found {
		return
	}
	if err := ed.StartIngredientEditing(c.Param("name")); err != nil {
		serviceError(c, err)
		return
	}
	h.state(c, ed)
}

// FinishIngredientEditing godoc
// @ID          finishIngredientEditing
// @Summary     Apply the ingredient being edited
// @Tags        Edits
// @Accept      json
// @Produce     json
// @Param       sid   path  string                         true  "Session ID"
// @Param       body  body  handlers.FinishEditingRequest  true  "Amount and metric"
// @Success     200  {object}  handlers.EditSessionResponse
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse "Session not found"
// @Failure     409  {object}  handlers.ErrorResponse "No ingredient is being edited"
// @Failure     422  {object}  handlers.ErrorResponse "Unknown metric"
// @Router      /edits/{sid}/editing [put]
func (h *Handlers) FinishIngredientEditing(c *gin.Context) {
	ed, found := h.session(c)
	if !found {
		return
	}
	var req FinishEditingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if err := ed.FinishIngredientEditing(req.Amount, req.Metric); err != nil {
		serviceError(c, err)
		return
	}
	h.state(c, ed)
}

// CancelIngredientEditing godoc
// @ID          cancelIngredientEditing
// @Summary     Stop editing an ingredient
// @Tags        Edits
// @Produce     json
// @Param       sid  path  string  true  "Session ID"
// @Success     200  {object}  handlers.EditSessionResponse
// @Failure     404  {object}  handlers.ErrorResponse "Session not found"
// @Router      /edits/{sid}/editing [delete]
func (h *Handlers) CancelIngredientEditing(c *gin.Context) {
	ed, found := h.session(c)
	if !found {
		return
	}
	if err := ed.CancelIngredientEditing(); err != nil {
		serviceError(c, err)
		return
	}
	h.state(c, ed)
}

// ClearMessage godoc
// @ID          clearEditMessage
// @Summary     Acknowledge the user message
// @Tags        Edits
// @Produce     json
// @Param       sid  path  string  true  "Session ID"
// @Success     200  {object}  handlers.EditSessionResponse
// @Failure     404  {object}  handlers.ErrorResponse "Session not found"
// @Router      /edits/{sid}/message [delete]
func (h *Handlers) ClearMessage(c *gin.Context) {
	ed, found := h.session(c)
	if !found {
		return
	}
	ed.ClearMessage()
	h.state(c, ed)
}

// SaveEdit godoc
// @ID          saveEdit
// @Summary     Save the recipe
// @Description Requires a name, content and at least one ingredient. The session stays open.
// @Tags        Edits
// @Produce     json
// @Param       sid  path  string  true  "Session ID"
// @Success     200  {object}  handlers.EditSessionResponse
// @Failure     404  {object}  handlers.ErrorResponse "Session not found"
// @Failure     422  {object}  handlers.ErrorResponse "empty_draft"
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /edits/{sid}/save [post]
func (h *Handlers) SaveEdit(c *gin.Context) {
	ed, found := h.session(c)
	if !found {
		return
	}
	if err := ed.Save(c.Request.Context()); err != nil {
		serviceError(c, err)
		return
	}
	h.state(c, ed)
}

// SaveEditDraft godoc
// @ID          saveEditDraft
// @Summary     Keep the work as a draft
// @Description Stores the editor content as a draft without validation. Empty editors and committed recipes are skipped.
// @Tags        Edits
// @Produce     json
// @Param       sid  path  string  true  "Session ID"
// @Success     200  {object}  handlers.EditSessionResponse
// @Failure     404  {object}  handlers.ErrorResponse "Session not found"
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /edits/{sid}/draft [post]
func (h *Handlers) SaveEditDraft(c *gin.Context) {
	ed, found := h.session(c)
	if !found {
		return
	}
	if err := ed.SaveDraft(c.Request.Context()); err != nil {
		serviceError(c, err)
		return
	}
	h.state(c, ed)
}

// ExitEdit godoc
// @ID          exitEdit
// @Summary     Leave the editor
// @Description Unsaved work on a new recipe or a draft is kept as a draft; the session ends.
// @Tags        Edits
// @Produce     json
// @Param       sid  path  string  true  "Session ID"
// @Success     200  {object}  handlers.EditSessionResponse
// @Failure     404  {object}  handlers.ErrorResponse "Session not found"
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /edits/{sid}/exit [post]
func (h *Handlers) ExitEdit(c *gin.Context) {
	ed, err := h.d.Sessions.Remove(c.Param("sid"))
	if err != nil {
		serviceError(c, err)
		return
	}
	if err := ed.Exit(c.Request.Context()); err != nil {
		serviceError(c, err)
		return
	}
	h.state(c, ed)
}
