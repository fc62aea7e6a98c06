package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-recipe-book/internal/domain"
	"github.com/tbourn/go-recipe-book/internal/services"
	"github.com/tbourn/go-recipe-book/internal/utils"
)

// Error codes returned in ErrorResponse.Code. Clients branch on these.
const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Recipe book specific.
	ErrCodeEmptyDraft         = services.MessageEmptyDraft
	ErrCodeInvalidCategory    = "invalid_category"
	ErrCodeInvalidSection     = "invalid_section"
	ErrCodeInvalidID          = "invalid_id"
	ErrCodeUnknownMetric      = "unknown_metric"
	ErrCodeIngredientNotFound = "ingredient_not_found"
	ErrCodeNotEditing         = "not_editing"
	ErrCodeSessionClosed      = "session_closed"
)

// serviceError maps a services/domain error to an HTTP error response.
func serviceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrEmptyDraft):
		fail(c, http.StatusUnprocessableEntity, ErrCodeEmptyDraft, err.Error())
	case errors.Is(err, services.ErrRecipeNotFound),
		errors.Is(err, services.ErrDraftNotFound),
		errors.Is(err, services.ErrSessionNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, services.ErrUnknownMetric):
		fail(c, http.StatusUnprocessableEntity, ErrCodeUnknownMetric, err.Error())
	case errors.Is(err, services.ErrIngredientNotInRecipe):
		fail(c, http.StatusNotFound, ErrCodeIngredientNotFound, err.Error())
	case errors.Is(err, services.ErrNoIngredientEditing):
		fail(c, http.StatusConflict, ErrCodeNotEditing, err.Error())
	case errors.Is(err, services.ErrEditorClosed):
		fail(c, http.StatusConflict, ErrCodeSessionClosed, err.Error())
	case errors.Is(err, services.ErrInvalidIngredient):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidCategory):
		fail(c, http.StatusBadRequest, ErrCodeInvalidCategory, err.Error())
	case errors.Is(err, utils.ErrInvalidID):
		fail(c, http.StatusBadRequest, ErrCodeInvalidID, err.Error())
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}
