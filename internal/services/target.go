package services

import (
	"strconv"

	"github.com/tbourn/go-recipe-book/internal/domain"
)

// Target identifies what an editor session operates on.
type Target interface {
	// Mode is "recipe", "draft" or "new".
	Mode() string
	// Route is the navigation route that reopens this target.
	Route() string
	String() string
}

// EditingRecipe edits a committed recipe.
type EditingRecipe struct{ ID int64 }

// EditingDraft edits a stored draft.
type EditingDraft struct{ ID string }

// EditingNew starts from an empty recipe.
type EditingNew struct{}

const (
	ModeRecipe = "recipe"
	ModeDraft  = "draft"
	ModeNew    = "new"
)

func (EditingRecipe) Mode() string { return ModeRecipe }
func (EditingDraft) Mode() string  { return ModeDraft }
func (EditingNew) Mode() string    { return ModeNew }

func (t EditingRecipe) Route() string { return domain.RecipeEditRoute(t.ID) }
func (t EditingDraft) Route() string  { return domain.DraftEditRoute(t.ID) }
func (EditingNew) Route() string      { return domain.RecipeAddRoute(domain.NewRecipeID) }

func (t EditingRecipe) String() string { return "recipe:" + strconv.FormatInt(t.ID, 10) }
func (t EditingDraft) String() string  { return "draft:" + t.ID }
func (EditingNew) String() string      { return "new" }

// TargetFromRoute resolves the editor target from navigation arguments. A
// positive recipeID wins over a draft id; neither means a new recipe.
func TargetFromRoute(recipeID int64, draftID string) Target {
	switch {
	case recipeID > 0:
		return EditingRecipe{ID: recipeID}
	case draftID != "":
		return EditingDraft{ID: draftID}
	default:
		return EditingNew{}
	}
}
