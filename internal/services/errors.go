// Package services holds the recipe book's screen controllers: the recipe
// editor, the browse search, the home lists and the details view. They
// depend on the repository contracts only and publish their state through
// live values.
//
// The errors below are returned for predictable failures so handlers can map
// them to HTTP results consistently.
package services

import "errors"

// MessageEmptyDraft is the user message set when a save is rejected because
// name, content or ingredients are missing.
const MessageEmptyDraft = "empty_draft"

var (
	// ErrEmptyDraft is returned by Save when the recipe is incomplete.
	ErrEmptyDraft = errors.New("recipe needs a name, content and at least one ingredient")

	// ErrRecipeNotFound indicates the recipe id does not exist.
	ErrRecipeNotFound = errors.New("recipe not found")

	// ErrDraftNotFound indicates the draft id does not exist.
	ErrDraftNotFound = errors.New("draft not found")

	// ErrUnknownMetric is returned when an ingredient is given a unit it
	// cannot be measured in.
	ErrUnknownMetric = errors.New("metric not supported by ingredient")

	// ErrIngredientNotInRecipe is returned when editing an ingredient the
	// recipe does not contain.
	ErrIngredientNotInRecipe = errors.New("ingredient not in recipe")

	// ErrNoIngredientEditing is returned by FinishIngredientEditing when no
	// ingredient is being edited.
	ErrNoIngredientEditing = errors.New("no ingredient is being edited")

	// ErrInvalidIngredient is returned for an ingredient without a name.
	ErrInvalidIngredient = errors.New("ingredient name is required")

	// ErrEditorClosed is returned by commands issued after Close.
	ErrEditorClosed = errors.New("editor is closed")
)
