package domain

import (
	"strconv"
	"strings"
)

// Navigation routes. They are stored as the selected section in preferences
// and echoed to clients; they are not a wire protocol.
const (
	RouteHome   = "home"
	RouteBrowse = "browse"

	routeRecipe = "recipe"
	routeDraft  = "draft"
)

// NewRecipeID is the recipe id used by the add route when no recipe exists.
const NewRecipeID int64 = -1

// RecipeAddRoute returns "recipe/{id}/add".
func RecipeAddRoute(id int64) string { return recipeRoute(id, "add") }

// RecipeEditRoute returns "recipe/{id}/edit".
func RecipeEditRoute(id int64) string { return recipeRoute(id, "edit") }

// RecipeDetailsRoute returns "recipe/{id}/details".
func RecipeDetailsRoute(id int64) string { return recipeRoute(id, "details") }

// DraftEditRoute returns "draft/{draftId}".
func DraftEditRoute(id string) string { return routeDraft + "/" + id }

func recipeRoute(id int64, action string) string {
	return routeRecipe + "/" + strconv.FormatInt(id, 10) + "/" + action
}

// ValidSection reports whether s names a known route.
func ValidSection(s string) bool {
	switch s {
	case RouteHome, RouteBrowse:
		return true
	}
	parts := strings.Split(s, "/")
	switch {
	case len(parts) == 2 && parts[0] == routeDraft:
		return parts[1] != ""
	case len(parts) == 3 && parts[0] == routeRecipe:
		if _, err := strconv.ParseInt(parts[1], 10, 64); err != nil {
			return false
		}
		switch parts[2] {
		case "add", "edit", "details":
			return true
		}
	}
	return false
}
