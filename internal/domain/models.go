// Package domain defines the persistence models and value objects of the
// recipe book: recipes with their embedded ingredient lists, drafts of
// in-progress recipes, and the user preferences document. Recipe is mapped
// with GORM; the other types are serialized as JSON.
package domain

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Category is the fixed set of recipe categories. CategoryAll is a wildcard
// used for filtering and the default for recipes saved without a choice.
type Category string

const (
	CategoryAll     Category = "ALL"
	CategoryCakes   Category = "CAKES"
	CategoryCookies Category = "COOKIES"
	CategoryFood    Category = "FOOD"
)

// Categories lists every category in display order.
func Categories() []Category {
	return []Category{CategoryAll, CategoryCakes, CategoryCookies, CategoryFood}
}

// ParseCategory resolves a category name case-insensitively.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	if c.Valid() {
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryAll, CategoryCakes, CategoryCookies, CategoryFood:
		return true
	}
	return false
}

// OrAll returns c, or CategoryAll when c is empty.
func (c Category) OrAll() Category {
	if c == "" {
		return CategoryAll
	}
	return c
}

// Recipe is a committed, store-identified dish.
//
// Fields:
//   - ID: assigned by the store on insert; stable afterwards.
//   - Ingredients: stored as JSON text in a single column.
//   - Category: enum name, "ALL" when unset.
//   - LastUsedDate: epoch seconds; set on insert and refreshed when opened.
//   - SearchName: case-folded copy of Name used by substring search.
type Recipe struct {
	ID           int64        `json:"id"             gorm:"primaryKey;autoIncrement"`
	Name         string       `json:"name"           gorm:"type:text;not null;default:''"`
	Content      string       `json:"content"        gorm:"type:text;not null;default:''"`
	Ingredients  []Ingredient `json:"ingredients"    gorm:"type:text;not null;serializer:json"`
	Category     Category     `json:"category"       gorm:"type:varchar(16);not null;default:'ALL';index:idx_recipes_category"`
	LastUsedDate int64        `json:"last_used_date" gorm:"not null;default:0;index:idx_recipes_last_used"`
	SearchName   string       `json:"-"              gorm:"type:text;not null;default:''"`
}

// TableName returns the database table name for Recipe.
func (Recipe) TableName() string { return "recipes" }

// BeforeSave keeps the folded search column in sync with Name and defaults
// the category.
func (r *Recipe) BeforeSave(*gorm.DB) error {
	r.SearchName = FoldCase(r.Name)
	r.Category = r.Category.OrAll()
	if r.Ingredients == nil {
		r.Ingredients = []Ingredient{}
	}
	return nil
}

// Complete reports whether the recipe carries everything required to be
// saved: a name, content, and at least one ingredient.
func Complete(name, content string, ingredients []Ingredient) bool {
	return strings.TrimSpace(name) != "" &&
		strings.TrimSpace(content) != "" &&
		len(ingredients) > 0
}

// Draft is an unsaved, in-progress recipe keyed by a client-generated UUID.
type Draft struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Ingredients []Ingredient `json:"ingredients"`
	Content     string       `json:"content"`
	Category    Category     `json:"category"`
	EditDate    int64        `json:"edit_date"`
}

// Empty reports whether none of the draft's user-editable fields carry data.
func (d Draft) Empty() bool {
	return strings.TrimSpace(d.Name) == "" &&
		strings.TrimSpace(d.Content) == "" &&
		len(d.Ingredients) == 0
}
