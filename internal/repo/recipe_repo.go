package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-recipe-book/internal/domain"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrInvalidID is returned by UpdateRecipe for a recipe that was never stored.
var ErrInvalidID = errors.New("recipe id must be positive")

// InsertRecipe stores r as a new row and returns the assigned id. Any id on r
// is ignored. A zero LastUsedDate is set to now.
func InsertRecipe(ctx context.Context, db *gorm.DB, r domain.Recipe) (int64, error) {
	r.ID = 0
	if r.LastUsedDate == 0 {
		r.LastUsedDate = time.Now().Unix()
	}
	if err := db.WithContext(ctx).Create(&r).Error; err != nil {
		return 0, err
	}
	return r.ID, nil
}

// UpdateRecipe replaces the row with r.ID, inserting it if it was removed in
// the meantime.
func UpdateRecipe(ctx context.Context, db *gorm.DB, r domain.Recipe) error {
	if r.ID <= 0 {
		return ErrInvalidID
	}
	return db.WithContext(ctx).Save(&r).Error
}

// DeleteRecipe removes the recipe. Deleting an absent id is not an error.
func DeleteRecipe(ctx context.Context, db *gorm.DB, id int64) error {
	return db.WithContext(ctx).Delete(&domain.Recipe{}, id).Error
}

// FindRecipe loads one recipe by id.
func FindRecipe(ctx context.Context, db *gorm.DB, id int64) (*domain.Recipe, error) {
	var r domain.Recipe
	if err := db.WithContext(ctx).First(&r, id).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// TouchRecipe sets last_used_date for id.
func TouchRecipe(ctx context.Context, db *gorm.DB, id int64, at time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.Recipe{}).
		Where("id = ?", id).
		UpdateColumn("last_used_date", at.Unix())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SearchRecipesByName returns recipes whose name contains query, compared
// case-insensitively. An empty query matches every recipe. limit <= 0 means
// no limit.
func SearchRecipesByName(ctx context.Context, db *gorm.DB, query string, limit int) ([]domain.Recipe, error) {
	tx := db.WithContext(ctx).Model(&domain.Recipe{})
	if q := domain.FoldCase(query); q != "" {
		tx = tx.Where(`search_name LIKE ? ESCAPE '\'`, "%"+escapeLike(q)+"%")
	}
	return findLimited(tx.Order("id ASC"), limit)
}

// ListRecentRecipes returns recipes ordered by last use, most recent first.
func ListRecentRecipes(ctx context.Context, db *gorm.DB, limit int) ([]domain.Recipe, error) {
	tx := db.WithContext(ctx).Model(&domain.Recipe{}).Order("last_used_date DESC, id DESC")
	return findLimited(tx, limit)
}

// ListRecipesByCategory returns recipes in category c, newest first.
// CategoryAll matches every row.
func ListRecipesByCategory(ctx context.Context, db *gorm.DB, c domain.Category, limit int) ([]domain.Recipe, error) {
	tx := db.WithContext(ctx).Model(&domain.Recipe{})
	if c = c.OrAll(); c != domain.CategoryAll {
		tx = tx.Where("category = ?", c)
	}
	return findLimited(tx.Order("id DESC"), limit)
}

// ListRecipes returns the most recently created recipes.
func ListRecipes(ctx context.Context, db *gorm.DB, limit int) ([]domain.Recipe, error) {
	return findLimited(db.WithContext(ctx).Model(&domain.Recipe{}).Order("id DESC"), limit)
}

func findLimited(tx *gorm.DB, limit int) ([]domain.Recipe, error) {
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	out := []domain.Recipe{}
	if err := tx.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// escapeLike escapes LIKE wildcards so that user input matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
