package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-recipe-book/internal/domain"
)

// RecipeStats summarises the recipe table for cache validators.
type RecipeStats struct {
	Count       int64
	MaxID       int64
	MaxLastUsed int64
}

// RecipesStats returns the row count, highest id and most recent last-used
// timestamp of the recipe table.
func RecipesStats(ctx context.Context, db *gorm.DB) (RecipeStats, error) {
	var st RecipeStats
	err := db.WithContext(ctx).
		Model(&domain.Recipe{}).
		Select("COUNT(*) AS count, COALESCE(MAX(id), 0) AS max_id, COALESCE(MAX(last_used_date), 0) AS max_last_used").
		Scan(&st).Error
	return st, err
}
