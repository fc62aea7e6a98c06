package domain

import "time"

// Idempotency records the outcome of a recipe-creating request, keyed by
// (scope, key), so that a retried request returns the recipe it created the
// first time instead of inserting a duplicate.
type Idempotency struct {
	ID        string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	Scope     string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_scope_key,priority:1"`
	Key       string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_scope_key,priority:2"`
	RecipeID  int64     `gorm:"type:INTEGER NOT NULL"`
	Status    int       `gorm:"type:INTEGER NOT NULL"`
	CreatedAt time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
