package domain

import (
	"testing"
	"time"
)

func TestIdempotency_Migration_UniqueScopeKey(t *testing.T) {
	db := newTestDB(t)
	if err := db.AutoMigrate(&Idempotency{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	if !db.Migrator().HasIndex(&Idempotency{}, "ux_scope_key") {
		t.Fatalf("expected composite index ux_scope_key to exist")
	}

	now := time.Now().UTC()
	rec := &Idempotency{
		ID:        "id-1",
		Scope:     "POST /recipes",
		Key:       "k1",
		RecipeID:  42,
		Status:    201,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
	if err := db.Create(rec).Error; err != nil {
		t.Fatalf("insert valid: %v", err)
	}

	var got Idempotency
	if err := db.First(&got, "id = ?", "id-1").Error; err != nil {
		t.Fatalf("readback: %v", err)
	}
	if got.Scope != rec.Scope || got.Key != "k1" || got.RecipeID != 42 || got.Status != 201 {
		t.Fatalf("unexpected row: %+v", got)
	}

	dup := &Idempotency{
		ID:        "id-2",
		Scope:     rec.Scope,
		Key:       "k1",
		RecipeID:  43,
		Status:    201,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
	if err := db.Create(dup).Error; err == nil {
		t.Fatalf("expected UNIQUE constraint violation on (scope, key)")
	}
}
