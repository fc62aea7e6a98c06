package repo

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestGetPreferences_NotFoundBeforeFirstWrite(t *testing.T) {
	db := newTestDB(t)
	if _, err := GetPreferences(context.Background(), db); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPutPreferences_CreatesThenOverwrites(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := PutPreferences(ctx, db, `{"selected_section":"home"}`, 1, time.Now()); err != nil {
		t.Fatalf("PutPreferences #1: %v", err)
	}
	if _, err := PutPreferences(ctx, db, `{"selected_section":"browse"}`, 2, time.Now()); err != nil {
		t.Fatalf("PutPreferences #2: %v", err)
	}

	doc, err := GetPreferences(ctx, db)
	if err != nil {
		t.Fatalf("GetPreferences: %v", err)
	}
	if doc.Document != `{"selected_section":"browse"}` || doc.Version != 2 {
		t.Fatalf("unexpected document: %+v", doc)
	}

	var rows int64
	db.Table("preferences").Count(&rows)
	if rows != 1 {
		t.Fatalf("expected a single preferences row, got %d", rows)
	}
}
