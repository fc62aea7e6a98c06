package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/tbourn/go-recipe-book/internal/domain"
	"github.com/tbourn/go-recipe-book/internal/repo"
)

func TestPreferences_FirstReadCreatesDefaults(t *testing.T) {
	db := newTestDB(t)
	s := NewPreferences(db)

	p, err := s.Read(context.Background())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if p.SelectedSection != domain.RouteHome || len(p.Drafts) != 0 || p.LastOpenedRecipeID != nil {
		t.Fatalf("unexpected defaults: %+v", p)
	}

	doc, err := repo.GetPreferences(context.Background(), db)
	if err != nil {
		t.Fatalf("expected persisted default document: %v", err)
	}
	if doc.Version != 1 {
		t.Fatalf("version = %d; want 1", doc.Version)
	}
}

func TestPreferences_UpdateIsDurable(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	s := NewPreferences(db)

	id := int64(3)
	draft := domain.Draft{ID: "d1", Name: "Soup", Category: domain.CategoryFood, EditDate: 10}
	if _, err := s.Update(ctx, func(p domain.UserPreferences) domain.UserPreferences {
		return p.WithSelectedSection(domain.RouteBrowse).WithLastOpenedRecipe(&id).WithDraft(draft)
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	reopened := NewPreferences(db)
	p, err := reopened.Read(ctx)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if p.SelectedSection != domain.RouteBrowse || p.LastOpenedRecipeID == nil || *p.LastOpenedRecipeID != 3 {
		t.Fatalf("unexpected document: %+v", p)
	}
	if got := p.Drafts["d1"]; got.Name != "Soup" || got.Category != domain.CategoryFood {
		t.Fatalf("draft not persisted: %+v", got)
	}
}

func TestPreferences_CorruptedDocumentFallsBackToDefaults(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	if _, err := repo.PutPreferences(ctx, db, "{not json", 4, time.Now()); err != nil {
		t.Fatalf("PutPreferences: %v", err)
	}

	s := NewPreferences(db)
	p, err := s.Read(ctx)
	if err != nil {
		t.Fatalf("Read must not fail on corrupted document: %v", err)
	}
	if p.SelectedSection != domain.RouteHome || len(p.Drafts) != 0 {
		t.Fatalf("expected defaults, got %+v", p)
	}

	p, err = s.Update(ctx, func(p domain.UserPreferences) domain.UserPreferences {
		return p.WithSelectedSection(domain.RouteBrowse)
	})
	if err != nil {
		t.Fatalf("Update over corrupted document: %v", err)
	}
	doc, _ := repo.GetPreferences(ctx, db)
	if doc.Version != 5 {
		t.Fatalf("version = %d; want 5", doc.Version)
	}
}

func TestPreferences_WatchPublishesUpdates(t *testing.T) {
	s := NewPreferences(newTestDB(t))
	ctx := context.Background()

	ch, cancel, err := s.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer cancel()
	if p := next(t, ch); p.SelectedSection != domain.RouteHome {
		t.Fatalf("initial section = %q", p.SelectedSection)
	}

	if _, err := s.Update(ctx, func(p domain.UserPreferences) domain.UserPreferences {
		return p.WithDraft(domain.Draft{ID: "x"})
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if p := next(t, ch); len(p.Drafts) != 1 {
		t.Fatalf("expected one draft after update, got %d", len(p.Drafts))
	}
}

func TestPreferences_ConcurrentUpdatesAreLinearized(t *testing.T) {
	db := newTestDB(t)
	s := NewPreferences(db)
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Update(ctx, func(p domain.UserPreferences) domain.UserPreferences {
				return p.WithDraft(domain.Draft{ID: fmt.Sprintf("d%02d", i)})
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
	}

	p, _ := NewPreferences(db).Read(ctx)
	if len(p.Drafts) != n {
		t.Fatalf("drafts = %d; want %d (lost update)", len(p.Drafts), n)
	}
}
