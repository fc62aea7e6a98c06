package store

import (
	"context"
	"testing"
	"time"

	"github.com/tbourn/go-recipe-book/internal/domain"
)

func TestRecipes_WritesPublishChanges(t *testing.T) {
	s := NewRecipes(newTestDB(t))
	ctx := context.Background()

	ch, cancel := s.Changes()
	defer cancel()
	if v := next(t, ch); v != 0 {
		t.Fatalf("initial version = %d; want 0", v)
	}

	id, err := s.Insert(ctx, domain.Recipe{Name: "Pancakes", Content: "fry"})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if v := next(t, ch); v != 1 {
		t.Fatalf("version after insert = %d; want 1", v)
	}

	if err := s.Update(ctx, domain.Recipe{ID: id, Name: "Crepes", Content: "fry thin"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if v := next(t, ch); v != 2 {
		t.Fatalf("version after update = %d; want 2", v)
	}

	if err := s.Touch(ctx, id, time.Unix(500, 0)); err != nil {
		t.Fatalf("Touch: %v", err)
	}
	if err := s.Delete(ctx, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if v := next(t, ch); v != 4 {
		t.Fatalf("version after touch+delete = %d; want 4 (conflated)", v)
	}
	if s.Version() != 4 {
		t.Fatalf("Version() = %d; want 4", s.Version())
	}
}

func TestRecipes_FailedWriteDoesNotPublish(t *testing.T) {
	s := NewRecipes(newTestDB(t))
	if err := s.Update(context.Background(), domain.Recipe{Name: "no id"}); err == nil {
		t.Fatalf("expected error for update without id")
	}
	if err := s.Touch(context.Background(), 404, time.Now()); err == nil {
		t.Fatalf("expected error touching a missing recipe")
	}
	if s.Version() != 0 {
		t.Fatalf("Version() = %d; want 0", s.Version())
	}
}

func TestRecipes_Queries(t *testing.T) {
	s := NewRecipes(newTestDB(t))
	ctx := context.Background()
	for _, r := range []domain.Recipe{
		{Name: "Honey cake", Category: domain.CategoryCakes, LastUsedDate: 5},
		{Name: "Oat cookies", Category: domain.CategoryCookies, LastUsedDate: 9},
		{Name: "Pilaf", Category: domain.CategoryFood, LastUsedDate: 7},
	} {
		if _, err := s.Insert(ctx, r); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	found, err := s.SearchByName(ctx, "CAKE", 4)
	if err != nil || len(found) != 1 || found[0].Name != "Honey cake" {
		t.Fatalf("SearchByName = %+v, %v", found, err)
	}
	recent, _ := s.ListRecent(ctx, 1)
	if len(recent) != 1 || recent[0].Name != "Oat cookies" {
		t.Fatalf("ListRecent = %+v", recent)
	}
	cookies, _ := s.ListByCategory(ctx, domain.CategoryCookies, 12)
	if len(cookies) != 1 || cookies[0].Category != domain.CategoryCookies {
		t.Fatalf("ListByCategory = %+v", cookies)
	}
	latest, _ := s.ListLatest(ctx, 10)
	if len(latest) != 3 || latest[0].Name != "Pilaf" {
		t.Fatalf("ListLatest = %+v", latest)
	}
	st, _ := s.Stats(ctx)
	if st.Count != 3 || st.MaxLastUsed != 9 {
		t.Fatalf("Stats = %+v", st)
	}
	if r, err := s.FindByID(ctx, latest[0].ID); err != nil || r.Name != "Pilaf" {
		t.Fatalf("FindByID = %+v, %v", r, err)
	}
}
