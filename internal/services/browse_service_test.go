package services

import (
	"context"
	"errors"
	"testing"

	"github.com/tbourn/go-recipe-book/internal/domain"
)

func seedRecipes() *fakeRecipes {
	return newFakeRecipes(
		domain.Recipe{ID: 1, Name: "Apple pie", Category: domain.CategoryCakes},
		domain.Recipe{ID: 2, Name: "Pineapple cake", Category: domain.CategoryCakes},
		domain.Recipe{ID: 3, Name: "Oat cookies", Category: domain.CategoryCookies},
		domain.Recipe{ID: 4, Name: "Apple crumble", Category: domain.CategoryCakes},
		domain.Recipe{ID: 5, Name: "Apple sauce", Category: domain.CategoryFood},
		domain.Recipe{ID: 6, Name: "Baked apple", Category: domain.CategoryFood},
	)
}

func TestBrowse_SetQuery_LoadingThenSuccess(t *testing.T) {
	b := NewBrowseController(seedRecipes(), 0, "")
	ch, cancel := b.Subscribe()
	defer cancel()
	<-ch

	done := make(chan error, 1)
	go func() { done <- b.SetQuery(context.Background(), "apple") }()

	first := waitFor(t, ch, func(s BrowseState) bool { return s.Query == "apple" })
	if first.Status != SearchLoading && first.Status != SearchSuccess {
		t.Fatalf("unexpected status %q", first.Status)
	}
	if err := <-done; err != nil {
		t.Fatalf("SetQuery: %v", err)
	}

	st := b.State()
	if st.Status != SearchSuccess {
		t.Fatalf("status = %q; want success", st.Status)
	}
	if len(st.Results) != DefaultSearchLimit {
		t.Fatalf("results = %d; want limit %d", len(st.Results), DefaultSearchLimit)
	}
	if b.Query() != "apple" {
		t.Fatalf("Query() = %q", b.Query())
	}
}

func TestBrowse_Search_Limit(t *testing.T) {
	b := NewBrowseController(seedRecipes(), 2, "")
	res, err := b.Search(context.Background(), "APPLE")
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 2 || res[0].ID != 1 {
		t.Fatalf("results = %+v", res)
	}
}

func TestBrowse_Search_Error(t *testing.T) {
	r := seedRecipes()
	r.failWith = errBoom
	b := NewBrowseController(r, 0, "")
	if err := b.SetQuery(context.Background(), "x"); !errors.Is(err, errBoom) {
		t.Fatalf("err = %v; want errBoom", err)
	}
	if b.State().Status != SearchLoading {
		t.Fatalf("failed search must not publish success")
	}
}

func TestBrowse_Run_RefreshesOnStoreChange(t *testing.T) {
	r := seedRecipes()
	b := NewBrowseController(r, 10, "oat")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	ch, unsub := b.Subscribe()
	defer unsub()
	waitFor(t, ch, func(s BrowseState) bool { return s.Status == SearchSuccess && len(s.Results) == 1 })

	if _, err := r.Insert(context.Background(), domain.Recipe{Name: "Oat bars"}); err != nil {
		t.Fatal(err)
	}
	waitFor(t, ch, func(s BrowseState) bool { return len(s.Results) == 2 })

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
}
