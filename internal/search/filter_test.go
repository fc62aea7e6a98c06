package search

import (
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/tbourn/go-recipe-book/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testCatalog() *Catalog {
	return NewCatalog([]domain.Ingredient{
		{Name: "Apple", Metric: "pcs"},
		{Name: "Apricot", Metric: "pcs"},
		{Name: "Banana", Metric: "pcs"},
	})
}

func waitResult(t *testing.T, ch <-chan []domain.Ingredient) []domain.Ingredient {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for filter result")
	}
	return nil
}

func TestDebounced_InitialIsFullCatalog(t *testing.T) {
	d := NewDebounced(testCatalog(), 10*time.Millisecond)
	defer d.Close()
	if n := len(d.Results()); n != 3 {
		t.Fatalf("initial results = %d; want 3", n)
	}
}

func TestDebounced_PublishesOnlyLatestQuery(t *testing.T) {
	d := NewDebounced(testCatalog(), 40*time.Millisecond)
	defer d.Close()

	ch, cancel := d.Subscribe()
	defer cancel()
	waitResult(t, ch) // initial

	d.Search("a")
	d.Search("ap")
	d.Search("apr")

	got := waitResult(t, ch)
	if len(got) != 1 || got[0].Name != "Apricot" {
		t.Fatalf("published %+v; want only Apricot", got)
	}

	select {
	case extra := <-ch:
		t.Fatalf("superseded result published: %+v", extra)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDebounced_BlankQueryRestoresFullList(t *testing.T) {
	d := NewDebounced(testCatalog(), time.Millisecond)
	defer d.Close()

	ch, cancel := d.Subscribe()
	defer cancel()
	waitResult(t, ch)

	d.Search("banana")
	if got := waitResult(t, ch); len(got) != 1 {
		t.Fatalf("Search(banana) = %+v", got)
	}
	d.Search("")
	if got := waitResult(t, ch); len(got) != 3 {
		t.Fatalf("Search(\"\") = %d items; want 3", len(got))
	}
}
