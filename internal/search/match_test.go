package search

import (
	"testing"

	"github.com/tbourn/go-recipe-book/internal/domain"
)

func TestMatches(t *testing.T) {
	cases := []struct {
		name, query string
		want        bool
	}{
		{"Brown sugar", "sug", true},
		{"Brown sugar", "BROWN", true},
		{"Brown sugar", "own su", true},
		{"Brown sugar", "brown  sugar", true},
		{"Brown sugar", "salt", false},
		{"Salt", "", true},
		{"Salt", "   ", true},
		{"Сметана", "СМЕТ", true},
	}
	for _, tc := range cases {
		if got := Matches(tc.name, tc.query); got != tc.want {
			t.Fatalf("Matches(%q, %q) = %v; want %v", tc.name, tc.query, got, tc.want)
		}
	}
}

func TestCatalogFilter(t *testing.T) {
	c := NewCatalog([]domain.Ingredient{
		{Name: "Egg", Metric: "pcs"},
		{Name: "Egg yolk", Metric: "pcs"},
		{Name: "Eggplant", Metric: "pcs/g"},
		{Name: "Milk", Metric: "ml/l"},
	})
	got := c.Filter("egg")
	if len(got) != 3 || got[0].Name != "Egg" || got[2].Name != "Eggplant" {
		t.Fatalf("Filter(egg) = %+v", got)
	}
	if n := len(c.Filter("")); n != 4 {
		t.Fatalf("blank query returned %d; want 4", n)
	}
	if n := len(c.Filter("bread")); n != 0 {
		t.Fatalf("Filter(bread) returned %d; want 0", n)
	}
}
