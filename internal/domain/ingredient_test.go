package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseMetrics(t *testing.T) {
	cases := map[string][]string{
		"g/kg":      {"g", "kg"},
		" ml / l /": {"ml", "l"},
		"pcs":       {"pcs"},
		"":          {},
	}
	for in, want := range cases {
		if diff := cmp.Diff(want, ParseMetrics(in)); diff != "" {
			t.Fatalf("ParseMetrics(%q) mismatch (-want +got):\n%s", in, diff)
		}
	}
}

func TestIngredientNormalize(t *testing.T) {
	got := Ingredient{Name: " Flour ", Metric: "g/kg"}.Normalize()
	want := Ingredient{Name: "Flour", Metric: "g", Metrics: []string{"g", "kg"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Normalize mismatch (-want +got):\n%s", diff)
	}

	kept := Ingredient{Name: "Milk", Metric: "l", Metrics: []string{"ml", "l"}}.Normalize()
	if kept.Metric != "l" {
		t.Fatalf("supported metric should be kept, got %q", kept.Metric)
	}
}

func TestSupportsMetric(t *testing.T) {
	in := Ingredient{Metrics: []string{"g", "kg"}}
	if !in.SupportsMetric("kg") || in.SupportsMetric("ml") {
		t.Fatalf("unexpected SupportsMetric result for %v", in.Metrics)
	}
	if !(Ingredient{}).SupportsMetric("anything") {
		t.Fatalf("ingredient without units should accept any unit")
	}
}

func TestRemoveIngredient_RemovesAllWithSameName(t *testing.T) {
	list := []Ingredient{
		{Name: "Salt", Amount: 1, Metric: "g"},
		{Name: "Salt", Amount: 2, Metric: "g"},
		{Name: "Pepper", Amount: 1, Metric: "g"},
	}
	got := RemoveIngredient(list, "Salt")
	want := []Ingredient{{Name: "Pepper", Amount: 1, Metric: "g"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("RemoveIngredient mismatch (-want +got):\n%s", diff)
	}
	if len(list) != 3 {
		t.Fatalf("input slice must not be modified")
	}
}

func TestReplaceIngredient_ByName(t *testing.T) {
	list := []Ingredient{{Name: "Sugar", Amount: 1, Metric: "g"}, {Name: "Egg", Amount: 2, Metric: "pcs"}}
	got := ReplaceIngredient(list, Ingredient{Name: "Sugar", Amount: 0.5, Metric: "kg"})
	if got[0].Amount != 0.5 || got[0].Metric != "kg" || got[1].Name != "Egg" {
		t.Fatalf("unexpected replace result: %+v", got)
	}
	if list[0].Amount != 1 {
		t.Fatalf("input slice must not be modified")
	}

	dup := []Ingredient{{Name: "Salt", Amount: 1, Metric: "g"}, {Name: "Salt", Amount: 2, Metric: "g"}}
	got = ReplaceIngredient(dup, Ingredient{Name: "Salt", Amount: 5, Metric: "g"})
	want := []Ingredient{{Name: "Salt", Amount: 5, Metric: "g"}, {Name: "Salt", Amount: 2, Metric: "g"}}
	if len(got) != 2 || got[0].Amount != want[0].Amount || got[1].Amount != want[1].Amount {
		t.Fatalf("duplicate names: got %+v; want %+v", got, want)
	}
}
