package domain

import (
	"slices"
	"strings"
)

// Ingredient is a value object embedded in a recipe's ingredient list.
// Within one list ingredients are identified by Name.
type Ingredient struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Metric string  `json:"metric"`
	// Metrics are the units this ingredient may be measured in.
	Metrics []string `json:"metrics,omitempty"`
}

// ParseMetrics splits a slash-delimited unit string ("g/kg") into its units.
func ParseMetrics(s string) []string {
	parts := strings.Split(s, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Normalize derives Metrics from a slash-delimited Metric when Metrics is
// empty, and makes sure Metric is one of the available units.
func (i Ingredient) Normalize() Ingredient {
	i.Name = strings.TrimSpace(i.Name)
	if len(i.Metrics) == 0 {
		i.Metrics = ParseMetrics(i.Metric)
	}
	if len(i.Metrics) > 0 && !i.SupportsMetric(i.Metric) {
		i.Metric = i.Metrics[0]
	}
	return i
}

// SupportsMetric reports whether m is one of the ingredient's units. An
// ingredient without a unit list accepts any unit.
func (i Ingredient) SupportsMetric(m string) bool {
	if len(i.Metrics) == 0 {
		return true
	}
	return slices.Contains(i.Metrics, m)
}

// RemoveIngredient drops every entry named name. Duplicates go together.
func RemoveIngredient(list []Ingredient, name string) []Ingredient {
	out := make([]Ingredient, 0, len(list))
	for _, in := range list {
		if in.Name != name {
			out = append(out, in)
		}
	}
	return out
}

// ReplaceIngredient swaps the first entry whose name matches ing.Name for
// ing. Later entries with the same name are kept.
func ReplaceIngredient(list []Ingredient, ing Ingredient) []Ingredient {
	out := make([]Ingredient, len(list))
	copy(out, list)
	for i, in := range out {
		if in.Name == ing.Name {
			out[i] = ing
			break
		}
	}
	return out
}
