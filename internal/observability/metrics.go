package observability

import "github.com/prometheus/client_golang/prometheus"

// Domain counters. HTTP metrics live in the middleware package.
var (
	// RecipesSaved counts successful saves by edit mode (recipe|draft|new).
	RecipesSaved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipes_saved_total",
			Help: "Recipes saved from the editor, by edit mode.",
		},
		[]string{"mode"},
	)

	// DraftsAutosaved counts drafts written when an editor is left unsaved.
	DraftsAutosaved = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "drafts_autosaved_total",
			Help: "Drafts persisted on exit from an unsaved editor.",
		},
	)

	// EditValidationFailures counts saves rejected for missing fields.
	EditValidationFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "edit_validation_failures_total",
			Help: "Saves rejected because name, content or ingredients were empty.",
		},
	)

	// EditSessionsActive gauges open editor sessions.
	EditSessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "edit_sessions_active",
			Help: "Editor sessions currently open.",
		},
	)
)

func init() {
	prometheus.MustRegister(RecipesSaved, DraftsAutosaved, EditValidationFailures, EditSessionsActive)
}
