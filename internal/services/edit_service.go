// EditController
//
// This file implements the recipe editor. One controller backs one editing
// session over a Target (an existing recipe, a stored draft or a new
// recipe). Commands are serialized by a mutex; the resulting EditState is
// published through a live value so any number of observers can follow it.
//
// Save validates before touching storage. Exit persists unfinished work as a
// draft, except when editing a committed recipe, where unsaved changes are
// discarded.

package services

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-recipe-book/internal/domain"
	"github.com/tbourn/go-recipe-book/internal/live"
	"github.com/tbourn/go-recipe-book/internal/observability"
	"github.com/tbourn/go-recipe-book/internal/repository"
	"github.com/tbourn/go-recipe-book/internal/search"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// EditState is the editor snapshot observed by the UI.
type EditState struct {
	Loading     bool                `json:"loading"`
	Mode        string              `json:"mode"`
	RecipeID    int64               `json:"recipe_id,omitempty"`
	DraftID     string              `json:"draft_id,omitempty"`
	Name        string              `json:"name"`
	Content     string              `json:"content"`
	Ingredients []domain.Ingredient `json:"ingredients"`
	Category    domain.Category     `json:"category"`
	Saved       bool                `json:"saved"`
	Deleted     bool                `json:"deleted"`
	UserMessage string              `json:"user_message,omitempty"`
	// Editing is the ingredient whose amount and metric are being changed.
	Editing *domain.Ingredient `json:"editing,omitempty"`
}

// EditOption customises an EditController.
type EditOption func(*EditController)

// WithClock overrides the time source used for edit and last-used dates.
func WithClock(now func() time.Time) EditOption {
	return func(c *EditController) { c.now = now }
}

// WithDraftIDs overrides the generator of new draft ids.
func WithDraftIDs(gen func() string) EditOption {
	return func(c *EditController) { c.newID = gen }
}

// WithDebounce sets the ingredient search quiet period.
func WithDebounce(d time.Duration) EditOption {
	return func(c *EditController) { c.debounce = d }
}

// EditController drives one recipe editing session.
type EditController struct {
	recipes repository.RecipeRepository
	prefs   repository.PreferencesRepository
	catalog *search.Catalog
	target  Target

	now      func() time.Time
	newID    func() string
	debounce time.Duration

	mu          sync.Mutex
	closed      bool
	lastUsed    int64
	createdID   int64
	draftStored bool
	state       *live.Value[EditState]
	filter      *search.Debounced
}

// NewEditController returns a controller for target. Call Load before
// issuing commands when editing an existing recipe or draft.
func NewEditController(recipes repository.RecipeRepository, prefs repository.PreferencesRepository, catalog *search.Catalog, target Target, opts ...EditOption) *EditController {
	if target == nil {
		target = EditingNew{}
	}
	c := &EditController{
		recipes:  recipes,
		prefs:    prefs,
		catalog:  catalog,
		target:   target,
		now:      time.Now,
		newID:    uuid.NewString,
		debounce: search.DefaultDebounce,
	}
	for _, o := range opts {
		o(c)
	}
	if c.catalog == nil {
		c.catalog = search.NewCatalog(nil)
	}
	c.filter = search.NewDebounced(c.catalog, c.debounce)

	st := EditState{
		Mode:        target.Mode(),
		Category:    domain.CategoryAll,
		Ingredients: []domain.Ingredient{},
	}
	switch t := target.(type) {
	case EditingRecipe:
		st.Loading = true
		st.RecipeID = t.ID
	case EditingDraft:
		st.Loading = true
		st.DraftID = t.ID
	}
	c.state = live.NewValue(st)
	return c
}

// Target returns what the session edits.
func (c *EditController) Target() Target { return c.target }

// State returns the current snapshot.
func (c *EditController) State() EditState { return c.state.Get() }

// Subscribe streams snapshots, starting with the current one.
func (c *EditController) Subscribe() (<-chan EditState, func()) { return c.state.Subscribe() }

// Load fills the editor from storage.
func (c *EditController) Load(ctx context.Context) error {
	ctx, span := otel.Tracer("services/EditController").Start(ctx, "Load",
		trace.WithAttributes(attribute.String("edit.target", c.target.String())),
	)
	defer span.End()

	c.mu.Lock()
	defer c.mu.Unlock()

	switch t := c.target.(type) {
	case EditingRecipe:
		r, err := c.recipes.Find(ctx, t.ID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRecipeNotFound
		}
		if err != nil {
			return err
		}
		c.lastUsed = r.LastUsedDate
		c.state.Set(EditState{
			Mode:        ModeRecipe,
			RecipeID:    r.ID,
			Name:        r.Name,
			Content:     r.Content,
			Ingredients: cloneIngredients(r.Ingredients),
			Category:    r.Category.OrAll(),
			Saved:       true,
		})
	case EditingDraft:
		d, ok, err := c.prefs.Draft(ctx, t.ID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrDraftNotFound
		}
		c.draftStored = true
		c.state.Set(EditState{
			Mode:        ModeDraft,
			DraftID:     d.ID,
			Name:        d.Name,
			Content:     d.Content,
			Ingredients: cloneIngredients(d.Ingredients),
			Category:    d.Category.OrAll(),
		})
	default:
		c.state.Update(func(s EditState) EditState {
			s.Loading = false
			return s
		})
	}
	return nil
}

// SetName replaces the recipe name.
func (c *EditController) SetName(name string) error {
	return c.mutate(func(s *EditState) error {
		s.Name = name
		return nil
	})
}

// SetContent replaces the preparation text.
func (c *EditController) SetContent(content string) error {
	return c.mutate(func(s *EditState) error {
		s.Content = content
		return nil
	})
}

// SelectCategory sets the recipe's category.
func (c *EditController) SelectCategory(cat domain.Category) error {
	if !cat.Valid() {
		return domain.ErrInvalidCategory
	}
	return c.mutate(func(s *EditState) error {
		s.Category = cat
		return nil
	})
}

// AddIngredient appends ing. Units are taken from the master list when the
// ingredient is known there; the metric must be one of them.
func (c *EditController) AddIngredient(ing domain.Ingredient) error {
	ing, err := c.resolve(ing)
	if err != nil {
		return err
	}
	return c.mutate(func(s *EditState) error {
		s.Ingredients = append(cloneIngredients(s.Ingredients), ing)
		return nil
	})
}

// RemoveIngredient drops every ingredient called name.
func (c *EditController) RemoveIngredient(name string) error {
	return c.mutate(func(s *EditState) error {
		s.Ingredients = domain.RemoveIngredient(s.Ingredients, name)
		if s.Editing != nil && s.Editing.Name == name {
			s.Editing = nil
		}
		return nil
	})
}

// UpdateIngredient replaces the ingredients named ing.Name with ing.
func (c *EditController) UpdateIngredient(ing domain.Ingredient) error {
	return c.mutate(func(s *EditState) error {
		cur, ok := findIngredient(s.Ingredients, ing.Name)
		if !ok {
			return ErrIngredientNotInRecipe
		}
		if len(ing.Metrics) == 0 {
			ing.Metrics = slices.Clone(cur.Metrics)
		}
		if !ing.SupportsMetric(ing.Metric) {
			return ErrUnknownMetric
		}
		s.Ingredients = domain.ReplaceIngredient(s.Ingredients, ing)
		return nil
	})
}

// StartIngredientEditing selects the ingredient called name for editing.
func (c *EditController) StartIngredientEditing(name string) error {
	return c.command(func(s *EditState) error {
		cur, ok := findIngredient(s.Ingredients, name)
		if !ok {
			return ErrIngredientNotInRecipe
		}
		s.Editing = &cur
		return nil
	})
}

// FinishIngredientEditing applies amount and metric to the ingredient being
// edited and ends editing.
func (c *EditController) FinishIngredientEditing(amount float64, metric string) error {
	return c.mutate(func(s *EditState) error {
		if s.Editing == nil {
			return ErrNoIngredientEditing
		}
		next := *s.Editing
		if !next.SupportsMetric(metric) {
			return ErrUnknownMetric
		}
		next.Amount = amount
		next.Metric = metric
		s.Ingredients = domain.ReplaceIngredient(s.Ingredients, next)
		s.Editing = nil
		return nil
	})
}

// CancelIngredientEditing ends editing without changes.
func (c *EditController) CancelIngredientEditing() error {
	return c.command(func(s *EditState) error {
		s.Editing = nil
		return nil
	})
}

// ClearMessage acknowledges the transient user message.
func (c *EditController) ClearMessage() {
	c.state.Update(func(s EditState) EditState {
		s.UserMessage = ""
		return s
	})
}

// Save validates and commits the recipe. An incomplete recipe never reaches
// storage; the user message is set to MessageEmptyDraft instead.
func (c *EditController) Save(ctx context.Context) error {
	ctx, span := otel.Tracer("services/EditController").Start(ctx, "Save",
		trace.WithAttributes(attribute.String("edit.target", c.target.String())),
	)
	defer span.End()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrEditorClosed
	}

	st := c.state.Get()
	if !domain.Complete(st.Name, st.Content, st.Ingredients) {
		observability.EditValidationFailures.Inc()
		c.state.Update(func(s EditState) EditState {
			s.UserMessage = MessageEmptyDraft
			return s
		})
		return ErrEmptyDraft
	}

	rec := domain.Recipe{
		Name:        st.Name,
		Content:     st.Content,
		Ingredients: cloneIngredients(st.Ingredients),
		Category:    st.Category.OrAll(),
	}

	var id int64
	switch t := c.target.(type) {
	case EditingRecipe:
		rec.ID = t.ID
		rec.LastUsedDate = c.lastUsed
		if err := c.recipes.Update(ctx, rec); err != nil {
			return err
		}
		id = t.ID
	default:
		if c.createdID > 0 {
			rec.ID = c.createdID
			rec.LastUsedDate = c.lastUsed
			if err := c.recipes.Update(ctx, rec); err != nil {
				return err
			}
			id = c.createdID
			break
		}
		rec.LastUsedDate = c.now().Unix()
		newID, err := c.recipes.Insert(ctx, rec)
		if err != nil {
			return err
		}
		c.createdID, c.lastUsed, id = newID, rec.LastUsedDate, newID
		if c.ownsDraft() && st.DraftID != "" {
			if err := c.prefs.RemoveDraft(ctx, st.DraftID); err != nil {
				return err
			}
			c.draftStored = false
		}
	}

	span.SetAttributes(attribute.Int64("recipe.id", id))
	observability.RecipesSaved.WithLabelValues(c.target.Mode()).Inc()
	log.Debug().Int64("recipe_id", id).Str("mode", c.target.Mode()).Msg("recipe saved")

	c.state.Update(func(s EditState) EditState {
		s.RecipeID = id
		s.Saved = true
		s.UserMessage = ""
		return s
	})
	return nil
}

// SaveDraft stores the current fields as a draft without validation. Empty
// editors and committed recipes are left alone.
func (c *EditController) SaveDraft(ctx context.Context) error {
	ctx, span := otel.Tracer("services/EditController").Start(ctx, "SaveDraft",
		trace.WithAttributes(attribute.String("edit.target", c.target.String())),
	)
	defer span.End()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrEditorClosed
	}
	_, err := c.saveDraftLocked(ctx)
	return err
}

// Exit ends the session. Unsaved work on a draft or a new recipe is kept as
// a draft; unsaved edits to a committed recipe are discarded. Exit closes the
// controller.
func (c *EditController) Exit(ctx context.Context) error {
	ctx, span := otel.Tracer("services/EditController").Start(ctx, "Exit",
		trace.WithAttributes(attribute.String("edit.target", c.target.String())),
	)
	defer span.End()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	defer c.closeLocked()

	if c.state.Get().Saved {
		return nil
	}
	stored, err := c.saveDraftLocked(ctx)
	if err != nil {
		return err
	}
	if stored {
		observability.DraftsAutosaved.Inc()
	}
	return nil
}

// Delete removes the recipe and the draft behind this session, skipping
// validation. Deleting twice is harmless.
func (c *EditController) Delete(ctx context.Context) error {
	ctx, span := otel.Tracer("services/EditController").Start(ctx, "Delete",
		trace.WithAttributes(attribute.String("edit.target", c.target.String())),
	)
	defer span.End()

	c.mu.Lock()
	defer c.mu.Unlock()

	if t, ok := c.target.(EditingRecipe); ok {
		if err := c.recipes.Delete(ctx, t.ID); err != nil {
			return err
		}
	}
	if c.createdID > 0 {
		if err := c.recipes.Delete(ctx, c.createdID); err != nil {
			return err
		}
		c.createdID = 0
	}
	if id := c.state.Get().DraftID; id != "" && c.ownsDraft() {
		if err := c.prefs.RemoveDraft(ctx, id); err != nil {
			return err
		}
		c.draftStored = false
	}

	c.state.Update(func(s EditState) EditState {
		s.Deleted = true
		s.Saved = false
		return s
	})
	c.closeLocked()
	return nil
}

// SearchIngredients filters the master ingredient list after the quiet
// period. Only the latest query is applied.
func (c *EditController) SearchIngredients(query string) { c.filter.Search(query) }

// Ingredients returns the latest filtered master ingredient list.
func (c *EditController) Ingredients() []domain.Ingredient { return c.filter.Results() }

// SubscribeIngredients streams filtered master ingredient lists.
func (c *EditController) SubscribeIngredients() (<-chan []domain.Ingredient, func()) {
	return c.filter.Subscribe()
}

// Close releases the session without persisting anything.
func (c *EditController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *EditController) closeLocked() {
	if c.closed {
		return
	}
	c.closed = true
	c.filter.Close()
}

// ownsDraft reports whether a stored draft backs this session.
func (c *EditController) ownsDraft() bool {
	return c.draftStored || c.target.Mode() == ModeDraft
}

// saveDraftLocked writes the draft and reports whether anything was stored.
func (c *EditController) saveDraftLocked(ctx context.Context) (bool, error) {
	if _, ok := c.target.(EditingRecipe); ok || c.createdID > 0 {
		return false, nil
	}
	st := c.state.Get()
	d := domain.Draft{
		ID:          st.DraftID,
		Name:        st.Name,
		Content:     st.Content,
		Ingredients: cloneIngredients(st.Ingredients),
		Category:    st.Category.OrAll(),
		EditDate:    c.now().Unix(),
	}
	if d.Empty() {
		return false, nil
	}
	if d.ID == "" {
		d.ID = c.newID()
	}
	if err := c.prefs.AddDraft(ctx, d); err != nil {
		return false, err
	}
	c.draftStored = true
	c.state.Update(func(s EditState) EditState {
		s.DraftID = d.ID
		return s
	})
	return true, nil
}

// command runs fn against a copy of the state and publishes it on success.
func (c *EditController) command(fn func(*EditState) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrEditorClosed
	}
	st := c.state.Get()
	if err := fn(&st); err != nil {
		return err
	}
	c.state.Set(st)
	return nil
}

// mutate is command for edits of recipe content: it clears the saved flag
// and assigns a draft id to new recipes.
func (c *EditController) mutate(fn func(*EditState) error) error {
	return c.command(func(s *EditState) error {
		if err := fn(s); err != nil {
			return err
		}
		s.Saved = false
		if s.DraftID == "" && c.target.Mode() == ModeNew && c.createdID == 0 {
			s.DraftID = c.newID()
		}
		return nil
	})
}

func (c *EditController) resolve(ing domain.Ingredient) (domain.Ingredient, error) {
	ing.Name = strings.TrimSpace(ing.Name)
	if ing.Name == "" {
		return ing, ErrInvalidIngredient
	}
	if known, ok := c.catalog.Lookup(ing.Name); ok && len(ing.Metrics) == 0 {
		ing.Metrics = known.Metrics
		if ing.Metric == "" && len(known.Metrics) > 0 {
			ing.Metric = known.Metrics[0]
		}
	}
	if len(ing.Metrics) == 0 && strings.Contains(ing.Metric, "/") {
		ing = ing.Normalize()
	}
	if !ing.SupportsMetric(ing.Metric) {
		return ing, ErrUnknownMetric
	}
	return ing, nil
}

func findIngredient(list []domain.Ingredient, name string) (domain.Ingredient, bool) {
	for _, in := range list {
		if in.Name == name {
			in.Metrics = slices.Clone(in.Metrics)
			return in, true
		}
	}
	return domain.Ingredient{}, false
}

func cloneIngredients(in []domain.Ingredient) []domain.Ingredient {
	out := make([]domain.Ingredient, len(in))
	for i, ing := range in {
		ing.Metrics = slices.Clone(ing.Metrics)
		out[i] = ing
	}
	return out
}
