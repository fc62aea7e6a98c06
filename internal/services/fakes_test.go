package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/tbourn/go-recipe-book/internal/domain"
	"github.com/tbourn/go-recipe-book/internal/live"
	"github.com/tbourn/go-recipe-book/internal/repository"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// ----- Fake recipe repository -----

type fakeRecipes struct {
	mu      sync.Mutex
	rows    map[int64]domain.Recipe
	nextID  int64
	version *live.Value[uint64]

	inserts, updates, deletes, touches int
	failWith                           error
}

func newFakeRecipes(rs ...domain.Recipe) *fakeRecipes {
	f := &fakeRecipes{rows: map[int64]domain.Recipe{}, version: live.NewValue[uint64](0)}
	for _, r := range rs {
		if r.ID > f.nextID {
			f.nextID = r.ID
		}
		f.rows[r.ID] = r
	}
	return f
}

var _ repository.RecipeRepository = (*fakeRecipes)(nil)

func (f *fakeRecipes) bump() { f.version.Update(func(v uint64) uint64 { return v + 1 }) }

func (f *fakeRecipes) writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inserts + f.updates + f.deletes + f.touches
}

func (f *fakeRecipes) Insert(_ context.Context, r domain.Recipe) (int64, error) {
	f.mu.Lock()
	if f.failWith != nil {
		f.mu.Unlock()
		return 0, f.failWith
	}
	f.inserts++
	f.nextID++
	r.ID = f.nextID
	f.rows[r.ID] = r
	f.mu.Unlock()
	f.bump()
	return r.ID, nil
}

func (f *fakeRecipes) Update(_ context.Context, r domain.Recipe) error {
	f.mu.Lock()
	if f.failWith != nil {
		f.mu.Unlock()
		return f.failWith
	}
	f.updates++
	f.rows[r.ID] = r
	f.mu.Unlock()
	f.bump()
	return nil
}

func (f *fakeRecipes) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	f.deletes++
	delete(f.rows, id)
	f.mu.Unlock()
	f.bump()
	return nil
}

func (f *fakeRecipes) Touch(_ context.Context, id int64, at time.Time) error {
	f.mu.Lock()
	r, ok := f.rows[id]
	if !ok {
		f.mu.Unlock()
		return repository.ErrNotFound
	}
	f.touches++
	r.LastUsedDate = at.Unix()
	f.rows[id] = r
	f.mu.Unlock()
	f.bump()
	return nil
}

func (f *fakeRecipes) Find(_ context.Context, id int64) (*domain.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &r, nil
}

func (f *fakeRecipes) get(id int64) (domain.Recipe, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	return r, ok
}

func (f *fakeRecipes) sorted(keep func(domain.Recipe) bool, limit int) []domain.Recipe {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Recipe{}
	for _, r := range f.rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (f *fakeRecipes) SearchByName(_ context.Context, q string, limit int) ([]domain.Recipe, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	q = strings.ToLower(q)
	return f.sorted(func(r domain.Recipe) bool { return strings.Contains(strings.ToLower(r.Name), q) }, limit), nil
}

func (f *fakeRecipes) ListRecent(_ context.Context, limit int) ([]domain.Recipe, error) {
	return f.sorted(func(domain.Recipe) bool { return true }, limit), nil
}

func (f *fakeRecipes) ListByCategory(_ context.Context, c domain.Category, limit int) ([]domain.Recipe, error) {
	return f.sorted(func(r domain.Recipe) bool { return c == domain.CategoryAll || r.Category == c }, limit), nil
}

func (f *fakeRecipes) ListLatest(_ context.Context, limit int) ([]domain.Recipe, error) {
	return f.sorted(func(domain.Recipe) bool { return true }, limit), nil
}

func (f *fakeRecipes) Changes() (<-chan uint64, func()) { return f.version.Subscribe() }

// ----- Fake preferences repository -----

type fakePrefs struct {
	mu      sync.Mutex
	current *live.Value[domain.UserPreferences]

	adds, removes int
}

func newFakePrefs(ds ...domain.Draft) *fakePrefs {
	p := domain.DefaultPreferences()
	for _, d := range ds {
		p = p.WithDraft(d)
	}
	return &fakePrefs{current: live.NewValue(p)}
}

var _ repository.PreferencesRepository = (*fakePrefs)(nil)

func (f *fakePrefs) writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.adds + f.removes
}

func (f *fakePrefs) Preferences(context.Context) (domain.UserPreferences, error) {
	return f.current.Get(), nil
}

func (f *fakePrefs) Watch(context.Context) (<-chan domain.UserPreferences, func(), error) {
	ch, cancel := f.current.Subscribe()
	return ch, cancel, nil
}

func (f *fakePrefs) SetSelectedSection(_ context.Context, s string) error {
	f.current.Update(func(p domain.UserPreferences) domain.UserPreferences { return p.WithSelectedSection(s) })
	return nil
}

func (f *fakePrefs) SetLastOpenedRecipe(_ context.Context, id *int64) error {
	f.current.Update(func(p domain.UserPreferences) domain.UserPreferences { return p.WithLastOpenedRecipe(id) })
	return nil
}

func (f *fakePrefs) AddDraft(_ context.Context, d domain.Draft) error {
	f.mu.Lock()
	f.adds++
	f.mu.Unlock()
	f.current.Update(func(p domain.UserPreferences) domain.UserPreferences { return p.WithDraft(d) })
	return nil
}

func (f *fakePrefs) RemoveDraft(_ context.Context, id string) error {
	f.mu.Lock()
	f.removes++
	f.mu.Unlock()
	f.current.Update(func(p domain.UserPreferences) domain.UserPreferences { return p.WithoutDraft(id) })
	return nil
}

func (f *fakePrefs) Draft(_ context.Context, id string) (domain.Draft, bool, error) {
	d, ok := f.current.Get().Drafts[id]
	return d, ok, nil
}

var errBoom = errors.New("boom")

// waitFor receives from ch until ok accepts a value or the deadline passes.
func waitFor[T any](t *testing.T, ch <-chan T, ok func(T) bool) T {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case v := <-ch:
			if ok(v) {
				return v
			}
		case <-deadline:
			t.Fatalf("timed out waiting for state")
			var zero T
			return zero
		}
	}
}

func flour(amount float64) domain.Ingredient {
	return domain.Ingredient{Name: "Flour", Amount: amount, Metric: "g", Metrics: []string{"g", "kg", "cup"}}
}
