package repository

import (
	"context"

	"github.com/tbourn/go-recipe-book/internal/domain"
	"github.com/tbourn/go-recipe-book/internal/store"
)

// PreferencesRepository is the preferences data source and command sink.
type PreferencesRepository interface {
	Preferences(ctx context.Context) (domain.UserPreferences, error)
	Watch(ctx context.Context) (<-chan domain.UserPreferences, func(), error)
	SetSelectedSection(ctx context.Context, section string) error
	SetLastOpenedRecipe(ctx context.Context, id *int64) error
	// AddDraft creates or overwrites the draft with d.ID.
	AddDraft(ctx context.Context, d domain.Draft) error
	// RemoveDraft deletes the draft; absent ids are a no-op.
	RemoveDraft(ctx context.Context, id string) error
	Draft(ctx context.Context, id string) (domain.Draft, bool, error)
}

var _ PreferencesRepository = (*preferencesRepository)(nil)

type preferencesRepository struct {
	s *store.Preferences
}

// NewPreferencesRepository returns a PreferencesRepository backed by s.
func NewPreferencesRepository(s *store.Preferences) PreferencesRepository {
	return &preferencesRepository{s: s}
}

func (r *preferencesRepository) Preferences(ctx context.Context) (domain.UserPreferences, error) {
	return r.s.Read(ctx)
}

func (r *preferencesRepository) Watch(ctx context.Context) (<-chan domain.UserPreferences, func(), error) {
	return r.s.Watch(ctx)
}

func (r *preferencesRepository) SetSelectedSection(ctx context.Context, section string) error {
	_, err := r.s.Update(ctx, func(p domain.UserPreferences) domain.UserPreferences {
		return p.WithSelectedSection(section)
	})
	return err
}

func (r *preferencesRepository) SetLastOpenedRecipe(ctx context.Context, id *int64) error {
	_, err := r.s.Update(ctx, func(p domain.UserPreferences) domain.UserPreferences {
		return p.WithLastOpenedRecipe(id)
	})
	return err
}

func (r *preferencesRepository) AddDraft(ctx context.Context, d domain.Draft) error {
	_, err := r.s.Update(ctx, func(p domain.UserPreferences) domain.UserPreferences {
		return p.WithDraft(d)
	})
	return err
}

func (r *preferencesRepository) RemoveDraft(ctx context.Context, id string) error {
	_, err := r.s.Update(ctx, func(p domain.UserPreferences) domain.UserPreferences {
		return p.WithoutDraft(id)
	})
	return err
}

func (r *preferencesRepository) Draft(ctx context.Context, id string) (domain.Draft, bool, error) {
	p, err := r.s.Read(ctx)
	if err != nil {
		return domain.Draft{}, false, err
	}
	d, ok := p.Drafts[id]
	return d, ok, nil
}
