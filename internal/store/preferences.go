package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-recipe-book/internal/domain"
	"github.com/tbourn/go-recipe-book/internal/live"
	"github.com/tbourn/go-recipe-book/internal/repo"
)

// Preferences is the live preferences document store.
//
// All writes go through Update, which runs the caller's transform as an
// atomic read-modify-write: an in-process mutex linearizes writers and the
// read and write share one database transaction. A document that cannot be
// decoded is replaced by the defaults.
type Preferences struct {
	db  *gorm.DB
	now func() time.Time

	mu      sync.Mutex
	loaded  bool
	current *live.Value[domain.UserPreferences]
}

// NewPreferences returns a Preferences store over db.
func NewPreferences(db *gorm.DB) *Preferences {
	return &Preferences{
		db:      db,
		now:     time.Now,
		current: live.NewValue(domain.DefaultPreferences()),
	}
}

// Read returns the current document, creating the default one on first use.
func (s *Preferences) Read(ctx context.Context) (domain.UserPreferences, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return domain.UserPreferences{}, err
	}
	return s.current.Get(), nil
}

// Watch subscribes to the document. The channel yields the current document
// immediately and the latest one after every Update.
func (s *Preferences) Watch(ctx context.Context) (<-chan domain.UserPreferences, func(), error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, nil, err
	}
	ch, cancel := s.current.Subscribe()
	return ch, cancel, nil
}

// Update applies fn to the stored document and persists the result.
func (s *Preferences) Update(ctx context.Context, fn func(domain.UserPreferences) domain.UserPreferences) (domain.UserPreferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLocked(ctx, fn)
}

func (s *Preferences) ensureLoaded(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return nil
	}

	doc, err := repo.GetPreferences(ctx, s.db)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		_, err = s.updateLocked(ctx, func(p domain.UserPreferences) domain.UserPreferences { return p })
		return err
	case err != nil:
		return err
	}
	s.current.Set(decodePreferences(doc.Document))
	s.loaded = true
	return nil
}

func (s *Preferences) updateLocked(ctx context.Context, fn func(domain.UserPreferences) domain.UserPreferences) (domain.UserPreferences, error) {
	var next domain.UserPreferences
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cur := domain.DefaultPreferences()
		var version int64
		doc, err := repo.GetPreferences(ctx, tx)
		switch {
		case err == nil:
			cur = decodePreferences(doc.Document)
			version = doc.Version
		case !errors.Is(err, repo.ErrNotFound):
			return err
		}

		next = fn(cur)
		if next.Drafts == nil {
			next.Drafts = map[string]domain.Draft{}
		}
		raw, err := json.Marshal(next)
		if err != nil {
			return err
		}
		_, err = repo.PutPreferences(ctx, tx, string(raw), version+1, s.now())
		return err
	})
	if err != nil {
		return domain.UserPreferences{}, err
	}
	s.loaded = true
	s.current.Set(next)
	return next, nil
}

// decodePreferences parses raw, falling back to the defaults when the
// document is corrupted. Missing fields keep their default values.
func decodePreferences(raw string) domain.UserPreferences {
	p := domain.DefaultPreferences()
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		log.Warn().Err(err).Msg("preferences document unreadable, using defaults")
		return domain.DefaultPreferences()
	}
	if p.Drafts == nil {
		p.Drafts = map[string]domain.Draft{}
	}
	if p.SelectedSection == "" {
		p.SelectedSection = domain.RouteHome
	}
	return p
}
