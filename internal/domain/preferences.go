package domain

import (
	"maps"
	"sort"
	"time"
)

// UserPreferences is the singleton preferences document. It is treated as an
// immutable value: the With* helpers return modified copies and never touch
// the receiver's draft map.
type UserPreferences struct {
	SelectedSection    string           `json:"selected_section"`
	LastOpenedRecipeID *int64           `json:"last_opened_recipe_id"`
	Drafts             map[string]Draft `json:"drafts"`
}

// DefaultPreferences returns the document used on first read and whenever the
// stored document cannot be decoded.
func DefaultPreferences() UserPreferences {
	return UserPreferences{
		SelectedSection: RouteHome,
		Drafts:          map[string]Draft{},
	}
}

// WithSelectedSection returns a copy with the selected section replaced.
func (p UserPreferences) WithSelectedSection(section string) UserPreferences {
	p.Drafts = maps.Clone(p.Drafts)
	p.SelectedSection = section
	return p
}

// WithLastOpenedRecipe returns a copy pointing at recipe id. A nil id clears it.
func (p UserPreferences) WithLastOpenedRecipe(id *int64) UserPreferences {
	p.Drafts = maps.Clone(p.Drafts)
	if id != nil {
		v := *id
		id = &v
	}
	p.LastOpenedRecipeID = id
	return p
}

// WithDraft returns a copy with d stored under d.ID (created or overwritten).
func (p UserPreferences) WithDraft(d Draft) UserPreferences {
	drafts := make(map[string]Draft, len(p.Drafts)+1)
	maps.Copy(drafts, p.Drafts)
	drafts[d.ID] = d
	p.Drafts = drafts
	return p
}

// WithoutDraft returns a copy without the draft id. Absent ids are a no-op.
func (p UserPreferences) WithoutDraft(id string) UserPreferences {
	drafts := maps.Clone(p.Drafts)
	if drafts == nil {
		drafts = map[string]Draft{}
	}
	delete(drafts, id)
	p.Drafts = drafts
	return p
}

// DraftList returns the drafts ordered by most recent edit first, ties broken
// by id so the order is stable.
func (p UserPreferences) DraftList() []Draft {
	out := make([]Draft, 0, len(p.Drafts))
	for _, d := range p.Drafts {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EditDate != out[j].EditDate {
			return out[i].EditDate > out[j].EditDate
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// PreferencesDocument is the single row holding the encoded preferences.
// Version increases by one on every write.
type PreferencesDocument struct {
	ID        uint      `gorm:"primaryKey"`
	Document  string    `gorm:"type:text;not null"`
	Version   int64     `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the database table name for PreferencesDocument.
func (PreferencesDocument) TableName() string { return "preferences" }

// PreferencesDocumentID is the primary key of the only preferences row.
const PreferencesDocumentID = 1
