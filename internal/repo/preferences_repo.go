package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-recipe-book/internal/domain"
)

// GetPreferences loads the preferences row. ErrNotFound means it was never
// written.
func GetPreferences(ctx context.Context, db *gorm.DB) (*domain.PreferencesDocument, error) {
	var doc domain.PreferencesDocument
	err := db.WithContext(ctx).First(&doc, domain.PreferencesDocumentID).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// PutPreferences writes the encoded document with the given version,
// creating the row on first use.
func PutPreferences(ctx context.Context, db *gorm.DB, document string, version int64, now time.Time) (*domain.PreferencesDocument, error) {
	doc := &domain.PreferencesDocument{
		ID:        domain.PreferencesDocumentID,
		Document:  document,
		Version:   version,
		UpdatedAt: now.UTC(),
	}
	if err := db.WithContext(ctx).Save(doc).Error; err != nil {
		return nil, err
	}
	return doc, nil
}
