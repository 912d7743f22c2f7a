package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Kirkidoo/Qualipieces/internal/models"
)

// ConnectionRepository handles database operations for the bridge's
// connection settings. The bridge keeps a single settings row.
type ConnectionRepository struct {
	db *gorm.DB
}

// NewConnectionRepository creates a new connection repository
func NewConnectionRepository(db *gorm.DB) *ConnectionRepository {
	return &ConnectionRepository{db: db}
}

// Get retrieves the stored connection settings, or nil when none were saved.
func (r *ConnectionRepository) Get(ctx context.Context) (*models.ConnectionSettings, error) {
	var settings models.ConnectionSettings
	err := r.db.WithContext(ctx).Order("updated_at DESC").First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// Save upserts the connection settings row.
func (r *ConnectionRepository) Save(ctx context.Context, settings *models.ConnectionSettings) error {
	existing, err := r.Get(ctx)
	if err != nil {
		return err
	}
	if existing != nil {
		settings.ID = existing.ID
		settings.CreatedAt = existing.CreatedAt
		return r.db.WithContext(ctx).Save(settings).Error
	}
	return r.db.WithContext(ctx).Create(settings).Error
}
