package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Kirkidoo/Qualipieces/internal/models"
)

// SyncRepository handles database operations for sync records
type SyncRepository struct {
	db *gorm.DB
}

// NewSyncRepository creates a new sync repository
func NewSyncRepository(db *gorm.DB) *SyncRepository {
	return &SyncRepository{db: db}
}

// CreateRecord persists a new sync attempt record
func (r *SyncRepository) CreateRecord(ctx context.Context, record *models.SyncRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// ResolveRecord transitions a pending record to its terminal status. Records
// already resolved are left untouched.
func (r *SyncRepository) ResolveRecord(ctx context.Context, id uuid.UUID, status models.SyncStatus, message, shopifyProductID string) error {
	return r.db.WithContext(ctx).
		Model(&models.SyncRecord{}).
		Where("id = ? AND status = ?", id, models.SyncStatusPending).
		Updates(map[string]interface{}{
			"status":             status,
			"message":            message,
			"shopify_product_id": shopifyProductID,
			"updated_at":         time.Now(),
		}).Error
}

// ListRecords retrieves sync records newest-first
func (r *SyncRepository) ListRecords(ctx context.Context, limit int) ([]models.SyncRecord, error) {
	var records []models.SyncRecord
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&records).Error
	return records, err
}

// ListRecordsByItem retrieves all attempts for one catalog item, newest-first
func (r *SyncRepository) ListRecordsByItem(ctx context.Context, itemID int64) ([]models.SyncRecord, error) {
	var records []models.SyncRecord
	err := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("created_at DESC").
		Find(&records).Error
	return records, err
}
