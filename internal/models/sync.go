package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SyncStatus represents the status of one sync attempt
type SyncStatus string

const (
	SyncStatusPending SyncStatus = "PENDING"
	SyncStatusSuccess SyncStatus = "SUCCESS"
	SyncStatusError   SyncStatus = "ERROR"
)

// SyncRecord tracks one attempt to push one catalog item to Shopify.
//
// Each attempt gets its own ID, so syncing the same item twice in a run (or
// across runs) produces independent records. A record transitions
// PENDING -> SUCCESS or PENDING -> ERROR exactly once and is never deleted.
type SyncRecord struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ItemID     int64      `gorm:"not null;index:idx_sync_records_item" json:"itemId"`
	ItemNumber string     `gorm:"type:varchar(64);not null" json:"itemNumber"`
	Status     SyncStatus `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_sync_records_status" json:"status"`

	// Message carries the remote error text verbatim on ERROR.
	Message string `gorm:"type:text" json:"message,omitempty"`

	// ShopifyProductID links back to the created draft product on SUCCESS.
	ShopifyProductID string `gorm:"type:varchar(64)" json:"shopifyProductId,omitempty"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName specifies the table name for SyncRecord
func (SyncRecord) TableName() string {
	return "sync_records"
}

// BeforeCreate assigns the attempt ID client-side so the record works on
// databases without gen_random_uuid().
func (r *SyncRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Resolved reports whether the record has reached a terminal status.
func (r *SyncRecord) Resolved() bool {
	return r.Status == SyncStatusSuccess || r.Status == SyncStatusError
}
