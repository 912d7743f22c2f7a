package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ConnectionSettings holds the operator-supplied connection configuration for
// both sides of the bridge: the Orchestra ERP (OAuth2 client credentials) and
// the Shopify store (static admin access token).
//
// Secrets are stored encrypted (see internal/encryption) or, when a secret
// reference is set, resolved from GCP Secret Manager at load time. Plaintext
// secrets never reach the database or API responses.
type ConnectionSettings struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	// Orchestra ERP
	OrchestraIdentityURL string `gorm:"type:varchar(500);not null" json:"orchestraIdentityUrl"`
	OrchestraBaseURL     string `gorm:"type:varchar(500);not null" json:"orchestraBaseUrl"`
	OrchestraClientID    string `gorm:"type:varchar(255);not null" json:"orchestraClientId"`
	OrchestraSecretEnc   string `gorm:"type:text" json:"-"`

	// Shopify
	ShopifyStoreURL string `gorm:"type:varchar(500);not null" json:"shopifyStoreUrl"`
	ShopifyTokenEnc string `gorm:"type:text" json:"-"`

	// GCP Secret Manager reference; takes precedence over the encrypted
	// columns when non-empty.
	SecretReference string `gorm:"type:varchar(500)" json:"-"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName specifies the table name for ConnectionSettings
func (ConnectionSettings) TableName() string {
	return "connection_settings"
}

func (s *ConnectionSettings) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
