package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TokenRecord is the persisted, revocable half of a session token. A signed
// token is only accepted while its record exists in the owning tenant's
// partition; logout deletes the record, expiry removes it lazily on first use.
type TokenRecord struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    string    `json:"user_id" gorm:"type:uuid;index"`
	Token     string    `json:"token" gorm:"type:text;index"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (t *TokenRecord) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
