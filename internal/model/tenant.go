package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tenant is the shared registry record for an organization. It lives in the
// main database, not in any tenant partition, and is immutable after signup.
type Tenant struct {
	ID               string    `json:"id" gorm:"type:uuid;primaryKey"`
	OrganizationName string    `json:"organization_name" gorm:"type:varchar(150);not null"`
	DomainName       string    `json:"domain_name" gorm:"type:varchar(150);uniqueIndex"`
	TenantKey        string    `json:"tenant_key" gorm:"type:varchar(150);uniqueIndex"`
	AdminEmail       string    `json:"admin_email" gorm:"type:varchar(150);uniqueIndex"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (t *Tenant) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
