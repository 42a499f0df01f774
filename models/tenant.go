package models

import (
	"time"

	"gorm.io/gorm"
)

// Tenant is the isolation boundary. Every tenant-scoped row carries a
// TenantID and every query filters by it; nothing resolves across tenants.
type Tenant struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Name      string         `gorm:"not null;size:255" json:"name"`
	Slug      string         `gorm:"uniqueIndex;not null;size:100" json:"slug"`
	APIKey    string         `gorm:"uniqueIndex;not null;size:64" json:"-"`
	PlanID    uint           `gorm:"not null;index" json:"plan_id"`
	Plan      *Plan          `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
}
