package models

import (
	"time"
)

// Plan is platform-scoped: tenants reference a plan, plans belong to no tenant.
type Plan struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Name       string    `gorm:"uniqueIndex;not null;size:100" json:"name"`
	MaxMembers int       `gorm:"not null;default:50" json:"max_members"`
	MaxTeams   int       `gorm:"not null;default:5" json:"max_teams"`
	PriceCents int       `gorm:"not null;default:0" json:"price_cents"`
	Tenants    []Tenant  `gorm:"foreignKey:PlanID" json:"tenants,omitempty"`
}
