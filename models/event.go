package models

import (
	"time"

	"gorm.io/gorm"
)

type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusPublished EventStatus = "published"
	EventStatusCompleted EventStatus = "completed"
	EventStatusCancelled EventStatus = "cancelled"
)

// EventTemplate is a reusable set of slots; creating an event from a template
// copies its slots into the event.
type EventTemplate struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	TenantID  uint           `gorm:"not null;index" json:"tenant_id"`
	Name      string         `gorm:"not null;size:255" json:"name"`
	Slots     []TemplateSlot `gorm:"foreignKey:TemplateID" json:"slots,omitempty"`
}

type TemplateSlot struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	TenantID   uint      `gorm:"not null;index" json:"tenant_id"`
	TemplateID uint      `gorm:"not null;index" json:"template_id"`
	TeamID     uint      `gorm:"not null" json:"team_id"`
	SkillID    uint      `gorm:"not null" json:"skill_id"`
	Quantity   int       `gorm:"not null;default:1" json:"quantity"`
}

type Event struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
	TenantID   uint           `gorm:"not null;index" json:"tenant_id"`
	TemplateID *uint          `gorm:"index" json:"template_id"`
	Name       string         `gorm:"not null;size:255" json:"name"`
	Date       time.Time      `gorm:"not null" json:"date"`
	Status     EventStatus    `gorm:"not null;size:20;default:draft" json:"status"`
	Slots      []EventSlot    `gorm:"foreignKey:EventID" json:"slots,omitempty"`
}

// EventSlot asks for Quantity people from TeamID holding SkillID; the skill
// must belong to that team.
type EventSlot struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	TenantID  uint      `gorm:"not null;index" json:"tenant_id"`
	EventID   uint      `gorm:"not null;index" json:"event_id"`
	TeamID    uint      `gorm:"not null" json:"team_id"`
	SkillID   uint      `gorm:"not null" json:"skill_id"`
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`
}

// EventAssignment places a seated user into a slot. Rows are only ever
// created through the scheduling validation pipeline.
type EventAssignment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	TenantID  uint      `gorm:"not null;index" json:"tenant_id"`
	EventID   uint      `gorm:"not null;index" json:"event_id"`
	SlotID    uint      `gorm:"not null;index" json:"slot_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
}
