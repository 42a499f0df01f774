package models

import (
	"time"

	"gorm.io/gorm"
)

type TenantRole string

const (
	TenantRoleOwner  TenantRole = "owner"
	TenantRoleAdmin  TenantRole = "admin"
	TenantRoleMember TenantRole = ""
)

// Person is the generic tenant-scoped people record. A person can exist
// without a login seat; TenantUser marks the active seats.
type Person struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	TenantID     uint           `gorm:"not null;index;uniqueIndex:people_tenant_email_unique" json:"tenant_id"`
	Email        string         `gorm:"not null;size:255;uniqueIndex:people_tenant_email_unique" json:"email"`
	FullName     string         `gorm:"not null;size:255" json:"full_name"`
	Role         TenantRole     `gorm:"size:20" json:"role"`
	PasswordHash string         `json:"-"`
}

func (p *Person) IsManager() bool {
	return p.Role == TenantRoleOwner || p.Role == TenantRoleAdmin
}

// TenantUser is the active-seat relation: a row means the person has an
// enabled login for the tenant. Only seated people can join teams or be
// assigned to event slots.
type TenantUser struct {
	PersonID  uint      `gorm:"primaryKey" json:"person_id"`
	TenantID  uint      `gorm:"not null;index" json:"tenant_id"`
	CreatedAt time.Time `json:"created_at"`
	Person    *Person   `gorm:"foreignKey:PersonID" json:"person,omitempty"`
}

// PersonField defines a per-tenant custom field; values live in
// PersonFieldValue. The scheduling core never reads these.
type PersonField struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	TenantID    uint      `gorm:"not null;index;uniqueIndex:person_fields_tenant_name_unique" json:"tenant_id"`
	Name        string    `gorm:"not null;size:100;uniqueIndex:person_fields_tenant_name_unique" json:"name"`
	DisplayName string    `gorm:"not null;size:255" json:"display_name"`
}

type PersonFieldValue struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	PersonID  uint      `gorm:"not null;index;uniqueIndex:person_field_values_person_field_unique" json:"person_id"`
	FieldID   uint      `gorm:"not null;uniqueIndex:person_field_values_person_field_unique" json:"field_id"`
	Value     string    `gorm:"size:1000" json:"value"`
}
