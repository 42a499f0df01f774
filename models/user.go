package models

import (
	"time"

	"gorm.io/gorm"
)

// PlatformAdmin is a platform operator account, outside any tenant. It
// manages plans and provisions tenants.
type PlatformAdmin struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
	Email              string         `gorm:"uniqueIndex;not null;size:255" json:"email"`
	FullName           string         `gorm:"not null;size:255" json:"full_name"`
	PasswordHash       string         `gorm:"not null" json:"-"`
	MustChangePassword bool           `gorm:"default:true" json:"must_change_password"`
}

func (a *PlatformAdmin) DisplayName() string {
	if a.FullName != "" {
		return a.FullName
	}
	return a.Email
}
