package models

import (
	"time"

	"gorm.io/gorm"
)

type Team struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	TenantID  uint           `gorm:"not null;index" json:"tenant_id"`
	Name      string         `gorm:"not null;size:255" json:"name"`
	Skills    []Skill        `gorm:"foreignKey:TeamID" json:"skills,omitempty"`
	Members   []TeamMember   `gorm:"foreignKey:TeamID" json:"members,omitempty"`
}

// Skill belongs to exactly one team. Skill ids are referenced by event slots
// and by incompatibility pairs.
type Skill struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	TenantID  uint      `gorm:"not null;index" json:"tenant_id"`
	TeamID    uint      `gorm:"not null;index" json:"team_id"`
	Name      string    `gorm:"not null;size:255" json:"name"`
}

// TeamMember links a seated user to a team. One membership per (team, user);
// the membership id scopes skill grants.
type TeamMember struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	TenantID  uint             `gorm:"not null;index" json:"tenant_id"`
	TeamID    uint             `gorm:"not null;index;uniqueIndex:team_members_team_user_unique" json:"team_id"`
	UserID    uint             `gorm:"not null;index;uniqueIndex:team_members_team_user_unique" json:"user_id"`
	Role      string           `gorm:"size:100" json:"role"`
	Skills    []TeamMemberSkill `gorm:"foreignKey:TeamMemberID" json:"skills,omitempty"`
}

// TeamMemberSkill records that a membership grants a skill. The skill must
// belong to the member's team; enforced where grants are created, not by the
// schema.
type TeamMemberSkill struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	TenantID     uint      `gorm:"not null;index" json:"tenant_id"`
	TeamMemberID uint      `gorm:"not null;index;uniqueIndex:team_member_skills_member_skill_unique" json:"team_member_id"`
	SkillID      uint      `gorm:"not null;index;uniqueIndex:team_member_skills_member_skill_unique" json:"skill_id"`
}
