package models

import (
	"time"
)

// SkillIncompatibility is an unordered pair of skills that one person may not
// hold simultaneously within a single event. Pairs are stored normalized with
// SkillID1 < SkillID2 so each unordered pair has exactly one row.
type SkillIncompatibility struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	TenantID  uint      `gorm:"not null;index;uniqueIndex:skill_incompat_pair_unique" json:"tenant_id"`
	SkillID1  uint      `gorm:"column:skill_id_1;not null;index;uniqueIndex:skill_incompat_pair_unique" json:"skill_id_1"`
	SkillID2  uint      `gorm:"column:skill_id_2;not null;index;uniqueIndex:skill_incompat_pair_unique" json:"skill_id_2"`
}

// NormalizePair orders a skill pair smaller-id first. Both the registry and
// every lookup go through this, which is what makes the pair symmetric.
func NormalizePair(a, b uint) (uint, uint) {
	if a < b {
		return a, b
	}
	return b, a
}
