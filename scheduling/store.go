// Package scheduling decides who may be placed into which event slot. It
// holds the assignment validation pipeline and the skill-incompatibility rule
// service, both working against the Store interface so the persistence layer
// stays a thin scoped-query boundary.
package scheduling

import (
	"context"

	"churchops/models"
)

// Slot is an event slot as the validator sees it: owning event, required team
// and skill, desired headcount.
type Slot struct {
	ID       uint
	EventID  uint
	TeamID   uint
	SkillID  uint
	Quantity int
}

// Membership identifies one (user, team) membership row; its ID scopes skill
// lookups.
type Membership struct {
	ID     uint
	TeamID uint
	UserID uint
}

// ExistingAssignment carries the team and skill of a slot the user already
// holds within an event.
type ExistingAssignment struct {
	TeamID  uint
	SkillID uint
}

// Pair is one incompatibility rule, annotated with the first skill's name for
// display. The column tags match the skill_incompatibilities schema so pair
// rows scan directly into it.
type Pair struct {
	SkillID1   uint   `gorm:"column:skill_id_1" json:"skill_id_1"`
	SkillID2   uint   `gorm:"column:skill_id_2" json:"skill_id_2"`
	Skill1Name string `gorm:"column:skill1_name" json:"skill_1_name"`
}

// Store is the tenant-scoped data access the scheduling services need. Every
// query carries the tenant id in its predicate; a missing row and a row owned
// by another tenant are indistinguishable to callers.
type Store interface {
	// ResolveSlot returns nil when the slot does not exist for the tenant.
	ResolveSlot(ctx context.Context, tenantID, slotID uint) (*Slot, error)

	// ActiveUserExists reports whether the person holds an active seat in the
	// tenant. A person record alone is not enough.
	ActiveUserExists(ctx context.Context, tenantID, userID uint) (bool, error)

	// FindMembership returns nil when the user is not on the team. When the
	// data holds more than one row per (team, user) the lowest id wins.
	FindMembership(ctx context.Context, tenantID, userID, teamID uint) (*Membership, error)
	MembershipHasSkill(ctx context.Context, membershipID, skillID uint) (bool, error)

	// ExistingAssignments lists the user's assignments in an event joined to
	// their slots, ordered by assignment id (oldest first).
	ExistingAssignments(ctx context.Context, eventID, userID uint) ([]ExistingAssignment, error)
	InsertAssignment(ctx context.Context, tenantID, eventID, slotID, userID uint) (*models.EventAssignment, error)
	DeleteAssignment(ctx context.Context, tenantID, assignmentID uint) (bool, error)
	ListAssignments(ctx context.Context, tenantID, eventID uint) ([]models.EventAssignment, error)

	// Incompatibility pairs. Pair arguments are already normalized.
	CountTenantSkills(ctx context.Context, tenantID uint, skillIDs []uint) (int64, error)
	InsertPair(ctx context.Context, tenantID, skillID1, skillID2 uint) (*models.SkillIncompatibility, error)
	DeletePair(ctx context.Context, tenantID, skillID1, skillID2 uint) (bool, error)
	PairExists(ctx context.Context, tenantID, skillID1, skillID2 uint) (bool, error)
	ListPairs(ctx context.Context, tenantID uint) ([]Pair, error)

	// Transaction runs fn against a store bound to a single serializable
	// transaction, committing when fn returns nil.
	Transaction(ctx context.Context, fn func(Store) error) error
}
