// Package store implements scheduling.Store on gorm. It holds no business
// logic; every query shape carries its tenant scoping in the predicate.
package store

import (
	"context"
	"database/sql"
	"errors"

	"churchops/models"
	"churchops/scheduling"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ResolveSlot(ctx context.Context, tenantID, slotID uint) (*scheduling.Slot, error) {
	var slot models.EventSlot
	err := s.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", slotID, tenantID).
		First(&slot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &scheduling.Slot{
		ID:       slot.ID,
		EventID:  slot.EventID,
		TeamID:   slot.TeamID,
		SkillID:  slot.SkillID,
		Quantity: slot.Quantity,
	}, nil
}

func (s *Store) ActiveUserExists(ctx context.Context, tenantID, userID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.TenantUser{}).
		Joins("JOIN people ON people.id = tenant_users.person_id").
		Where("tenant_users.person_id = ? AND people.tenant_id = ?", userID, tenantID).
		Count(&count).Error
	return count > 0, err
}

func (s *Store) FindMembership(ctx context.Context, tenantID, userID, teamID uint) (*scheduling.Membership, error) {
	var member models.TeamMember
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND team_id = ? AND tenant_id = ?", userID, teamID, tenantID).
		Order("id").
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &scheduling.Membership{
		ID:     member.ID,
		TeamID: member.TeamID,
		UserID: member.UserID,
	}, nil
}

func (s *Store) MembershipHasSkill(ctx context.Context, membershipID, skillID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.TeamMemberSkill{}).
		Where("team_member_id = ? AND skill_id = ?", membershipID, skillID).
		Count(&count).Error
	return count > 0, err
}

func (s *Store) ExistingAssignments(ctx context.Context, eventID, userID uint) ([]scheduling.ExistingAssignment, error) {
	var rows []scheduling.ExistingAssignment
	err := s.db.WithContext(ctx).
		Model(&models.EventAssignment{}).
		Select("event_slots.team_id, event_slots.skill_id").
		Joins("JOIN event_slots ON event_slots.id = event_assignments.slot_id").
		Where("event_assignments.event_id = ? AND event_assignments.user_id = ?", eventID, userID).
		Order("event_assignments.id").
		Scan(&rows).Error
	return rows, err
}

func (s *Store) InsertAssignment(ctx context.Context, tenantID, eventID, slotID, userID uint) (*models.EventAssignment, error) {
	assignment := models.EventAssignment{
		TenantID: tenantID,
		EventID:  eventID,
		SlotID:   slotID,
		UserID:   userID,
	}
	result := s.db.WithContext(ctx).Create(&assignment)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &assignment, nil
}

func (s *Store) DeleteAssignment(ctx context.Context, tenantID, assignmentID uint) (bool, error) {
	result := s.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", assignmentID, tenantID).
		Delete(&models.EventAssignment{})
	return result.RowsAffected > 0, result.Error
}

func (s *Store) ListAssignments(ctx context.Context, tenantID, eventID uint) ([]models.EventAssignment, error) {
	var assignments []models.EventAssignment
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND event_id = ?", tenantID, eventID).
		Find(&assignments).Error
	return assignments, err
}

func (s *Store) CountTenantSkills(ctx context.Context, tenantID uint, skillIDs []uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Skill{}).
		Where("tenant_id = ? AND id IN ?", tenantID, skillIDs).
		Count(&count).Error
	return count, err
}

// InsertPair stores a normalized pair, returning nil without error when the
// pair already exists so the caller can reject the duplicate.
func (s *Store) InsertPair(ctx context.Context, tenantID, skillID1, skillID2 uint) (*models.SkillIncompatibility, error) {
	pair := models.SkillIncompatibility{
		TenantID: tenantID,
		SkillID1: skillID1,
		SkillID2: skillID2,
	}
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&pair)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &pair, nil
}

func (s *Store) DeletePair(ctx context.Context, tenantID, skillID1, skillID2 uint) (bool, error) {
	result := s.db.WithContext(ctx).
		Where("tenant_id = ? AND skill_id_1 = ? AND skill_id_2 = ?", tenantID, skillID1, skillID2).
		Delete(&models.SkillIncompatibility{})
	return result.RowsAffected > 0, result.Error
}

func (s *Store) PairExists(ctx context.Context, tenantID, skillID1, skillID2 uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.SkillIncompatibility{}).
		Where("tenant_id = ? AND skill_id_1 = ? AND skill_id_2 = ?", tenantID, skillID1, skillID2).
		Count(&count).Error
	return count > 0, err
}

func (s *Store) ListPairs(ctx context.Context, tenantID uint) ([]scheduling.Pair, error) {
	var pairs []scheduling.Pair
	err := s.db.WithContext(ctx).
		Model(&models.SkillIncompatibility{}).
		Select("skill_incompatibilities.skill_id_1, skill_incompatibilities.skill_id_2, skills.name AS skill1_name").
		Joins("JOIN skills ON skills.id = skill_incompatibilities.skill_id_1").
		Where("skill_incompatibilities.tenant_id = ?", tenantID).
		Scan(&pairs).Error
	return pairs, err
}

// Transaction runs fn in a serializable transaction. Read committed would let
// two concurrent validations both pass against the same state, which is the
// exact race this wrapper exists to close.
func (s *Store) Transaction(ctx context.Context, fn func(scheduling.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
}
