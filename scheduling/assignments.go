package scheduling

import (
	"context"

	"churchops/apperr"
	"churchops/models"

	"go.uber.org/zap"
)

// Assignments runs the assignment validation pipeline. Create applies five
// ordered checks and fails fast on the first violation; the insert is the
// last step, so a failed request leaves no partial state behind.
type Assignments struct {
	store  Store
	strict bool
	logger *zap.Logger
}

func NewAssignments(store Store, strict bool, logger *zap.Logger) *Assignments {
	return &Assignments{store: store, strict: strict, logger: logger}
}

// Create validates and persists one (event, slot, user) assignment.
//
// Each check reads the store independently; two concurrent requests can both
// pass validation against the same state and both insert. Strict mode wraps
// the whole pipeline in one serializable transaction instead.
func (s *Assignments) Create(ctx context.Context, tenantID, eventID, slotID, userID uint) (*models.EventAssignment, error) {
	if !s.strict {
		return s.create(ctx, s.store, tenantID, eventID, slotID, userID)
	}

	var assignment *models.EventAssignment
	err := s.store.Transaction(ctx, func(tx Store) error {
		a, err := s.create(ctx, tx, tenantID, eventID, slotID, userID)
		if err != nil {
			return err
		}
		assignment = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return assignment, nil
}

func (s *Assignments) create(ctx context.Context, st Store, tenantID, eventID, slotID, userID uint) (*models.EventAssignment, error) {
	// The slot gives us the required team and skill. Existence and tenant
	// scope are one check: a slot under another tenant looks absent.
	slot, err := st.ResolveSlot(ctx, tenantID, slotID)
	if err != nil {
		return nil, err
	}
	if slot == nil {
		return nil, apperr.BadRequest("Event slot not found")
	}

	active, err := st.ActiveUserExists(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, apperr.BadRequest("Active user not found in this tenant")
	}

	membership, err := st.FindMembership(ctx, tenantID, userID, slot.TeamID)
	if err != nil {
		return nil, err
	}
	if membership == nil {
		return nil, apperr.BadRequest("User is not a member of the required team")
	}

	hasSkill, err := st.MembershipHasSkill(ctx, membership.ID, slot.SkillID)
	if err != nil {
		return nil, err
	}
	if !hasSkill {
		return nil, apperr.BadRequest("User does not have the required skill")
	}

	existing, err := st.ExistingAssignments(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		// One team per event. Only the oldest assignment's team is compared;
		// the store orders by assignment id so "oldest" is deterministic.
		if existing[0].TeamID != slot.TeamID {
			return nil, apperr.BadRequest("User can only be assigned to one team per event")
		}

		// Unlike the team check, incompatibility is tested against every
		// existing assignment.
		for _, assignment := range existing {
			id1, id2 := models.NormalizePair(assignment.SkillID, slot.SkillID)
			incompatible, err := st.PairExists(ctx, tenantID, id1, id2)
			if err != nil {
				return nil, err
			}
			if incompatible {
				return nil, apperr.BadRequest("These skills cannot be used simultaneously by the same person")
			}
		}
	}

	created, err := st.InsertAssignment(ctx, tenantID, eventID, slotID, userID)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, apperr.Internal("Failed to create assignment")
	}

	s.logger.Info("assignment created",
		zap.Uint("tenant_id", tenantID),
		zap.Uint("event_id", eventID),
		zap.Uint("slot_id", slotID),
		zap.Uint("user_id", userID))
	return created, nil
}

// Delete removes an assignment by id within the tenant. Removal cannot
// violate any constraint, so only existence is checked.
func (s *Assignments) Delete(ctx context.Context, tenantID, assignmentID uint) error {
	deleted, err := s.store.DeleteAssignment(ctx, tenantID, assignmentID)
	if err != nil {
		return err
	}
	if !deleted {
		return apperr.NotFound("Assignment not found")
	}

	s.logger.Info("assignment deleted",
		zap.Uint("tenant_id", tenantID),
		zap.Uint("assignment_id", assignmentID))
	return nil
}

func (s *Assignments) List(ctx context.Context, tenantID, eventID uint) ([]models.EventAssignment, error) {
	return s.store.ListAssignments(ctx, tenantID, eventID)
}
