package scheduling

import (
	"context"

	"churchops/apperr"
	"churchops/models"

	"go.uber.org/zap"
)

// Rules maintains the registry of skill pairs that cannot be used
// simultaneously by one person within an event.
type Rules struct {
	store  Store
	logger *zap.Logger
}

func NewRules(store Store, logger *zap.Logger) *Rules {
	return &Rules{store: store, logger: logger}
}

// Add registers an incompatibility pair. Both skills must belong to the
// tenant, and re-adding an existing pair is rejected rather than absorbed.
func (r *Rules) Add(ctx context.Context, tenantID, skillID1, skillID2 uint) (*models.SkillIncompatibility, error) {
	count, err := r.store.CountTenantSkills(ctx, tenantID, []uint{skillID1, skillID2})
	if err != nil {
		return nil, err
	}
	if count != 2 {
		return nil, apperr.BadRequest("One or both skills do not belong to this tenant")
	}

	id1, id2 := models.NormalizePair(skillID1, skillID2)

	pair, err := r.store.InsertPair(ctx, tenantID, id1, id2)
	if err != nil {
		return nil, err
	}
	if pair == nil {
		return nil, apperr.Conflict("Skill incompatibility already exists")
	}

	r.logger.Info("skill incompatibility added",
		zap.Uint("tenant_id", tenantID),
		zap.Uint("skill_id_1", id1),
		zap.Uint("skill_id_2", id2))
	return pair, nil
}

func (r *Rules) Remove(ctx context.Context, tenantID, skillID1, skillID2 uint) error {
	id1, id2 := models.NormalizePair(skillID1, skillID2)

	deleted, err := r.store.DeletePair(ctx, tenantID, id1, id2)
	if err != nil {
		return err
	}
	if !deleted {
		return apperr.NotFound("Skill incompatibility not found")
	}

	r.logger.Info("skill incompatibility removed",
		zap.Uint("tenant_id", tenantID),
		zap.Uint("skill_id_1", id1),
		zap.Uint("skill_id_2", id2))
	return nil
}

func (r *Rules) List(ctx context.Context, tenantID uint) ([]Pair, error) {
	return r.store.ListPairs(ctx, tenantID)
}

// IsIncompatible reports whether the pair is registered, in either order.
func (r *Rules) IsIncompatible(ctx context.Context, tenantID, skillIDA, skillIDB uint) (bool, error) {
	id1, id2 := models.NormalizePair(skillIDA, skillIDB)
	return r.store.PairExists(ctx, tenantID, id1, id2)
}
