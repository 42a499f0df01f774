package scheduling_test

import (
	"context"
	"testing"

	"churchops/apperr"
	"churchops/scheduling"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	tenantA uint = 1
	tenantB uint = 2

	worshipTeam uint = 10
	techTeam    uint = 11

	guitarSkill uint = 1
	drumsSkill  uint = 2
	soundSkill  uint = 3

	eventID uint = 100
	userU   uint = 500
)

// setupWorship seeds tenant A with the Worship team, a seated user who is a
// member holding Guitar and Drums, and one slot per skill in the event.
func setupWorship(f *fakeStore) (guitarSlot, drumsSlot uint) {
	f.addSkill(tenantA, guitarSkill, "Guitar")
	f.addSkill(tenantA, drumsSkill, "Drums")
	f.seatUser(tenantA, userU)
	membership := f.addMembership(tenantA, userU, worshipTeam)
	f.grantSkill(membership, guitarSkill)
	f.grantSkill(membership, drumsSkill)
	f.addSlot(tenantA, 201, eventID, worshipTeam, guitarSkill)
	f.addSlot(tenantA, 202, eventID, worshipTeam, drumsSkill)
	return 201, 202
}

func newAssignments(f *fakeStore, strict bool) *scheduling.Assignments {
	return scheduling.NewAssignments(f, strict, zap.NewNop())
}

func TestCreateAssignmentSucceedsAndLists(t *testing.T) {
	f := newFakeStore()
	guitarSlot, _ := setupWorship(f)
	svc := newAssignments(f, false)

	created, err := svc.Create(context.Background(), tenantA, eventID, guitarSlot, userU)
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, tenantA, created.TenantID)
	assert.Equal(t, guitarSlot, created.SlotID)
	assert.Equal(t, userU, created.UserID)

	listed, err := svc.List(context.Background(), tenantA, eventID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)
}

func TestCreateAssignmentSlotNotFound(t *testing.T) {
	f := newFakeStore()
	setupWorship(f)
	svc := newAssignments(f, false)

	_, err := svc.Create(context.Background(), tenantA, eventID, 999, userU)
	require.Error(t, err)
	assert.Equal(t, "Event slot not found", err.Error())
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
}

func TestCreateAssignmentSlotOfOtherTenantLooksAbsent(t *testing.T) {
	f := newFakeStore()
	setupWorship(f)
	// The slot exists, but under tenant B.
	f.addSlot(tenantB, 301, eventID, worshipTeam, guitarSkill)
	svc := newAssignments(f, false)

	_, err := svc.Create(context.Background(), tenantA, eventID, 301, userU)
	require.Error(t, err)
	assert.Equal(t, "Event slot not found", err.Error())
}

func TestCreateAssignmentRequiresActiveSeat(t *testing.T) {
	f := newFakeStore()
	guitarSlot, _ := setupWorship(f)
	svc := newAssignments(f, false)

	// A person without a seat, even with membership and skills.
	other := uint(501)
	membership := f.addMembership(tenantA, other, worshipTeam)
	f.grantSkill(membership, guitarSkill)

	_, err := svc.Create(context.Background(), tenantA, eventID, guitarSlot, other)
	require.Error(t, err)
	assert.Equal(t, "Active user not found in this tenant", err.Error())
}

func TestCreateAssignmentRequiresTeamMembership(t *testing.T) {
	f := newFakeStore()
	setupWorship(f)
	f.addSlot(tenantA, 203, eventID, techTeam, soundSkill)
	svc := newAssignments(f, false)

	_, err := svc.Create(context.Background(), tenantA, eventID, 203, userU)
	require.Error(t, err)
	assert.Equal(t, "User is not a member of the required team", err.Error())
}

func TestCreateAssignmentRequiresSkill(t *testing.T) {
	f := newFakeStore()
	setupWorship(f)
	f.addSkill(tenantA, soundSkill, "Sound")
	f.addSlot(tenantA, 204, eventID, worshipTeam, soundSkill)
	svc := newAssignments(f, false)

	_, err := svc.Create(context.Background(), tenantA, eventID, 204, userU)
	require.Error(t, err)
	assert.Equal(t, "User does not have the required skill", err.Error())
}

func TestCreateAssignmentRejectsSecondTeam(t *testing.T) {
	f := newFakeStore()
	guitarSlot, _ := setupWorship(f)
	f.addSkill(tenantA, soundSkill, "Sound")
	techMembership := f.addMembership(tenantA, userU, techTeam)
	f.grantSkill(techMembership, soundSkill)
	f.addSlot(tenantA, 205, eventID, techTeam, soundSkill)
	svc := newAssignments(f, false)

	_, err := svc.Create(context.Background(), tenantA, eventID, guitarSlot, userU)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), tenantA, eventID, 205, userU)
	require.Error(t, err)
	assert.Equal(t, "User can only be assigned to one team per event", err.Error())
}

func TestCreateAssignmentRejectsIncompatibleSkills(t *testing.T) {
	f := newFakeStore()
	guitarSlot, drumsSlot := setupWorship(f)
	rules := scheduling.NewRules(f, zap.NewNop())
	svc := newAssignments(f, false)

	// Registered in reversed order; normalization makes it symmetric.
	_, err := rules.Add(context.Background(), tenantA, drumsSkill, guitarSkill)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), tenantA, eventID, guitarSlot, userU)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), tenantA, eventID, drumsSlot, userU)
	require.Error(t, err)
	assert.Equal(t, "These skills cannot be used simultaneously by the same person", err.Error())
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
}

func TestCreateAssignmentAllowedAfterRuleRemoved(t *testing.T) {
	f := newFakeStore()
	guitarSlot, drumsSlot := setupWorship(f)
	rules := scheduling.NewRules(f, zap.NewNop())
	svc := newAssignments(f, false)

	_, err := rules.Add(context.Background(), tenantA, guitarSkill, drumsSkill)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), tenantA, eventID, guitarSlot, userU)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), tenantA, eventID, drumsSlot, userU)
	require.Error(t, err)

	// Dropping the rule unblocks the same request.
	require.NoError(t, rules.Remove(context.Background(), tenantA, drumsSkill, guitarSkill))

	_, err = svc.Create(context.Background(), tenantA, eventID, drumsSlot, userU)
	require.NoError(t, err)
}

func TestCreateAssignmentComparesOnlyFirstExistingTeam(t *testing.T) {
	f := newFakeStore()
	guitarSlot, _ := setupWorship(f)
	f.addSkill(tenantA, soundSkill, "Sound")
	f.addSlot(tenantA, 206, eventID, techTeam, soundSkill)

	// Pre-existing state with assignments on two different teams, oldest on
	// Worship. A new Worship slot passes because only the first existing
	// assignment's team is compared.
	f.seedAssignment(tenantA, eventID, guitarSlot, userU)
	f.seedAssignment(tenantA, eventID, 206, userU)

	f.addSlot(tenantA, 207, eventID, worshipTeam, drumsSkill)
	svc := newAssignments(f, false)

	_, err := svc.Create(context.Background(), tenantA, eventID, 207, userU)
	require.NoError(t, err)
}

func TestCreateAssignmentChecksIncompatibilityAgainstAllExisting(t *testing.T) {
	f := newFakeStore()
	guitarSlot, drumsSlot := setupWorship(f)
	f.addSkill(tenantA, soundSkill, "Keys")
	membership := uint(0)
	for _, m := range f.memberships {
		if m.userID == userU {
			membership = m.id
		}
	}
	f.grantSkill(membership, soundSkill)
	f.addSlot(tenantA, 208, eventID, worshipTeam, soundSkill)
	rules := scheduling.NewRules(f, zap.NewNop())
	svc := newAssignments(f, false)

	// Conflict is with the second existing assignment, not the first.
	_, err := rules.Add(context.Background(), tenantA, drumsSkill, soundSkill)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), tenantA, eventID, guitarSlot, userU)
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), tenantA, eventID, drumsSlot, userU)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), tenantA, eventID, 208, userU)
	require.Error(t, err)
	assert.Equal(t, "These skills cannot be used simultaneously by the same person", err.Error())
}

func TestCreateAssignmentInsertFailureIsInternal(t *testing.T) {
	f := newFakeStore()
	guitarSlot, _ := setupWorship(f)
	f.failInsert = true
	svc := newAssignments(f, false)

	_, err := svc.Create(context.Background(), tenantA, eventID, guitarSlot, userU)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	assert.Equal(t, "Failed to create assignment", err.Error())
}

func TestCreateAssignmentStrictModeUsesTransaction(t *testing.T) {
	f := newFakeStore()
	guitarSlot, _ := setupWorship(f)

	svc := newAssignments(f, false)
	_, err := svc.Create(context.Background(), tenantA, eventID, guitarSlot, userU)
	require.NoError(t, err)
	assert.Equal(t, 0, f.transactions)

	f2 := newFakeStore()
	guitarSlot2, _ := setupWorship(f2)
	strict := newAssignments(f2, true)
	_, err = strict.Create(context.Background(), tenantA, eventID, guitarSlot2, userU)
	require.NoError(t, err)
	assert.Equal(t, 1, f2.transactions)
}

func TestDeleteAssignment(t *testing.T) {
	f := newFakeStore()
	guitarSlot, drumsSlot := setupWorship(f)
	svc := newAssignments(f, false)

	first, err := svc.Create(context.Background(), tenantA, eventID, guitarSlot, userU)
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), tenantA, eventID, drumsSlot, userU)
	require.NoError(t, err)

	// Deletion checks existence only; no constraint can be violated by
	// removing a row.
	require.NoError(t, svc.Delete(context.Background(), tenantA, first.ID))
	require.NoError(t, svc.Delete(context.Background(), tenantA, second.ID))

	err = svc.Delete(context.Background(), tenantA, first.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Equal(t, "Assignment not found", err.Error())
}

func TestDeleteAssignmentScopedToTenant(t *testing.T) {
	f := newFakeStore()
	guitarSlot, _ := setupWorship(f)
	svc := newAssignments(f, false)

	created, err := svc.Create(context.Background(), tenantA, eventID, guitarSlot, userU)
	require.NoError(t, err)

	err = svc.Delete(context.Background(), tenantB, created.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	listed, err := svc.List(context.Background(), tenantA, eventID)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestListAssignmentsScopedToTenantAndEvent(t *testing.T) {
	f := newFakeStore()
	guitarSlot, _ := setupWorship(f)
	svc := newAssignments(f, false)

	_, err := svc.Create(context.Background(), tenantA, eventID, guitarSlot, userU)
	require.NoError(t, err)

	listed, err := svc.List(context.Background(), tenantA, 999)
	require.NoError(t, err)
	assert.Empty(t, listed)

	listed, err = svc.List(context.Background(), tenantB, eventID)
	require.NoError(t, err)
	assert.Empty(t, listed)
}
