package scheduling_test

import (
	"context"
	"sync"

	"churchops/models"
	"churchops/scheduling"
)

// fakeStore is an in-memory scheduling.Store for unit tests.
type fakeStore struct {
	mu sync.Mutex

	slots        map[uint]fakeSlot
	seats        map[[2]uint]bool // (tenantID, userID)
	memberships  []fakeMembership
	memberSkills map[[2]uint]bool // (membershipID, skillID)
	skillTenants map[uint]uint    // skillID -> tenantID
	skillNames   map[uint]string
	pairs        map[[3]uint]bool // (tenantID, skillID1, skillID2)
	assignments  []models.EventAssignment

	nextID       uint
	failInsert   bool
	transactions int
}

type fakeSlot struct {
	tenantID uint
	slot     scheduling.Slot
}

type fakeMembership struct {
	id       uint
	tenantID uint
	userID   uint
	teamID   uint
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		slots:        make(map[uint]fakeSlot),
		seats:        make(map[[2]uint]bool),
		memberSkills: make(map[[2]uint]bool),
		skillTenants: make(map[uint]uint),
		skillNames:   make(map[uint]string),
		pairs:        make(map[[3]uint]bool),
	}
}

func (f *fakeStore) id() uint {
	f.nextID++
	return f.nextID
}

// Seed helpers.

func (f *fakeStore) addSkill(tenantID, skillID uint, name string) {
	f.skillTenants[skillID] = tenantID
	f.skillNames[skillID] = name
}

func (f *fakeStore) addSlot(tenantID, slotID, eventID, teamID, skillID uint) {
	f.slots[slotID] = fakeSlot{tenantID: tenantID, slot: scheduling.Slot{
		ID: slotID, EventID: eventID, TeamID: teamID, SkillID: skillID, Quantity: 1,
	}}
}

func (f *fakeStore) seatUser(tenantID, userID uint) {
	f.seats[[2]uint{tenantID, userID}] = true
}

func (f *fakeStore) addMembership(tenantID, userID, teamID uint) uint {
	id := f.id()
	f.memberships = append(f.memberships, fakeMembership{id: id, tenantID: tenantID, userID: userID, teamID: teamID})
	return id
}

func (f *fakeStore) grantSkill(membershipID, skillID uint) {
	f.memberSkills[[2]uint{membershipID, skillID}] = true
}

// seedAssignment bypasses the pipeline, for shaping pre-existing state.
func (f *fakeStore) seedAssignment(tenantID, eventID, slotID, userID uint) {
	f.assignments = append(f.assignments, models.EventAssignment{
		ID: f.id(), TenantID: tenantID, EventID: eventID, SlotID: slotID, UserID: userID,
	})
}

// scheduling.Store implementation.

func (f *fakeStore) ResolveSlot(_ context.Context, tenantID, slotID uint) (*scheduling.Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.slots[slotID]
	if !ok || entry.tenantID != tenantID {
		return nil, nil
	}
	slot := entry.slot
	return &slot, nil
}

func (f *fakeStore) ActiveUserExists(_ context.Context, tenantID, userID uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seats[[2]uint{tenantID, userID}], nil
}

func (f *fakeStore) FindMembership(_ context.Context, tenantID, userID, teamID uint) (*scheduling.Membership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.memberships {
		if m.tenantID == tenantID && m.userID == userID && m.teamID == teamID {
			return &scheduling.Membership{ID: m.id, TeamID: m.teamID, UserID: m.userID}, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) MembershipHasSkill(_ context.Context, membershipID, skillID uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.memberSkills[[2]uint{membershipID, skillID}], nil
}

func (f *fakeStore) ExistingAssignments(_ context.Context, eventID, userID uint) ([]scheduling.ExistingAssignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []scheduling.ExistingAssignment
	for _, a := range f.assignments {
		if a.EventID != eventID || a.UserID != userID {
			continue
		}
		entry, ok := f.slots[a.SlotID]
		if !ok {
			continue
		}
		out = append(out, scheduling.ExistingAssignment{TeamID: entry.slot.TeamID, SkillID: entry.slot.SkillID})
	}
	return out, nil
}

func (f *fakeStore) InsertAssignment(_ context.Context, tenantID, eventID, slotID, userID uint) (*models.EventAssignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failInsert {
		return nil, nil
	}
	assignment := models.EventAssignment{
		ID: f.id(), TenantID: tenantID, EventID: eventID, SlotID: slotID, UserID: userID,
	}
	f.assignments = append(f.assignments, assignment)
	return &assignment, nil
}

func (f *fakeStore) DeleteAssignment(_ context.Context, tenantID, assignmentID uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, a := range f.assignments {
		if a.ID == assignmentID && a.TenantID == tenantID {
			f.assignments = append(f.assignments[:i], f.assignments[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) ListAssignments(_ context.Context, tenantID, eventID uint) ([]models.EventAssignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.EventAssignment
	for _, a := range f.assignments {
		if a.TenantID == tenantID && a.EventID == eventID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStore) CountTenantSkills(_ context.Context, tenantID uint, skillIDs []uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[uint]bool)
	for _, id := range skillIDs {
		if f.skillTenants[id] == tenantID {
			seen[id] = true
		}
	}
	return int64(len(seen)), nil
}

func (f *fakeStore) InsertPair(_ context.Context, tenantID, skillID1, skillID2 uint) (*models.SkillIncompatibility, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := [3]uint{tenantID, skillID1, skillID2}
	if f.pairs[key] {
		return nil, nil
	}
	f.pairs[key] = true
	return &models.SkillIncompatibility{
		ID: f.id(), TenantID: tenantID, SkillID1: skillID1, SkillID2: skillID2,
	}, nil
}

func (f *fakeStore) DeletePair(_ context.Context, tenantID, skillID1, skillID2 uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := [3]uint{tenantID, skillID1, skillID2}
	if !f.pairs[key] {
		return false, nil
	}
	delete(f.pairs, key)
	return true, nil
}

func (f *fakeStore) PairExists(_ context.Context, tenantID, skillID1, skillID2 uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pairs[[3]uint{tenantID, skillID1, skillID2}], nil
}

func (f *fakeStore) ListPairs(_ context.Context, tenantID uint) ([]scheduling.Pair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []scheduling.Pair
	for key := range f.pairs {
		if key[0] == tenantID {
			out = append(out, scheduling.Pair{
				SkillID1:   key[1],
				SkillID2:   key[2],
				Skill1Name: f.skillNames[key[1]],
			})
		}
	}
	return out, nil
}

func (f *fakeStore) Transaction(_ context.Context, fn func(scheduling.Store) error) error {
	f.mu.Lock()
	f.transactions++
	f.mu.Unlock()
	return fn(f)
}
