package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"churchops/scheduling"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockStore(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *Store) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return db, mock, New(gdb)
}

func TestResolveSlotScopedToTenant(t *testing.T) {
	db, mock, s := setupMockStore(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "tenant_id", "event_id", "team_id", "skill_id", "quantity"}).
		AddRow(201, 7, 100, 10, 1, 2)
	mock.ExpectQuery(`SELECT \* FROM "event_slots" WHERE id = \$1 AND tenant_id = \$2`).
		WithArgs(201, 7, 1).
		WillReturnRows(rows)

	slot, err := s.ResolveSlot(context.Background(), 7, 201)
	require.NoError(t, err)
	require.NotNil(t, slot)
	assert.Equal(t, uint(100), slot.EventID)
	assert.Equal(t, uint(10), slot.TeamID)
	assert.Equal(t, uint(1), slot.SkillID)
	assert.Equal(t, 2, slot.Quantity)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveSlotMissingIsNil(t *testing.T) {
	db, mock, s := setupMockStore(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "tenant_id", "event_id", "team_id", "skill_id", "quantity"})
	mock.ExpectQuery(`SELECT \* FROM "event_slots" WHERE id = \$1 AND tenant_id = \$2`).
		WithArgs(999, 7, 1).
		WillReturnRows(rows)

	slot, err := s.ResolveSlot(context.Background(), 7, 999)
	require.NoError(t, err)
	assert.Nil(t, slot)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActiveUserExistsJoinsSeatAndPerson(t *testing.T) {
	db, mock, s := setupMockStore(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "tenant_users" JOIN people ON people\.id = tenant_users\.person_id`).
		WithArgs(500, 7).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := s.ActiveUserExists(context.Background(), 7, 500)
	require.NoError(t, err)
	assert.True(t, exists)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExistingAssignmentsOrderedByAssignmentID(t *testing.T) {
	db, mock, s := setupMockStore(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"team_id", "skill_id"}).
		AddRow(10, 1).
		AddRow(10, 2)
	mock.ExpectQuery(`SELECT event_slots\.team_id, event_slots\.skill_id FROM "event_assignments" JOIN event_slots ON event_slots\.id = event_assignments\.slot_id .+ ORDER BY event_assignments\.id`).
		WithArgs(100, 500).
		WillReturnRows(rows)

	existing, err := s.ExistingAssignments(context.Background(), 100, 500)
	require.NoError(t, err)
	require.Len(t, existing, 2)
	assert.Equal(t, scheduling.ExistingAssignment{TeamID: 10, SkillID: 1}, existing[0])
	assert.Equal(t, scheduling.ExistingAssignment{TeamID: 10, SkillID: 2}, existing[1])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertPairDuplicateReturnsNil(t *testing.T) {
	db, mock, s := setupMockStore(t)
	defer db.Close()

	// ON CONFLICT DO NOTHING yields no returned row for a duplicate.
	mock.ExpectQuery(`INSERT INTO "skill_incompatibilities" .+ ON CONFLICT DO NOTHING RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	pair, err := s.InsertPair(context.Background(), 7, 1, 2)
	require.NoError(t, err)
	assert.Nil(t, pair)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// Removing through the rules service must hit the store with the normalized
// pair regardless of argument order. Only the argument order is pinned; the
// column spellings are guarded by the schema test in models.
func TestRemoveRuleNormalizesPairInDelete(t *testing.T) {
	db, mock, s := setupMockStore(t)
	defer db.Close()

	rules := scheduling.NewRules(s, zap.NewNop())

	mock.ExpectExec(`DELETE FROM "skill_incompatibilities"`).
		WithArgs(7, 2, 5).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := rules.Remove(context.Background(), 7, 5, 2)
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListPairsScansSchemaColumns(t *testing.T) {
	db, mock, s := setupMockStore(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"skill_id_1", "skill_id_2", "skill1_name"}).
		AddRow(2, 5, "Drums")
	mock.ExpectQuery(`SELECT .+ FROM "skill_incompatibilities" JOIN skills`).
		WithArgs(7).
		WillReturnRows(rows)

	pairs, err := s.ListPairs(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, uint(2), pairs[0].SkillID1)
	assert.Equal(t, uint(5), pairs[0].SkillID2)
	assert.Equal(t, "Drums", pairs[0].Skill1Name)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionCommitsAndRollsBack(t *testing.T) {
	db, mock, s := setupMockStore(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectCommit()
	err := s.Transaction(context.Background(), func(scheduling.Store) error { return nil })
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectRollback()
	err = s.Transaction(context.Background(), func(scheduling.Store) error { return errors.New("boom") })
	require.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAssignmentScopedToTenant(t *testing.T) {
	db, mock, s := setupMockStore(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM "event_assignments" WHERE id = \$1 AND tenant_id = \$2`).
		WithArgs(42, 7).
		WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err := s.DeleteAssignment(context.Background(), 7, 42)
	require.NoError(t, err)
	assert.False(t, deleted)

	assert.NoError(t, mock.ExpectationsWereMet())
}
