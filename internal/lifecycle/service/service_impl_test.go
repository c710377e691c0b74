package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/worksuite/internal/lifecycle/domain"
	"github.com/smallbiznis/worksuite/internal/lifecycle/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:lifecycle_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.EntityRecord{}))
	return db
}

func newTestService(t *testing.T, db *gorm.DB) domain.Service {
	t.Helper()

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Graph: domain.NewGraph(),
		Repo:  repository.Provide(),
	})
}

func TestTransitionValid(t *testing.T) {
	svc := newTestService(t, setupTestDB(t))

	next, err := svc.Transition(domain.EntityTypeTask, domain.TaskStatePending, domain.TaskStateCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStateCompleted, next)
}

func TestTransitionIdentityIsNoOp(t *testing.T) {
	svc := newTestService(t, setupTestDB(t))

	for _, entityType := range domain.AllEntityTypes() {
		graph := domain.NewGraph()
		for _, state := range graph.AllStates(entityType) {
			next, err := svc.Transition(entityType, state, state)
			require.NoError(t, err, "%s %s", entityType, state)
			assert.Equal(t, state, next)
		}
	}
}

func TestTransitionInvalidReportsValidNext(t *testing.T) {
	svc := newTestService(t, setupTestDB(t))

	_, err := svc.Transition(domain.EntityTypeTimeEntry, domain.TimeEntryStateDraft, domain.TimeEntryStateApproved)
	require.Error(t, err)

	var invalidErr *domain.InvalidTransitionError
	require.ErrorAs(t, err, &invalidErr)
	assert.Equal(t, domain.TimeEntryStateDraft, invalidErr.From)
	assert.Equal(t, domain.TimeEntryStateApproved, invalidErr.To)
	assert.Equal(t, []domain.State{domain.TimeEntryStateSubmitted}, invalidErr.ValidNext)
}

func TestTransitionOutOfTerminalState(t *testing.T) {
	svc := newTestService(t, setupTestDB(t))

	_, err := svc.Transition(domain.EntityTypeExpense, domain.ExpenseStatePaid, domain.ExpenseStatePending)
	require.Error(t, err)

	var invalidErr *domain.InvalidTransitionError
	require.ErrorAs(t, err, &invalidErr)
	assert.Empty(t, invalidErr.ValidNext)
}

func TestTransitionUnknownInputs(t *testing.T) {
	svc := newTestService(t, setupTestDB(t))

	_, err := svc.Transition(domain.EntityType("PROJECT"), domain.TaskStatePending, domain.TaskStateCompleted)
	assert.ErrorIs(t, err, domain.ErrUnknownEntityType)

	_, err = svc.Transition(domain.EntityTypeTask, domain.State("ARCHIVED"), domain.TaskStateCompleted)
	assert.ErrorIs(t, err, domain.ErrUnknownState)

	_, err = svc.Transition(domain.EntityTypeTask, domain.TaskStatePending, domain.State("ARCHIVED"))
	assert.ErrorIs(t, err, domain.ErrUnknownState)
}

func TestCreateEntityStartsAtInitialState(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, setupTestDB(t))

	initials := map[domain.EntityType]domain.State{
		domain.EntityTypeTask:          domain.TaskStatePending,
		domain.EntityTypeLead:          domain.LeadStateNew,
		domain.EntityTypeExpense:       domain.ExpenseStatePending,
		domain.EntityTypeInvoice:       domain.InvoiceStateDraft,
		domain.EntityTypeTimeEntry:     domain.TimeEntryStateDraft,
		domain.EntityTypeEventAttendee: domain.AttendeeStatePending,
	}
	for entityType, want := range initials {
		record, err := svc.CreateEntity(ctx, entityType)
		require.NoError(t, err)
		assert.Equal(t, want, record.State)
		assert.EqualValues(t, 1, record.Version)

		found, err := svc.GetEntity(ctx, entityType, record.ID)
		require.NoError(t, err)
		assert.Equal(t, want, found.State)
	}
}

func TestTransitionEntityPersists(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, setupTestDB(t))

	record, err := svc.CreateEntity(ctx, domain.EntityTypeLead)
	require.NoError(t, err)

	updated, err := svc.TransitionEntity(ctx, domain.EntityTypeLead, record.ID, domain.LeadStateQualified)
	require.NoError(t, err)
	assert.Equal(t, domain.LeadStateQualified, updated.State)
	assert.EqualValues(t, 2, updated.Version)

	found, err := svc.GetEntity(ctx, domain.EntityTypeLead, record.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LeadStateQualified, found.State)
	assert.EqualValues(t, 2, found.Version)
}

func TestTransitionEntityInvalidLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, setupTestDB(t))

	record, err := svc.CreateEntity(ctx, domain.EntityTypeLead)
	require.NoError(t, err)

	_, err = svc.TransitionEntity(ctx, domain.EntityTypeLead, record.ID, domain.LeadStateClosedWon)
	require.Error(t, err)
	assert.True(t, domain.IsInvalidTransition(err))

	found, err := svc.GetEntity(ctx, domain.EntityTypeLead, record.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LeadStateNew, found.State)
	assert.EqualValues(t, 1, found.Version)
}

func TestTransitionEntityIdentityKeepsVersion(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, setupTestDB(t))

	record, err := svc.CreateEntity(ctx, domain.EntityTypeTask)
	require.NoError(t, err)

	updated, err := svc.TransitionEntity(ctx, domain.EntityTypeTask, record.ID, domain.TaskStatePending)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatePending, updated.State)
	assert.EqualValues(t, 1, updated.Version)
}

func TestTransitionEntityNotFound(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, setupTestDB(t))

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	_, err = svc.TransitionEntity(ctx, domain.EntityTypeTask, node.Generate(), domain.TaskStateCompleted)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTransitionEntityTypeMismatchIsNotFound(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, setupTestDB(t))

	record, err := svc.CreateEntity(ctx, domain.EntityTypeTask)
	require.NoError(t, err)

	_, err = svc.GetEntity(ctx, domain.EntityTypeLead, record.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateStateStaleVersionConflicts(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newTestService(t, db)

	record, err := svc.CreateEntity(ctx, domain.EntityTypeTask)
	require.NoError(t, err)

	// first writer wins
	_, err = svc.TransitionEntity(ctx, domain.EntityTypeTask, record.ID, domain.TaskStateInProgress)
	require.NoError(t, err)

	// second writer still holds version 1
	repo := repository.Provide()
	stale := record
	err = repo.UpdateState(ctx, db, &stale, domain.TaskStateCancelled, 1)
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)

	found, err := svc.GetEntity(ctx, domain.EntityTypeTask, record.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStateInProgress, found.State)
}
