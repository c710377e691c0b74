package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Service validates and executes lifecycle transitions.
//
// CanTransition and Transition are pure graph checks with no storage access;
// the entity-facing operations load and persist EntityRecord rows under an
// optimistic version check.
type Service interface {
	// CanTransition reports whether the edge from -> to exists in the
	// entity type's graph.
	CanTransition(entityType EntityType, from, to State) bool

	// Transition validates a single step. Identity transitions (from == to)
	// are always legal and return to unchanged; any other missing edge
	// fails with *InvalidTransitionError. The caller persists the result.
	Transition(entityType EntityType, from, to State) (State, error)

	// CreateEntity persists a new entity in its graph's initial state.
	CreateEntity(ctx context.Context, entityType EntityType) (EntityRecord, error)

	// GetEntity loads one entity's lifecycle record.
	GetEntity(ctx context.Context, entityType EntityType, id snowflake.ID) (EntityRecord, error)

	// TransitionEntity loads the entity, validates the step against its
	// current state and persists the new state, failing with
	// ErrConcurrencyConflict if the row changed between read and write.
	TransitionEntity(ctx context.Context, entityType EntityType, id snowflake.ID, to State) (EntityRecord, error)
}
