package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func edgesContain(edges []State, to State) bool {
	for _, next := range edges {
		if next == to {
			return true
		}
	}
	return false
}

func TestGraphCoversAllEntityTypes(t *testing.T) {
	g := NewGraph()

	for _, entityType := range AllEntityTypes() {
		assert.True(t, g.ContainsEntityType(entityType), "missing graph for %s", entityType)

		initial, err := g.InitialState(entityType)
		require.NoError(t, err)
		assert.True(t, g.ContainsState(entityType, initial))
	}
}

func TestTaskEdges(t *testing.T) {
	g := NewGraph()

	cases := []struct {
		from, to State
		ok       bool
	}{
		{TaskStatePending, TaskStateInProgress, true},
		{TaskStatePending, TaskStateCompleted, true},
		{TaskStatePending, TaskStateCancelled, true},
		{TaskStateInProgress, TaskStatePending, true},
		{TaskStateCompleted, TaskStateInProgress, true},
		{TaskStateCompleted, TaskStateCancelled, false},
		{TaskStateCancelled, TaskStatePending, true},
		{TaskStateCancelled, TaskStateCompleted, false},
	}
	for _, tc := range cases {
		got := edgesContain(g.Edges(EntityTypeTask, tc.from), tc.to)
		assert.Equal(t, tc.ok, got, "%s -> %s", tc.from, tc.to)
	}
}

func TestLeadEdges(t *testing.T) {
	g := NewGraph()

	// every open stage can lose the deal
	for _, from := range []State{LeadStateNew, LeadStateQualified, LeadStateProposal, LeadStateNegotiation} {
		assert.True(t, edgesContain(g.Edges(EntityTypeLead, from), LeadStateClosedLost), "%s -> CLOSED_LOST", from)
	}

	assert.True(t, edgesContain(g.Edges(EntityTypeLead, LeadStateNegotiation), LeadStateClosedWon))
	assert.False(t, edgesContain(g.Edges(EntityTypeLead, LeadStateNew), LeadStateClosedWon))
	assert.False(t, edgesContain(g.Edges(EntityTypeLead, LeadStateNew), LeadStateProposal))
	assert.True(t, edgesContain(g.Edges(EntityTypeLead, LeadStateClosedLost), LeadStateNew))
}

func TestInvoiceEdges(t *testing.T) {
	g := NewGraph()

	assert.True(t, edgesContain(g.Edges(EntityTypeInvoice, InvoiceStateDraft), InvoiceStateSent))
	assert.False(t, edgesContain(g.Edges(EntityTypeInvoice, InvoiceStateDraft), InvoiceStatePaid))
	assert.False(t, edgesContain(g.Edges(EntityTypeInvoice, InvoiceStateDraft), InvoiceStatePartial))

	for _, to := range []State{InvoiceStateOverdue, InvoiceStatePartial, InvoiceStatePaid, InvoiceStateCancelled} {
		assert.True(t, edgesContain(g.Edges(EntityTypeInvoice, InvoiceStateSent), to), "SENT -> %s", to)
	}

	assert.True(t, edgesContain(g.Edges(EntityTypeInvoice, InvoiceStateOverdue), InvoiceStatePaid))
	assert.True(t, edgesContain(g.Edges(EntityTypeInvoice, InvoiceStatePartial), InvoiceStatePaid))
	assert.False(t, edgesContain(g.Edges(EntityTypeInvoice, InvoiceStatePartial), InvoiceStateSent))
	assert.True(t, edgesContain(g.Edges(EntityTypeInvoice, InvoiceStateCancelled), InvoiceStateDraft))
}

func TestTerminalStates(t *testing.T) {
	g := NewGraph()

	terminal := []struct {
		entityType EntityType
		state      State
	}{
		{EntityTypeLead, LeadStateClosedWon},
		{EntityTypeExpense, ExpenseStatePaid},
		{EntityTypeInvoice, InvoiceStatePaid},
		{EntityTypeTimeEntry, TimeEntryStateApproved},
	}
	for _, tc := range terminal {
		assert.True(t, g.IsTerminal(tc.entityType, tc.state), "%s %s", tc.entityType, tc.state)
		assert.Empty(t, g.Edges(tc.entityType, tc.state))
	}

	assert.False(t, g.IsTerminal(EntityTypeTask, TaskStateCompleted))
	assert.False(t, g.IsTerminal(EntityTypeInvoice, InvoiceStateCancelled))
}

func TestEventAttendeeFullyConnected(t *testing.T) {
	g := NewGraph()

	states := g.AllStates(EntityTypeEventAttendee)
	require.Len(t, states, 4)

	for _, from := range states {
		for _, to := range states {
			if from == to {
				continue
			}
			assert.True(t, edgesContain(g.Edges(EntityTypeEventAttendee, from), to), "%s -> %s", from, to)
		}
	}
}

func TestEdgesReturnsCopy(t *testing.T) {
	g := NewGraph()

	edges := g.Edges(EntityTypeTask, TaskStatePending)
	require.NotEmpty(t, edges)
	edges[0] = State("MUTATED")

	assert.False(t, edgesContain(g.Edges(EntityTypeTask, TaskStatePending), State("MUTATED")))
}

func TestUnknownLookups(t *testing.T) {
	g := NewGraph()

	assert.False(t, g.ContainsEntityType(EntityType("PROJECT")))
	assert.False(t, g.ContainsState(EntityTypeTask, State("ARCHIVED")))
	assert.Nil(t, g.Edges(EntityType("PROJECT"), TaskStatePending))

	_, err := g.InitialState(EntityType("PROJECT"))
	assert.ErrorIs(t, err, ErrUnknownEntityType)
}
