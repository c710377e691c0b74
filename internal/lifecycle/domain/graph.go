package domain

// entityGraph is one entity type's lifecycle: its designated initial state
// and, per state, the set of legal target states. A state with no outgoing
// edges is terminal.
type entityGraph struct {
	initial State
	edges   map[State][]State
}

// Graph holds the lifecycle graphs for every entity type. It is immutable
// after construction; build it once with NewGraph and inject it.
type Graph struct {
	graphs map[EntityType]entityGraph
}

// NewGraph builds the canonical lifecycle graph set.
func NewGraph() *Graph {
	return &Graph{graphs: map[EntityType]entityGraph{
		EntityTypeTask: {
			initial: TaskStatePending,
			edges: map[State][]State{
				TaskStatePending:    {TaskStateInProgress, TaskStateCompleted, TaskStateCancelled},
				TaskStateInProgress: {TaskStatePending, TaskStateCompleted, TaskStateCancelled},
				// completed and cancelled tasks can be reopened
				TaskStateCompleted: {TaskStatePending, TaskStateInProgress},
				TaskStateCancelled: {TaskStatePending},
			},
		},
		EntityTypeLead: {
			initial: LeadStateNew,
			edges: map[State][]State{
				LeadStateNew:         {LeadStateQualified, LeadStateClosedLost},
				LeadStateQualified:   {LeadStateNew, LeadStateProposal, LeadStateClosedLost},
				LeadStateProposal:    {LeadStateQualified, LeadStateNegotiation, LeadStateClosedLost},
				LeadStateNegotiation: {LeadStateProposal, LeadStateClosedWon, LeadStateClosedLost},
				LeadStateClosedLost:  {LeadStateNew},
				LeadStateClosedWon:   {},
			},
		},
		EntityTypeExpense: {
			initial: ExpenseStatePending,
			edges: map[State][]State{
				ExpenseStatePending:  {ExpenseStateApproved, ExpenseStateRejected},
				ExpenseStateApproved: {ExpenseStatePaid, ExpenseStatePending},
				ExpenseStateRejected: {ExpenseStatePending},
				ExpenseStatePaid:     {},
			},
		},
		EntityTypeInvoice: {
			initial: InvoiceStateDraft,
			edges: map[State][]State{
				InvoiceStateDraft:     {InvoiceStateSent, InvoiceStateCancelled},
				InvoiceStateSent:      {InvoiceStateOverdue, InvoiceStatePartial, InvoiceStatePaid, InvoiceStateCancelled},
				InvoiceStateOverdue:   {InvoiceStatePartial, InvoiceStatePaid, InvoiceStateCancelled},
				InvoiceStatePartial:   {InvoiceStatePaid, InvoiceStateCancelled},
				InvoiceStatePaid:      {},
				InvoiceStateCancelled: {InvoiceStateDraft},
			},
		},
		EntityTypeTimeEntry: {
			initial: TimeEntryStateDraft,
			edges: map[State][]State{
				TimeEntryStateDraft:     {TimeEntryStateSubmitted},
				TimeEntryStateSubmitted: {TimeEntryStateApproved, TimeEntryStateRejected},
				TimeEntryStateRejected:  {TimeEntryStateDraft},
				// approved time is immutable
				TimeEntryStateApproved: {},
			},
		},
		EntityTypeEventAttendee: {
			initial: AttendeeStatePending,
			edges: map[State][]State{
				AttendeeStatePending:   {AttendeeStateAccepted, AttendeeStateDeclined, AttendeeStateTentative},
				AttendeeStateAccepted:  {AttendeeStatePending, AttendeeStateDeclined, AttendeeStateTentative},
				AttendeeStateDeclined:  {AttendeeStatePending, AttendeeStateAccepted, AttendeeStateTentative},
				AttendeeStateTentative: {AttendeeStatePending, AttendeeStateAccepted, AttendeeStateDeclined},
			},
		},
	}}
}

// Edges returns the legal target states from the given state. The returned
// slice is a copy; mutating it does not affect the graph.
func (g *Graph) Edges(entityType EntityType, from State) []State {
	graph, ok := g.graphs[entityType]
	if !ok {
		return nil
	}
	next, ok := graph.edges[from]
	if !ok {
		return nil
	}
	out := make([]State, len(next))
	copy(out, next)
	return out
}

// IsTerminal reports whether the state has no outgoing edges.
func (g *Graph) IsTerminal(entityType EntityType, state State) bool {
	graph, ok := g.graphs[entityType]
	if !ok {
		return false
	}
	next, ok := graph.edges[state]
	return ok && len(next) == 0
}

// AllStates returns every state in the entity type's enumeration.
func (g *Graph) AllStates(entityType EntityType) []State {
	graph, ok := g.graphs[entityType]
	if !ok {
		return nil
	}
	out := make([]State, 0, len(graph.edges))
	for state := range graph.edges {
		out = append(out, state)
	}
	return out
}

// ContainsState reports whether the state is a member of the entity type's
// enumeration.
func (g *Graph) ContainsState(entityType EntityType, state State) bool {
	graph, ok := g.graphs[entityType]
	if !ok {
		return false
	}
	_, ok = graph.edges[state]
	return ok
}

// ContainsEntityType reports whether the entity type has a lifecycle graph.
func (g *Graph) ContainsEntityType(entityType EntityType) bool {
	_, ok := g.graphs[entityType]
	return ok
}

// InitialState returns the state newly created entities of the type start in.
func (g *Graph) InitialState(entityType EntityType) (State, error) {
	graph, ok := g.graphs[entityType]
	if !ok {
		return "", ErrUnknownEntityType
	}
	return graph.initial, nil
}
