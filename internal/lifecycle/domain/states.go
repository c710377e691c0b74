// Package domain defines the entity lifecycle model: the per-entity state
// enumerations and the legal transitions between them.
package domain

// EntityType identifies a business entity governed by a lifecycle graph.
type EntityType string

const (
	EntityTypeTask          EntityType = "TASK"
	EntityTypeLead          EntityType = "LEAD"
	EntityTypeExpense       EntityType = "EXPENSE"
	EntityTypeInvoice       EntityType = "INVOICE"
	EntityTypeTimeEntry     EntityType = "TIME_ENTRY"
	EntityTypeEventAttendee EntityType = "EVENT_ATTENDEE"
)

// State is one value of an entity type's closed state enumeration.
type State string

// Task states.
const (
	TaskStatePending    State = "PENDING"
	TaskStateInProgress State = "IN_PROGRESS"
	TaskStateCompleted  State = "COMPLETED"
	TaskStateCancelled  State = "CANCELLED"
)

// Lead states.
const (
	LeadStateNew         State = "NEW"
	LeadStateQualified   State = "QUALIFIED"
	LeadStateProposal    State = "PROPOSAL"
	LeadStateNegotiation State = "NEGOTIATION"
	LeadStateClosedWon   State = "CLOSED_WON"
	LeadStateClosedLost  State = "CLOSED_LOST"
)

// Expense states.
const (
	ExpenseStatePending  State = "PENDING"
	ExpenseStateApproved State = "APPROVED"
	ExpenseStateRejected State = "REJECTED"
	ExpenseStatePaid     State = "PAID"
)

// Invoice states. PARTIAL sits between SENT/OVERDUE and PAID and is entered
// by the payment ledger when a payment covers less than the open balance.
const (
	InvoiceStateDraft     State = "DRAFT"
	InvoiceStateSent      State = "SENT"
	InvoiceStateOverdue   State = "OVERDUE"
	InvoiceStatePartial   State = "PARTIAL"
	InvoiceStatePaid      State = "PAID"
	InvoiceStateCancelled State = "CANCELLED"
)

// Time entry states.
const (
	TimeEntryStateDraft     State = "DRAFT"
	TimeEntryStateSubmitted State = "SUBMITTED"
	TimeEntryStateApproved  State = "APPROVED"
	TimeEntryStateRejected  State = "REJECTED"
)

// Event attendee states.
const (
	AttendeeStatePending   State = "PENDING"
	AttendeeStateAccepted  State = "ACCEPTED"
	AttendeeStateDeclined  State = "DECLINED"
	AttendeeStateTentative State = "TENTATIVE"
)

// AllEntityTypes lists every entity type carrying a lifecycle graph.
func AllEntityTypes() []EntityType {
	return []EntityType{
		EntityTypeTask,
		EntityTypeLead,
		EntityTypeExpense,
		EntityTypeInvoice,
		EntityTypeTimeEntry,
		EntityTypeEventAttendee,
	}
}
