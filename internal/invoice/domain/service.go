package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	lifecycledomain "github.com/smallbiznis/worksuite/internal/lifecycle/domain"
)

type CreateInvoiceItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
}

type CreateInvoiceRequest struct {
	Currency string              `json:"currency"`
	DueDate  *time.Time          `json:"due_date"`
	Items    []CreateInvoiceItem `json:"items"`
}

type ApplyPaymentRequest struct {
	InvoiceID snowflake.ID
	Amount    decimal.Decimal
	Method    PaymentMethod
	Reference string
	PaidAt    time.Time
}

// Service is the payment ledger. ApplyPayment is the only code path that
// mutates PaidAmount/Balance, and every status change it makes goes through
// the lifecycle validator before anything is persisted.
type Service interface {
	Create(ctx context.Context, req CreateInvoiceRequest) (Invoice, error)
	GetByID(ctx context.Context, id snowflake.ID) (Invoice, error)
	ListPayments(ctx context.Context, invoiceID snowflake.ID) ([]Payment, error)

	// ApplyPayment applies one payment atomically: re-reads the invoice,
	// computes the new paid amount and balance in exact decimal
	// arithmetic, derives the target status (zero balance is PAID,
	// anything open is PARTIAL), validates the status transition and
	// persists payment row plus ledger fields as one transaction. A
	// version conflict fails with ErrConcurrencyConflict and the caller
	// retries the whole call against the re-read balance.
	ApplyPayment(ctx context.Context, req ApplyPaymentRequest) (Invoice, error)

	// Transition moves the invoice status through the lifecycle validator,
	// for example DRAFT to SENT or SENT to CANCELLED. The ledger fields are
	// untouched.
	Transition(ctx context.Context, id snowflake.ID, to lifecycledomain.State) (Invoice, error)

	// MarkOverdue transitions one SENT invoice with an open balance to
	// OVERDUE through the lifecycle validator.
	MarkOverdue(ctx context.Context, id snowflake.ID) (Invoice, error)
}
