package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository persists invoices, their line items and payments.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice, items []InvoiceItem) error
	Find(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Invoice, error)
	FindItems(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) ([]InvoiceItem, error)
	FindPayments(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) ([]Payment, error)
	InsertPayment(ctx context.Context, db *gorm.DB, payment *Payment) error

	// UpdateLedger writes status, paid amount and balance only if the row
	// still carries expectedVersion, returning ErrConcurrencyConflict
	// otherwise.
	UpdateLedger(ctx context.Context, db *gorm.DB, invoice *Invoice, expectedVersion int64) error

	// FindOverdueCandidates returns SENT invoices whose due date has
	// passed and whose balance is still open. OVERDUE invoices are never
	// selected, which is what makes the sweep idempotent.
	FindOverdueCandidates(ctx context.Context, db *gorm.DB, asOf time.Time, limit int) ([]Invoice, error)
}
