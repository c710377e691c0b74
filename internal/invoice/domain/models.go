// Package domain contains the invoice ledger models. All monetary values are
// decimals with exactly two fractional digits; binary floats never touch the
// ledger.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	lifecycledomain "github.com/smallbiznis/worksuite/internal/lifecycle/domain"
)

// PaymentMethod is how a payment was made.
type PaymentMethod string

const (
	PaymentMethodTransfer PaymentMethod = "TRANSFER"
	PaymentMethodCard     PaymentMethod = "CARD"
	PaymentMethodCash     PaymentMethod = "CASH"
	PaymentMethodCheck    PaymentMethod = "CHECK"
	PaymentMethodOther    PaymentMethod = "OTHER"
)

// ValidMethod reports whether m is a member of the closed method set.
func ValidMethod(m PaymentMethod) bool {
	switch m {
	case PaymentMethodTransfer, PaymentMethodCard, PaymentMethodCash, PaymentMethodCheck, PaymentMethodOther:
		return true
	default:
		return false
	}
}

// Invoice carries the ledger: total, amount paid so far and the open
// balance. Balance == Total - PaidAmount holds after every mutation; Version
// backs the optimistic write check on payment application.
type Invoice struct {
	ID         snowflake.ID          `json:"id" gorm:"primaryKey"`
	Status     lifecycledomain.State `json:"status" gorm:"type:text;not null;default:'DRAFT';index"`
	Currency   string                `json:"currency" gorm:"type:text;not null"`
	Total      decimal.Decimal       `json:"total" gorm:"type:decimal(18,2);not null"`
	PaidAmount decimal.Decimal       `json:"paid_amount" gorm:"type:decimal(18,2);not null"`
	Balance    decimal.Decimal       `json:"balance" gorm:"type:decimal(18,2);not null"`
	DueDate    *time.Time            `json:"due_date" gorm:"index"`
	Version    int64                 `json:"version" gorm:"not null;default:1"`
	CreatedAt  time.Time             `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time             `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`

	Items    []InvoiceItem `json:"items,omitempty" gorm:"-"`
	Payments []Payment     `json:"payments,omitempty" gorm:"-"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// InvoiceItem is one line on an invoice. Subtotal, Tax and Total are
// computed at creation and rounded to two places before being summed into
// the invoice total.
type InvoiceItem struct {
	ID          snowflake.ID    `json:"id" gorm:"primaryKey"`
	InvoiceID   snowflake.ID    `json:"invoice_id" gorm:"not null;index"`
	Position    int             `json:"position" gorm:"not null"`
	Description string          `json:"description" gorm:"type:text"`
	Quantity    decimal.Decimal `json:"quantity" gorm:"type:decimal(18,2);not null"`
	UnitPrice   decimal.Decimal `json:"unit_price" gorm:"type:decimal(18,2);not null"`
	TaxRate     decimal.Decimal `json:"tax_rate" gorm:"type:decimal(18,2);not null"`
	Subtotal    decimal.Decimal `json:"subtotal" gorm:"type:decimal(18,2);not null"`
	Tax         decimal.Decimal `json:"tax" gorm:"type:decimal(18,2);not null"`
	Total       decimal.Decimal `json:"total" gorm:"type:decimal(18,2);not null"`
	CreatedAt   time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (InvoiceItem) TableName() string { return "invoice_items" }

// Payment is one applied payment. Payments are never implicitly reversed;
// the invoice's paid amount only grows.
type Payment struct {
	ID        snowflake.ID    `json:"id" gorm:"primaryKey"`
	InvoiceID snowflake.ID    `json:"invoice_id" gorm:"not null;index"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:decimal(18,2);not null"`
	Method    PaymentMethod   `json:"method" gorm:"type:text;not null"`
	Reference string          `json:"reference" gorm:"type:text"`
	PaidAt    time.Time       `json:"paid_at" gorm:"not null"`
	CreatedAt time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Payment) TableName() string { return "payments" }
