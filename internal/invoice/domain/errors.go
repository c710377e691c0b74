package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound            = errors.New("invoice_not_found")
	ErrInvalidAmount       = errors.New("invalid_amount")
	ErrInvalidMethod       = errors.New("invalid_payment_method")
	ErrInvalidCurrency     = errors.New("invalid_currency")
	ErrInvalidItems        = errors.New("invalid_items")
	ErrConcurrencyConflict = errors.New("concurrency_conflict")
)

// OverpaymentError reports a payment that would drive the balance negative.
// WouldBeBalance carries the computed negative balance so the caller can
// render an actionable message.
type OverpaymentError struct {
	Amount         decimal.Decimal
	Balance        decimal.Decimal
	WouldBeBalance decimal.Decimal
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("payment of %s exceeds open balance %s (would leave %s)",
		e.Amount.StringFixed(2), e.Balance.StringFixed(2), e.WouldBeBalance.StringFixed(2))
}

// IsOverpayment reports whether err wraps an OverpaymentError.
func IsOverpayment(err error) bool {
	var target *OverpaymentError
	return errors.As(err, &target)
}
