package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/worksuite/internal/invoice/domain"
	lifecycledomain "github.com/smallbiznis/worksuite/internal/lifecycle/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, invoice *domain.Invoice, items []domain.InvoiceItem) error {
	if invoice == nil {
		return nil
	}
	if err := db.WithContext(ctx).Create(invoice).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&items).Error
}

func (r *repo) Find(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := db.WithContext(ctx).Where("id = ?", id).First(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

func (r *repo) FindItems(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) ([]domain.InvoiceItem, error) {
	var items []domain.InvoiceItem
	err := db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("position asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindPayments(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) ([]domain.Payment, error) {
	var payments []domain.Payment
	err := db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("created_at asc, id asc").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *repo) InsertPayment(ctx context.Context, db *gorm.DB, payment *domain.Payment) error {
	if payment == nil {
		return nil
	}
	return db.WithContext(ctx).Create(payment).Error
}

func (r *repo) UpdateLedger(ctx context.Context, db *gorm.DB, invoice *domain.Invoice, expectedVersion int64) error {
	now := time.Now().UTC()
	res := db.WithContext(ctx).Exec(
		`UPDATE invoices
		 SET status = ?, paid_amount = ?, balance = ?, version = ?, updated_at = ?
		 WHERE id = ? AND version = ?`,
		invoice.Status,
		invoice.PaidAmount,
		invoice.Balance,
		expectedVersion+1,
		now,
		invoice.ID,
		expectedVersion,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrConcurrencyConflict
	}
	invoice.Version = expectedVersion + 1
	invoice.UpdatedAt = now
	return nil
}

func (r *repo) FindOverdueCandidates(ctx context.Context, db *gorm.DB, asOf time.Time, limit int) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	stmt := db.WithContext(ctx).
		Where("status = ?", lifecycledomain.InvoiceStateSent).
		Where("due_date IS NOT NULL AND due_date < ?", asOf.UTC()).
		Where("CAST(balance AS NUMERIC) > 0").
		Order("due_date asc, id asc")
	if limit > 0 {
		stmt = stmt.Limit(limit)
	}
	if err := stmt.Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}
