package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	auditdomain "github.com/smallbiznis/worksuite/internal/audit/domain"
	"github.com/smallbiznis/worksuite/internal/invoice/domain"
	lifecycledomain "github.com/smallbiznis/worksuite/internal/lifecycle/domain"
	obsmetrics "github.com/smallbiznis/worksuite/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Graph        *lifecycledomain.Graph
	LifecycleSvc lifecycledomain.Service
	Repo         domain.Repository
	AuditSvc     auditdomain.Service `optional:"true"`
	ObsMetrics   *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	graph        *lifecycledomain.Graph
	lifecycleSvc lifecycledomain.Service
	repo         domain.Repository
	auditSvc     auditdomain.Service
	obsMetrics   *obsmetrics.Metrics
}

func NewService(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("invoice.service"),
		genID:        p.GenID,
		graph:        p.Graph,
		lifecycleSvc: p.LifecycleSvc,
		repo:         p.Repo,
		auditSvc:     p.AuditSvc,
		obsMetrics:   p.ObsMetrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateInvoiceRequest) (domain.Invoice, error) {
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		return domain.Invoice{}, domain.ErrInvalidCurrency
	}
	if len(req.Items) == 0 {
		return domain.Invoice{}, domain.ErrInvalidItems
	}

	initial, err := s.graph.InitialState(lifecycledomain.EntityTypeInvoice)
	if err != nil {
		return domain.Invoice{}, err
	}

	now := time.Now().UTC()
	invoiceID := s.genID.Generate()
	total := decimal.Zero

	items := make([]domain.InvoiceItem, 0, len(req.Items))
	for i, line := range req.Items {
		if !line.Quantity.IsPositive() || line.UnitPrice.IsNegative() || line.TaxRate.IsNegative() {
			return domain.Invoice{}, domain.ErrInvalidItems
		}
		item := domain.InvoiceItem{
			ID:          s.genID.Generate(),
			InvoiceID:   invoiceID,
			Position:    i,
			Description: strings.TrimSpace(line.Description),
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			TaxRate:     line.TaxRate,
			CreatedAt:   now,
		}
		domain.ComputeItemAmounts(&item)
		total = total.Add(item.Total)
		items = append(items, item)
	}

	invoice := domain.Invoice{
		ID:         invoiceID,
		Status:     initial,
		Currency:   currency,
		Total:      total,
		PaidAmount: decimal.Zero.Round(2),
		Balance:    total,
		DueDate:    req.DueDate,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Insert(ctx, s.db, &invoice, items); err != nil {
		return domain.Invoice{}, err
	}
	invoice.Items = items

	s.audit(ctx, "invoice.created", invoice.ID, map[string]any{
		"total":    invoice.Total.StringFixed(2),
		"currency": invoice.Currency,
	})
	return invoice, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.Invoice, error) {
	invoice, err := s.repo.Find(ctx, s.db, id)
	if err != nil {
		return domain.Invoice{}, err
	}
	items, err := s.repo.FindItems(ctx, s.db, id)
	if err != nil {
		return domain.Invoice{}, err
	}
	payments, err := s.repo.FindPayments(ctx, s.db, id)
	if err != nil {
		return domain.Invoice{}, err
	}
	invoice.Items = items
	invoice.Payments = payments
	return *invoice, nil
}

func (s *Service) ListPayments(ctx context.Context, invoiceID snowflake.ID) ([]domain.Payment, error) {
	if _, err := s.repo.Find(ctx, s.db, invoiceID); err != nil {
		return nil, err
	}
	return s.repo.FindPayments(ctx, s.db, invoiceID)
}

// ApplyPayment applies one payment as a single atomic unit. The invoice is
// re-read inside the transaction; the optimistic version check on the write
// turns a lost race into ErrConcurrencyConflict instead of a corrupted
// balance.
func (s *Service) ApplyPayment(ctx context.Context, req domain.ApplyPaymentRequest) (domain.Invoice, error) {
	if !req.Amount.IsPositive() || !domain.TwoPlaces(req.Amount) {
		s.rejected("invalid_amount")
		return domain.Invoice{}, domain.ErrInvalidAmount
	}
	if !domain.ValidMethod(req.Method) {
		s.rejected("invalid_method")
		return domain.Invoice{}, domain.ErrInvalidMethod
	}

	paidAt := req.PaidAt
	if paidAt.IsZero() {
		paidAt = time.Now().UTC()
	}

	var updated *domain.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.repo.Find(ctx, tx, req.InvoiceID)
		if err != nil {
			return err
		}

		newPaid := domain.RoundMoney(invoice.PaidAmount.Add(req.Amount))
		newBalance := domain.RoundMoney(invoice.Total.Sub(newPaid))
		if newBalance.IsNegative() {
			return &domain.OverpaymentError{
				Amount:         req.Amount,
				Balance:        invoice.Balance,
				WouldBeBalance: newBalance,
			}
		}

		target := lifecycledomain.InvoiceStatePartial
		if newBalance.IsZero() {
			target = lifecycledomain.InvoiceStatePaid
		}

		// Status legality comes from the graph alone: DRAFT, PAID and
		// CANCELLED invoices have no edge to PARTIAL or a second PAID,
		// so they reject the payment here with InvalidTransitionError.
		next, err := s.lifecycleSvc.Transition(lifecycledomain.EntityTypeInvoice, invoice.Status, target)
		if err != nil {
			return err
		}

		invoice.Status = next
		invoice.PaidAmount = newPaid
		invoice.Balance = newBalance
		if err := s.repo.UpdateLedger(ctx, tx, invoice, invoice.Version); err != nil {
			return err
		}

		payment := domain.Payment{
			ID:        s.genID.Generate(),
			InvoiceID: invoice.ID,
			Amount:    req.Amount,
			Method:    req.Method,
			Reference: strings.TrimSpace(req.Reference),
			PaidAt:    paidAt.UTC(),
			CreatedAt: time.Now().UTC(),
		}
		if err := s.repo.InsertPayment(ctx, tx, &payment); err != nil {
			return err
		}

		updated = invoice
		return nil
	})
	if err != nil {
		if domain.IsOverpayment(err) {
			s.rejected("overpayment")
		}
		return domain.Invoice{}, err
	}

	if s.obsMetrics != nil {
		s.obsMetrics.RecordPaymentApplied(string(req.Method))
	}
	s.audit(ctx, "invoice.payment_applied", updated.ID, map[string]any{
		"amount":      req.Amount.StringFixed(2),
		"method":      string(req.Method),
		"reference":   strings.TrimSpace(req.Reference),
		"paid_amount": updated.PaidAmount.StringFixed(2),
		"balance":     updated.Balance.StringFixed(2),
		"status":      string(updated.Status),
	})
	return *updated, nil
}

func (s *Service) Transition(ctx context.Context, id snowflake.ID, to lifecycledomain.State) (domain.Invoice, error) {
	var updated *domain.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.repo.Find(ctx, tx, id)
		if err != nil {
			return err
		}

		next, err := s.lifecycleSvc.Transition(lifecycledomain.EntityTypeInvoice, invoice.Status, to)
		if err != nil {
			return err
		}
		if next == invoice.Status {
			updated = invoice
			return nil
		}

		invoice.Status = next
		if err := s.repo.UpdateLedger(ctx, tx, invoice, invoice.Version); err != nil {
			return err
		}
		updated = invoice
		return nil
	})
	if err != nil {
		return domain.Invoice{}, err
	}

	s.audit(ctx, "invoice.transitioned", updated.ID, map[string]any{
		"to_status": string(updated.Status),
	})
	return *updated, nil
}

func (s *Service) MarkOverdue(ctx context.Context, id snowflake.ID) (domain.Invoice, error) {
	var updated *domain.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.repo.Find(ctx, tx, id)
		if err != nil {
			return err
		}

		next, err := s.lifecycleSvc.Transition(lifecycledomain.EntityTypeInvoice, invoice.Status, lifecycledomain.InvoiceStateOverdue)
		if err != nil {
			return err
		}
		if next == invoice.Status {
			updated = invoice
			return nil
		}

		invoice.Status = next
		if err := s.repo.UpdateLedger(ctx, tx, invoice, invoice.Version); err != nil {
			return err
		}
		updated = invoice
		return nil
	})
	if err != nil {
		return domain.Invoice{}, err
	}
	return *updated, nil
}

func (s *Service) rejected(reason string) {
	if s.obsMetrics != nil {
		s.obsMetrics.RecordPaymentRejected(reason)
	}
}

// audit is fire-and-forget; a failed audit write never fails the operation.
func (s *Service) audit(ctx context.Context, action string, invoiceID snowflake.ID, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	targetID := invoiceID.String()
	if err := s.auditSvc.Record(ctx, action, "invoice", &targetID, metadata); err != nil {
		s.log.Warn("failed to write invoice audit log",
			zap.String("action", action),
			zap.Error(err),
		)
	}
}
