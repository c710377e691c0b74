package scheduler

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
)

// MarkedInvoice is one invoice the sweep advanced to OVERDUE.
type MarkedInvoice struct {
	ID            snowflake.ID `json:"id"`
	FormerDueDate time.Time    `json:"former_due_date"`
}

// SweepSummary reports one sweep run.
type SweepSummary struct {
	MarkedCount int             `json:"marked_count"`
	Invoices    []MarkedInvoice `json:"invoices"`
}

// OverdueSweepJob advances every SENT invoice whose due date has passed and
// whose balance is still open to OVERDUE. The scan predicate selects only
// SENT invoices, so re-running the sweep is idempotent: an invoice already
// OVERDUE is never picked up again and never audited twice.
//
// Invoices are processed independently. One invoice failing its transition
// or write is logged and skipped; the sweep continues and the failure is
// excluded from the result count.
func (s *Scheduler) OverdueSweepJob(ctx context.Context) (SweepSummary, error) {
	start := time.Now()
	asOf := s.clock.Now()

	candidates, err := s.invoiceRepo.FindOverdueCandidates(ctx, s.db, asOf, s.cfg.BatchSize)
	if err != nil {
		return SweepSummary{}, err
	}

	summary := SweepSummary{Invoices: []MarkedInvoice{}}
	failed := 0
	for _, candidate := range candidates {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}

		if _, err := s.invoiceSvc.MarkOverdue(ctx, candidate.ID); err != nil {
			failed++
			s.log.Warn("failed to mark invoice overdue",
				zap.String("invoice_id", candidate.ID.String()),
				zap.Error(err),
			)
			continue
		}

		marked := MarkedInvoice{ID: candidate.ID}
		if candidate.DueDate != nil {
			marked.FormerDueDate = candidate.DueDate.UTC()
		}
		summary.MarkedCount++
		summary.Invoices = append(summary.Invoices, marked)

		s.auditMarked(ctx, marked, candidate.Balance.StringFixed(2))
	}

	if s.obsMetrics != nil {
		s.obsMetrics.RecordSweep(summary.MarkedCount, failed, time.Since(start))
	}
	s.log.Info("overdue sweep finished",
		zap.Time("as_of", asOf),
		zap.Int("marked", summary.MarkedCount),
		zap.Int("failed", failed),
	)
	return summary, nil
}

func (s *Scheduler) auditMarked(ctx context.Context, marked MarkedInvoice, balance string) {
	if s.auditSvc == nil {
		return
	}
	targetID := marked.ID.String()
	err := s.auditSvc.Record(ctx, "invoice.marked_overdue", "invoice", &targetID, map[string]any{
		"former_due_date": marked.FormerDueDate.Format(time.RFC3339),
		"balance":         balance,
	})
	if err != nil {
		s.log.Warn("failed to write sweep audit log",
			zap.String("invoice_id", targetID),
			zap.Error(err),
		)
	}
}
