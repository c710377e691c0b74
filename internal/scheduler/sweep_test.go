package scheduler

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	auditdomain "github.com/smallbiznis/worksuite/internal/audit/domain"
	auditrepo "github.com/smallbiznis/worksuite/internal/audit/repository"
	auditservice "github.com/smallbiznis/worksuite/internal/audit/service"
	"github.com/smallbiznis/worksuite/internal/clock"
	invoicedomain "github.com/smallbiznis/worksuite/internal/invoice/domain"
	invoicerepo "github.com/smallbiznis/worksuite/internal/invoice/repository"
	invoiceservice "github.com/smallbiznis/worksuite/internal/invoice/service"
	lifecycledomain "github.com/smallbiznis/worksuite/internal/lifecycle/domain"
	lifecyclerepo "github.com/smallbiznis/worksuite/internal/lifecycle/repository"
	lifecycleservice "github.com/smallbiznis/worksuite/internal/lifecycle/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type sweepFixture struct {
	db         *gorm.DB
	clock      *clock.FakeClock
	scheduler  *Scheduler
	invoiceSvc invoicedomain.Service
	auditSvc   auditdomain.Service
}

func newSweepFixture(t *testing.T, cfg Config) *sweepFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:sweep_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceItem{},
		&invoicedomain.Payment{},
		&auditdomain.AuditLog{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	graph := lifecycledomain.NewGraph()
	auditSvc := auditservice.NewService(auditservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  auditrepo.Provide(),
	})
	lifecycleSvc := lifecycleservice.NewService(lifecycleservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Graph: graph,
		Repo:  lifecyclerepo.Provide(),
	})
	invoiceRepo := invoicerepo.Provide()
	invoiceSvc := invoiceservice.NewService(invoiceservice.Params{
		DB:           db,
		Log:          zap.NewNop(),
		GenID:        node,
		Graph:        graph,
		LifecycleSvc: lifecycleSvc,
		Repo:         invoiceRepo,
	})

	fakeClock := clock.NewFakeClock(time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC))
	sched, err := New(Params{
		DB:          db,
		Log:         zap.NewNop(),
		InvoiceSvc:  invoiceSvc,
		InvoiceRepo: invoiceRepo,
		AuditSvc:    auditSvc,
		Clock:       fakeClock,
		Config:      cfg,
	})
	require.NoError(t, err)

	return &sweepFixture{
		db:         db,
		clock:      fakeClock,
		scheduler:  sched,
		invoiceSvc: invoiceSvc,
		auditSvc:   auditSvc,
	}
}

func (f *sweepFixture) createInvoice(t *testing.T, due time.Time, sent bool) invoicedomain.Invoice {
	t.Helper()
	ctx := context.Background()

	amount, err := decimal.NewFromString("100.00")
	require.NoError(t, err)

	created, err := f.invoiceSvc.Create(ctx, invoicedomain.CreateInvoiceRequest{
		Currency: "EUR",
		DueDate:  &due,
		Items: []invoicedomain.CreateInvoiceItem{
			{Description: "services", Quantity: decimal.NewFromInt(1), UnitPrice: amount},
		},
	})
	require.NoError(t, err)

	if sent {
		created, err = f.invoiceSvc.Transition(ctx, created.ID, lifecycledomain.InvoiceStateSent)
		require.NoError(t, err)
	}
	return created
}

func (f *sweepFixture) auditCount(t *testing.T, action string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(&auditdomain.AuditLog{}).Where("action = ?", action).Count(&count).Error)
	return count
}

func TestOverdueSweepMarksOnlyEligible(t *testing.T) {
	ctx := context.Background()
	f := newSweepFixture(t, Config{})
	now := f.clock.Now()

	pastDue1 := f.createInvoice(t, now.Add(-48*time.Hour), true)
	pastDue2 := f.createInvoice(t, now.Add(-24*time.Hour), true)
	notYetDue := f.createInvoice(t, now.Add(24*time.Hour), true)
	draft := f.createInvoice(t, now.Add(-24*time.Hour), false)

	summary, err := f.scheduler.OverdueSweepJob(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.MarkedCount)
	require.Len(t, summary.Invoices, 2)

	// ordered by due date, oldest first
	assert.Equal(t, pastDue1.ID, summary.Invoices[0].ID)
	assert.Equal(t, pastDue2.ID, summary.Invoices[1].ID)
	assert.True(t, pastDue1.DueDate.Equal(summary.Invoices[0].FormerDueDate))

	for _, id := range []snowflake.ID{pastDue1.ID, pastDue2.ID} {
		found, err := f.invoiceSvc.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, lifecycledomain.InvoiceStateOverdue, found.Status)
	}

	untouchedSent, err := f.invoiceSvc.GetByID(ctx, notYetDue.ID)
	require.NoError(t, err)
	assert.Equal(t, lifecycledomain.InvoiceStateSent, untouchedSent.Status)

	untouchedDraft, err := f.invoiceSvc.GetByID(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, lifecycledomain.InvoiceStateDraft, untouchedDraft.Status)

	assert.EqualValues(t, 2, f.auditCount(t, "invoice.marked_overdue"))
}

func TestOverdueSweepIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newSweepFixture(t, Config{})
	now := f.clock.Now()

	f.createInvoice(t, now.Add(-24*time.Hour), true)

	first, err := f.scheduler.OverdueSweepJob(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first.MarkedCount)

	second, err := f.scheduler.OverdueSweepJob(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, second.MarkedCount)
	assert.Empty(t, second.Invoices)

	// no duplicate audit entries either
	assert.EqualValues(t, 1, f.auditCount(t, "invoice.marked_overdue"))
}

func TestOverdueSweepPicksUpNewlyDueOnNextRun(t *testing.T) {
	ctx := context.Background()
	f := newSweepFixture(t, Config{})
	now := f.clock.Now()

	f.createInvoice(t, now.Add(-1*time.Hour), true)
	laterDue := f.createInvoice(t, now.Add(12*time.Hour), true)

	first, err := f.scheduler.OverdueSweepJob(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first.MarkedCount)

	f.clock.Advance(24 * time.Hour)

	second, err := f.scheduler.OverdueSweepJob(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, second.MarkedCount)
	assert.Equal(t, laterDue.ID, second.Invoices[0].ID)
}

func TestOverdueSweepSkipsPaidAndPartialStatuses(t *testing.T) {
	ctx := context.Background()
	f := newSweepFixture(t, Config{})
	now := f.clock.Now()

	paid := f.createInvoice(t, now.Add(-24*time.Hour), true)
	partial := f.createInvoice(t, now.Add(-24*time.Hour), true)

	pay := func(id snowflake.ID, amount string) {
		d, err := decimal.NewFromString(amount)
		require.NoError(t, err)
		_, err = f.invoiceSvc.ApplyPayment(ctx, invoicedomain.ApplyPaymentRequest{
			InvoiceID: id,
			Amount:    d,
			Method:    invoicedomain.PaymentMethodTransfer,
		})
		require.NoError(t, err)
	}
	pay(paid.ID, "100.00")
	pay(partial.ID, "40.00")

	summary, err := f.scheduler.OverdueSweepJob(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.MarkedCount)
}

func TestOverdueSweepHonorsBatchSize(t *testing.T) {
	ctx := context.Background()
	f := newSweepFixture(t, Config{BatchSize: 1})
	now := f.clock.Now()

	f.createInvoice(t, now.Add(-48*time.Hour), true)
	f.createInvoice(t, now.Add(-24*time.Hour), true)

	first, err := f.scheduler.OverdueSweepJob(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first.MarkedCount)

	second, err := f.scheduler.OverdueSweepJob(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, second.MarkedCount)

	third, err := f.scheduler.OverdueSweepJob(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, third.MarkedCount)
}

func TestNewRequiresDependencies(t *testing.T) {
	_, err := New(Params{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestRunOnceWrapsJobError(t *testing.T) {
	f := newSweepFixture(t, Config{})
	require.NoError(t, f.db.Migrator().DropTable(&invoicedomain.Invoice{}))

	err := f.scheduler.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overdue_sweep")
}
