// Package server exposes the HTTP surface: lifecycle transitions, the
// payment ledger and the scheduler trigger.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/worksuite/internal/audit"
	auditdomain "github.com/smallbiznis/worksuite/internal/audit/domain"
	"github.com/smallbiznis/worksuite/internal/config"
	"github.com/smallbiznis/worksuite/internal/invoice"
	invoicedomain "github.com/smallbiznis/worksuite/internal/invoice/domain"
	"github.com/smallbiznis/worksuite/internal/lifecycle"
	lifecycledomain "github.com/smallbiznis/worksuite/internal/lifecycle/domain"
	obsmetrics "github.com/smallbiznis/worksuite/internal/observability/metrics"
	"github.com/smallbiznis/worksuite/internal/scheduler"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	obsmetrics.Module,
	audit.Module,
	lifecycle.Module,
	invoice.Module,
	scheduler.Module,
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) { s.RegisterRoutes() }),
	fx.Invoke(RunHTTP),
)

func NewEngine(log *zap.Logger, obsMetrics *obsmetrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(RequestMetrics(obsMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

// RequestMetrics observes per-route request latency.
func RequestMetrics(obsMetrics *obsmetrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		obsMetrics.ObserveHTTPRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}

// RequestLogger logs one line per request with latency and status.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	db           *gorm.DB
	log          *zap.Logger
	lifecycleSvc lifecycledomain.Service
	invoiceSvc   invoicedomain.Service
	auditSvc     auditdomain.Service
	scheduler    *scheduler.Scheduler
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	DB           *gorm.DB
	Log          *zap.Logger
	LifecycleSvc lifecycledomain.Service
	InvoiceSvc   invoicedomain.Service
	AuditSvc     auditdomain.Service
	Scheduler    *scheduler.Scheduler `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		db:           p.DB,
		log:          p.Log.Named("server"),
		lifecycleSvc: p.LifecycleSvc,
		invoiceSvc:   p.InvoiceSvc,
		auditSvc:     p.AuditSvc,
		scheduler:    p.Scheduler,
	}
}

func (s *Server) RegisterRoutes() {
	v1 := s.engine.Group("/v1")

	v1.POST("/entities/:type", s.createEntity)
	v1.GET("/entities/:type/:id", s.getEntity)
	v1.POST("/entities/:type/:id/transition", s.transitionEntity)

	v1.POST("/invoices", s.createInvoice)
	v1.GET("/invoices/:id", s.getInvoice)
	v1.POST("/invoices/:id/transition", s.transitionInvoice)
	v1.GET("/invoices/:id/payments", s.listPayments)
	v1.POST("/invoices/:id/payments", s.applyPayment)

	v1.GET("/audit-logs", s.listAuditLogs)

	v1.POST("/jobs/overdue-sweep", s.runOverdueSweep)
}

func RunHTTP(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
