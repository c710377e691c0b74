package service

import (
	"time"

	"context"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/worksuite/internal/audit/domain"
	"github.com/smallbiznis/worksuite/internal/lifecycle/domain"
	obsmetrics "github.com/smallbiznis/worksuite/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Graph      *domain.Graph
	Repo       domain.Repository
	AuditSvc   auditdomain.Service `optional:"true"`
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	graph      *domain.Graph
	repo       domain.Repository
	auditSvc   auditdomain.Service
	obsMetrics *obsmetrics.Metrics
}

func NewService(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("lifecycle.service"),
		genID:      p.GenID,
		graph:      p.Graph,
		repo:       p.Repo,
		auditSvc:   p.AuditSvc,
		obsMetrics: p.ObsMetrics,
	}
}

func (s *Service) CanTransition(entityType domain.EntityType, from, to domain.State) bool {
	for _, next := range s.graph.Edges(entityType, from) {
		if next == to {
			return true
		}
	}
	return false
}

// Transition validates a single lifecycle step. An identity transition is a
// deliberate no-op so idempotent batch retries never fail.
func (s *Service) Transition(entityType domain.EntityType, from, to domain.State) (domain.State, error) {
	if !s.graph.ContainsEntityType(entityType) {
		return "", domain.ErrUnknownEntityType
	}
	if !s.graph.ContainsState(entityType, from) || !s.graph.ContainsState(entityType, to) {
		return "", domain.ErrUnknownState
	}
	if from == to {
		return to, nil
	}
	if !s.CanTransition(entityType, from, to) {
		return "", &domain.InvalidTransitionError{
			EntityType: entityType,
			From:       from,
			To:         to,
			ValidNext:  s.graph.Edges(entityType, from),
		}
	}
	return to, nil
}

func (s *Service) CreateEntity(ctx context.Context, entityType domain.EntityType) (domain.EntityRecord, error) {
	initial, err := s.graph.InitialState(entityType)
	if err != nil {
		return domain.EntityRecord{}, err
	}

	now := time.Now().UTC()
	record := domain.EntityRecord{
		ID:        s.genID.Generate(),
		Type:      entityType,
		State:     initial,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, s.db, &record); err != nil {
		return domain.EntityRecord{}, err
	}

	s.audit(ctx, "entity.created", record, map[string]any{
		"state": string(record.State),
	})
	return record, nil
}

func (s *Service) GetEntity(ctx context.Context, entityType domain.EntityType, id snowflake.ID) (domain.EntityRecord, error) {
	if !s.graph.ContainsEntityType(entityType) {
		return domain.EntityRecord{}, domain.ErrUnknownEntityType
	}
	record, err := s.repo.Find(ctx, s.db, entityType, id)
	if err != nil {
		return domain.EntityRecord{}, err
	}
	return *record, nil
}

func (s *Service) TransitionEntity(ctx context.Context, entityType domain.EntityType, id snowflake.ID, to domain.State) (domain.EntityRecord, error) {
	var record *domain.EntityRecord

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		record, err = s.repo.Find(ctx, tx, entityType, id)
		if err != nil {
			return err
		}

		next, err := s.Transition(entityType, record.State, to)
		if err != nil {
			return err
		}
		if next == record.State {
			return nil
		}

		return s.repo.UpdateState(ctx, tx, record, next, record.Version)
	})
	if err != nil {
		if domain.IsInvalidTransition(err) {
			s.obsMetrics.RecordTransitionRejected(string(entityType))
		}
		return domain.EntityRecord{}, err
	}
	s.obsMetrics.RecordTransition(string(entityType))

	s.audit(ctx, "entity.transitioned", *record, map[string]any{
		"to_state": string(record.State),
	})
	return *record, nil
}

// audit is fire-and-forget; a failed audit write never fails the operation.
func (s *Service) audit(ctx context.Context, action string, record domain.EntityRecord, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadata["entity_type"] = string(record.Type)
	targetID := record.ID.String()
	if err := s.auditSvc.Record(ctx, action, string(record.Type), &targetID, metadata); err != nil {
		s.log.Warn("failed to write lifecycle audit log",
			zap.String("action", action),
			zap.Error(err),
		)
	}
}
