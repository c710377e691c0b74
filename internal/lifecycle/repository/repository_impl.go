package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/worksuite/internal/lifecycle/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, record *domain.EntityRecord) error {
	if record == nil {
		return nil
	}
	return db.WithContext(ctx).Create(record).Error
}

func (r *repo) Find(ctx context.Context, db *gorm.DB, entityType domain.EntityType, id snowflake.ID) (*domain.EntityRecord, error) {
	var record domain.EntityRecord
	err := db.WithContext(ctx).
		Where("id = ? AND type = ?", id, entityType).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (r *repo) UpdateState(ctx context.Context, db *gorm.DB, record *domain.EntityRecord, to domain.State, expectedVersion int64) error {
	now := time.Now().UTC()
	res := db.WithContext(ctx).Exec(
		`UPDATE entity_states
		 SET state = ?, version = ?, updated_at = ?
		 WHERE id = ? AND version = ?`,
		to,
		expectedVersion+1,
		now,
		record.ID,
		expectedVersion,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrConcurrencyConflict
	}
	record.State = to
	record.Version = expectedVersion + 1
	record.UpdatedAt = now
	return nil
}
