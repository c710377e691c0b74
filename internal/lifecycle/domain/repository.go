package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository persists EntityRecord rows.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, record *EntityRecord) error
	Find(ctx context.Context, db *gorm.DB, entityType EntityType, id snowflake.ID) (*EntityRecord, error)

	// UpdateState writes the new state only if the row still carries
	// expectedVersion, returning ErrConcurrencyConflict otherwise.
	UpdateState(ctx context.Context, db *gorm.DB, record *EntityRecord, to State, expectedVersion int64) error
}
