package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// EntityRecord is the persisted lifecycle state of one business entity.
// Version backs the optimistic write check: a save only succeeds if the row
// still carries the version that was read.
type EntityRecord struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	Type      EntityType   `json:"entity_type" gorm:"type:text;not null;index"`
	State     State        `json:"state" gorm:"type:text;not null"`
	Version   int64        `json:"version" gorm:"not null;default:1"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (EntityRecord) TableName() string { return "entity_states" }
