package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// OrderModel mirrors the 'music_orders' table. Genres and Instruments are
// stored as PostgreSQL text arrays; element order is significant.
type OrderModel struct {
	ID            uuid.UUID      `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	OwnerID       uuid.UUID      `gorm:"type:uuid;not null;index"`
	Theme         string         `gorm:"type:varchar(255);not null"`
	Genres        pq.StringArray `gorm:"type:text[];not null"`
	Instruments   pq.StringArray `gorm:"type:text[]"`
	HasLyrics     bool           `gorm:"not null;default:false"`
	LyricsContent *string        `gorm:"type:text"`
	Notes         string         `gorm:"type:text"`
	Status        string         `gorm:"type:varchar(20);not null;default:'pending'"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName explicitly sets the table name for GORM.
func (OrderModel) TableName() string {
	return "music_orders"
}
