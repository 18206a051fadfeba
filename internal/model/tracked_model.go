package model

import (
	"time"

	"github.com/google/uuid"
)

// Tracked holds the sync bookkeeping columns shared by every tracked table.
// Deleted is a plain flag rather than gorm.DeletedAt: tombstones must stay
// queryable and client-visible until the sweep or quota eviction hard-deletes
// them. Created/Updated are stamped by the services, never by GORM hooks, so
// the engine controls exactly when Updated advances.
type Tracked struct {
	Id      int64     `gorm:"primaryKey;autoIncrement"`
	ExtId   uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	Created time.Time `gorm:"not null"`
	Updated time.Time `gorm:"not null;index"`
	Deleted bool      `gorm:"not null;default:false;index"`
}
