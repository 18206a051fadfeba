package specification

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ByExtId filters by the client-visible identifier
type ByExtId struct {
	ExtId uuid.UUID
}

func (s ByExtId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("ext_id = ?", s.ExtId)
}

// ByUserId filters by the owning user's surrogate id
type ByUserId struct {
	UserId int64
}

func (s ByUserId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserId)
}

// ByUsername filters users by their natural key
type ByUsername struct {
	Username string
}

func (s ByUsername) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("username = ?", s.Username)
}

// Deleted narrows to tombstones (true) or live rows (false)
type Deleted struct {
	Deleted bool
}

func (s Deleted) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("deleted = ?", s.Deleted)
}

// ForUpdate takes a row lock held until the transaction ends. Only valid
// inside a transaction.
type ForUpdate struct{}

func (s ForUpdate) Apply(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// OrderBy applies ordering
type OrderBy struct {
	Field string
	Desc  bool
}

func (s OrderBy) Apply(db *gorm.DB) *gorm.DB {
	direction := "ASC"
	if s.Desc {
		direction = "DESC"
	}
	return db.Order(fmt.Sprintf("%s %s", s.Field, direction))
}
