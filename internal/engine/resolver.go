package engine

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sync-notes-be/internal/pkg/serverutils"
)

// TombstonePolicy controls whether a tombstoned parent is visible to the
// current operation. Listings of live children require a live parent;
// writes and deleted-item listings ignore the parent's tombstone state so a
// client can still observe and purge children after deleting the parent.
type TombstonePolicy int

const (
	ParentAlive TombstonePolicy = iota
	ParentAny
)

type ParentResolver struct{}

func NewParentResolver() *ParentResolver {
	return &ParentResolver{}
}

// Resolve loads the parent row into dest by its natural-key filters. lock
// must be true whenever the caller will mutate quota-relevant state under
// this parent; the lock is held until the transaction ends, and everything
// read through dest afterwards is a post-lock read.
func (r *ParentResolver) Resolve(ctx context.Context, db *gorm.DB, parent Resource, filters map[string]interface{}, policy TombstonePolicy, lock bool, dest interface{}) error {
	query := db.WithContext(ctx).Model(parent.Model)
	for column, value := range filters {
		query = query.Where(column+" = ?", value)
	}
	if parent.Deletable && policy == ParentAlive {
		query = query.Where("deleted = ?", false)
	}
	if lock {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	if err := query.First(dest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return serverutils.NewNotFoundError(parent.Name + " not found")
		}
		return serverutils.FromDBError(err)
	}
	return nil
}
