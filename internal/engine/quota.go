package engine

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"sync-notes-be/internal/pkg/serverutils"
)

// Limits caps one parent type's children of one child type. Nil means
// unlimited; an Active of zero forbids creation outright. Active and
// Deleted are evaluated independently.
type Limits struct {
	Active  *int
	Deleted *int
}

type ParentChild struct {
	Parent string
	Child  string
}

// QuotaTable is loaded once at startup and never mutated afterwards. A
// missing entry means unlimited.
type QuotaTable map[ParentChild]Limits

type QuotaEnforcer struct {
	table      QuotaTable
	tombstones *TombstoneManager
}

func NewQuotaEnforcer(table QuotaTable, tombstones *TombstoneManager) *QuotaEnforcer {
	return &QuotaEnforcer{
		table:      table,
		tombstones: tombstones,
	}
}

func (e *QuotaEnforcer) LimitsFor(parent, child string) Limits {
	return e.table[ParentChild{Parent: parent, Child: child}]
}

func (e *QuotaEnforcer) DeletedLimit(parent, child string) *int {
	return e.LimitsFor(parent, child).Deleted
}

// CheckActive counts the parent's live children of the target type and
// rejects the creation when the limit is reached. The caller must hold the
// parent row lock for the rest of the transaction, otherwise two concurrent
// creates could both pass the count.
func (e *QuotaEnforcer) CheckActive(ctx context.Context, db *gorm.DB, target Resource, parent Resource, parentId int64) error {
	limits := e.LimitsFor(parent.Name, target.Name)
	if limits.Active == nil {
		return nil
	}
	limit := *limits.Active

	if limit > 0 {
		var count int64
		err := db.WithContext(ctx).Model(target.Model).
			Where(target.ParentColumn+" = ? AND deleted = ?", parentId, false).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count < int64(limit) {
			return nil
		}
	}

	return serverutils.NewQuotaExceededError(
		fmt.Sprintf("exceeded limit of %d %s per %s", limit, target.Plural, parent.Name))
}

// EvictDeletedPeers trims the parent's tombstones of the target type down
// to the configured deleted limit, keeping the most recently deleted ones.
// Runs inside the delete's transaction, after the tombstone flag is set.
func (e *QuotaEnforcer) EvictDeletedPeers(ctx context.Context, db *gorm.DB, target Resource, parent Resource, parentId int64) (int64, error) {
	limits := e.LimitsFor(parent.Name, target.Name)
	if limits.Deleted == nil {
		return 0, nil
	}
	return e.tombstones.PurgeRanked(ctx, db, target, parentId, *limits.Deleted)
}
