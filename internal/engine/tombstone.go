package engine

import (
	"context"
	"time"

	"gorm.io/gorm"

	"sync-notes-be/internal/pkg/logger"
)

// TombstoneManager owns every hard delete of tombstoned rows. The periodic
// retention sweep and the deleted-quota eviction are the same purge with
// different selection criteria.
type TombstoneManager struct {
	retention *time.Duration // nil disables retention entirely
	log       logger.ILogger
}

func NewTombstoneManager(retention *time.Duration, log logger.ILogger) *TombstoneManager {
	return &TombstoneManager{
		retention: retention,
		log:       log,
	}
}

func (m *TombstoneManager) RetentionEnabled() bool {
	return m.retention != nil
}

// purge hard-deletes the tombstones of target selected by criteria. The
// subquery pins the victim set before the delete so ordering and offsets
// survive the outer DELETE.
func (m *TombstoneManager) purge(ctx context.Context, db *gorm.DB, target Resource, criteria func(*gorm.DB) *gorm.DB) (int64, error) {
	sub := db.WithContext(ctx).Model(target.Model).Select("id").Where("deleted = ?", true)
	sub = criteria(sub)

	result := db.WithContext(ctx).Where("id IN (?)", sub).Delete(target.Model)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// PurgeExpired removes tombstones whose updated is older than the retention
// horizon. No-op when retention is disabled.
func (m *TombstoneManager) PurgeExpired(ctx context.Context, db *gorm.DB, target Resource, now time.Time) (int64, error) {
	if m.retention == nil {
		return 0, nil
	}
	threshold := now.Add(-*m.retention)

	return m.purge(ctx, db, target, func(q *gorm.DB) *gorm.DB {
		return q.Where("updated < ?", threshold)
	})
}

// PurgeRanked keeps the keep most recently deleted tombstones under one
// parent and removes the rest. The id tie-break keeps the ordering
// deterministic when updated collides.
func (m *TombstoneManager) PurgeRanked(ctx context.Context, db *gorm.DB, target Resource, parentId int64, keep int) (int64, error) {
	return m.purge(ctx, db, target, func(q *gorm.DB) *gorm.DB {
		return q.Where(target.ParentColumn+" = ?", parentId).
			Order("updated DESC, id DESC").
			Offset(keep)
	})
}

// Sweep runs the age-based purge for every tracked resource type, each in
// its own transaction. A failing type is logged and skipped so it never
// blocks the others. Returns per-type deletion counts. Counts cover only
// rows deleted directly: notes removed by a purged notebook's FK cascade
// are not attributed to the notes count.
func (m *TombstoneManager) Sweep(ctx context.Context, db *gorm.DB, targets []Resource, now time.Time) map[string]int64 {
	counts := make(map[string]int64, len(targets))

	for _, target := range targets {
		var deleted int64
		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var txErr error
			deleted, txErr = m.PurgeExpired(ctx, tx, target, now)
			return txErr
		})
		if err != nil {
			m.log.Error("sweep", "tombstone sweep failed", map[string]interface{}{
				"resource": target.Name,
				"error":    err.Error(),
			})
			continue
		}
		counts[target.Name] = deleted
	}

	return counts
}

// PossiblyIncomplete reports whether a deleted-items listing for the given
// window may be missing tombstones that already expired or were evicted.
// The signal is conservative: true does not prove anything was removed, but
// false guarantees nothing could have been.
func (m *TombstoneManager) PossiblyIncomplete(ctx context.Context, db *gorm.DB, target Resource, parentId int64, w Window, deletedLimit *int, now time.Time) (bool, error) {
	if m.retention != nil {
		if w.Since == nil || w.Since.Before(now.Add(-*m.retention)) {
			return true, nil
		}
	}

	if deletedLimit == nil {
		return false, nil
	}

	// Eviction keeps only the newest deletedLimit tombstones per parent. If
	// the windowed count already reaches the cap, older ones may have been
	// pushed out of this window.
	query := db.WithContext(ctx).Model(target.Model).
		Where(target.ParentColumn+" = ? AND deleted = ?", parentId, true)
	if w.Since != nil {
		query = query.Where("updated >= ?", *w.Since)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count >= int64(*deletedLimit), nil
}
