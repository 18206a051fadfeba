package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func retention(d time.Duration) *time.Duration { return &d }

func TestPossiblyIncompleteNoSinceWithRetention(t *testing.T) {
	m := NewTombstoneManager(retention(30*24*time.Hour), nil)

	// retention enabled + unset since: always possibly incomplete, decided
	// before any store access
	partial, err := m.PossiblyIncomplete(context.Background(), nil, Notebooks, 1,
		Window{Until: time.Now()}, nil, time.Now())
	require.NoError(t, err)
	assert.True(t, partial)
}

func TestPossiblyIncompleteSinceBehindHorizon(t *testing.T) {
	m := NewTombstoneManager(retention(30*24*time.Hour), nil)
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	since := now.Add(-31 * 24 * time.Hour)

	partial, err := m.PossiblyIncomplete(context.Background(), nil, Notebooks, 1,
		Window{Since: &since, Until: now}, nil, now)
	require.NoError(t, err)
	assert.True(t, partial)
}

func TestPossiblyIncompleteCoveredWindowNoQuota(t *testing.T) {
	m := NewTombstoneManager(retention(30*24*time.Hour), nil)
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	since := now.Add(-24 * time.Hour)

	// since inside the horizon and no deleted quota: nothing can have been
	// removed, so the result is complete
	partial, err := m.PossiblyIncomplete(context.Background(), nil, Notebooks, 1,
		Window{Since: &since, Until: now}, nil, now)
	require.NoError(t, err)
	assert.False(t, partial)
}

func TestPossiblyIncompleteRetentionDisabledNoQuota(t *testing.T) {
	m := NewTombstoneManager(nil, nil)

	partial, err := m.PossiblyIncomplete(context.Background(), nil, Notebooks, 1,
		Window{Until: time.Now()}, nil, time.Now())
	require.NoError(t, err)
	assert.False(t, partial)
}

func TestPurgeExpiredDisabledRetention(t *testing.T) {
	m := NewTombstoneManager(nil, nil)

	n, err := m.PurgeExpired(context.Background(), nil, Notebooks, time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRetentionEnabled(t *testing.T) {
	assert.False(t, NewTombstoneManager(nil, nil).RetentionEnabled())
	assert.True(t, NewTombstoneManager(retention(time.Hour), nil).RetentionEnabled())
}
