package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sync-notes-be/internal/pkg/serverutils"
)

func TestParseWriteConditionsRejectsBoth(t *testing.T) {
	_, err := ParseWriteConditions(testQuery{
		"at":    {"2025-05-01T00:00:00Z"},
		"until": {"2025-05-02T00:00:00Z"},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported combination")
}

func TestParseWriteConditionsRejectsUnknownParam(t *testing.T) {
	_, err := ParseWriteConditions(testQuery{"since": {"2025-05-01T00:00:00Z"}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported condition")

	var appErr *serverutils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Status)
}

func TestCheckAtMatch(t *testing.T) {
	updated := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	c := WriteConditions{At: &updated}

	assert.NoError(t, c.Check(updated))
}

func TestCheckAtMismatchConflicts(t *testing.T) {
	at := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	c := WriteConditions{At: &at}

	err := c.Check(at.Add(time.Microsecond))
	require.Error(t, err)

	var appErr *serverutils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 409, appErr.Status)
}

func TestCheckUntil(t *testing.T) {
	until := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	c := WriteConditions{Until: &until}

	assert.NoError(t, c.Check(until.Add(-time.Second)))

	// updated == until is already outside the window
	err := c.Check(until)
	require.Error(t, err)
	var appErr *serverutils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 409, appErr.Status)
}

func TestCheckUnconditional(t *testing.T) {
	assert.NoError(t, WriteConditions{}.Check(time.Now()))
}

func TestEnsureUpdatedPastRejectsFuture(t *testing.T) {
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	err := EnsureUpdatedPast(now.Add(time.Minute), func() time.Time { return now })
	require.Error(t, err)

	var appErr *serverutils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 500, appErr.Status)
}

func TestEnsureUpdatedPastWaitsOutTie(t *testing.T) {
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	calls := 0
	clock := func() time.Time {
		calls++
		if calls < 3 {
			return base
		}
		return base.Add(time.Millisecond)
	}

	require.NoError(t, EnsureUpdatedPast(base, clock))
	assert.GreaterOrEqual(t, calls, 3)
}

func TestEnsureUpdatedPastPassesImmediately(t *testing.T) {
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, EnsureUpdatedPast(base, func() time.Time { return base.Add(time.Second) }))
}
