package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sync-notes-be/internal/engine"
)

func TestParseQuotaTableDefaults(t *testing.T) {
	table, err := ParseQuotaTable(defaultLimits)
	require.NoError(t, err)

	limits, ok := table[engine.ParentChild{Parent: "user", Child: "notebook"}]
	require.True(t, ok)
	require.NotNil(t, limits.Active)
	require.NotNil(t, limits.Deleted)
	assert.Equal(t, 8, *limits.Active)
	assert.Equal(t, 8, *limits.Deleted)

	limits = table[engine.ParentChild{Parent: "notebook", Child: "note"}]
	require.NotNil(t, limits.Active)
	assert.Equal(t, 125, *limits.Active)

	limits = table[engine.ParentChild{Parent: "user", Child: "task"}]
	require.NotNil(t, limits.Active)
	assert.Equal(t, 250, *limits.Active)
}

func TestParseQuotaTableSingleNumber(t *testing.T) {
	table, err := ParseQuotaTable(`{"user":{"notebook":5}}`)
	require.NoError(t, err)

	limits := table[engine.ParentChild{Parent: "user", Child: "notebook"}]
	require.NotNil(t, limits.Active)
	require.NotNil(t, limits.Deleted)
	assert.Equal(t, 5, *limits.Active)
	assert.Equal(t, 5, *limits.Deleted)
}

func TestParseQuotaTableSingleElementPair(t *testing.T) {
	table, err := ParseQuotaTable(`{"user":{"task":[10]}}`)
	require.NoError(t, err)

	limits := table[engine.ParentChild{Parent: "user", Child: "task"}]
	require.NotNil(t, limits.Deleted)
	assert.Equal(t, 10, *limits.Deleted)
}

func TestParseQuotaTableRejectsBadShapes(t *testing.T) {
	_, err := ParseQuotaTable(`{"user":{"notebook":[1,2,3]}}`)
	assert.Error(t, err)

	_, err = ParseQuotaTable(`{"user":{"notebook":"many"}}`)
	assert.Error(t, err)

	_, err = ParseQuotaTable(`not json`)
	assert.Error(t, err)
}

func TestRetentionFromDays(t *testing.T) {
	assert.Nil(t, retentionFromDays(0))
	assert.Nil(t, retentionFromDays(-1))

	d := retentionFromDays(30)
	require.NotNil(t, d)
	assert.Equal(t, 30*24.0, d.Hours())
}
