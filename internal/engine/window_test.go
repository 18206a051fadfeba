package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWindowDefaults(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	w, err := ParseWindow(testQuery{}, now)
	require.NoError(t, err)

	assert.Nil(t, w.Since)
	assert.True(t, w.Until.Equal(now), "until should default to the receipt time")
}

func TestParseWindowExplicitBounds(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	w, err := ParseWindow(testQuery{
		"since": {"2025-05-01T00:00:00Z"},
		"until": {"2025-05-15T10:30:00+02:00"},
	}, now)
	require.NoError(t, err)

	require.NotNil(t, w.Since)
	assert.True(t, w.Since.Equal(time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, w.Until.Equal(time.Date(2025, 5, 15, 8, 30, 0, 0, time.UTC)))
}

func TestParseWindowMultipleValues(t *testing.T) {
	_, err := ParseWindow(testQuery{
		"since": {"2025-05-01T00:00:00Z", "2025-05-02T00:00:00Z"},
	}, time.Now())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "multiple timestamp values")
}

func TestParseTimestampRejectsNaive(t *testing.T) {
	_, err := ParseTimestamp(testQuery{"since": {"2025-05-01T00:00:00"}}, "since")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "timestamp without timezone")
}

func TestParseTimestampRejectsGarbage(t *testing.T) {
	_, err := ParseTimestamp(testQuery{"since": {"not-a-timestamp"}}, "since")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid timestamp format")
}

func TestParseTimestampMicrosecondPrecision(t *testing.T) {
	ts, err := ParseTimestamp(testQuery{"at": {"2025-05-01T00:00:00.123456Z"}}, "at")
	require.NoError(t, err)
	require.NotNil(t, ts)

	assert.Equal(t, 123456000, ts.Nanosecond())
}
