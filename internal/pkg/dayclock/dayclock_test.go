package dayclock

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketUsesConfiguredZone(t *testing.T) {
	clock, err := New("Asia/Shanghai")
	require.NoError(t, err)

	// 23:30 UTC is already the next day in Shanghai (UTC+8)
	utc := time.Date(2024, 3, 1, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-02", clock.Bucket(utc))
}

func TestNextMidnight(t *testing.T) {
	clock, err := New("Asia/Shanghai")
	require.NoError(t, err)

	utc := time.Date(2024, 3, 1, 23, 30, 0, 0, time.UTC)
	next := clock.NextMidnight(utc)

	assert.Equal(t, "2024-03-03", next.Format(BucketLayout))
	assert.Equal(t, 0, next.Hour())
	assert.Equal(t, 0, next.Minute())
	assert.True(t, next.After(utc))
}

func TestUntilMidnightMatchesBoundary(t *testing.T) {
	clock, err := New("Asia/Shanghai")
	require.NoError(t, err)

	now := time.Date(2024, 3, 2, 10, 0, 0, 0, clock.Location())
	ttl := clock.UntilMidnight(now)

	assert.Equal(t, 14*time.Hour, ttl)
	assert.True(t, clock.NextMidnight(now).Equal(now.Add(ttl)))
}

func TestNextMidnightAlwaysFuture(t *testing.T) {
	clock, err := New("Asia/Shanghai")
	require.NoError(t, err)

	now := clock.Now()
	assert.True(t, clock.NextMidnight(now).After(now))
	assert.Greater(t, clock.UntilMidnight(now), time.Duration(0))
}

func TestUnknownZone(t *testing.T) {
	_, err := New("Mars/Olympus_Mons")
	assert.Error(t, err)
}
