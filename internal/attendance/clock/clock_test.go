package clock_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liyanaidrs/CPC357-Assign2/internal/attendance/clock"
)

func TestNow_NormalizesToUTC8Seconds(t *testing.T) {
	utc := time.Date(2026, 3, 1, 17, 30, 15, 987654321, time.UTC)
	c := clock.NewFixed(utc)

	got := c.Now()

	_, offset := got.Zone()
	assert.Equal(t, 8*60*60, offset)
	assert.Equal(t, 0, got.Nanosecond())
	assert.True(t, got.Equal(utc.Truncate(time.Second)), "instant must not shift")
}

func TestFormatCivil_CrossesMidnight(t *testing.T) {
	// 16:30 UTC is already the next day in UTC+8.
	utc := time.Date(2026, 3, 1, 16, 30, 0, 0, time.UTC)

	assert.Equal(t, "2026-03-02 00:30:00", clock.FormatCivil(utc))
	assert.Equal(t, "2026-03-02", clock.NewFixed(utc).Today())
}

func TestParseCivil_RoundTrip(t *testing.T) {
	in := time.Date(2026, 3, 2, 8, 15, 42, 0, clock.Zone)

	got, err := clock.ParseCivil(clock.FormatCivil(in))
	require.NoError(t, err)
	assert.True(t, got.Equal(in))
}

func TestParseCivil_RejectsGarbage(t *testing.T) {
	_, err := clock.ParseCivil("yesterday")
	require.Error(t, err)
}

func TestZeroValueClock_UsesWallTime(t *testing.T) {
	var c *clock.Clock
	before := time.Now().Add(-time.Second)
	got := c.Now()
	assert.True(t, got.After(before))
}
