package timerange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValid(t *testing.T) {
	cases := map[string]TimeOfDay{
		"00:00": 0,
		"09:00": 9 * 60,
		"09:45": 9*60 + 45,
		"23:59": 23*60 + 59,
	}
	for raw, want := range cases {
		got, err := Parse(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
}

func TestParseInvalid(t *testing.T) {
	for _, raw := range []string{"", "9:00", "09-00", "24:00", "09:60", "0900", "ab:cd", "09:00:00", "09:5x", " 9:30", "0x:30", "09:3 ", "-9:30"} {
		_, err := Parse(raw)
		assert.Error(t, err, raw)
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, raw := range []string{"00:00", "07:05", "13:30", "23:59"} {
		parsed, err := Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, parsed.String())
	}
}

func TestAddClamps(t *testing.T) {
	end, err := Parse("23:58")
	require.NoError(t, err)
	assert.Equal(t, "23:59", end.Add(5).String())

	start, err := Parse("00:01")
	require.NoError(t, err)
	assert.Equal(t, "00:00", start.Add(-5).String())

	mid, err := Parse("10:00")
	require.NoError(t, err)
	assert.Equal(t, "10:05", mid.Add(5).String())
}

func TestOverlapsHalfOpen(t *testing.T) {
	nine, _ := Parse("09:00")
	ten, _ := Parse("10:00")
	tenThirty, _ := Parse("10:30")
	eleven, _ := Parse("11:00")
	nineThirty, _ := Parse("09:30")

	// Back-to-back ranges share only the boundary instant.
	assert.False(t, Overlaps(nine, ten, ten, eleven))
	assert.False(t, Overlaps(ten, eleven, nine, ten))

	assert.True(t, Overlaps(nine, ten, nineThirty, tenThirty))
	assert.True(t, Overlaps(nineThirty, tenThirty, nine, ten))
	assert.True(t, Overlaps(nine, eleven, nineThirty, ten))
	assert.False(t, Overlaps(nine, nineThirty, ten, eleven))
}

func TestWithinClosedInterval(t *testing.T) {
	nine, _ := Parse("09:00")
	ten, _ := Parse("10:00")

	assert.True(t, Within(nine, nine, ten))
	assert.True(t, Within(ten, nine, ten))
	assert.False(t, Within(nine-1, nine, ten))
	assert.False(t, Within(ten+1, nine, ten))
}

func TestFromClockAndMillis(t *testing.T) {
	at := time.Date(2026, 3, 2, 9, 45, 30, 0, time.UTC)
	assert.Equal(t, TimeOfDay(9*60+45), FromClock(at))

	// Millis reports the start of the minute; MillisOfDay keeps seconds.
	assert.Equal(t, int64((9*60+45)*60*1000), FromClock(at).Millis())
	assert.Equal(t, int64(((9*60+45)*60+30)*1000), MillisOfDay(at))
}
