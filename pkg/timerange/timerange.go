package timerange

import (
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock instant within a single day, stored as minutes
// since midnight. Class days never cross midnight, so no rollover handling.
type TimeOfDay int

const minutesPerDay = 24 * 60

// Parse converts an "HH:MM" string into a TimeOfDay. Input must be exactly
// two digits, a colon, two digits; padding, spaces or trailing characters
// are rejected.
func Parse(value string) (TimeOfDay, error) {
	if len(value) != 5 || value[2] != ':' ||
		!isDigit(value[0]) || !isDigit(value[1]) || !isDigit(value[3]) || !isDigit(value[4]) {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", value)
	}
	hours := int(value[0]-'0')*10 + int(value[1]-'0')
	minutes := int(value[3]-'0')*10 + int(value[4]-'0')
	if hours > 23 || minutes > 59 {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", value)
	}
	return TimeOfDay(hours*60 + minutes), nil
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// FromClock extracts the time-of-day component of a timestamp, truncated to
// the minute.
func FromClock(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*60 + t.Minute())
}

// String renders the time back to HH:MM.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// Add returns the time shifted by the given number of minutes, capped at the
// end of the day.
func (t TimeOfDay) Add(minutes int) TimeOfDay {
	shifted := int(t) + minutes
	if shifted >= minutesPerDay {
		shifted = minutesPerDay - 1
	}
	if shifted < 0 {
		shifted = 0
	}
	return TimeOfDay(shifted)
}

// Millis returns the instant as milliseconds since midnight.
func (t TimeOfDay) Millis() int64 {
	return int64(t) * 60 * 1000
}

// MillisOfDay returns the full-precision milliseconds since midnight for a
// timestamp, for countdown arithmetic against TimeOfDay boundaries.
func MillisOfDay(t time.Time) int64 {
	return int64(t.Hour())*3600000 + int64(t.Minute())*60000 + int64(t.Second())*1000 + int64(t.Nanosecond()/1e6)
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Intervals that only touch at an endpoint do not
// overlap, so back-to-back periods are allowed.
func Overlaps(aStart, aEnd, bStart, bEnd TimeOfDay) bool {
	return aStart < bEnd && bStart < aEnd
}

// Within reports whether current lies inside the closed interval
// [start, end]. Both boundaries count as inside.
func Within(current, start, end TimeOfDay) bool {
	return start <= current && current <= end
}
