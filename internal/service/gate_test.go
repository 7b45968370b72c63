package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darsa-app/darsa-api/internal/models"
	appErrors "github.com/darsa-app/darsa-api/pkg/errors"
)

func mondaySlot() models.ScheduleSlot {
	return models.ScheduleSlot{
		ID:        "slot-1",
		TenantID:  "tenant-1",
		Day:       models.Monday,
		StartTime: "09:00",
		EndTime:   "10:00",
	}
}

// 2026-03-02 is a Monday.
func mondayAt(hour, minute int) time.Time {
	return time.Date(2026, 3, 2, hour, minute, 0, 0, time.UTC)
}

func TestGateBeforeWindow(t *testing.T) {
	gate := NewGate(5)
	decision, err := gate.Evaluate(mondaySlot(), mondayAt(8, 59))
	require.NoError(t, err)
	assert.False(t, decision.Eligible)
	assert.Equal(t, models.GateNotYetStarted, decision.Reason)
	assert.Zero(t, decision.MsRemaining)
}

func TestGateWindowBoundaries(t *testing.T) {
	gate := NewGate(5)

	atStart, err := gate.Evaluate(mondaySlot(), mondayAt(9, 0))
	require.NoError(t, err)
	assert.True(t, atStart.Eligible)

	lastGraceMinute, err := gate.Evaluate(mondaySlot(), mondayAt(10, 5))
	require.NoError(t, err)
	assert.True(t, lastGraceMinute.Eligible)

	afterGrace, err := gate.Evaluate(mondaySlot(), mondayAt(10, 6))
	require.NoError(t, err)
	assert.False(t, afterGrace.Eligible)
	assert.Equal(t, models.GateWindowExpired, afterGrace.Reason)
}

func TestGateMsRemainingCountsToGraceEnd(t *testing.T) {
	gate := NewGate(5)
	decision, err := gate.Evaluate(mondaySlot(), mondayAt(10, 0))
	require.NoError(t, err)
	require.True(t, decision.Eligible)
	assert.Equal(t, int64(5*60*1000), decision.MsRemaining)
}

func TestGateMsRemainingNeverNegative(t *testing.T) {
	gate := NewGate(5)
	// 10:05:30 truncates to the last eligible minute but sits past grace end.
	now := time.Date(2026, 3, 2, 10, 5, 30, 0, time.UTC)
	decision, err := gate.Evaluate(mondaySlot(), now)
	require.NoError(t, err)
	require.True(t, decision.Eligible)
	assert.Equal(t, int64(0), decision.MsRemaining)
}

func TestGateZeroGrace(t *testing.T) {
	gate := NewGate(0)

	atEnd, err := gate.Evaluate(mondaySlot(), mondayAt(10, 0))
	require.NoError(t, err)
	assert.True(t, atEnd.Eligible)

	pastEnd, err := gate.Evaluate(mondaySlot(), mondayAt(10, 1))
	require.NoError(t, err)
	assert.False(t, pastEnd.Eligible)
	assert.Equal(t, models.GateWindowExpired, pastEnd.Reason)
}

func TestGateWrongDay(t *testing.T) {
	gate := NewGate(5)
	tuesday := time.Date(2026, 3, 3, 9, 30, 0, 0, time.UTC)
	decision, err := gate.Evaluate(mondaySlot(), tuesday)
	require.NoError(t, err)
	assert.False(t, decision.Eligible)
	assert.Equal(t, models.GateNotScheduledToday, decision.Reason)
}

func TestGateSundayNeverScheduled(t *testing.T) {
	gate := NewGate(5)
	sunday := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	decision, err := gate.Evaluate(mondaySlot(), sunday)
	require.NoError(t, err)
	assert.Equal(t, models.GateNotScheduledToday, decision.Reason)
}

func TestGateMalformedSlotTime(t *testing.T) {
	gate := NewGate(5)
	slot := mondaySlot()
	slot.StartTime = "9am"
	_, err := gate.Evaluate(slot, mondayAt(9, 30))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestGateNegativeGraceClamped(t *testing.T) {
	gate := NewGate(-10)
	assert.Equal(t, 0, gate.GraceMinutes())
}
