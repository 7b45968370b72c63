package service

import (
	"time"

	"github.com/darsa-app/darsa-api/internal/models"
	appErrors "github.com/darsa-app/darsa-api/pkg/errors"
	"github.com/darsa-app/darsa-api/pkg/timerange"
)

// Gate decides whether attendance marking is currently permitted for a slot.
// It is pure: the window state is recomputed from the wall clock on every
// call, nothing is persisted. Completion is not tracked here; the recorder
// refuses a second batch independently of the window.
type Gate struct {
	graceMinutes int
}

// NewGate constructs a gate with the configured grace period.
func NewGate(graceMinutes int) *Gate {
	if graceMinutes < 0 {
		graceMinutes = 0
	}
	return &Gate{graceMinutes: graceMinutes}
}

// GraceMinutes returns the configured grace period.
func (g *Gate) GraceMinutes() int {
	return g.graceMinutes
}

// Evaluate computes the marking decision for a slot at the given instant.
// Marking is permitted within the closed interval [start, end+grace]; the
// remaining milliseconds feed UI countdowns and are zero when ineligible.
func (g *Gate) Evaluate(slot models.ScheduleSlot, now time.Time) (models.GateDecision, error) {
	if models.DayOfWeekFromTime(now) != slot.Day {
		return models.GateDecision{Reason: models.GateNotScheduledToday}, nil
	}

	start, err := timerange.Parse(slot.StartTime)
	if err != nil {
		return models.GateDecision{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid slot start time")
	}
	end, err := timerange.Parse(slot.EndTime)
	if err != nil {
		return models.GateDecision{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid slot end time")
	}

	graceEnd := end.Add(g.graceMinutes)
	current := timerange.FromClock(now)

	if !timerange.Within(current, start, graceEnd) {
		if current < start {
			return models.GateDecision{Reason: models.GateNotYetStarted}, nil
		}
		return models.GateDecision{Reason: models.GateWindowExpired}, nil
	}

	remaining := graceEnd.Millis() - timerange.MillisOfDay(now)
	if remaining < 0 {
		remaining = 0
	}
	return models.GateDecision{Eligible: true, MsRemaining: remaining}, nil
}
