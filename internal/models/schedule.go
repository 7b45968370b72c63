package models

import (
	"strings"
	"time"
)

// DayOfWeek enumerates the six working days a slot may occupy.
type DayOfWeek string

const (
	Monday    DayOfWeek = "MONDAY"
	Tuesday   DayOfWeek = "TUESDAY"
	Wednesday DayOfWeek = "WEDNESDAY"
	Thursday  DayOfWeek = "THURSDAY"
	Friday    DayOfWeek = "FRIDAY"
	Saturday  DayOfWeek = "SATURDAY"
)

// Valid returns true when the day is one of the working days.
func (d DayOfWeek) Valid() bool {
	switch d {
	case Monday, Tuesday, Wednesday, Thursday, Friday, Saturday:
		return true
	default:
		return false
	}
}

// DayOfWeekFromTime maps a timestamp's weekday onto the schedule day enum.
// Sunday maps to an empty value that never matches a stored slot.
func DayOfWeekFromTime(t time.Time) DayOfWeek {
	if t.Weekday() == time.Sunday {
		return DayOfWeek("")
	}
	return DayOfWeek(strings.ToUpper(t.Weekday().String()))
}

// ScheduleSlot is one weekly-recurring classroom-period assignment. Subject
// and teacher display names are denormalized at write time so reads never
// join against the external directories.
type ScheduleSlot struct {
	ID          string    `db:"id" json:"id"`
	TenantID    string    `db:"tenant_id" json:"tenant_id"`
	Grade       int       `db:"grade" json:"grade"`
	Section     string    `db:"section" json:"section"`
	Day         DayOfWeek `db:"day_of_week" json:"day_of_week"`
	Period      int       `db:"period" json:"period"`
	StartTime   string    `db:"start_time" json:"start_time"`
	EndTime     string    `db:"end_time" json:"end_time"`
	SubjectID   string    `db:"subject_id" json:"subject_id"`
	SubjectName string    `db:"subject_name" json:"subject_name"`
	TeacherID   string    `db:"teacher_id" json:"teacher_id"`
	TeacherName string    `db:"teacher_name" json:"teacher_name"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// ConflictReason tags a schedule conflict so callers can branch on a stable
// code instead of parsing prose.
type ConflictReason string

const (
	ConflictSlotOccupied       ConflictReason = "SLOT_OCCUPIED"
	ConflictTeacherUnavailable ConflictReason = "TEACHER_UNAVAILABLE"
	ConflictAlreadyMarked      ConflictReason = "ALREADY_MARKED"
)

// ScheduleConflict describes the existing slot that blocks a creation.
type ScheduleConflict struct {
	Reason      ConflictReason `json:"reason"`
	SlotID      string         `json:"slot_id"`
	Grade       int            `json:"grade"`
	Section     string         `json:"section"`
	Day         DayOfWeek      `json:"day_of_week"`
	Period      int            `json:"period"`
	StartTime   string         `json:"start_time"`
	EndTime     string         `json:"end_time"`
	SubjectName string         `json:"subject_name"`
	TeacherName string         `json:"teacher_name"`
}

// ScheduleConflictError is returned when a slot collides with an existing one.
type ScheduleConflictError struct {
	Reason   ConflictReason   `json:"reason"`
	Message  string           `json:"message"`
	Conflict ScheduleConflict `json:"conflict"`
}

// Error implements the error interface for conflict errors.
func (e *ScheduleConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}
