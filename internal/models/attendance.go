package models

import "time"

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "present"
	AttendanceStatusAbsent  AttendanceStatus = "absent"
	AttendanceStatusLate    AttendanceStatus = "late"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusLate:
		return true
	default:
		return false
	}
}

// AttendanceRecord is one student's status for one class occurrence. The
// teacher, subject and period are denormalized at write time, so deleting a
// schedule slot never orphans attendance history.
type AttendanceRecord struct {
	ID        string           `db:"id" json:"id"`
	TenantID  string           `db:"tenant_id" json:"tenant_id"`
	TeacherID string           `db:"teacher_id" json:"teacher_id"`
	SubjectID string           `db:"subject_id" json:"subject_id"`
	Period    int              `db:"period" json:"period"`
	Date      time.Time        `db:"date" json:"date"`
	StudentID string           `db:"student_id" json:"student_id"`
	Status    AttendanceStatus `db:"status" json:"status"`
	MarkedAt  time.Time        `db:"marked_at" json:"marked_at"`
}

// OccurrenceKey identifies one class occurrence: a slot realized on a
// calendar date. Attendance for an occurrence is written exactly once.
type OccurrenceKey struct {
	TenantID  string
	TeacherID string
	SubjectID string
	Period    int
	Date      time.Time
}

// OccurrenceKeyFor derives the occurrence key of a slot on the given date.
func OccurrenceKeyFor(slot ScheduleSlot, date time.Time) OccurrenceKey {
	return OccurrenceKey{
		TenantID:  slot.TenantID,
		TeacherID: slot.TeacherID,
		SubjectID: slot.SubjectID,
		Period:    slot.Period,
		Date:      Midnight(date),
	}
}

// Midnight truncates a timestamp to its calendar date in its own location.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
