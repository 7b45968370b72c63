package dto

import "github.com/darsa-app/darsa-api/internal/models"

// RosterStudent is one roster entry rendered for the marking screen.
type RosterStudent struct {
	ID          string `json:"id"`
	StudentCode string `json:"student_code"`
	FullName    string `json:"full_name"`
}

// ClassInfoResponse describes a teacher's class occurrence: the slot, the
// current marking decision and the roster to mark against.
type ClassInfoResponse struct {
	Slot          models.ScheduleSlot `json:"slot"`
	Eligible      bool                `json:"eligible"`
	Reason        models.GateReason   `json:"reason,omitempty"`
	MsRemaining   int64               `json:"ms_remaining"`
	AlreadyMarked bool                `json:"already_marked"`
	Students      []RosterStudent     `json:"students"`
}

// SubmitAttendanceResponse reports the batch fan-out size.
type SubmitAttendanceResponse struct {
	RecordsCreated int `json:"records_created"`
}

// CurrentClassView is the slot currently inside its marking window.
type CurrentClassView struct {
	Slot          models.ScheduleSlot `json:"slot"`
	MsRemaining   int64               `json:"ms_remaining"`
	AlreadyMarked bool                `json:"already_marked"`
}

// PeriodProgress reports per-slot completion for today.
type PeriodProgress struct {
	Slot          models.ScheduleSlot `json:"slot"`
	AlreadyMarked bool                `json:"already_marked"`
}

// TeacherTodayResponse is the teacher dashboard payload: the current class,
// if any, and completion state for every period scheduled today.
type TeacherTodayResponse struct {
	Date         string            `json:"date"`
	CurrentClass *CurrentClassView `json:"current_class,omitempty"`
	Progress     []PeriodProgress  `json:"progress"`
}
