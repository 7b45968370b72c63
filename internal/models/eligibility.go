package models

// GateReason tags why attendance marking is not currently permitted.
type GateReason string

const (
	GateNotScheduledToday GateReason = "NOT_SCHEDULED_TODAY"
	GateNotYetStarted     GateReason = "NOT_YET_STARTED"
	GateWindowExpired     GateReason = "WINDOW_EXPIRED"
)

// Message returns the user-facing prose for the reason.
func (r GateReason) Message() string {
	switch r {
	case GateNotScheduledToday:
		return "class is not scheduled today"
	case GateNotYetStarted:
		return "class has not yet started"
	case GateWindowExpired:
		return "attendance window expired"
	default:
		return string(r)
	}
}

// GateDecision is the outcome of evaluating the attendance window for a slot
// at a given instant. The window walks NOT_YET_STARTED, IN_WINDOW, EXPIRED as
// the clock advances; nothing is persisted, every call recomputes.
type GateDecision struct {
	Eligible    bool       `json:"eligible"`
	Reason      GateReason `json:"reason,omitempty"`
	MsRemaining int64      `json:"ms_remaining"`
}
