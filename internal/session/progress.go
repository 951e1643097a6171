package session

// Remaining-time thresholds, in seconds, for the urgency shown to the user.
const (
	CriticalSeconds = 60
	WarningSeconds  = 300
)

// Urgency grades how close a session is to running out of time.
type Urgency int

const (
	UrgencyNormal Urgency = iota
	UrgencyWarning
	UrgencyCritical
)

// UrgencyFor returns the urgency for the given remaining seconds.
func UrgencyFor(remaining int) Urgency {
	switch {
	case remaining <= CriticalSeconds:
		return UrgencyCritical
	case remaining <= WarningSeconds:
		return UrgencyWarning
	default:
		return UrgencyNormal
	}
}

// Progress is a read-only snapshot of a session for display.
type Progress struct {
	State     State
	Answered  int
	Total     int
	Current   int
	Remaining int
	Urgency   Urgency
}

// AllAnswered reports whether every question has an answer.
func (p Progress) AllAnswered() bool {
	return p.Total > 0 && p.Answered == p.Total
}
