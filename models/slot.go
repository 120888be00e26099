package models

import "time"

// Slot is a derived, capacity-annotated time interval during which a service
// may be booked. It is computed fresh on every query and never persisted;
// Start and End are authoritative UTC instants, LocalStart and LocalEnd are
// the same instants rendered in the visitor's timezone for display only.
type Slot struct {
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	LocalStart string    `json:"localStart"`
	LocalEnd   string    `json:"localEnd"`
	SpotsLeft  int       `json:"spotsLeft"`
}

// Overlaps reports whether the slot intersects [start, end).
func (s Slot) Overlaps(start, end time.Time) bool {
	return s.Start.Before(end) && start.Before(s.End)
}
