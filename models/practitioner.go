package models

import "time"

// RecurringWindow is a weekly repeating availability block, expressed as
// wall-clock minutes from midnight in the practitioner's timezone.
type RecurringWindow struct {
	Weekday     time.Weekday `bson:"weekday" json:"weekday"`
	StartMinute int          `bson:"start_minute" json:"startMinute"`
	EndMinute   int          `bson:"end_minute" json:"endMinute"`
}

// SpecificWindow is a one-off availability block on a concrete date. Specific
// windows are additive on top of the recurring schedule.
type SpecificWindow struct {
	Start time.Time `bson:"start" json:"start"`
	End   time.Time `bson:"end" json:"end"`
}

// TimeOffWindow blocks out time. Any instant covered by time off is never
// bookable, regardless of recurring or specific coverage.
type TimeOffWindow struct {
	Start  time.Time `bson:"start" json:"start"`
	End    time.Time `bson:"end" json:"end"`
	Reason string    `bson:"reason,omitempty" json:"reason,omitempty"`
}

// Practitioner holds the scheduling inputs the availability engine composes.
// Timezone is an IANA name (e.g. "Europe/Berlin"); all schedule arithmetic
// happens in that zone, and results are transmitted as absolute UTC instants.
type Practitioner struct {
	ID       string            `bson:"id" json:"id"`
	Name     string            `bson:"name" json:"name"`
	Timezone string            `bson:"timezone" json:"timezone"`
	Weekly   []RecurringWindow `bson:"weekly,omitempty" json:"weekly,omitempty"`
	Specific []SpecificWindow  `bson:"specific,omitempty" json:"specific,omitempty"`
	TimeOff  []TimeOffWindow   `bson:"time_off,omitempty" json:"timeOff,omitempty"`
}

// Location resolves the practitioner's IANA timezone, falling back to UTC.
func (p Practitioner) Location() *time.Location {
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil || loc == nil {
		return time.UTC
	}
	return loc
}
