package models

// ServiceKind distinguishes one-on-one sessions from group sessions.
type ServiceKind string

const (
	ServiceKindIndividual ServiceKind = "individual"
	ServiceKindGroup      ServiceKind = "group"
)

// Service is a bookable offering. It is fetched once when the wizard starts
// and treated as immutable for the rest of the session; the reservation path
// echoes price and duration from the stored record, never from the client.
type Service struct {
	ID              string      `bson:"id" json:"id"`
	PractitionerID  string      `bson:"practitioner_id" json:"practitionerId"`
	Title           string      `bson:"title" json:"title"`
	DurationMinutes int         `bson:"duration_minutes" json:"durationMinutes"`
	Price           float64     `bson:"price" json:"price"`
	Currency        string      `bson:"currency" json:"currency"`
	Kind            ServiceKind `bson:"kind" json:"kind"`
	Capacity        int         `bson:"capacity" json:"capacity"`
}

// Free reports whether the service costs nothing. Free sessions skip the
// payment step entirely but still go through the atomic reservation check.
func (s Service) Free() bool {
	return s.Price <= 0
}

// SeatCapacity normalises capacity: individual services always hold one seat
// regardless of what the stored record says.
func (s Service) SeatCapacity() int {
	if s.Kind == ServiceKindIndividual || s.Capacity < 1 {
		return 1
	}
	return s.Capacity
}
