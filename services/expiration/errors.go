package expiration

import "fmt"

// ExpirationError signals that a booking's hold deadline elapsed before the
// flow finished. The wizard recovers by sending the visitor back to slot
// selection.
type ExpirationError struct {
	Code    string
	Message string
}

func (e *ExpirationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewExpirationError(msg string) error {
	return &ExpirationError{
		Code:    "expirationError",
		Message: msg,
	}
}
