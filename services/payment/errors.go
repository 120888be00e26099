package payment

import "fmt"

// PaymentError means the payment processor rejected a request. The visitor
// gets a retry affordance reusing the same booking and handle while the hold
// is still live.
type PaymentError struct {
	Code    string
	Message string
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewPaymentError(msg string) error {
	return &PaymentError{
		Code:    "paymentError",
		Message: msg,
	}
}
