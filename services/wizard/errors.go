package wizard

import "fmt"

// FlowError reports an operation invoked out of step order, e.g. submitting
// contact details before a slot is selected.
type FlowError struct {
	Code    string
	Message string
}

func (e *FlowError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewFlowError(msg string) error {
	return &FlowError{
		Code:    "flowError",
		Message: msg,
	}
}
