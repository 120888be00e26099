package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TypeBookingExpire = "booking:expire"

// BookingExpirePayload carries the booking whose hold deadline has arrived.
type BookingExpirePayload struct {
	BookingID string    `json:"bookingId"`
	Deadline  time.Time `json:"deadline"`
}

func NewBookingExpireTask(payload BookingExpirePayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeBookingExpire, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt)}

	return task, opts, nil
}
