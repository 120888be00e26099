package expiration

import (
	"context"
	"time"

	bookingRepo "practica/database/repository/booking"
	"practica/services/tasks"
	"practica/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// TaskScheduler is the slice of asynq.Client the guard needs.
type TaskScheduler interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Guard enforces the hard deadline on provisional bookings. The booking's
// creation timestamp is the sole source of truth: every capacity query
// already ignores overdue holds, so the scheduled task and the sweep only
// flip records to cancelled for hygiene.
type Guard struct {
	Hold      time.Duration
	Bookings  bookingRepo.BookingRepository
	Scheduler TaskScheduler
}

func (g *Guard) hold() time.Duration {
	if g.Hold <= 0 {
		return 10 * time.Minute
	}
	return g.Hold
}

// Deadline returns the instant a hold created at createdAt stops blocking
// its slot.
func (g *Guard) Deadline(createdAt time.Time) time.Time {
	return createdAt.Add(g.hold())
}

// Schedule enqueues the deferred expire task for a booking. A scheduling
// failure is logged, not returned: the sweep and the query-side predicate
// still retire the hold.
func (g *Guard) Schedule(bookingID string, deadline time.Time) {
	logger := utils.GetLogger()

	if g.Scheduler == nil {
		return
	}

	task, opts, err := tasks.NewBookingExpireTask(tasks.BookingExpirePayload{
		BookingID: bookingID,
		Deadline:  deadline,
	}, deadline)
	if err != nil {
		logger.Warn("failed to build booking expire task",
			zap.String("bookingID", bookingID), zap.Error(err))
		return
	}

	if _, err := g.Scheduler.Enqueue(task, opts...); err != nil {
		logger.Warn("failed to schedule booking expiry",
			zap.String("bookingID", bookingID), zap.Error(err))
	}
}

// ExpireNow flips a single overdue provisional booking to cancelled. A
// booking that was confirmed or cancelled in the meantime is left alone.
func (g *Guard) ExpireNow(ctx context.Context, bookingID string, now time.Time) error {
	logger := utils.GetLogger()

	cancelled, err := g.Bookings.CancelProvisional(ctx, bookingID, now)
	if err != nil {
		return err
	}
	if cancelled {
		logger.Info("provisional booking expired", zap.String("bookingID", bookingID))
	}
	return nil
}

// SweepExpired retires every overdue provisional booking. Returns the number
// of bookings flipped to cancelled.
func (g *Guard) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	expired, err := g.Bookings.FindExpiredProvisional(ctx, now)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, b := range expired {
		cancelled, err := g.Bookings.CancelProvisional(ctx, b.ID, now)
		if err != nil {
			return count, err
		}
		if cancelled {
			count++
		}
	}
	return count, nil
}
