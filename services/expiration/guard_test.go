package expiration

import (
	"context"
	"testing"
	"time"

	bookingRepo "practica/database/repository/booking"
	"practica/models"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 6, 9, 8, 0, 0, 0, time.UTC)

func seedProvisional(t *testing.T, repo *bookingRepo.MemoryBookingRepo, id string, expiresAt time.Time) {
	t.Helper()
	b := &models.Booking{
		ID:             id,
		PractitionerID: "prac-1",
		ServiceID:      "svc-1",
		Status:         models.BookingStatusProvisional,
		Start:          base.Add(2 * time.Hour),
		End:            base.Add(3 * time.Hour),
		CreatedAt:      base,
		ExpiresAt:      expiresAt,
	}
	require.NoError(t, repo.CreateProvisional(context.Background(), b, 100))
}

func TestDeadline(t *testing.T) {
	g := &Guard{Hold: 10 * time.Minute}
	assert.Equal(t, base.Add(10*time.Minute), g.Deadline(base))

	// Unset hold falls back to the default.
	unset := &Guard{}
	assert.Equal(t, base.Add(10*time.Minute), unset.Deadline(base))
}

func TestExpireNowRetiresOverdueHold(t *testing.T) {
	repo := bookingRepo.NewMemoryBookingRepo()
	g := &Guard{Hold: 10 * time.Minute, Bookings: repo}
	seedProvisional(t, repo, "b-1", base.Add(10*time.Minute))

	require.NoError(t, g.ExpireNow(context.Background(), "b-1", base.Add(11*time.Minute)))

	b, err := repo.GetByID(context.Background(), "b-1")
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, b.Status)
}

func TestExpireNowLeavesLiveHoldAlone(t *testing.T) {
	repo := bookingRepo.NewMemoryBookingRepo()
	g := &Guard{Hold: 10 * time.Minute, Bookings: repo}
	seedProvisional(t, repo, "b-1", base.Add(10*time.Minute))

	require.NoError(t, g.ExpireNow(context.Background(), "b-1", base.Add(5*time.Minute)))

	b, err := repo.GetByID(context.Background(), "b-1")
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusProvisional, b.Status)
}

func TestExpireNowLeavesConfirmedAlone(t *testing.T) {
	repo := bookingRepo.NewMemoryBookingRepo()
	g := &Guard{Hold: 10 * time.Minute, Bookings: repo}
	seedProvisional(t, repo, "b-1", base.Add(10*time.Minute))

	_, err := repo.Confirm(context.Background(), "b-1", base.Add(5*time.Minute))
	require.NoError(t, err)

	// The deferred task fires after the deadline; the booking was confirmed
	// in the meantime and must stay confirmed.
	require.NoError(t, g.ExpireNow(context.Background(), "b-1", base.Add(11*time.Minute)))

	b, err := repo.GetByID(context.Background(), "b-1")
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, b.Status)
}

func TestSweepExpired(t *testing.T) {
	repo := bookingRepo.NewMemoryBookingRepo()
	g := &Guard{Hold: 10 * time.Minute, Bookings: repo}

	seedProvisional(t, repo, "overdue-1", base.Add(5*time.Minute))
	seedProvisional(t, repo, "overdue-2", base.Add(8*time.Minute))
	seedProvisional(t, repo, "live-1", base.Add(30*time.Minute))

	count, err := g.SweepExpired(context.Background(), base.Add(10*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	live, err := repo.GetByID(context.Background(), "live-1")
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusProvisional, live.Status)

	// A second sweep finds nothing left to do.
	count, err = g.SweepExpired(context.Background(), base.Add(10*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

type recordingScheduler struct {
	tasks []*asynq.Task
}

func (r *recordingScheduler) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	r.tasks = append(r.tasks, task)
	return &asynq.TaskInfo{}, nil
}

func TestScheduleEnqueuesExpireTask(t *testing.T) {
	sched := &recordingScheduler{}
	g := &Guard{Hold: 10 * time.Minute, Scheduler: sched}

	g.Schedule("b-1", base.Add(10*time.Minute))

	require.Len(t, sched.tasks, 1)
	assert.Equal(t, "booking:expire", sched.tasks[0].Type())
}

func TestScheduleWithoutSchedulerIsNoop(t *testing.T) {
	g := &Guard{Hold: 10 * time.Minute}
	assert.NotPanics(t, func() { g.Schedule("b-1", base.Add(10*time.Minute)) })
}
