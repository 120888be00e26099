package availability

import (
	"context"
	"fmt"
	"sort"
	"time"

	bookingRepo "practica/database/repository/booking"
	"practica/models"
	"practica/utils"

	"go.uber.org/zap"
)

// Resolver computes the bookable slots for a practitioner and service over a
// date range. Results are derived fresh on every call and never cached.
type Resolver interface {
	Resolve(ctx context.Context, practitioner models.Practitioner, service models.Service, from, to time.Time, clientTimezone string) ([]models.Slot, error)
}

// DefaultResolver implements Resolver against the booking repository.
type DefaultResolver struct {
	Bookings bookingRepo.BookingRepository
	Now      func() time.Time
}

func (r *DefaultResolver) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Resolve enumerates each calendar day of the range in the practitioner's
// timezone, composes recurring and specific windows, subtracts time off,
// quantizes into service-duration slots and annotates each retained slot
// with its remaining capacity. Slot instants are UTC; LocalStart/LocalEnd
// are projections into the visitor's timezone for presentation only.
func (r *DefaultResolver) Resolve(ctx context.Context, practitioner models.Practitioner, service models.Service, from, to time.Time, clientTimezone string) ([]models.Slot, error) {
	logger := utils.GetLogger()

	if service.DurationMinutes <= 0 {
		return nil, fmt.Errorf("service %s has no duration", service.ID)
	}
	if !from.Before(to) {
		return nil, fmt.Errorf("invalid date range: %s .. %s", from, to)
	}

	loc := practitioner.Location()
	clientLoc := loc
	if clientTimezone != "" {
		if l, err := time.LoadLocation(clientTimezone); err == nil {
			clientLoc = l
		} else {
			logger.Warn("unknown client timezone, falling back to practitioner timezone",
				zap.String("timezone", clientTimezone))
		}
	}

	now := r.now()
	duration := time.Duration(service.DurationMinutes) * time.Minute

	// One query for the whole range; occupancy is counted per slot below.
	live, err := r.Bookings.ListLiveBetween(ctx, practitioner.ID, from.UTC(), to.UTC(), now)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing bookings: %w", err)
	}

	capacity := service.SeatCapacity()
	var slots []models.Slot

	// Walk calendar days in the practitioner's zone. Window minutes are
	// wall-clock offsets from local midnight, so DST shifts stay correct.
	first := from.In(loc)
	day := time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, loc)
	for ; day.Before(to); day = day.AddDate(0, 0, 1) {
		dayEnd := day.AddDate(0, 0, 1)

		var windows []interval
		for _, w := range practitioner.Weekly {
			if w.Weekday != day.Weekday() || w.EndMinute <= w.StartMinute {
				continue
			}
			windows = append(windows, interval{
				start: day.Add(time.Duration(w.StartMinute) * time.Minute),
				end:   day.Add(time.Duration(w.EndMinute) * time.Minute),
			})
		}
		for _, sw := range practitioner.Specific {
			iv := interval{start: sw.Start.In(loc), end: sw.End.In(loc)}
			if !iv.overlaps(interval{start: day, end: dayEnd}) {
				continue
			}
			windows = append(windows, clip(iv, day, dayEnd))
		}
		if len(windows) == 0 {
			continue
		}

		var cuts []interval
		for _, off := range practitioner.TimeOff {
			cuts = append(cuts, interval{start: off.Start.In(loc), end: off.End.In(loc)})
		}
		free := subtractAll(mergeIntervals(windows), cuts)

		for _, iv := range free {
			// Quantize: slots of the service duration, stepping by the
			// duration itself. A remainder shorter than one slot is dropped;
			// slots are atomic, never shortened.
			for s := iv.start; !s.Add(duration).After(iv.end); s = s.Add(duration) {
				slotStart := s.UTC()
				slotEnd := s.Add(duration).UTC()

				if slotStart.Before(now) || slotStart.Before(from) || slotEnd.After(to) {
					continue
				}

				booked := 0
				for _, b := range live {
					if b.Overlaps(slotStart, slotEnd) {
						booked++
					}
				}
				spotsLeft := capacity - booked
				if spotsLeft <= 0 {
					continue
				}

				slots = append(slots, models.Slot{
					Start:      slotStart,
					End:        slotEnd,
					LocalStart: slotStart.In(clientLoc).Format(time.RFC3339),
					LocalEnd:   slotEnd.In(clientLoc).Format(time.RFC3339),
					SpotsLeft:  spotsLeft,
				})
			}
		}
	}

	sort.Slice(slots, func(i, j int) bool { return slots[i].Start.Before(slots[j].Start) })
	return slots, nil
}
