package reservation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	bookingRepo "practica/database/repository/booking"
	catalogRepo "practica/database/repository/catalog"
	"practica/models"
	"practica/services/expiration"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 9, 8, 0, 0, 0, time.UTC)

func validContact() models.ContactDetails {
	return models.ContactDetails{Name: "Ada Byron", Email: "ada@example.com"}
}

func newTestCoordinator(kind models.ServiceKind, capacity int) (*DefaultCoordinator, *bookingRepo.MemoryBookingRepo) {
	catalog := catalogRepo.NewMemoryCatalogRepo()
	catalog.PutPractitioner(models.Practitioner{ID: "prac-1", Name: "Dr. Vale", Timezone: "UTC"})
	catalog.PutService(models.Service{
		ID:              "svc-1",
		PractitionerID:  "prac-1",
		Title:           "Consultation",
		DurationMinutes: 60,
		Price:           80,
		Currency:        "EUR",
		Kind:            kind,
		Capacity:        capacity,
	})

	bookings := bookingRepo.NewMemoryBookingRepo()
	coord := &DefaultCoordinator{
		Catalog:  catalog,
		Bookings: bookings,
		Guard:    &expiration.Guard{Hold: 10 * time.Minute, Bookings: bookings},
		Now:      func() time.Time { return testNow },
	}
	return coord, bookings
}

func reserveReq(slotStart time.Time) ReserveRequest {
	return ReserveRequest{
		ServiceID:      "svc-1",
		PractitionerID: "prac-1",
		SlotStart:      slotStart,
		ClientTimezone: "Europe/Berlin",
		Contact:        validContact(),
	}
}

func TestReserveCreatesProvisionalBooking(t *testing.T) {
	coord, bookings := newTestCoordinator(models.ServiceKindIndividual, 1)
	slotStart := testNow.Add(2 * time.Hour)

	booking, err := coord.Reserve(context.Background(), reserveReq(slotStart))
	require.NoError(t, err)

	assert.Equal(t, models.BookingStatusProvisional, booking.Status)
	assert.Equal(t, slotStart, booking.Start)
	assert.Equal(t, slotStart.Add(time.Hour), booking.End)
	assert.Equal(t, testNow.Add(10*time.Minute), booking.ExpiresAt)
	// Price and duration come from the stored service record.
	assert.Equal(t, 80.0, booking.Price)
	assert.Equal(t, "EUR", booking.Currency)

	stored, err := bookings.GetByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.ID, stored.ID)
}

func TestReserveValidation(t *testing.T) {
	coord, _ := newTestCoordinator(models.ServiceKindIndividual, 1)
	slotStart := testNow.Add(2 * time.Hour)

	tests := []struct {
		name   string
		mutate func(*ReserveRequest)
		field  string
	}{
		{"missing name", func(r *ReserveRequest) { r.Contact.Name = " " }, "name"},
		{"missing email", func(r *ReserveRequest) { r.Contact.Email = "" }, "email"},
		{"malformed email", func(r *ReserveRequest) { r.Contact.Email = "not-an-email" }, "email"},
		{"missing service", func(r *ReserveRequest) { r.ServiceID = "" }, "serviceId"},
		{"missing practitioner", func(r *ReserveRequest) { r.PractitionerID = "" }, "practitionerId"},
		{"missing slot", func(r *ReserveRequest) { r.SlotStart = time.Time{} }, "slotStart"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := reserveReq(slotStart)
			tt.mutate(&req)

			_, err := coord.Reserve(context.Background(), req)
			var validation *ValidationError
			require.ErrorAs(t, err, &validation)
			assert.Contains(t, validation.Fields, tt.field)
		})
	}
}

func TestReserveRejectsUnknownService(t *testing.T) {
	coord, _ := newTestCoordinator(models.ServiceKindIndividual, 1)

	req := reserveReq(testNow.Add(2 * time.Hour))
	req.ServiceID = "svc-unknown"

	_, err := coord.Reserve(context.Background(), req)
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, validation.Fields, "serviceId")
}

func TestReserveRejectsPastSlot(t *testing.T) {
	coord, _ := newTestCoordinator(models.ServiceKindIndividual, 1)

	_, err := coord.Reserve(context.Background(), reserveReq(testNow.Add(-time.Hour)))
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, validation.Fields, "slotStart")
}

func TestReserveConcurrentCapacityRace(t *testing.T) {
	const seats = 2
	const contenders = 10

	coord, _ := newTestCoordinator(models.ServiceKindGroup, seats)
	slotStart := testNow.Add(2 * time.Hour)

	var wg sync.WaitGroup
	errs := make([]error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = coord.Reserve(context.Background(), reserveReq(slotStart))
		}(i)
	}
	wg.Wait()

	won, lost := 0, 0
	for _, err := range errs {
		if err == nil {
			won++
			continue
		}
		var conflict *ConflictError
		require.ErrorAs(t, err, &conflict)
		lost++
	}
	assert.Equal(t, seats, won, "exactly the seat count may win the race")
	assert.Equal(t, contenders-seats, lost)
}

func TestReserveAfterExpiredHold(t *testing.T) {
	coord, _ := newTestCoordinator(models.ServiceKindIndividual, 1)
	slotStart := testNow.Add(2 * time.Hour)

	_, err := coord.Reserve(context.Background(), reserveReq(slotStart))
	require.NoError(t, err)

	_, err = coord.Reserve(context.Background(), reserveReq(slotStart))
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)

	// Once the first hold lapses the slot opens up again without any worker
	// touching the record.
	coord.Now = func() time.Time { return testNow.Add(11 * time.Minute) }
	_, err = coord.Reserve(context.Background(), reserveReq(slotStart))
	assert.NoError(t, err)
}

func TestConfirmFlipsProvisional(t *testing.T) {
	coord, _ := newTestCoordinator(models.ServiceKindIndividual, 1)

	booking, err := coord.Reserve(context.Background(), reserveReq(testNow.Add(2*time.Hour)))
	require.NoError(t, err)

	at := testNow.Add(5 * time.Minute)
	confirmed, err := coord.Confirm(context.Background(), booking.ID, at)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, confirmed.Status)
	require.NotNil(t, confirmed.ConfirmedAt)
	assert.Equal(t, at, *confirmed.ConfirmedAt)
}

func TestConfirmIsIdempotent(t *testing.T) {
	coord, _ := newTestCoordinator(models.ServiceKindIndividual, 1)

	booking, err := coord.Reserve(context.Background(), reserveReq(testNow.Add(2*time.Hour)))
	require.NoError(t, err)

	_, err = coord.Confirm(context.Background(), booking.ID, testNow.Add(time.Minute))
	require.NoError(t, err)

	again, err := coord.Confirm(context.Background(), booking.ID, testNow.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, again.Status)
}

func TestConfirmAfterDeadlineFails(t *testing.T) {
	coord, _ := newTestCoordinator(models.ServiceKindIndividual, 1)

	booking, err := coord.Reserve(context.Background(), reserveReq(testNow.Add(2*time.Hour)))
	require.NoError(t, err)

	_, err = coord.Confirm(context.Background(), booking.ID, booking.ExpiresAt)
	var expired *expiration.ExpirationError
	assert.ErrorAs(t, err, &expired)
}

func TestUpdateContactOnProvisional(t *testing.T) {
	coord, bookings := newTestCoordinator(models.ServiceKindIndividual, 1)

	booking, err := coord.Reserve(context.Background(), reserveReq(testNow.Add(2*time.Hour)))
	require.NoError(t, err)

	corrected := models.ContactDetails{Name: "Ada Byron", Email: "ada.byron@example.com"}
	require.NoError(t, coord.UpdateContact(context.Background(), booking.ID, corrected))

	stored, err := bookings.GetByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, corrected, stored.Contact)
}

func TestUpdateContactValidation(t *testing.T) {
	coord, _ := newTestCoordinator(models.ServiceKindIndividual, 1)

	booking, err := coord.Reserve(context.Background(), reserveReq(testNow.Add(2*time.Hour)))
	require.NoError(t, err)

	err = coord.UpdateContact(context.Background(), booking.ID, models.ContactDetails{Name: "", Email: "@"})
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, validation.Fields, "name")
	assert.Contains(t, validation.Fields, "email")
}

func TestUpdateContactRejectsConfirmed(t *testing.T) {
	coord, _ := newTestCoordinator(models.ServiceKindIndividual, 1)

	booking, err := coord.Reserve(context.Background(), reserveReq(testNow.Add(2*time.Hour)))
	require.NoError(t, err)
	_, err = coord.Confirm(context.Background(), booking.ID, testNow.Add(time.Minute))
	require.NoError(t, err)

	err = coord.UpdateContact(context.Background(), booking.ID, validContact())
	assert.True(t, errors.Is(err, bookingRepo.ErrNotFound))
}

func TestGetBookingUnknownID(t *testing.T) {
	coord, _ := newTestCoordinator(models.ServiceKindIndividual, 1)

	_, err := coord.GetBooking(context.Background(), "nope")
	assert.True(t, errors.Is(err, bookingRepo.ErrNotFound))
}
