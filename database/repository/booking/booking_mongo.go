package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"practica/database"
	"practica/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoBookingRepo implements BookingRepository on MongoDB.
type MongoBookingRepo struct {
	coll  *mongo.Collection
	locks *mongo.Collection
}

// NewMongoBookingRepo returns a repository bound to the bookings collection.
func NewMongoBookingRepo() *MongoBookingRepo {
	return &MongoBookingRepo{
		coll:  database.Collection("bookings"),
		locks: database.Collection("booking_locks"),
	}
}

// liveOverlapFilter matches bookings that still consume capacity at instant
// now and intersect [start, end). Provisional bookings count only until their
// deadline; cancelled ones never count.
func liveOverlapFilter(practitionerID string, start, end, now time.Time) bson.M {
	return bson.M{
		"practitioner_id": practitionerID,
		"start":           bson.M{"$lt": end},
		"end":             bson.M{"$gt": start},
		"$or": []bson.M{
			{"status": models.BookingStatusConfirmed},
			{"status": models.BookingStatusCompleted},
			{"status": models.BookingStatusProvisional, "expires_at": bson.M{"$gt": now}},
		},
	}
}

func (r *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	var b models.Booking
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&b)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch booking %s: %w", id, err)
	}
	return &b, nil
}

// CreateProvisional runs the occupancy check and the insert inside a single
// transaction. Snapshot isolation alone does not serialize two transactions
// inserting distinct documents, so the transaction first bumps a shared
// per-practitioner lock document: concurrent reservations for the same
// practitioner hit a write conflict on that document, one aborts, and the
// driver's retry re-runs it against the committed state. The count uses the
// booking's own CreatedAt as "now", which is also the instant its hold clock
// starts.
func (r *MongoBookingRepo) CreateProvisional(ctx context.Context, booking *models.Booking, capacity int) error {
	client := r.coll.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := r.locks.UpdateOne(sc,
			bson.M{"_id": booking.PractitionerID},
			bson.M{"$inc": bson.M{"version": 1}},
			options.Update().SetUpsert(true),
		); err != nil {
			return nil, fmt.Errorf("failed to bump reservation lock: %w", err)
		}

		filter := liveOverlapFilter(booking.PractitionerID, booking.Start, booking.End, booking.CreatedAt)
		count, err := r.coll.CountDocuments(sc, filter)
		if err != nil {
			return nil, fmt.Errorf("occupancy count failed: %w", err)
		}
		if count >= int64(capacity) {
			return nil, ErrCapacityExhausted
		}
		if _, err := r.coll.InsertOne(sc, booking); err != nil {
			return nil, fmt.Errorf("insert booking failed: %w", err)
		}
		return nil, nil
	})
	if err != nil {
		if errors.Is(err, ErrCapacityExhausted) {
			return ErrCapacityExhausted
		}
		return fmt.Errorf("reservation transaction failed: %w", err)
	}
	return nil
}

func (r *MongoBookingRepo) ListLiveBetween(ctx context.Context, practitionerID string, from, to, now time.Time) ([]models.Booking, error) {
	cursor, err := r.coll.Find(ctx, liveOverlapFilter(practitionerID, from, to, now),
		options.Find().SetSort(bson.D{{Key: "start", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list live bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode live bookings: %w", err)
	}
	return bookings, nil
}

func (r *MongoBookingRepo) UpdateContact(ctx context.Context, bookingID string, contact models.ContactDetails) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": bookingID, "status": models.BookingStatusProvisional},
		bson.M{"$set": bson.M{"contact": contact}},
	)
	if err != nil {
		return fmt.Errorf("failed to update booking contact: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoBookingRepo) AttachPaymentIntent(ctx context.Context, bookingID, intentID, clientSecret string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": bookingID, "status": models.BookingStatusProvisional},
		bson.M{"$set": bson.M{
			"payment_intent_id":     intentID,
			"payment_client_secret": clientSecret,
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to attach payment intent: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Confirm is a conditional update keyed on the current status and deadline,
// so a late confirmation can never flip an expired hold.
func (r *MongoBookingRepo) Confirm(ctx context.Context, bookingID string, at time.Time) (*models.Booking, error) {
	var b models.Booking
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{
			"id":         bookingID,
			"status":     models.BookingStatusProvisional,
			"expires_at": bson.M{"$gt": at},
		},
		bson.M{"$set": bson.M{
			"status":       models.BookingStatusConfirmed,
			"confirmed_at": at,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&b)
	if err == nil {
		return &b, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("confirm update failed: %w", err)
	}

	// No live provisional matched; figure out why.
	existing, getErr := r.GetByID(ctx, bookingID)
	if getErr != nil {
		return nil, getErr
	}
	if existing.Status == models.BookingStatusConfirmed {
		return existing, nil
	}
	return nil, ErrDeadlineElapsed
}

func (r *MongoBookingRepo) CancelProvisional(ctx context.Context, bookingID string, now time.Time) (bool, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{
			"id":         bookingID,
			"status":     models.BookingStatusProvisional,
			"expires_at": bson.M{"$lte": now},
		},
		bson.M{"$set": bson.M{"status": models.BookingStatusCancelled}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to cancel provisional booking: %w", err)
	}
	return res.ModifiedCount > 0, nil
}

func (r *MongoBookingRepo) FindExpiredProvisional(ctx context.Context, now time.Time) ([]models.Booking, error) {
	cursor, err := r.coll.Find(ctx, bson.M{
		"status":     models.BookingStatusProvisional,
		"expires_at": bson.M{"$lte": now},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list expired bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode expired bookings: %w", err)
	}
	return bookings, nil
}
