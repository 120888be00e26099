package session

import (
	"context"
	"testing"
	"time"

	"practica/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisStore(client, 30*time.Minute), mr
}

func TestCreateAndGet(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, sess.SessionID)
	assert.Equal(t, 1, sess.Version)

	got, err := store.Get(ctx, sess.SessionID)
	require.NoError(t, err)
	assert.Equal(t, sess.SessionID, got.SessionID)
	assert.Nil(t, got.Service)
}

func TestGetUnknownSession(t *testing.T) {
	store, _ := setupStore(t)

	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveRoundTripsSnapshot(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx)
	require.NoError(t, err)

	sess.PractitionerID = "prac-1"
	sess.Service = &models.Service{ID: "svc-1", PractitionerID: "prac-1", DurationMinutes: 60, Price: 80, Currency: "EUR"}
	sess.Slot = &models.Slot{
		Start:     time.Date(2025, 6, 9, 10, 0, 0, 0, time.UTC),
		End:       time.Date(2025, 6, 9, 11, 0, 0, 0, time.UTC),
		SpotsLeft: 1,
	}
	sess.ClientTimezone = "Europe/Berlin"
	require.NoError(t, store.Save(ctx, sess))

	got, err := store.Get(ctx, sess.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "prac-1", got.PractitionerID)
	require.NotNil(t, got.Service)
	assert.Equal(t, "svc-1", got.Service.ID)
	require.NotNil(t, got.Slot)
	assert.True(t, got.Slot.Start.Equal(sess.Slot.Start))
	assert.Equal(t, "Europe/Berlin", got.ClientTimezone)
}

func TestSaveIncrementsVersion(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx)
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, sess))
	assert.Equal(t, 2, sess.Version)
	require.NoError(t, store.Save(ctx, sess))

	got, err := store.Get(ctx, sess.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Version)
}

func TestSessionLapsesAfterTTL(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx)
	require.NoError(t, err)

	mr.FastForward(31 * time.Minute)

	_, err = store.Get(ctx, sess.SessionID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveRefreshesTTL(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx)
	require.NoError(t, err)

	// Activity at minute 20 pushes the deadline out; the session survives
	// past the original 30-minute mark.
	mr.FastForward(20 * time.Minute)
	require.NoError(t, store.Save(ctx, sess))
	mr.FastForward(20 * time.Minute)

	_, err = store.Get(ctx, sess.SessionID)
	assert.NoError(t, err)
}

func TestDelete(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx)
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, sess.SessionID))

	_, err = store.Get(ctx, sess.SessionID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting an absent session is not an error.
	assert.NoError(t, store.Delete(ctx, sess.SessionID))
}
