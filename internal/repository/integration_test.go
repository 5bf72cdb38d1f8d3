package repository

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/Domenick1991/flightgate/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testPool connects to the database named by TEST_DATABASE_DSN and resets it.
// Without the variable the test is skipped, so the suite stays runnable
// offline.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, EnsureSchema(ctx, pool))
	_, err = pool.Exec(ctx, `TRUNCATE bookings, flights, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	return pool
}

func createTestUser(t *testing.T, pool *pgxpool.Pool, username string) int64 {
	t.Helper()

	var id int64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO users (username, password) VALUES ($1, 'secret1') RETURNING user_id`, username).Scan(&id)
	require.NoError(t, err)
	return id
}

func createTestFlight(t *testing.T, flights FlightRepository, seats int) *domain.Flight {
	t.Helper()

	flight := &domain.Flight{
		FlightNumber:  "SU100",
		Model:         "A320",
		Origin:        "Moscow",
		Destination:   "Sochi",
		DepartureTime: "2026-09-01 08:00",
		ArrivalTime:   "2026-09-01 11:00",
		TotalSeats:    seats,
		Price:         4500,
	}
	require.NoError(t, flights.Insert(context.Background(), flight))
	require.Equal(t, seats, flight.RemainingSeats)
	return flight
}

func TestBookingLifecyclePG(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	flights := NewFlightRepository(pool)
	bookings := NewBookingRepository(pool)

	alice := createTestUser(t, pool, "alice")
	bob := createTestUser(t, pool, "bob")
	flight := createTestFlight(t, flights, 1)

	// The single seat goes to the first booker; the second sees sold out.
	first, err := bookings.Book(ctx, alice, flight.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusConfirmed, first.Status)

	_, err = bookings.Book(ctx, bob, flight.ID)
	require.ErrorIs(t, err, domain.ErrSoldOut)

	got, err := flights.GetByID(ctx, flight.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.RemainingSeats)

	// Cancelling restores the seat, exactly once.
	cancelled, err := bookings.Cancel(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, cancelled.Status)

	_, err = bookings.Cancel(ctx, first.ID)
	require.ErrorIs(t, err, domain.ErrAlreadyCancelled)

	got, err = flights.GetByID(ctx, flight.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.RemainingSeats)

	second, err := bookings.Book(ctx, bob, flight.ID)
	require.NoError(t, err)

	// Growing capacity keeps the sold seat: 3 total minus 1 sold leaves 2.
	revised := *got
	revised.TotalSeats = 3
	require.NoError(t, flights.Revise(ctx, &revised))
	assert.Equal(t, 2, revised.RemainingSeats)

	got, err = flights.GetByID(ctx, flight.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.TotalSeats)
	assert.Equal(t, 2, got.RemainingSeats)

	// Capacity can never drop below the seats already sold.
	shrunk := *got
	shrunk.TotalSeats = 0
	err = flights.Revise(ctx, &shrunk)
	require.ErrorIs(t, err, domain.ErrCapacityBelowSold)

	// A deleted flight takes no bookings and cannot be deleted twice.
	require.NoError(t, flights.SoftDelete(ctx, flight.ID))
	_, err = bookings.Book(ctx, alice, flight.ID)
	require.ErrorIs(t, err, domain.ErrSoldOut)
	require.ErrorIs(t, flights.SoftDelete(ctx, flight.ID), domain.ErrFlightDeleted)

	orders, err := bookings.ListByUser(ctx, bob, 200)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, second.ID, orders[0].BookingID)
	assert.Equal(t, domain.BookingStatusConfirmed, orders[0].Status)
	assert.True(t, orders[0].IsDeleted)
}

func TestConcurrentBookingExactlyFillsSeats(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	flights := NewFlightRepository(pool)
	bookings := NewBookingRepository(pool)

	user := createTestUser(t, pool, "carol")
	flight := createTestFlight(t, flights, 3)

	// Many bookers race for 3 seats; the conditional decrement must admit
	// exactly 3 and reject the rest.
	const bookers = 20
	var wg sync.WaitGroup
	results := make(chan error, bookers)
	for i := 0; i < bookers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := bookings.Book(ctx, user, flight.ID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var booked, soldOut int
	for err := range results {
		switch {
		case err == nil:
			booked++
		default:
			require.ErrorIs(t, err, domain.ErrSoldOut)
			soldOut++
		}
	}
	assert.Equal(t, 3, booked)
	assert.Equal(t, bookers-3, soldOut)

	got, err := flights.GetByID(ctx, flight.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.RemainingSeats)

	orders, err := bookings.ListByUser(ctx, user, 200)
	require.NoError(t, err)
	assert.Len(t, orders, 3)
}
