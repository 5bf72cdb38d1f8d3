package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/flightgate/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository interface {
	Book(ctx context.Context, userID, flightID int64) (*domain.Booking, error)
	Cancel(ctx context.Context, bookingID int64) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID int64, limit int) ([]domain.Order, error)
	ListAll(ctx context.Context, limit int) ([]domain.AdminOrder, error)
	SearchAll(ctx context.Context, filter domain.BookingFilter, limit int) ([]domain.AdminOrder, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

// Book reserves one seat and records the booking in a single transaction.
// A missing, deleted or empty flight fails as sold out. The decrement only
// applies while remaining_seats > 0 at write time; a zero affected-row count
// means a concurrent booker took the last seat after our read, and the whole
// transaction rolls back.
func (r *PGBookingRepository) Book(ctx context.Context, userID, flightID int64) (*domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin booking: %w", err)
	}
	defer tx.Rollback(ctx)

	var remaining int
	var deleted bool
	err = tx.QueryRow(ctx, `SELECT remaining_seats, is_deleted FROM flights WHERE flight_id=$1`, flightID).Scan(&remaining, &deleted)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSoldOut
	}
	if err != nil {
		return nil, fmt.Errorf("read flight: %w", err)
	}
	if deleted || remaining <= 0 {
		return nil, domain.ErrSoldOut
	}

	res, err := tx.Exec(ctx, `UPDATE flights SET remaining_seats = remaining_seats - 1 WHERE flight_id=$1 AND remaining_seats > 0 AND is_deleted = FALSE`, flightID)
	if err != nil {
		return nil, fmt.Errorf("reserve seat: %w", err)
	}
	if res.RowsAffected() == 0 {
		return nil, domain.ErrSoldOut
	}

	booking := &domain.Booking{
		UserID:   userID,
		FlightID: flightID,
		Status:   domain.BookingStatusConfirmed,
	}
	err = tx.QueryRow(ctx, `INSERT INTO bookings (user_id, flight_id, status) VALUES ($1, $2, $3) RETURNING booking_id, booking_time`,
		userID, flightID, booking.Status).
		Scan(&booking.ID, &booking.BookingTime)
	if err != nil {
		return nil, fmt.Errorf("insert booking: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit booking: %w", err)
	}
	return booking, nil
}

// Cancel flips a confirmed booking to cancelled and returns the seat to its
// flight, atomically. A booking is cancelled at most once.
func (r *PGBookingRepository) Cancel(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin cancel: %w", err)
	}
	defer tx.Rollback(ctx)

	var booking domain.Booking
	err = tx.QueryRow(ctx, `SELECT booking_id, user_id, flight_id, status, booking_time FROM bookings WHERE booking_id=$1`, bookingID).
		Scan(&booking.ID, &booking.UserID, &booking.FlightID, &booking.Status, &booking.BookingTime)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read booking: %w", err)
	}
	if booking.Status == domain.BookingStatusCancelled {
		return nil, domain.ErrAlreadyCancelled
	}

	// Guard against a racing cancel of the same booking: only the
	// transaction that flips the status restores the seat.
	res, err := tx.Exec(ctx, `UPDATE bookings SET status=$1 WHERE booking_id=$2 AND status=$3`,
		domain.BookingStatusCancelled, bookingID, domain.BookingStatusConfirmed)
	if err != nil {
		return nil, fmt.Errorf("update booking: %w", err)
	}
	if res.RowsAffected() == 0 {
		return nil, domain.ErrAlreadyCancelled
	}

	if _, err := tx.Exec(ctx, `UPDATE flights SET remaining_seats = remaining_seats + 1 WHERE flight_id=$1`, booking.FlightID); err != nil {
		return nil, fmt.Errorf("release seat: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit cancel: %w", err)
	}
	booking.Status = domain.BookingStatusCancelled
	return &booking, nil
}

const orderColumns = `b.booking_id, b.flight_id, b.status, to_char(b.booking_time, 'YYYY-MM-DD HH24:MI:SS'),
	f.flight_number, f.origin, f.destination, f.departure_time, f.arrival_time, f.price, f.is_deleted`

func (r *PGBookingRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]domain.Order, error) {
	rows, err := r.db.Query(ctx, `SELECT `+orderColumns+`
		FROM bookings b
		JOIN flights f ON b.flight_id = f.flight_id
		WHERE b.user_id=$1
		ORDER BY b.booking_time DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.BookingID, &o.FlightID, &o.Status, &o.BookingTime, &o.FlightNumber, &o.Origin, &o.Destination, &o.DepartureTime, &o.ArrivalTime, &o.Price, &o.IsDeleted); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *PGBookingRepository) ListAll(ctx context.Context, limit int) ([]domain.AdminOrder, error) {
	return r.SearchAll(ctx, domain.BookingFilter{}, limit)
}

func (r *PGBookingRepository) SearchAll(ctx context.Context, filter domain.BookingFilter, limit int) ([]domain.AdminOrder, error) {
	sql := `SELECT ` + orderColumns + `, b.user_id, u.username, f.model
		FROM bookings b
		JOIN users u ON b.user_id = u.user_id
		JOIN flights f ON b.flight_id = f.flight_id
		WHERE 1=1`
	args := make([]interface{}, 0, 3)

	if filter.Username != "" {
		args = append(args, filter.Username)
		sql += fmt.Sprintf(` AND u.username = $%d`, len(args))
	}
	if filter.FlightNumber != "" {
		args = append(args, filter.FlightNumber)
		sql += fmt.Sprintf(` AND f.flight_number = $%d`, len(args))
	}

	args = append(args, limit)
	sql += fmt.Sprintf(` ORDER BY b.booking_time DESC LIMIT $%d`, len(args))

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]domain.AdminOrder, 0)
	for rows.Next() {
		var o domain.AdminOrder
		if err := rows.Scan(&o.BookingID, &o.FlightID, &o.Status, &o.BookingTime, &o.FlightNumber, &o.Origin, &o.Destination, &o.DepartureTime, &o.ArrivalTime, &o.Price, &o.IsDeleted, &o.UserID, &o.Username, &o.Model); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

var _ BookingRepository = (*PGBookingRepository)(nil)
