package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/flightgate/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FlightRepository interface {
	Search(ctx context.Context, filter domain.SearchFilter, limit int) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	Insert(ctx context.Context, flight *domain.Flight) error
	Revise(ctx context.Context, flight *domain.Flight) error
	SoftDelete(ctx context.Context, id int64) error
}

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

const flightColumns = `flight_id, flight_number, model, origin, destination, departure_time, arrival_time, total_seats, remaining_seats, price, is_deleted`

func (r *PGFlightRepository) Search(ctx context.Context, filter domain.SearchFilter, limit int) ([]domain.Flight, error) {
	sql := `SELECT ` + flightColumns + ` FROM flights WHERE 1=1`
	args := make([]interface{}, 0, 4)

	if !filter.IncludeDeleted {
		sql += ` AND is_deleted = FALSE`
	}
	if filter.Origin != "" {
		args = append(args, filter.Origin)
		sql += fmt.Sprintf(` AND origin = $%d`, len(args))
	}
	if filter.Destination != "" {
		args = append(args, filter.Destination)
		sql += fmt.Sprintf(` AND destination = $%d`, len(args))
	}
	if filter.Date != "" {
		args = append(args, filter.Date+"%")
		sql += fmt.Sprintf(` AND departure_time LIKE $%d`, len(args))
	}

	args = append(args, limit)
	sql += fmt.Sprintf(` ORDER BY departure_time ASC LIMIT $%d`, len(args))

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		var f domain.Flight
		if err := rows.Scan(&f.ID, &f.FlightNumber, &f.Model, &f.Origin, &f.Destination, &f.DepartureTime, &f.ArrivalTime, &f.TotalSeats, &f.RemainingSeats, &f.Price, &f.IsDeleted); err != nil {
			return nil, err
		}
		flights = append(flights, f)
	}
	return flights, rows.Err()
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE flight_id=$1`, id)
	var f domain.Flight
	if err := row.Scan(&f.ID, &f.FlightNumber, &f.Model, &f.Origin, &f.Destination, &f.DepartureTime, &f.ArrivalTime, &f.TotalSeats, &f.RemainingSeats, &f.Price, &f.IsDeleted); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (r *PGFlightRepository) Insert(ctx context.Context, flight *domain.Flight) error {
	err := r.db.QueryRow(ctx, `INSERT INTO flights (flight_number, model, origin, destination, departure_time, arrival_time, total_seats, remaining_seats, price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7, $8)
		RETURNING flight_id`,
		flight.FlightNumber, flight.Model, flight.Origin, flight.Destination, flight.DepartureTime, flight.ArrivalTime, flight.TotalSeats, flight.Price).
		Scan(&flight.ID)
	if err != nil {
		return fmt.Errorf("insert flight: %w", err)
	}
	flight.RemainingSeats = flight.TotalSeats
	return nil
}

// Revise updates a flight, re-deriving remaining_seats from the old state so
// the sold count survives the edit. The write only applies while
// remaining_seats still matches the value the checks were computed from; a
// concurrent booking makes the update miss and the revision fails rather
// than losing a seat.
func (r *PGFlightRepository) Revise(ctx context.Context, flight *domain.Flight) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin revise: %w", err)
	}
	defer tx.Rollback(ctx)

	var oldTotal, oldRemaining int
	var deleted bool
	err = tx.QueryRow(ctx, `SELECT total_seats, remaining_seats, is_deleted FROM flights WHERE flight_id=$1`, flight.ID).
		Scan(&oldTotal, &oldRemaining, &deleted)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("read flight: %w", err)
	}
	if deleted {
		return domain.ErrFlightDeleted
	}

	sold := oldTotal - oldRemaining
	if flight.TotalSeats < sold {
		return domain.ErrCapacityBelowSold
	}

	// Never trust a caller-supplied remaining count; re-derive it here.
	remaining := oldRemaining + (flight.TotalSeats - oldTotal)
	if remaining < 0 {
		remaining = 0
	}
	if remaining > flight.TotalSeats {
		return domain.ErrSeatInvariant
	}

	res, err := tx.Exec(ctx, `UPDATE flights SET
			flight_number=$1, model=$2, origin=$3, destination=$4,
			departure_time=$5, arrival_time=$6, price=$7,
			total_seats=$8, remaining_seats=$9
		WHERE flight_id=$10 AND remaining_seats=$11 AND is_deleted = FALSE`,
		flight.FlightNumber, flight.Model, flight.Origin, flight.Destination,
		flight.DepartureTime, flight.ArrivalTime, flight.Price,
		flight.TotalSeats, remaining, flight.ID, oldRemaining)
	if err != nil {
		return fmt.Errorf("update flight: %w", err)
	}
	if res.RowsAffected() == 0 {
		return domain.ErrCapacityBelowSold
	}

	flight.RemainingSeats = remaining
	return tx.Commit(ctx)
}

func (r *PGFlightRepository) SoftDelete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback(ctx)

	var deleted bool
	err = tx.QueryRow(ctx, `SELECT is_deleted FROM flights WHERE flight_id=$1`, id).Scan(&deleted)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("read flight: %w", err)
	}
	if deleted {
		return domain.ErrFlightDeleted
	}

	if _, err := tx.Exec(ctx, `UPDATE flights SET is_deleted = TRUE WHERE flight_id=$1`, id); err != nil {
		return fmt.Errorf("delete flight: %w", err)
	}
	return tx.Commit(ctx)
}

var _ FlightRepository = (*PGFlightRepository)(nil)
