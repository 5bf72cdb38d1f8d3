package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the tables on first start. The schema guarantees the
// collaborator contract the handlers rely on: unique usernames, autoincrement
// identities and booking foreign keys.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_id    BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			username   TEXT NOT NULL UNIQUE,
			password   TEXT NOT NULL,
			is_admin   BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS flights (
			flight_id       BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			flight_number   TEXT NOT NULL,
			model           TEXT NOT NULL DEFAULT '',
			origin          TEXT NOT NULL,
			destination     TEXT NOT NULL,
			departure_time  TEXT NOT NULL,
			arrival_time    TEXT NOT NULL,
			total_seats     INTEGER NOT NULL,
			remaining_seats INTEGER NOT NULL,
			price           DOUBLE PRECISION NOT NULL,
			is_deleted      BOOLEAN NOT NULL DEFAULT FALSE,
			CHECK (remaining_seats >= 0 AND remaining_seats <= total_seats)
		)`,
		`CREATE TABLE IF NOT EXISTS bookings (
			booking_id   BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			user_id      BIGINT NOT NULL REFERENCES users (user_id),
			flight_id    BIGINT NOT NULL REFERENCES flights (flight_id),
			booking_time TIMESTAMPTZ NOT NULL DEFAULT now(),
			status       TEXT NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// SeedAdmin inserts the default administrator account unless it already
// exists.
func SeedAdmin(ctx context.Context, db *pgxpool.Pool, username, password string) error {
	if username == "" {
		return nil
	}
	_, err := db.Exec(ctx, `INSERT INTO users (username, password, is_admin) VALUES ($1, $2, TRUE) ON CONFLICT (username) DO NOTHING`, username, password)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	return nil
}
