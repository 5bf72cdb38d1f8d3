package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/flightgate/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository interface {
	Create(ctx context.Context, username, password string) error
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID int64, username, password string) error
	List(ctx context.Context, limit int) ([]domain.User, error)
}

type PGUserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) UserRepository {
	return &PGUserRepository{db: db}
}

func (r *PGUserRepository) Create(ctx context.Context, username, password string) error {
	_, err := r.db.Exec(ctx, `INSERT INTO users (username, password) VALUES ($1, $2)`, username, password)
	if isUniqueViolation(err) {
		return domain.ErrUsernameTaken
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *PGUserRepository) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT user_id, username, is_admin, created_at FROM users WHERE username=$1 AND password=$2`, username, password)
	var u domain.User
	if err := row.Scan(&u.ID, &u.Username, &u.IsAdmin, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBadCredentials
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	return &u, nil
}

func (r *PGUserRepository) UpdateProfile(ctx context.Context, userID int64, username, password string) error {
	var res pgconn.CommandTag
	var err error
	switch {
	case username != "" && password != "":
		res, err = r.db.Exec(ctx, `UPDATE users SET username=$1, password=$2 WHERE user_id=$3`, username, password, userID)
	case username != "":
		res, err = r.db.Exec(ctx, `UPDATE users SET username=$1 WHERE user_id=$2`, username, userID)
	case password != "":
		res, err = r.db.Exec(ctx, `UPDATE users SET password=$1 WHERE user_id=$2`, password, userID)
	default:
		return domain.NewValidationError("profile", "no updatable fields")
	}

	if isUniqueViolation(err) {
		return domain.ErrUsernameTaken
	}
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if res.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PGUserRepository) List(ctx context.Context, limit int) ([]domain.User, error) {
	rows, err := r.db.Query(ctx, `SELECT user_id, username, is_admin, created_at FROM users ORDER BY user_id LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Username, &u.IsAdmin, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// isUniqueViolation recognizes the postgres unique-constraint error class.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ UserRepository = (*PGUserRepository)(nil)
