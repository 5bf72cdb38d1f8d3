package accounts

import (
	"context"

	"github.com/Domenick1991/flightgate/internal/domain"
	"github.com/Domenick1991/flightgate/internal/repository"
)

type AccountUseCase interface {
	Register(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID int64, username, password string) error
	ListUsers(ctx context.Context) ([]domain.User, error)
}

type AccountService struct {
	users   repository.UserRepository
	maxRows int
}

func NewAccountService(users repository.UserRepository, maxRows int) *AccountService {
	return &AccountService{users: users, maxRows: maxRows}
}

func (s *AccountService) Register(ctx context.Context, username, password string) error {
	if username == "" {
		return domain.NewValidationError("username", "required")
	}
	if password == "" {
		return domain.NewValidationError("password", "required")
	}
	return s.users.Create(ctx, username, password)
}

func (s *AccountService) Login(ctx context.Context, username, password string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, domain.ErrBadCredentials
	}
	return s.users.Authenticate(ctx, username, password)
}

// UpdateProfile changes username and/or password; at least one must be set.
func (s *AccountService) UpdateProfile(ctx context.Context, userID int64, username, password string) error {
	if userID <= 0 {
		return domain.NewValidationError("user_id", "must be positive")
	}
	if username == "" && password == "" {
		return domain.NewValidationError("profile", "no updatable fields")
	}
	return s.users.UpdateProfile(ctx, userID, username, password)
}

func (s *AccountService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx, s.maxRows)
}

var _ AccountUseCase = (*AccountService)(nil)
