package accounts

import (
	"context"
	"testing"

	"github.com/Domenick1991/flightgate/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, username, password string) error {
	args := m.Called(ctx, username, password)
	return args.Error(0)
}

func (m *MockUserRepository) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, userID int64, username, password string) error {
	args := m.Called(ctx, userID, username, password)
	return args.Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, limit int) ([]domain.User, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func TestAccountService_Register_Success(t *testing.T) {
	mockUsers := &MockUserRepository{}
	service := NewAccountService(mockUsers, 200)

	ctx := context.Background()
	mockUsers.On("Create", ctx, "alice", "secret").Return(nil).Once()

	err := service.Register(ctx, "alice", "secret")

	assert.NoError(t, err)
	mockUsers.AssertExpectations(t)
}

func TestAccountService_Register_ValidationErrors(t *testing.T) {
	service := NewAccountService(&MockUserRepository{}, 200)
	ctx := context.Background()

	testCases := []struct {
		name     string
		username string
		password string
	}{
		{"empty username", "", "secret"},
		{"empty password", "alice", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := service.Register(ctx, tc.username, tc.password)
			assert.True(t, domain.IsValidation(err))
		})
	}
}

func TestAccountService_Register_UsernameTaken(t *testing.T) {
	mockUsers := &MockUserRepository{}
	service := NewAccountService(mockUsers, 200)

	ctx := context.Background()
	mockUsers.On("Create", ctx, "alice", "secret").Return(domain.ErrUsernameTaken).Once()

	err := service.Register(ctx, "alice", "secret")

	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
	mockUsers.AssertExpectations(t)
}

func TestAccountService_Login_Success(t *testing.T) {
	mockUsers := &MockUserRepository{}
	service := NewAccountService(mockUsers, 200)

	ctx := context.Background()
	user := &domain.User{ID: 3, Username: "alice", IsAdmin: false}
	mockUsers.On("Authenticate", ctx, "alice", "secret").Return(user, nil).Once()

	got, err := service.Login(ctx, "alice", "secret")

	assert.NoError(t, err)
	assert.Equal(t, user, got)
	mockUsers.AssertExpectations(t)
}

func TestAccountService_Login_EmptyCredentials(t *testing.T) {
	mockUsers := &MockUserRepository{}
	service := NewAccountService(mockUsers, 200)

	user, err := service.Login(context.Background(), "", "secret")

	assert.Nil(t, user)
	assert.ErrorIs(t, err, domain.ErrBadCredentials)
	mockUsers.AssertNotCalled(t, "Authenticate")
}

func TestAccountService_Login_WrongPassword(t *testing.T) {
	mockUsers := &MockUserRepository{}
	service := NewAccountService(mockUsers, 200)

	ctx := context.Background()
	mockUsers.On("Authenticate", ctx, "alice", "wrong").Return(nil, domain.ErrBadCredentials).Once()

	user, err := service.Login(ctx, "alice", "wrong")

	assert.Nil(t, user)
	assert.ErrorIs(t, err, domain.ErrBadCredentials)
}

func TestAccountService_UpdateProfile_Success(t *testing.T) {
	mockUsers := &MockUserRepository{}
	service := NewAccountService(mockUsers, 200)

	ctx := context.Background()
	mockUsers.On("UpdateProfile", ctx, int64(3), "alice2", "").Return(nil).Once()

	err := service.UpdateProfile(ctx, 3, "alice2", "")

	assert.NoError(t, err)
	mockUsers.AssertExpectations(t)
}

func TestAccountService_UpdateProfile_NoFields(t *testing.T) {
	mockUsers := &MockUserRepository{}
	service := NewAccountService(mockUsers, 200)

	err := service.UpdateProfile(context.Background(), 3, "", "")

	assert.True(t, domain.IsValidation(err))
	mockUsers.AssertNotCalled(t, "UpdateProfile")
}

func TestAccountService_UpdateProfile_InvalidUserID(t *testing.T) {
	service := NewAccountService(&MockUserRepository{}, 200)

	err := service.UpdateProfile(context.Background(), 0, "alice", "")

	assert.True(t, domain.IsValidation(err))
}

func TestAccountService_ListUsers(t *testing.T) {
	mockUsers := &MockUserRepository{}
	service := NewAccountService(mockUsers, 200)

	ctx := context.Background()
	users := []domain.User{{ID: 1, Username: "admin", IsAdmin: true}, {ID: 2, Username: "alice"}}
	mockUsers.On("List", ctx, 200).Return(users, nil).Once()

	got, err := service.ListUsers(ctx)

	assert.NoError(t, err)
	assert.Equal(t, users, got)
	mockUsers.AssertExpectations(t)
}
