package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"ogarx/internal/domain"
	"ogarx/internal/service"
	"ogarx/mocks"
)

func TestIdentityService_Verify(t *testing.T) {
	userRepo := new(mocks.MockUserRepo)
	svc := service.NewIdentityService(userRepo, nil)

	userRepo.On("GetByUsername", mock.Anything, "alice").
		Return(&domain.User{Username: "alice", PasswordHash: hashPassword("secret")}, nil)
	userRepo.On("GetByUsername", mock.Anything, "ghost").Return(nil, domain.ErrNotFound)

	assert.True(t, svc.Verify(context.Background(), "alice", "secret"))
	assert.False(t, svc.Verify(context.Background(), "alice", "nope"))
	assert.False(t, svc.Verify(context.Background(), "ghost", "secret"))
}

func TestIdentityService_Register_Success(t *testing.T) {
	userRepo := new(mocks.MockUserRepo)
	emailSender := new(mocks.MockEmailSender)
	svc := service.NewIdentityService(userRepo, emailSender)

	userRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Username == "alice" && u.Email == "alice@example.com" &&
			bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret")) == nil
	})).Return(nil)
	emailSender.On("SendWelcomeEmail", mock.Anything, "alice@example.com", "alice").Return(nil)

	user, err := svc.Register(context.Background(), service.RegisterInput{
		Username: " alice ",
		Email:    "alice@example.com",
		Password: "secret",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotEqual(t, "secret", user.PasswordHash)

	userRepo.AssertExpectations(t)
	emailSender.AssertExpectations(t)
}

func TestIdentityService_Register_MissingFields(t *testing.T) {
	svc := service.NewIdentityService(new(mocks.MockUserRepo), nil)

	tests := []service.RegisterInput{
		{Email: "a@b.c", Password: "x"},
		{Username: "a", Password: "x"},
		{Username: "a", Email: "a@b.c"},
		{Username: "   ", Email: "a@b.c", Password: "x"},
	}
	for _, in := range tests {
		_, err := svc.Register(context.Background(), in)
		assert.ErrorIs(t, err, domain.ErrMissingFields)
	}
}

func TestIdentityService_Register_DuplicateUsername(t *testing.T) {
	userRepo := new(mocks.MockUserRepo)
	svc := service.NewIdentityService(userRepo, nil)

	userRepo.On("Create", mock.Anything, mock.Anything).Return(domain.ErrDuplicateUsername)

	_, err := svc.Register(context.Background(), service.RegisterInput{Username: "a", Email: "a@b.c", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrDuplicateUsername)
}

func TestIdentityService_Register_EmailFailureIsNotFatal(t *testing.T) {
	userRepo := new(mocks.MockUserRepo)
	emailSender := new(mocks.MockEmailSender)
	svc := service.NewIdentityService(userRepo, emailSender)

	userRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	emailSender.On("SendWelcomeEmail", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp"))

	_, err := svc.Register(context.Background(), service.RegisterInput{Username: "a", Email: "a@b.c", Password: "x"})
	assert.NoError(t, err)
}

func TestIdentityService_EnsureUser(t *testing.T) {
	t.Run("existing user is kept", func(t *testing.T) {
		userRepo := new(mocks.MockUserRepo)
		svc := service.NewIdentityService(userRepo, nil)
		userRepo.On("GetByUsername", mock.Anything, "admin").Return(&domain.User{Username: "admin"}, nil)

		require.NoError(t, svc.EnsureUser(context.Background(), service.RegisterInput{Username: "admin", Email: "a@b.c", Password: "x"}))
		userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("missing user is created", func(t *testing.T) {
		userRepo := new(mocks.MockUserRepo)
		svc := service.NewIdentityService(userRepo, nil)
		userRepo.On("GetByUsername", mock.Anything, "admin").Return(nil, domain.ErrNotFound)
		userRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

		require.NoError(t, svc.EnsureUser(context.Background(), service.RegisterInput{Username: "admin", Email: "a@b.c", Password: "x"}))
		userRepo.AssertExpectations(t)
	})
}
