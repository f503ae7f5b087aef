package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ogarx/internal/domain"
	"ogarx/internal/service"
)

// MockIdentityService is a mock implementation of service.IdentityService.
type MockIdentityService struct {
	mock.Mock
}

func (m *MockIdentityService) Verify(ctx context.Context, username, password string) bool {
	args := m.Called(ctx, username, password)
	return args.Bool(0)
}

func (m *MockIdentityService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockIdentityService) Register(ctx context.Context, input service.RegisterInput) (*domain.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockIdentityService) EnsureUser(ctx context.Context, input service.RegisterInput) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}
