package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ogarx/internal/domain"
)

// MockModelInvoker is a mock implementation of port.ModelInvoker.
type MockModelInvoker struct {
	mock.Mock
}

func (m *MockModelInvoker) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockModelInvoker) Invoke(ctx context.Context, page domain.PageImage, prompt string) (domain.ModelReply, error) {
	args := m.Called(ctx, page, prompt)
	return args.Get(0).(domain.ModelReply), args.Error(1)
}
