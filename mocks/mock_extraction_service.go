package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ogarx/internal/batch"
	"ogarx/internal/domain"
	"ogarx/internal/service"
)

// MockExtractionService is a mock implementation of service.ExtractionService.
type MockExtractionService struct {
	mock.Mock
}

func (m *MockExtractionService) Run(ctx context.Context, docs []domain.RawDocument, opts service.RunOptions, b *batch.Batch) (*domain.BatchReport, error) {
	args := m.Called(ctx, docs, opts, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BatchReport), args.Error(1)
}

func (m *MockExtractionService) LoadDocument(name string, content []byte) (domain.RawDocument, error) {
	args := m.Called(name, content)
	return args.Get(0).(domain.RawDocument), args.Error(1)
}

func (m *MockExtractionService) FromStorage(keys []string) ([]domain.RawDocument, error) {
	args := m.Called(keys)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RawDocument), args.Error(1)
}
