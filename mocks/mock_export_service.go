package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ogarx/internal/batch"
	"ogarx/internal/domain"
	"ogarx/internal/service"
)

// MockExportService is a mock implementation of service.ExportService.
type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) Render(b *batch.Batch, format domain.ExportFormat, layout domain.RecordLayout) (*service.ExportFile, error) {
	args := m.Called(b, format, layout)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExportFile), args.Error(1)
}

func (m *MockExportService) Publish(ctx context.Context, file *service.ExportFile, input service.PublishInput) (*service.PublishedExport, error) {
	args := m.Called(ctx, file, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PublishedExport), args.Error(1)
}
