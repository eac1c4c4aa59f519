package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"docparse/internal/domain"
	"docparse/internal/service"
)

// MockRequestService is a mock implementation of service.RequestService.
type MockRequestService struct {
	mock.Mock
}

func (m *MockRequestService) GetByID(ctx context.Context, id uuid.UUID) (*service.RequestDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RequestDetail), args.Error(1)
}

func (m *MockRequestService) List(ctx context.Context, offset, limit int) ([]domain.ParseRecord, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ParseRecord), args.Int(1), args.Error(2)
}
