package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"docparse/internal/domain"
)

// MockParseJournal is a mock implementation of port.ParseJournal.
type MockParseJournal struct {
	mock.Mock
}

func (m *MockParseJournal) Record(ctx context.Context, rec *domain.ParseRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockParseJournal) GetByID(ctx context.Context, id uuid.UUID) (*domain.ParseRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ParseRecord), args.Error(1)
}

func (m *MockParseJournal) List(ctx context.Context, offset, limit int) ([]domain.ParseRecord, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ParseRecord), args.Int(1), args.Error(2)
}

func (m *MockParseJournal) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
