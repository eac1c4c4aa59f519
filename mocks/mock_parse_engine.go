package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docparse/internal/domain"
	"docparse/internal/port"
)

// MockParseEngine is a mock implementation of port.ParseEngine.
type MockParseEngine struct {
	mock.Mock
}

func (m *MockParseEngine) LoadModel(ctx context.Context, device string, key domain.ModelKey) (*domain.ModelHandle, error) {
	args := m.Called(ctx, device, key)
	if fn, ok := args.Get(0).(func(context.Context, string, domain.ModelKey) *domain.ModelHandle); ok {
		return fn(ctx, device, key), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ModelHandle), args.Error(1)
}

func (m *MockParseEngine) ReleaseDevice(ctx context.Context, device string) error {
	args := m.Called(ctx, device)
	return args.Error(0)
}

func (m *MockParseEngine) Parse(ctx context.Context, input port.ParseInput) error {
	args := m.Called(ctx, input)
	if fn, ok := args.Get(0).(func(context.Context, port.ParseInput) error); ok {
		return fn(ctx, input)
	}
	return args.Error(0)
}
