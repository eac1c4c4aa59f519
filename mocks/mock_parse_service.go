package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docparse/internal/service"
)

// MockParseService is a mock implementation of service.ParseService.
type MockParseService struct {
	mock.Mock
}

func (m *MockParseService) Process(ctx context.Context, input service.UploadInput) (*service.ParseResult, error) {
	args := m.Called(ctx, input)
	if fn, ok := args.Get(0).(func(context.Context, service.UploadInput) (*service.ParseResult, error)); ok {
		return fn(ctx, input)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ParseResult), args.Error(1)
}
