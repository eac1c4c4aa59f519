package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockReclaimer is a mock implementation of port.ResourceReclaimer.
type MockReclaimer struct {
	mock.Mock
}

func (m *MockReclaimer) Reclaim(ctx context.Context) {
	m.Called(ctx)
}
