package port

import (
	"context"

	"github.com/google/uuid"

	"docparse/internal/domain"
)

// ParseJournal records the outcome of every request.
type ParseJournal interface {
	Record(ctx context.Context, rec *domain.ParseRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ParseRecord, error)
	List(ctx context.Context, offset, limit int) ([]domain.ParseRecord, int, error)
	Ping(ctx context.Context) error
}
