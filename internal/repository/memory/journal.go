package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"docparse/internal/domain"
	"docparse/internal/port"
)

// DefaultCapacity is the number of records kept when no capacity is given.
const DefaultCapacity = 1000

type journal struct {
	mu       sync.RWMutex
	capacity int
	records  []domain.ParseRecord
	index    map[uuid.UUID]int
}

// NewJournal creates an in-process ParseJournal used when no database is
// configured. It keeps the most recent capacity records.
func NewJournal(capacity int) port.ParseJournal {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &journal{
		capacity: capacity,
		index:    make(map[uuid.UUID]int),
	}
}

func (j *journal) Record(_ context.Context, rec *domain.ParseRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.records = append(j.records, *rec)
	if len(j.records) > j.capacity {
		j.records = j.records[len(j.records)-j.capacity:]
	}
	j.reindex()
	log.Debug().Str("request_id", rec.ID.String()).Str("status", string(rec.Status)).Msg("memory journal: recorded")
	return nil
}

func (j *journal) reindex() {
	clear(j.index)
	for i := range j.records {
		j.index[j.records[i].ID] = i
	}
}

func (j *journal) GetByID(_ context.Context, id uuid.UUID) (*domain.ParseRecord, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	i, ok := j.index[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	rec := j.records[i]
	return &rec, nil
}

// List returns records newest first.
func (j *journal) List(_ context.Context, offset, limit int) ([]domain.ParseRecord, int, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	total := len(j.records)
	out := []domain.ParseRecord{}
	for i := total - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, j.records[i])
	}
	return out, total, nil
}

func (j *journal) Ping(context.Context) error {
	return nil
}
