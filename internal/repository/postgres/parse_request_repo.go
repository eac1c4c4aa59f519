package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"docparse/internal/domain"
	"docparse/internal/port"
)

type parseRequestRepo struct {
	db *sqlx.DB
}

// NewParseRequestRepo creates a new PostgreSQL-backed ParseJournal.
func NewParseRequestRepo(db *sqlx.DB) port.ParseJournal {
	return &parseRequestRepo{db: db}
}

func (r *parseRequestRepo) Record(ctx context.Context, rec *domain.ParseRecord) error {
	query := `INSERT INTO parse_requests
		(id, original_name, base_name, status, error_code, error_message, file_size,
		 archive_size, entry_count, archive_key, device, duration_ms, created_at)
		VALUES (:id, :original_name, :base_name, :status, :error_code, :error_message, :file_size,
		 :archive_size, :entry_count, :archive_key, :device, :duration_ms, :created_at)`

	if _, err := r.db.NamedExecContext(ctx, query, rec); err != nil {
		return fmt.Errorf("parseRequestRepo.Record: %w", err)
	}
	return nil
}

func (r *parseRequestRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ParseRecord, error) {
	var rec domain.ParseRecord
	err := r.db.GetContext(ctx, &rec, "SELECT * FROM parse_requests WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("parseRequestRepo.GetByID: %w", err)
	}
	return &rec, nil
}

func (r *parseRequestRepo) List(ctx context.Context, offset, limit int) ([]domain.ParseRecord, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM parse_requests"); err != nil {
		return nil, 0, fmt.Errorf("parseRequestRepo.List count: %w", err)
	}

	records := []domain.ParseRecord{}
	err := r.db.SelectContext(ctx, &records,
		"SELECT * FROM parse_requests ORDER BY created_at DESC LIMIT $1 OFFSET $2",
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("parseRequestRepo.List: %w", err)
	}
	return records, total, nil
}

func (r *parseRequestRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
