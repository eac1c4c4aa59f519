package service

import (
	"context"

	"github.com/google/uuid"

	"docparse/internal/domain"
	"docparse/internal/port"
)

// RequestDetail is a journal record with an optional archive download link.
type RequestDetail struct {
	Record      *domain.ParseRecord `json:"record"`
	DownloadURL string              `json:"download_url,omitempty"`
}

// RequestService reads the request journal.
type RequestService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*RequestDetail, error)
	List(ctx context.Context, offset, limit int) ([]domain.ParseRecord, int, error)
}

type requestService struct {
	journal       port.ParseJournal
	storage       port.ObjectStorage
	bucket        string
	presignExpiry int64
}

// NewRequestService creates a new RequestService. storage may be nil when
// archives are not retained.
func NewRequestService(journal port.ParseJournal, storage port.ObjectStorage, bucket string, presignExpiry int64) RequestService {
	return &requestService{
		journal:       journal,
		storage:       storage,
		bucket:        bucket,
		presignExpiry: presignExpiry,
	}
}

func (s *requestService) GetByID(ctx context.Context, id uuid.UUID) (*RequestDetail, error) {
	rec, err := s.journal.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &RequestDetail{Record: rec}
	if rec.ArchiveKey != "" && s.storage != nil {
		url, err := s.storage.GetPresignedURL(ctx, s.bucket, rec.ArchiveKey, s.presignExpiry)
		if err != nil {
			return nil, err
		}
		detail.DownloadURL = url
	}
	return detail, nil
}

func (s *requestService) List(ctx context.Context, offset, limit int) ([]domain.ParseRecord, int, error) {
	return s.journal.List(ctx, offset, limit)
}
