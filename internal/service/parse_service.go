package service

import (
	"bytes"
	"context"
	"os"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"docparse/internal/domain"
	"docparse/internal/port"
)

// ParseResult is the outcome of a successful request.
type ParseResult struct {
	RequestID  uuid.UUID
	BaseName   string
	Archive    *domain.Archive
	ArchiveKey string
}

// ParseService runs the request lifecycle: decode, parse, package.
type ParseService interface {
	Process(ctx context.Context, input UploadInput) (*ParseResult, error)
}

// ParseServiceConfig holds optional lifecycle settings.
type ParseServiceConfig struct {
	// Workers is the number of parses allowed on the device at once.
	Workers int
	// Storage receives a copy of every archive when non-nil.
	Storage port.ObjectStorage
	Bucket  string
	Prefix  string
	// InFlight, when set, holds the ID of every request that owns a namespace.
	InFlight *InFlight
}

type parseService struct {
	decoder      *Decoder
	orchestrator *Orchestrator
	packager     *Packager
	reclaimer    port.ResourceReclaimer
	journal      port.ParseJournal
	device       string
	cfg          ParseServiceConfig
	slots        chan struct{}
}

// NewParseService creates a new ParseService implementation.
func NewParseService(
	decoder *Decoder,
	orchestrator *Orchestrator,
	packager *Packager,
	reclaimer port.ResourceReclaimer,
	journal port.ParseJournal,
	device string,
	cfg ParseServiceConfig,
) ParseService {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &parseService{
		decoder:      decoder,
		orchestrator: orchestrator,
		packager:     packager,
		reclaimer:    reclaimer,
		journal:      journal,
		device:       device,
		cfg:          cfg,
		slots:        make(chan struct{}, cfg.Workers),
	}
}

// Process waits for a device slot, then runs the request. ctx only bounds the
// wait: once the slot is held the request runs to completion even if the
// caller goes away, so the device never carries two parses. The reclaimer
// runs exactly once for every request that got a slot, on success and on
// failure.
func (s *parseService) Process(ctx context.Context, input UploadInput) (*ParseResult, error) {
	if input.RequestID == uuid.Nil {
		input.RequestID = uuid.New()
	}

	select {
	case s.slots <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-s.slots }()

	ctx = context.WithoutCancel(ctx)
	defer s.reclaimer.Reclaim(ctx)

	s.cfg.InFlight.Add(input.RequestID)
	defer s.cfg.InFlight.Remove(input.RequestID)

	start := time.Now()
	logger := log.With().Str("request_id", input.RequestID.String()).Logger()
	logger.Info().Str("filename", input.Filename).Str("stage", string(domain.StageReceived)).
		Msg("parseService.Process: request received")

	rec := &domain.ParseRecord{
		ID:           input.RequestID,
		OriginalName: input.Filename,
		Device:       s.device,
		CreatedAt:    start.UTC(),
	}

	result, err := s.run(ctx, logger, input, rec)
	rec.DurationMS = time.Since(start).Milliseconds()

	if err != nil {
		rec.Status = domain.ParseStatusFailed
		rec.ErrorCode = domain.ErrorCode(err)
		rec.ErrorMessage = err.Error()
		logger.Warn().Err(err).Str("stage", string(domain.StageFailed)).Str("code", rec.ErrorCode).
			Int64("duration_ms", rec.DurationMS).Msg("parseService.Process: request failed")
	} else {
		rec.Status = domain.ParseStatusSucceeded
		logger.Info().Int("entries", rec.EntryCount).Int64("archive_bytes", rec.ArchiveSize).
			Int64("duration_ms", rec.DurationMS).Msg("parseService.Process: request packaged")
	}

	if jerr := s.journal.Record(ctx, rec); jerr != nil {
		logger.Error().Err(jerr).Msg("parseService.Process: failed to record request")
	}
	return result, err
}

func (s *parseService) run(ctx context.Context, logger zerolog.Logger, input UploadInput, rec *domain.ParseRecord) (*ParseResult, error) {
	env, err := s.decoder.Decode(input)
	if err != nil {
		return nil, err
	}
	rec.FileSize = int64(len(env.FileBytes))

	ns := s.orchestrator.Namespace(env)
	rec.BaseName = ns.BaseName
	logger.Debug().Str("stage", string(domain.StageDecoded)).Str("base_name", ns.BaseName).
		Int64("file_bytes", rec.FileSize).Msg("parseService.Process: decoded")

	defer func() {
		if err := os.RemoveAll(ns.Root); err != nil {
			logger.Warn().Err(err).Str("dir", ns.Root).Msg("parseService.Process: namespace cleanup failed")
		}
	}()

	if err := s.orchestrator.Parse(ctx, env, ns); err != nil {
		return nil, err
	}
	logger.Debug().Str("stage", string(domain.StageParsed)).Msg("parseService.Process: parsed")

	archive, err := s.packager.Package(ns.Root, ns.Dir())
	if err != nil {
		return nil, err
	}
	rec.ArchiveSize = int64(len(archive.Data))
	rec.EntryCount = len(archive.Entries)
	logger.Debug().Str("stage", string(domain.StagePackaged)).Msg("parseService.Process: packaged")

	rec.ArchiveKey = s.retain(ctx, logger, env.RequestID, archive)

	return &ParseResult{
		RequestID:  env.RequestID,
		BaseName:   ns.BaseName,
		Archive:    archive,
		ArchiveKey: rec.ArchiveKey,
	}, nil
}

// retain uploads a copy of the archive. A failed upload is logged and the
// response is still delivered.
func (s *parseService) retain(ctx context.Context, logger zerolog.Logger, id uuid.UUID, archive *domain.Archive) string {
	if s.cfg.Storage == nil {
		return ""
	}
	key := path.Join(s.cfg.Prefix, id.String(), domain.ArchiveFileName)
	_, err := s.cfg.Storage.Upload(ctx, port.UploadInput{
		Bucket:      s.cfg.Bucket,
		Key:         key,
		Body:        bytes.NewReader(archive.Data),
		ContentType: domain.ContentTypeZip,
		Size:        int64(len(archive.Data)),
	})
	if err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("parseService.retain: archive upload failed")
		return ""
	}
	return key
}
