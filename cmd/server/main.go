package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"docparse/internal/auth"
	"docparse/internal/config"
	"docparse/internal/engine"
	"docparse/internal/engine/command"
	"docparse/internal/engine/remote"
	"docparse/internal/handler"
	"docparse/internal/logging"
	"docparse/internal/middleware"
	"docparse/internal/model"
	"docparse/internal/port"
	"docparse/internal/reclaim"
	"docparse/internal/repository/memory"
	"docparse/internal/repository/postgres"
	"docparse/internal/router"
	"docparse/internal/service"
	s3storage "docparse/internal/storage/s3"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "docparse-server",
		Short:        "Serve PDF parsing on a single accelerator",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd)
		},
	}
	config.RegisterFlags(root.PersistentFlags())
	root.AddCommand(newTokenCmd())
	return root
}

func init() {
	engine.RegisterProvider("remote", func(cfg *config.EngineConfig) (port.ParseEngine, error) {
		return remote.NewEngine(cfg), nil
	})
	engine.RegisterProvider("command", func(cfg *config.EngineConfig) (port.ParseEngine, error) {
		return command.NewEngine(cfg), nil
	})
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	// .env is optional; real environment variables take precedence.
	_ = godotenv.Load()

	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logging.Setup(cfg.Log)
	return cfg, nil
}

func runServe(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	device, err := model.ResolveDevice(cfg.Device.Accelerator, cfg.Device.ID)
	if err != nil {
		return fmt.Errorf("failed to resolve device: %w", err)
	}

	eng, err := engine.NewEngine(&cfg.Engine)
	if err != nil {
		return fmt.Errorf("failed to initialize engine: %w", err)
	}

	if err := os.MkdirAll(cfg.Output.Root, 0o755); err != nil {
		return fmt.Errorf("failed to create output root: %w", err)
	}

	// Models load before the listener opens. A failure here stops the process.
	manager := model.NewManager(eng, device)
	if err := manager.Initialize(ctx); err != nil {
		log.Error().Err(err).Str("device", device).Msg("model initialization failed")
		return err
	}

	journal, closeJournal, err := newJournal(cfg)
	if err != nil {
		return err
	}
	defer closeJournal()

	var storage port.ObjectStorage
	if cfg.Retention.Enabled {
		s3Client, err := s3storage.NewS3Client(&cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
		storage = s3Client
	}

	decoder, err := service.NewDecoder(cfg.Options.StrictFlags)
	if err != nil {
		return fmt.Errorf("failed to initialize decoder: %w", err)
	}
	orchestrator := service.NewOrchestrator(eng, manager, cfg.Output.Root, cfg.Engine.Timeout)
	reclaimer := reclaim.NewReclaimer(eng, device)

	inFlight := service.NewInFlight()
	parseSvc := service.NewParseService(decoder, orchestrator, service.NewPackager(), reclaimer, journal, device,
		service.ParseServiceConfig{
			Workers:  cfg.Server.Workers,
			Storage:  storage,
			Bucket:   cfg.S3.Bucket,
			Prefix:   cfg.Retention.Prefix,
			InFlight: inFlight,
		})
	requestSvc := service.NewRequestService(journal, storage, cfg.S3.Bucket, cfg.S3.PresignExpiry)

	var validator middleware.TokenValidator
	if cfg.Auth.Enabled() {
		tokens, err := auth.NewTokens(&cfg.Auth)
		if err != nil {
			return fmt.Errorf("failed to initialize auth: %w", err)
		}
		validator = tokens
	}

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := router.Setup(router.Handlers{
		Parse:   handler.NewParseHandler(parseSvc, manager, cfg.Server.MaxUploadMB<<20),
		Request: handler.NewRequestHandler(requestSvc),
		Model:   handler.NewModelHandler(manager),
		Health:  handler.NewHealthHandler(manager, journal),
	}, validator, cfg.Server.CORSOrigins)

	var wg sync.WaitGroup
	if cfg.Output.SweepInterval > 0 {
		sweeper := service.NewOutputSweeper(service.OutputSweeperConfig{
			Root:         cfg.Output.Root,
			PollInterval: cfg.Output.SweepInterval,
			MaxAge:       cfg.Output.MaxAge,
			Concurrency:  2,
			InFlight:     inFlight,
		})
		wg.Add(1)
		go func() {
			defer wg.Done()
			sweeper.Start(ctx)
		}()
	}

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", cfg.Server.Port).
			Str("device", device).
			Str("engine", cfg.Engine.Provider).
			Int("workers", cfg.Server.Workers).
			Bool("auth", cfg.Auth.Enabled()).
			Msg("server starting")
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			stop()
			wg.Wait()
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		_ = srv.Close()
	}
	stop()
	wg.Wait()

	log.Info().Msg("server stopped")
	return nil
}

// newJournal returns the postgres journal when a database is configured and
// the in-process journal otherwise.
func newJournal(cfg *config.Config) (port.ParseJournal, func(), error) {
	if !cfg.DB.Enabled {
		return memory.NewJournal(memory.DefaultCapacity), func() {}, nil
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
	}
	return postgres.NewParseRequestRepo(db), func() { _ = db.Close() }, nil
}
