package service

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// OutputSweeperConfig holds settings for the output sweeper.
type OutputSweeperConfig struct {
	Root         string
	PollInterval time.Duration
	// MaxAge is how long a namespace of a request that is not in flight may
	// live before it is treated as abandoned.
	MaxAge      time.Duration
	Concurrency int
	// InFlight lists requests still running. Their namespaces are never
	// removed, however old they look.
	InFlight *InFlight
}

// OutputSweeper removes request namespaces left behind under the output root
// by a crash or a killed engine. Only directories named by a request ID that
// is not in flight are touched.
type OutputSweeper struct {
	cfg OutputSweeperConfig
	now func() time.Time
	wg  sync.WaitGroup
}

// NewOutputSweeper creates a new OutputSweeper.
func NewOutputSweeper(cfg OutputSweeperConfig) *OutputSweeper {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &OutputSweeper{cfg: cfg, now: time.Now}
}

// Start sweeps once, then on every tick until ctx is canceled. It blocks
// until in-flight removals have finished.
func (w *OutputSweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	log.Info().Str("root", w.cfg.Root).Dur("poll", w.cfg.PollInterval).Dur("max_age", w.cfg.MaxAge).
		Msg("outputSweeper: started")

	w.Sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			w.wg.Wait()
			log.Info().Msg("outputSweeper: shutdown complete")
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep removes every stale namespace once and returns how many were removed.
func (w *OutputSweeper) Sweep(ctx context.Context) int {
	entries, err := os.ReadDir(w.cfg.Root)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("root", w.cfg.Root).Msg("outputSweeper: reading output root failed")
		}
		return 0
	}

	cutoff := w.now().Add(-w.cfg.MaxAge)
	sem := make(chan struct{}, w.cfg.Concurrency)
	var (
		mu      sync.Mutex
		removed int
	)

	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		if !entry.IsDir() {
			continue
		}
		id, err := uuid.Parse(entry.Name())
		if err != nil || w.cfg.InFlight.Contains(id) {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}

		dir := filepath.Join(w.cfg.Root, entry.Name())
		sem <- struct{}{}
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			defer func() { <-sem }()

			if err := os.RemoveAll(dir); err != nil {
				log.Warn().Err(err).Str("dir", dir).Msg("outputSweeper: removal failed")
				return
			}
			mu.Lock()
			removed++
			mu.Unlock()
		}()
	}
	w.wg.Wait()

	if removed > 0 {
		log.Info().Int("removed", removed).Int("in_flight", w.cfg.InFlight.Len()).
			Msg("outputSweeper: removed abandoned namespaces")
	}
	return removed
}
