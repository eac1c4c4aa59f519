package model

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"docparse/internal/domain"
	"docparse/internal/port"
)

// WarmKeys are the variants loaded before the server accepts requests:
// with and without OCR.
var WarmKeys = []domain.ModelKey{
	{OCR: true, Table: false},
	{OCR: false, Table: false},
}

// Manager owns the model variants for one device. It is built once at
// startup and shared by reference with every request handler.
type Manager struct {
	loader port.ModelLoader
	device string

	mu     sync.Mutex
	models map[domain.ModelKey]*domain.ModelHandle
	ready  atomic.Bool
}

// NewManager creates a Manager bound to device. Every load is forced onto
// that device.
func NewManager(loader port.ModelLoader, device string) *Manager {
	return &Manager{
		loader: loader,
		device: device,
		models: make(map[domain.ModelKey]*domain.ModelHandle),
	}
}

// Initialize eagerly loads keys (WarmKeys when none are given). Any failure
// is fatal for the process: the manager stays not ready.
func (m *Manager) Initialize(ctx context.Context, keys ...domain.ModelKey) error {
	if len(keys) == 0 {
		keys = WarmKeys
	}

	start := time.Now()
	for _, key := range keys {
		if _, err := m.Get(ctx, key); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInitializationFailed, err)
		}
	}
	m.ready.Store(true)

	log.Info().
		Str("device", m.device).
		Int("variants", len(keys)).
		Dur("duration", time.Since(start)).
		Msg("model.Manager.Initialize: model initialization complete")
	return nil
}

// Get returns the cached variant for key, loading it on first use. Loads are
// serialized, so a variant is constructed at most once.
func (m *Manager) Get(ctx context.Context, key domain.ModelKey) (*domain.ModelHandle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if h, ok := m.models[key]; ok {
		return h, nil
	}

	log.Info().Str("device", m.device).Bool("ocr", key.OCR).Bool("table", key.Table).
		Msg("model.Manager.Get: loading model variant")

	h, err := m.loader.LoadModel(ctx, m.device, key)
	if err != nil {
		return nil, fmt.Errorf("loading model (ocr=%t, table=%t) on %s: %w", key.OCR, key.Table, m.device, err)
	}
	m.models[key] = h
	return h, nil
}

// Device returns the device the manager is bound to.
func (m *Manager) Device() string {
	return m.device
}

// Ready reports whether Initialize completed.
func (m *Manager) Ready() bool {
	return m.ready.Load()
}

// Loaded returns the loaded variants ordered by key.
func (m *Manager) Loaded() []domain.ModelHandle {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.ModelHandle, 0, len(m.models))
	for _, h := range m.models {
		out = append(out, *h)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Key, out[j].Key
		if a.OCR != b.OCR {
			return a.OCR
		}
		return a.Table && !b.Table
	})
	return out
}

// KeyForOptions picks the variant a request needs.
func KeyForOptions(opts domain.Options) domain.ModelKey {
	return domain.ModelKey{
		OCR:   opts.String(domain.OptParseMethod, domain.DefaultParseMethod) == domain.ParseMethodOCR,
		Table: opts.Bool(domain.OptTableEnable),
	}
}
