package engine

import (
	"fmt"
	"sync"

	"docparse/internal/config"
	"docparse/internal/port"
)

// ProviderFactory creates a ParseEngine from the engine config.
type ProviderFactory func(cfg *config.EngineConfig) (port.ParseEngine, error)

var (
	mu sync.RWMutex
	// registry of engine providers, populated by the server entry point
	// or explicitly via RegisterProvider.
	providers = map[string]ProviderFactory{}
)

// RegisterProvider registers an engine provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	mu.Lock()
	defer mu.Unlock()
	providers[name] = factory
}

// NewEngine creates a ParseEngine using the factory registered for cfg.Provider.
func NewEngine(cfg *config.EngineConfig) (port.ParseEngine, error) {
	mu.RLock()
	factory, ok := providers[cfg.Provider]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown engine provider: %s", cfg.Provider)
	}
	return factory(cfg)
}
