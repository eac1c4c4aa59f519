// Package reclaim frees accelerator and host memory after each request.
package reclaim

import (
	"context"
	"runtime"
	"runtime/debug"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"docparse/internal/port"
)

// Reclaimer releases the device's cached memory and runs a host GC pass.
type Reclaimer struct {
	device string
	memory port.DeviceMemory
	count  atomic.Uint64
}

// NewReclaimer creates a Reclaimer for device.
func NewReclaimer(memory port.DeviceMemory, device string) *Reclaimer {
	return &Reclaimer{device: device, memory: memory}
}

// Reclaim never fails: a release error is logged and host GC still runs.
func (r *Reclaimer) Reclaim(ctx context.Context) {
	r.count.Add(1)

	// The request may already be canceled; release must still reach the engine.
	if err := r.memory.ReleaseDevice(context.WithoutCancel(ctx), r.device); err != nil {
		log.Warn().Err(err).Str("device", r.device).Msg("reclaim.Reclaimer: releasing device memory failed")
	}

	runtime.GC()
	debug.FreeOSMemory()
}
