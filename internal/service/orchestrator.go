package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"docparse/internal/domain"
	"docparse/internal/model"
	"docparse/internal/port"
)

// ModelProvider hands out loaded model variants for the bound device.
type ModelProvider interface {
	Get(ctx context.Context, key domain.ModelKey) (*domain.ModelHandle, error)
	Device() string
}

// Orchestrator drives the external engine for one request.
type Orchestrator struct {
	engine     port.ParseEngine
	models     ModelProvider
	outputRoot string
	timeout    time.Duration
}

// NewOrchestrator creates an Orchestrator writing under outputRoot. A zero
// timeout lets a parse run as long as the engine needs.
func NewOrchestrator(engine port.ParseEngine, models ModelProvider, outputRoot string, timeout time.Duration) *Orchestrator {
	return &Orchestrator{
		engine:     engine,
		models:     models,
		outputRoot: outputRoot,
		timeout:    timeout,
	}
}

// Namespace returns the request's private output tree. The request ID keeps
// uploads that share a filename apart; the base name is what the archive shows.
func (o *Orchestrator) Namespace(env *domain.Envelope) domain.Namespace {
	return domain.Namespace{
		Root:     filepath.Join(o.outputRoot, env.RequestID.String()),
		BaseName: BaseName(env.Filename),
	}
}

// Parse creates the namespace and runs the engine to completion. Engine
// failures are not retried.
func (o *Orchestrator) Parse(ctx context.Context, env *domain.Envelope, ns domain.Namespace) error {
	if err := os.MkdirAll(ns.Dir(), 0o755); err != nil {
		return fmt.Errorf("%w: creating output namespace: %v", domain.ErrParseFailed, err)
	}

	handle, err := o.models.Get(ctx, model.KeyForOptions(env.Options))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrParseFailed, err)
	}

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	start := time.Now()
	err = o.engine.Parse(ctx, port.ParseInput{
		OutputRoot: ns.Root,
		BaseName:   ns.BaseName,
		FileBytes:  env.FileBytes,
		AuxInputs:  []string{},
		Options:    env.Options.Clone(),
		Device:     o.models.Device(),
		ModelID:    handle.ID,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrParseFailed, err)
	}

	log.Debug().
		Str("request_id", env.RequestID.String()).
		Str("base_name", ns.BaseName).
		Str("model_id", handle.ID).
		Dur("duration", time.Since(start)).
		Msg("orchestrator.Parse: engine finished")
	return nil
}

// BaseName derives the namespace name from an uploaded filename: the last
// path element with its extension stripped. Leading dots never start an
// extension, so ".hidden" and "..hidden" keep their name.
func BaseName(filename string) string {
	name := filename
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	if ext := filepath.Ext(strings.TrimLeft(name, ".")); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		return domain.DefaultBaseName
	}
	return name
}
