package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"docparse/internal/config"
	"docparse/internal/domain"
	"docparse/internal/engine"
	"docparse/internal/port"
)

const providerName = "command"

// Engine implements port.ParseEngine by running an engine shim as a
// subprocess. Each parse runs in its own process, so accelerator memory is
// returned to the driver when the process exits.
type Engine struct {
	binary string
	runner Runner
}

// NewEngine creates a command engine that runs cfg.Binary.
func NewEngine(cfg *config.EngineConfig) *Engine {
	return NewEngineWithRunner(cfg, ExecRunner{})
}

// NewEngineWithRunner creates a command engine with a custom Runner.
func NewEngineWithRunner(cfg *config.EngineConfig, runner Runner) *Engine {
	return &Engine{binary: cfg.Binary, runner: runner}
}

var _ port.ParseEngine = (*Engine)(nil)

// LoadModel runs the shim's warmup command, which downloads and verifies the
// weights for the variant. The shim prints the model id on stdout.
func (e *Engine) LoadModel(ctx context.Context, device string, key domain.ModelKey) (*domain.ModelHandle, error) {
	stdout, stderr, err := e.runner.Run(ctx, e.binary,
		"warmup",
		"--device", device,
		"--ocr", strconv.FormatBool(key.OCR),
		"--table", strconv.FormatBool(key.Table),
	)
	if err != nil {
		return nil, commandError(err, stderr)
	}

	id := strings.TrimSpace(string(stdout))
	if id == "" {
		id = fmt.Sprintf("%s/ocr=%t,table=%t", device, key.OCR, key.Table)
	}
	return &domain.ModelHandle{
		ID:       id,
		Key:      key,
		Device:   device,
		LoadedAt: time.Now().UTC(),
	}, nil
}

func (e *Engine) Parse(ctx context.Context, input port.ParseInput) error {
	options := input.Options
	if options == nil {
		options = domain.Options{}
	}
	optionsJSON, err := json.Marshal(options)
	if err != nil {
		return fmt.Errorf("marshaling options: %w", err)
	}

	tmpDir, err := os.MkdirTemp("", "docparse-input-*")
	if err != nil {
		return fmt.Errorf("creating input dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	inputPath := filepath.Join(tmpDir, input.BaseName+".pdf")
	if err := os.WriteFile(inputPath, input.FileBytes, 0o600); err != nil {
		return fmt.Errorf("writing input file: %w", err)
	}

	args := []string{
		"parse",
		"--input", inputPath,
		"--output-root", input.OutputRoot,
		"--base-name", input.BaseName,
		"--device", input.Device,
		"--options", string(optionsJSON),
	}
	if input.ModelID != "" {
		args = append(args, "--model-id", input.ModelID)
	}
	for _, aux := range input.AuxInputs {
		args = append(args, "--aux-input", aux)
	}

	_, stderr, err := e.runner.Run(ctx, e.binary, args...)
	if err != nil {
		return commandError(err, stderr)
	}
	return nil
}

// ReleaseDevice is a no-op: the engine process has already exited.
func (e *Engine) ReleaseDevice(_ context.Context, _ string) error {
	return nil
}

func commandError(err error, stderr []byte) error {
	status := 0
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		status = exitErr.ExitCode()
	}
	msg := lastLine(string(stderr))
	if msg == "" {
		return engine.NewError(providerName, status, err)
	}
	return engine.NewError(providerName, status, errors.New(msg))
}

// lastLine returns the final non-empty stderr line, which is where the shim
// prints the exception message.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return truncate(line, 1024)
		}
	}
	return ""
}
