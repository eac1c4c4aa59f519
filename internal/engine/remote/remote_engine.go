package remote

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"docparse/internal/config"
	"docparse/internal/domain"
	"docparse/internal/engine"
	"docparse/internal/port"
)

const (
	providerName = "remote"

	modelsPath  = "/v1/models"
	parsePath   = "/v1/parse"
	releasePath = "/v1/device/release"

	maxResponseBytes = 1 << 20
	maxErrorLen      = 1024
)

// Engine implements port.ParseEngine against a GPU sidecar over HTTP. The
// sidecar shares the output root with this process and writes artifacts there.
type Engine struct {
	endpoint string
	token    string
	client   *http.Client
}

// NewEngine creates a remote engine from the engine config.
func NewEngine(cfg *config.EngineConfig) *Engine {
	return NewEngineWithClient(cfg, &http.Client{Timeout: cfg.RequestTimeout})
}

// NewEngineWithClient creates a remote engine that uses client for every call.
func NewEngineWithClient(cfg *config.EngineConfig, client *http.Client) *Engine {
	return &Engine{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		token:    cfg.Token,
		client:   client,
	}
}

var _ port.ParseEngine = (*Engine)(nil)

type loadRequest struct {
	Device string `json:"device"`
	OCR    bool   `json:"ocr"`
	Table  bool   `json:"table"`
}

type loadResponse struct {
	ID string `json:"id"`
}

type parseRequest struct {
	OutputRoot string         `json:"output_root"`
	BaseName   string         `json:"base_name"`
	FileBase64 string         `json:"file_base64"`
	AuxInputs  []string       `json:"aux_inputs"`
	Options    domain.Options `json:"options"`
	Device     string         `json:"device"`
	ModelID    string         `json:"model_id,omitempty"`
}

type releaseRequest struct {
	Device string `json:"device"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

func (e *Engine) LoadModel(ctx context.Context, device string, key domain.ModelKey) (*domain.ModelHandle, error) {
	var out loadResponse
	if err := e.post(ctx, modelsPath, loadRequest{Device: device, OCR: key.OCR, Table: key.Table}, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, engine.NewError(providerName, 0, errors.New("model load returned no id"))
	}
	return &domain.ModelHandle{
		ID:       out.ID,
		Key:      key,
		Device:   device,
		LoadedAt: time.Now().UTC(),
	}, nil
}

func (e *Engine) Parse(ctx context.Context, input port.ParseInput) error {
	aux := input.AuxInputs
	if aux == nil {
		aux = []string{}
	}
	options := input.Options
	if options == nil {
		options = domain.Options{}
	}
	return e.post(ctx, parsePath, parseRequest{
		OutputRoot: input.OutputRoot,
		BaseName:   input.BaseName,
		FileBase64: base64.StdEncoding.EncodeToString(input.FileBytes),
		AuxInputs:  aux,
		Options:    options,
		Device:     input.Device,
		ModelID:    input.ModelID,
	}, nil)
}

func (e *Engine) ReleaseDevice(ctx context.Context, device string) error {
	return e.post(ctx, releasePath, releaseRequest{Device: device}, nil)
}

func (e *Engine) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return engine.NewError(providerName, 0, fmt.Errorf("calling %s: %w", path, err))
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return engine.NewError(providerName, resp.StatusCode, fmt.Errorf("reading response: %w", err))
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return engine.NewError(providerName, resp.StatusCode, errors.New(errorMessage(respBody)))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return engine.NewError(providerName, resp.StatusCode, fmt.Errorf("decoding response: %w", err))
		}
	}
	return nil
}

func errorMessage(body []byte) string {
	var parsed errorResponse
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Error != "" {
			return parsed.Error
		}
		if parsed.Detail != "" {
			return parsed.Detail
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorLen {
		msg = msg[:maxErrorLen]
	}
	if msg == "" {
		msg = "empty response"
	}
	return msg
}
