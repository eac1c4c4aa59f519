package service

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"docparse/internal/domain"
)

//go:embed options_schema.json
var optionsSchema []byte

// UploadInput is the raw multipart request.
type UploadInput struct {
	RequestID uuid.UUID
	File      io.Reader
	Filename  string
	Kwargs    string
}

// Decoder validates uploads and normalizes their options.
type Decoder struct {
	schema      *jsonschema.Schema
	strictFlags bool
}

// NewDecoder compiles the options schema.
func NewDecoder(strictFlags bool) (*Decoder, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("options.json", bytes.NewReader(optionsSchema)); err != nil {
		return nil, fmt.Errorf("add options schema: %w", err)
	}
	schema, err := compiler.Compile("options.json")
	if err != nil {
		return nil, fmt.Errorf("compile options schema: %w", err)
	}
	return &Decoder{schema: schema, strictFlags: strictFlags}, nil
}

// Decode reads the upload, checks it is a PDF by content and decodes the
// options. It touches neither the filesystem nor the model.
func (d *Decoder) Decode(input UploadInput) (*domain.Envelope, error) {
	if input.File == nil {
		return nil, domain.ErrMissingFile
	}

	data, err := io.ReadAll(input.File)
	if err != nil {
		// The HTTP handler rejects oversize bodies while parsing the form;
		// this covers callers that hand in a size-limited reader directly.
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, domain.ErrFileTooLarge
		}
		return nil, fmt.Errorf("reading upload: %w", err)
	}

	if !IsPDF(data) {
		return nil, domain.ErrInvalidFileType
	}

	opts, err := d.DecodeOptions(input.Kwargs)
	if err != nil {
		return nil, err
	}

	id := input.RequestID
	if id == uuid.Nil {
		id = uuid.New()
	}
	return &domain.Envelope{
		RequestID: id,
		FileBytes: data,
		Filename:  input.Filename,
		Options:   opts,
	}, nil
}

// DecodeOptions parses the kwargs JSON object, validates it and coerces the
// output flags. An empty string yields empty options.
func (d *Decoder) DecodeOptions(raw string) (domain.Options, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.Options{}, nil
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: kwargs is not valid JSON: %v", domain.ErrInvalidOptions, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: kwargs has trailing data", domain.ErrInvalidOptions)
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: kwargs must be a JSON object", domain.ErrInvalidOptions)
	}
	if err := d.schema.Validate(obj); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidOptions, err)
	}

	opts := domain.Options(obj)
	if err := CoerceFlags(opts, d.strictFlags); err != nil {
		return nil, err
	}
	if err := CoerceSwitches(opts, d.strictFlags); err != nil {
		return nil, err
	}
	return opts, nil
}

// IsPDF sniffs the content signature. Filenames and declared content types
// are never consulted.
func IsPDF(data []byte) bool {
	return mimetype.Detect(data).Is(domain.ContentTypePDF)
}
