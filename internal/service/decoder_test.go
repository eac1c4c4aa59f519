package service_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docparse/internal/domain"
	"docparse/internal/service"
)

// pdfContent returns minimal bytes carrying a PDF signature.
func pdfContent() []byte {
	return []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")
}

// pngContent returns bytes carrying a PNG signature.
func pngContent() []byte {
	header := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	return append(header, bytes.Repeat([]byte{0x00}, 100)...)
}

func newDecoder(t *testing.T, strict bool) *service.Decoder {
	t.Helper()
	d, err := service.NewDecoder(strict)
	require.NoError(t, err)
	return d
}

func TestDecoder_Decode_Success(t *testing.T) {
	d := newDecoder(t, true)
	id := uuid.New()

	env, err := d.Decode(service.UploadInput{
		RequestID: id,
		File:      bytes.NewReader(pdfContent()),
		Filename:  "report.pdf",
		Kwargs:    `{"f_dump_md": true, "lang": "en"}`,
	})

	require.NoError(t, err)
	assert.Equal(t, id, env.RequestID)
	assert.Equal(t, pdfContent(), env.FileBytes)
	assert.Equal(t, "report.pdf", env.Filename)
	assert.Equal(t, true, env.Options[domain.OptDumpMarkdown])
	assert.Equal(t, "en", env.Options["lang"])
}

func TestDecoder_Decode_GeneratesRequestID(t *testing.T) {
	d := newDecoder(t, true)

	env, err := d.Decode(service.UploadInput{File: bytes.NewReader(pdfContent()), Filename: "a.pdf"})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, env.RequestID)
	assert.Empty(t, env.Options)
}

func TestDecoder_Decode_RejectsNonPDF(t *testing.T) {
	d := newDecoder(t, true)

	// The extension is ignored: only content decides.
	env, err := d.Decode(service.UploadInput{
		File:     bytes.NewReader(pngContent()),
		Filename: "scan.pdf",
		Kwargs:   "{}",
	})

	assert.Nil(t, env)
	assert.ErrorIs(t, err, domain.ErrInvalidFileType)
	assert.Equal(t, "invalid file type (must be PDF after conversion)", err.Error())
}

func TestDecoder_Decode_AcceptsPDFWithOtherExtension(t *testing.T) {
	d := newDecoder(t, true)

	env, err := d.Decode(service.UploadInput{File: bytes.NewReader(pdfContent()), Filename: "notes.txt"})

	require.NoError(t, err)
	assert.Equal(t, "notes.txt", env.Filename)
}

func TestDecoder_Decode_EmptyFile(t *testing.T) {
	d := newDecoder(t, true)

	_, err := d.Decode(service.UploadInput{File: bytes.NewReader(nil), Filename: "empty.pdf"})

	assert.ErrorIs(t, err, domain.ErrInvalidFileType)
}

func TestDecoder_Decode_MissingFile(t *testing.T) {
	d := newDecoder(t, true)

	_, err := d.Decode(service.UploadInput{Filename: "a.pdf"})

	assert.ErrorIs(t, err, domain.ErrMissingFile)
}

func TestDecoder_Decode_TooLarge(t *testing.T) {
	d := newDecoder(t, true)
	body := http.MaxBytesReader(httptest.NewRecorder(), io.NopCloser(bytes.NewReader(pdfContent())), 8)

	_, err := d.Decode(service.UploadInput{File: body, Filename: "a.pdf"})

	assert.ErrorIs(t, err, domain.ErrFileTooLarge)
}

func TestDecoder_Decode_ReadError(t *testing.T) {
	d := newDecoder(t, true)

	_, err := d.Decode(service.UploadInput{File: failingReader{}, Filename: "a.pdf"})

	require.Error(t, err)
	assert.Equal(t, "INTERNAL_ERROR", domain.ErrorCode(err))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestDecoder_DecodeOptions_Empty(t *testing.T) {
	d := newDecoder(t, true)

	for _, raw := range []string{"", "   ", "{}"} {
		opts, err := d.DecodeOptions(raw)
		require.NoError(t, err, raw)
		assert.Empty(t, opts, raw)
	}
}

func TestDecoder_DecodeOptions_InvalidJSON(t *testing.T) {
	d := newDecoder(t, true)

	tests := []struct {
		name string
		raw  string
	}{
		{"malformed", `{"f_dump_md": tru`},
		{"not an object", `[1, 2]`},
		{"scalar", `"text"`},
		{"trailing data", `{} {}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := d.DecodeOptions(tt.raw)
			assert.Nil(t, opts)
			assert.ErrorIs(t, err, domain.ErrInvalidOptions)
		})
	}
}

func TestDecoder_DecodeOptions_SchemaViolations(t *testing.T) {
	d := newDecoder(t, true)

	tests := []struct {
		name string
		raw  string
	}{
		{"unknown parse method", `{"parse_method": "magic"}`},
		{"negative start page", `{"start_page_id": -1}`},
		{"fractional start page", `{"start_page_id": 1.5}`},
		{"table_enable not flag-like", `{"table_enable": [true]}`},
		{"formula_enable not flag-like", `{"formula_enable": {"on": true}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.DecodeOptions(tt.raw)
			assert.ErrorIs(t, err, domain.ErrInvalidOptions)
		})
	}
}

func TestDecoder_DecodeOptions_SwitchesAreFlagLike(t *testing.T) {
	d := newDecoder(t, true)

	opts, err := d.DecodeOptions(`{"table_enable": 1, "formula_enable": "off"}`)
	require.NoError(t, err)
	assert.Equal(t, true, opts[domain.OptTableEnable])
	assert.Equal(t, false, opts[domain.OptFormulaEnable])

	opts, err = d.DecodeOptions(`{"table_enable": null}`)
	require.NoError(t, err)
	assert.Contains(t, opts, domain.OptTableEnable)
	assert.Nil(t, opts[domain.OptTableEnable], "null keeps the engine default")

	_, err = d.DecodeOptions(`{"table_enable": "sometimes"}`)
	assert.ErrorIs(t, err, domain.ErrInvalidOptions)

	legacy := newDecoder(t, false)
	opts, err = legacy.DecodeOptions(`{"table_enable": "0"}`)
	require.NoError(t, err)
	assert.Equal(t, true, opts[domain.OptTableEnable])
}

func TestDecoder_DecodeOptions_PassesThroughUnknownKeys(t *testing.T) {
	d := newDecoder(t, true)

	opts, err := d.DecodeOptions(`{"parse_method": "ocr", "custom": {"nested": [1, 2]}, "start_page_id": 2}`)

	require.NoError(t, err)
	assert.Equal(t, "ocr", opts["parse_method"])
	assert.Equal(t, map[string]any{"nested": []any{json.Number("1"), json.Number("2")}}, opts["custom"])
	assert.Equal(t, json.Number("2"), opts["start_page_id"])
}

func TestDecoder_DecodeOptions_FlagsBecomeBooleans(t *testing.T) {
	d := newDecoder(t, true)

	opts, err := d.DecodeOptions(`{"f_dump_md": 1, "f_draw_layout_bbox": "true", "f_dump_orig_pdf": null, "f_draw_span_bbox": false}`)

	require.NoError(t, err)
	assert.Equal(t, true, opts[domain.OptDumpMarkdown])
	assert.Equal(t, true, opts[domain.OptDrawLayoutBBox])
	assert.Equal(t, false, opts[domain.OptDumpOrigPDF])
	assert.Equal(t, false, opts[domain.OptDrawSpanBBox])
}

func TestDecoder_DecodeOptions_StringZeroStrict(t *testing.T) {
	d := newDecoder(t, true)

	opts, err := d.DecodeOptions(`{"f_dump_md": "0", "f_draw_span_bbox": "no"}`)

	require.NoError(t, err)
	assert.Equal(t, false, opts[domain.OptDumpMarkdown])
	assert.Equal(t, false, opts[domain.OptDrawSpanBBox])
}

func TestDecoder_DecodeOptions_StringZeroLegacy(t *testing.T) {
	d := newDecoder(t, false)

	opts, err := d.DecodeOptions(`{"f_dump_md": "0", "f_draw_span_bbox": "", "f_dump_orig_pdf": 0}`)

	require.NoError(t, err)
	assert.Equal(t, true, opts[domain.OptDumpMarkdown])
	assert.Equal(t, false, opts[domain.OptDrawSpanBBox])
	assert.Equal(t, false, opts[domain.OptDumpOrigPDF])
}

func TestDecoder_DecodeOptions_UnrecognizedFlagStrict(t *testing.T) {
	d := newDecoder(t, true)

	_, err := d.DecodeOptions(`{"f_dump_md": "maybe"}`)

	require.ErrorIs(t, err, domain.ErrInvalidOptions)
	assert.Contains(t, err.Error(), "f_dump_md")
}

func TestCoerceFlags_LeavesOtherKeys(t *testing.T) {
	opts := domain.Options{"f_dump_md": "yes", "lang": "0"}

	require.NoError(t, service.CoerceFlags(opts, true))

	assert.Equal(t, true, opts["f_dump_md"])
	assert.Equal(t, "0", opts["lang"])
}

func TestIsPDF(t *testing.T) {
	assert.True(t, service.IsPDF(pdfContent()))
	assert.False(t, service.IsPDF(pngContent()))
	assert.False(t, service.IsPDF([]byte("plain text")))
	assert.False(t, service.IsPDF(nil))
}
