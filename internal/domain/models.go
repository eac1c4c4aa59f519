package domain

import (
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Options is the free-form option object forwarded to the parsing engine.
type Options map[string]any

// Clone returns a shallow copy so callers never share a mutable map.
func (o Options) Clone() Options {
	out := make(Options, len(o))
	for k, v := range o {
		out[k] = v
	}
	return out
}

// Bool returns the option as a boolean. Missing or non-boolean values are false.
func (o Options) Bool(key string) bool {
	b, _ := o[key].(bool)
	return b
}

// String returns the option as a string, or def when missing or not a string.
func (o Options) String(key, def string) string {
	if s, ok := o[key].(string); ok && s != "" {
		return s
	}
	return def
}

// Envelope is a decoded, validated request. It is not modified after decoding.
type Envelope struct {
	RequestID uuid.UUID
	FileBytes []byte
	Filename  string
	Options   Options
}

// Namespace is the per-request output tree. Root is private to the request;
// the engine writes under Root/BaseName.
type Namespace struct {
	Root     string
	BaseName string
}

// Dir returns the directory the engine populates.
func (n Namespace) Dir() string {
	return filepath.Join(n.Root, n.BaseName)
}

// ModelKey identifies one cached model variant.
type ModelKey struct {
	OCR   bool `json:"ocr"`
	Table bool `json:"table"`
}

// ModelHandle is a loaded model variant bound to a device.
type ModelHandle struct {
	ID       string    `json:"id"`
	Key      ModelKey  `json:"key"`
	Device   string    `json:"device"`
	LoadedAt time.Time `json:"loaded_at"`
}

// Archive is the packaged output of one request.
type Archive struct {
	Data    []byte
	Entries []string
}

// ParseRecord is the journal entry for one request.
type ParseRecord struct {
	ID           uuid.UUID   `db:"id" json:"id"`
	OriginalName string      `db:"original_name" json:"original_name"`
	BaseName     string      `db:"base_name" json:"base_name"`
	Status       ParseStatus `db:"status" json:"status"`
	ErrorCode    string      `db:"error_code" json:"error_code,omitempty"`
	ErrorMessage string      `db:"error_message" json:"error_message,omitempty"`
	FileSize     int64       `db:"file_size" json:"file_size"`
	ArchiveSize  int64       `db:"archive_size" json:"archive_size"`
	EntryCount   int         `db:"entry_count" json:"entry_count"`
	ArchiveKey   string      `db:"archive_key" json:"archive_key,omitempty"`
	Device       string      `db:"device" json:"device"`
	DurationMS   int64       `db:"duration_ms" json:"duration_ms"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
}
