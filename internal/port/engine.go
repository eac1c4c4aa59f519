package port

import (
	"context"

	"docparse/internal/domain"
)

// ParseInput carries everything the engine needs for one document.
type ParseInput struct {
	OutputRoot string
	BaseName   string
	FileBytes  []byte
	// AuxInputs is the engine's auxiliary model input list. Requests always send it empty.
	AuxInputs []string
	Options   domain.Options
	Device    string
	ModelID   string
}

// ModelLoader constructs model variants on a given device.
type ModelLoader interface {
	LoadModel(ctx context.Context, device string, key domain.ModelKey) (*domain.ModelHandle, error)
}

// DeviceMemory releases accelerator memory held for a device.
type DeviceMemory interface {
	ReleaseDevice(ctx context.Context, device string) error
}

// ParseEngine abstracts the external document parsing engine. Parse writes
// its artifacts under OutputRoot/BaseName and returns once they are complete.
type ParseEngine interface {
	ModelLoader
	DeviceMemory
	Parse(ctx context.Context, input ParseInput) error
}
