package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docparse/internal/model"
)

func TestResolveDevice(t *testing.T) {
	t.Setenv("CUDA_VISIBLE_DEVICES", "")

	tests := []struct {
		accelerator string
		id          string
		want        string
	}{
		{"gpu", "auto", "cuda:0"},
		{"gpu", "", "cuda:0"},
		{"cuda", "2", "cuda:2"},
		{"GPU", "cuda:3", "cuda:3"},
		{"cpu", "auto", "cpu"},
		{"mps", "", "mps"},
	}

	for _, tt := range tests {
		t.Run(tt.accelerator+"/"+tt.id, func(t *testing.T) {
			got, err := model.ResolveDevice(tt.accelerator, tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveDevice_Invalid(t *testing.T) {
	tests := []struct {
		accelerator string
		id          string
	}{
		{"gpu", "first"},
		{"gpu", "-1"},
		{"gpu", "cuda:x"},
		{"tpu", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.accelerator+"/"+tt.id, func(t *testing.T) {
			_, err := model.ResolveDevice(tt.accelerator, tt.id)
			assert.Error(t, err)
		})
	}
}

func TestResolveDevice_NoVisibleGPU(t *testing.T) {
	t.Setenv("CUDA_VISIBLE_DEVICES", "-1")

	_, err := model.ResolveDevice("gpu", "auto")

	assert.Error(t, err)
}
