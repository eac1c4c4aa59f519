package model

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ResolveDevice turns an accelerator type and device id into the device
// string passed to the engine.
//
// "auto" on a GPU resolves to cuda:0. When CUDA_VISIBLE_DEVICES is set the
// driver renumbers the visible devices from zero, so cuda:0 is still the
// first device this process is allowed to use.
func ResolveDevice(accelerator, id string) (string, error) {
	id = strings.TrimSpace(strings.ToLower(id))

	switch strings.ToLower(accelerator) {
	case "gpu", "cuda":
		switch {
		case id == "" || id == "auto":
			if visible := os.Getenv("CUDA_VISIBLE_DEVICES"); visible == "-1" {
				return "", fmt.Errorf("no GPU visible (CUDA_VISIBLE_DEVICES=%s)", visible)
			}
			return "cuda:0", nil
		case strings.HasPrefix(id, "cuda:"):
			if _, err := strconv.Atoi(strings.TrimPrefix(id, "cuda:")); err != nil {
				return "", fmt.Errorf("invalid device id: %s", id)
			}
			return id, nil
		default:
			n, err := strconv.Atoi(id)
			if err != nil || n < 0 {
				return "", fmt.Errorf("invalid device id: %s", id)
			}
			return fmt.Sprintf("cuda:%d", n), nil
		}
	case "cpu":
		return "cpu", nil
	case "mps":
		return "mps", nil
	default:
		return "", fmt.Errorf("unknown accelerator: %s", accelerator)
	}
}
