package port

import "context"

// ResourceReclaimer frees per-request device and host memory. It runs once
// at the end of every request, whatever the outcome.
type ResourceReclaimer interface {
	Reclaim(ctx context.Context)
}
