package service

import "time"

// SetRemove replaces the namespace removal used by Package.
func (p *Packager) SetRemove(fn func(path string) error) {
	p.remove = fn
}

// SetNow replaces the sweeper clock.
func (w *OutputSweeper) SetNow(now func() time.Time) {
	w.now = now
}
