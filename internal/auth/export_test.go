package auth

import "time"

// SetNow replaces the clock used for issuing and validating tokens.
func (t *Tokens) SetNow(now func() time.Time) {
	t.now = now
}
