package core

import "time"

// Defaults for the per-connection message quota.
const (
	DefaultRateLimitMax    = 10
	DefaultRateLimitWindow = 10 * time.Second
)

// RateLimiter caps how many messages a connection may send in a sliding
// window. Windows are compacted lazily when checked. Not safe for concurrent
// use; the hub owns it.
type RateLimiter struct {
	max     int
	window  time.Duration
	now     func() time.Time
	windows map[string][]time.Time
}

// NewRateLimiter allows max attempts per window for each connection.
func NewRateLimiter(max int, window time.Duration) *RateLimiter {
	if max <= 0 {
		max = DefaultRateLimitMax
	}
	if window <= 0 {
		window = DefaultRateLimitWindow
	}
	return &RateLimiter{
		max:     max,
		window:  window,
		now:     time.Now,
		windows: make(map[string][]time.Time),
	}
}

// Limited drops attempts that fell out of the window and reports whether the
// remaining ones already reach the quota. The compacted window is kept even
// if the caller does not record a new attempt.
func (r *RateLimiter) Limited(connID string) bool {
	stamps, ok := r.windows[connID]
	if !ok {
		return false
	}

	now := r.now()
	kept := stamps[:0]
	for _, ts := range stamps {
		if now.Sub(ts) < r.window {
			kept = append(kept, ts)
		}
	}
	r.windows[connID] = kept

	return len(kept) >= r.max
}

// Record adds an attempt at the current time.
func (r *RateLimiter) Record(connID string) {
	r.windows[connID] = append(r.windows[connID], r.now())
}

// Forget drops the window of a departed connection.
func (r *RateLimiter) Forget(connID string) {
	delete(r.windows, connID)
}
