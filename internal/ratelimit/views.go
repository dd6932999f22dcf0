package ratelimit

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ViewLimiter admits one view count per (IP, property) pair within the
// configured window. Each key gets its own token bucket holding a single
// token that refills once per window, so a second call inside the window
// is rejected and a call after it succeeds again.
type ViewLimiter struct {
	window time.Duration
	mu     sync.Mutex
	store  map[string]*limiterEntry
}

type limiterEntry struct {
	limiter *rate.Limiter
	updated time.Time
}

func NewViewLimiter(window time.Duration) *ViewLimiter {
	return &ViewLimiter{
		window: window,
		store:  make(map[string]*limiterEntry),
	}
}

func (v *ViewLimiter) Allow(ip string, propertyID int64) bool {
	key := fmt.Sprintf("%s|%d", ip, propertyID)

	v.mu.Lock()
	defer v.mu.Unlock()

	entry, ok := v.store[key]
	if !ok {
		entry = &limiterEntry{
			limiter: rate.NewLimiter(rate.Every(v.window), 1),
		}
		v.store[key] = entry
	}
	entry.updated = time.Now()

	// An entry idle past the window has regenerated its token anyway,
	// so dropping it loses nothing.
	for k, e := range v.store {
		if time.Since(e.updated) > v.window {
			delete(v.store, k)
		}
	}

	return entry.limiter.Allow()
}
