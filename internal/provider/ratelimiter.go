package provider

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a token bucket shared by providers that hit the same host.
// A nil *RateLimiter never blocks.
type RateLimiter struct {
	mu       sync.Mutex
	tokens   int
	capacity int
	every    time.Duration
	last     time.Time
	now      func() time.Time
}

// NewRateLimiter allows burst calls up front and one more per interval after that.
// A non-positive interval refills immediately, so Wait never blocks.
func NewRateLimiter(burst int, interval time.Duration) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		tokens:   burst,
		capacity: burst,
		every:    interval,
		last:     time.Now(),
		now:      time.Now,
	}
}

// Wait takes a token, sleeping until one is refilled or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if r == nil {
		return nil
	}
	for {
		delay, ok := r.take()
		if ok {
			return nil
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// take returns true when a token was consumed, otherwise how long until the next refill.
func (r *RateLimiter) take() (time.Duration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.every <= 0 {
		return 0, true
	}
	now := r.now()
	if gained := int(now.Sub(r.last) / r.every); gained > 0 {
		r.tokens = min(r.capacity, r.tokens+gained)
		r.last = r.last.Add(time.Duration(gained) * r.every)
	}
	if r.tokens > 0 {
		r.tokens--
		return 0, true
	}
	return r.every - now.Sub(r.last), false
}
