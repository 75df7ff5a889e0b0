package ratelimit

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// HostLimiter enforces a per-hostname request rate across all adapters,
// so listing pages and detail pages aimed at the same site share one
// budget while different sites never block each other.
type HostLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

// NewHostLimiter creates a limiter allowing reqPerSec sustained requests
// with the given burst per hostname.
func NewHostLimiter(reqPerSec float64, burst int) *HostLimiter {
	return &HostLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(reqPerSec),
		burst:    burst,
	}
}

func (l *HostLimiter) limiterFor(host string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if lim, ok := l.limiters[host]; ok {
		return lim
	}
	lim := rate.NewLimiter(l.rate, l.burst)
	l.limiters[host] = lim
	return lim
}

// Wait blocks until the host's budget allows another request, or the
// context is cancelled.
func (l *HostLimiter) Wait(ctx context.Context, host string) error {
	if err := l.limiterFor(host).Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait for %s: %w", host, err)
	}
	return nil
}

// WaitURL is Wait keyed by the URL's hostname. Unparseable URLs share a
// single fallback bucket rather than bypassing the limiter.
func (l *HostLimiter) WaitURL(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return l.Wait(ctx, "_")
	}
	return l.Wait(ctx, u.Host)
}
