// internal/ratelimit/limiter.go
package ratelimit

import (
	"context"
	"sync"

	urlutil "github.com/apartsfinder/afind/internal/utils/url"
	"golang.org/x/time/rate"
)

// Limiter admits page navigations.
//
// Navigations to the same host share a token bucket so repeated sessions
// against one listing site are spaced out. Local snapshots are never limited.
type Limiter interface {
	// Wait blocks until a navigation to target may proceed or ctx is done
	Wait(ctx context.Context, target string) error
}

// HostLimiter keeps one token bucket per host
type HostLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	perHost  rate.Limit
	burst    int
}

// NewHostLimiter creates a limiter allowing navigationsPerSecond per host
func NewHostLimiter(navigationsPerSecond float64, burst int) *HostLimiter {
	if navigationsPerSecond <= 0 {
		navigationsPerSecond = 0.5
	}
	if burst <= 0 {
		burst = 1
	}

	return &HostLimiter{
		limiters: make(map[string]*rate.Limiter),
		perHost:  rate.Limit(navigationsPerSecond),
		burst:    burst,
	}
}

// Wait blocks until a navigation to target can proceed
func (hl *HostLimiter) Wait(ctx context.Context, target string) error {
	host := hostOf(target)
	if host == "" {
		return nil
	}
	return hl.get(host).Wait(ctx)
}

func (hl *HostLimiter) get(host string) *rate.Limiter {
	hl.mu.RLock()
	limiter, exists := hl.limiters[host]
	hl.mu.RUnlock()

	if exists {
		return limiter
	}

	hl.mu.Lock()
	defer hl.mu.Unlock()

	if limiter, exists := hl.limiters[host]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(hl.perHost, hl.burst)
	hl.limiters[host] = limiter
	return limiter
}

func hostOf(target string) string {
	if !urlutil.IsRemote(target) {
		return ""
	}
	return urlutil.Hostname(target)
}

// Unlimited admits every navigation immediately
type Unlimited struct{}

func (Unlimited) Wait(ctx context.Context, target string) error { return ctx.Err() }
