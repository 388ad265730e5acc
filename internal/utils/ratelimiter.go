package utils

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter ホスト別にレート制限を行う
type RateLimiter struct {
	rps        rate.Limit
	burst      int
	overrides  map[string]rate.Limit
	hostLimits map[string]*rate.Limiter
	mu         sync.Mutex
}

// NewRateLimiter 新しいレートリミッターを作成（rps はホストごとの既定値）
func NewRateLimiter(rps float64) *RateLimiter {
	if rps <= 0 {
		rps = 3
	}
	return &RateLimiter{
		rps:        rate.Limit(rps),
		burst:      1,
		overrides:  make(map[string]rate.Limit),
		hostLimits: make(map[string]*rate.Limiter),
	}
}

// SetHostRate 特定ホストのレートを上書き（Nominatim は 1 req/s など）
func (rl *RateLimiter) SetHostRate(host string, rps float64) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.overrides[host] = rate.Limit(rps)
	if l, ok := rl.hostLimits[host]; ok {
		l.SetLimit(rate.Limit(rps))
	}
}

// Wait ホストの枠が空くまで待つ
func (rl *RateLimiter) Wait(ctx context.Context, host string) error {
	return rl.limiter(host).Wait(ctx)
}

// Do 枠を確保してから fn を実行
func (rl *RateLimiter) Do(ctx context.Context, host string, fn func() error) error {
	if rl == nil {
		return fn()
	}
	if err := rl.Wait(ctx, host); err != nil {
		return err
	}
	return fn()
}

func (rl *RateLimiter) limiter(host string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if l, ok := rl.hostLimits[host]; ok {
		return l
	}
	limit := rl.rps
	if o, ok := rl.overrides[host]; ok {
		limit = o
	}
	l := rate.NewLimiter(limit, rl.burst)
	rl.hostLimits[host] = l
	return l
}
