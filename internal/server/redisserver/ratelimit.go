package redisserver

import (
	"golang.org/x/time/rate"

	"github.com/yndnr/tinykv/pkg/cmap"
)

// rateLimiter keeps a token bucket per client IP. Each bucket refills at
// perSecond tokens per second and holds at most perSecond tokens.
type rateLimiter struct {
	perSecond int
	buckets   *cmap.Map[string, *rate.Limiter]
}

// newRateLimiter returns nil, which allows everything, unless perSecond is
// positive.
func newRateLimiter(perSecond int) *rateLimiter {
	if perSecond <= 0 {
		return nil
	}
	return &rateLimiter{perSecond: perSecond, buckets: cmap.New[string, *rate.Limiter]()}
}

func (rl *rateLimiter) allow(ip string) bool {
	if rl == nil {
		return true
	}
	b, _ := rl.buckets.GetOrCompute(ip, func() *rate.Limiter {
		return rate.NewLimiter(rate.Limit(rl.perSecond), rl.perSecond)
	})
	return b.Allow()
}
