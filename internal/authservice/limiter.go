package authservice

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/sushihentaime/portfolio/internal/common"
)

// NewLoginLimiter allows perMinute attempts per address, refilled evenly. Zero or less disables it.
func NewLoginLimiter(perMinute int) *LoginLimiter {
	l := &LoginLimiter{
		limiters: common.NewCache(10*time.Minute, 20*time.Minute),
		limit:    rate.Inf,
		burst:    1,
	}
	if perMinute > 0 {
		l.limit = rate.Every(time.Minute / time.Duration(perMinute))
		l.burst = perMinute
	}
	return l
}

// Allow records an attempt from ip and reports whether it is within the limit.
func (l *LoginLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := common.CacheKeyLoginAttempts(ip)

	limiter, ok := l.limiters.Get(key)
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
	}
	// re-set to push the idle expiry forward
	l.limiters.Set(key, limiter)

	return limiter.(*rate.Limiter).Allow()
}
