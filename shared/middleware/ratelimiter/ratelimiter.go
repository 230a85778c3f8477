package ratelimiter

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// UserRateLimiter keeps one token bucket per identity (IP, user id, ...).
// Idle buckets are evicted lazily once they have been unused for
// expirationTime.
type UserRateLimiter struct {
	mu             sync.Mutex
	limiters       map[string]*entry
	rate           rate.Limit
	burst          int
	expirationTime time.Duration
	lastSweep      time.Time
	now            func() time.Time
}

// New creates a limiter refilling ratePerSec tokens per second up to burst.
func New(ratePerSec float64, burst int, expirationTime time.Duration) *UserRateLimiter {
	return &UserRateLimiter{
		limiters:       make(map[string]*entry),
		rate:           rate.Limit(ratePerSec),
		burst:          burst,
		expirationTime: expirationTime,
		now:            time.Now,
	}
}

// Allow reports whether one more request from identity fits in its bucket.
func (u *UserRateLimiter) Allow(identity string) bool {
	u.mu.Lock()
	now := u.now()
	u.sweep(now)
	e, ok := u.limiters[identity]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(u.rate, u.burst)}
		u.limiters[identity] = e
	}
	e.lastSeen = now
	u.mu.Unlock()

	return e.limiter.AllowN(now, 1)
}

// sweep drops idle buckets at most once per expiration period. Caller holds mu.
func (u *UserRateLimiter) sweep(now time.Time) {
	if now.Sub(u.lastSweep) < u.expirationTime {
		return
	}
	for id, e := range u.limiters {
		if now.Sub(e.lastSeen) >= u.expirationTime {
			delete(u.limiters, id)
		}
	}
	u.lastSweep = now
}

// Len is the number of tracked identities.
func (u *UserRateLimiter) Len() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.limiters)
}

func OnceInSecond() *UserRateLimiter { return New(1, 1, time.Hour) }
func Rps10() *UserRateLimiter        { return New(10, 10, time.Hour) }
func Rps100() *UserRateLimiter       { return New(100, 100, time.Hour) }
