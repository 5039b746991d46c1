package chi

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const limiterIdleTTL = 10 * time.Minute

type userLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// UserLimiter hands out one token bucket per user key.
// A zero rate disables limiting.
type UserLimiter struct {
	mu      sync.Mutex
	perSec  rate.Limit
	burst   int
	users   map[string]*userLimiter
	now     func() time.Time
	swept   time.Time
	idleTTL time.Duration
}

// NewUserLimiter creates a limiter allowing requestsPerMinute per key with the given burst.
func NewUserLimiter(requestsPerMinute, burst int) *UserLimiter {
	if burst <= 0 {
		burst = requestsPerMinute
	}
	return &UserLimiter{
		perSec:  rate.Limit(float64(requestsPerMinute) / 60),
		burst:   burst,
		users:   make(map[string]*userLimiter),
		now:     time.Now,
		idleTTL: limiterIdleTTL,
	}
}

// Enabled reports whether the limiter restricts anything.
func (l *UserLimiter) Enabled() bool {
	return l != nil && l.perSec > 0
}

// Allow consumes one token for key.
func (l *UserLimiter) Allow(key string) bool {
	if !l.Enabled() {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	u, ok := l.users[key]
	if !ok {
		u = &userLimiter{limiter: rate.NewLimiter(l.perSec, l.burst)}
		l.users[key] = u
	}
	u.lastSeen = now
	return u.limiter.AllowN(now, 1)
}

// sweep drops buckets idle for longer than idleTTL. Caller holds mu.
func (l *UserLimiter) sweep(now time.Time) {
	if now.Sub(l.swept) < l.idleTTL {
		return
	}
	l.swept = now
	for k, u := range l.users {
		if now.Sub(u.lastSeen) > l.idleTTL {
			delete(l.users, k)
		}
	}
}

// tracked returns the number of live buckets.
func (l *UserLimiter) tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.users)
}
