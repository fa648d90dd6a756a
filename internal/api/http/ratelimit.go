package http

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"

	apperrors "github.com/spec-kit/storefront-api/pkg/util/errorutil"
)

// limiterIdleTTL is how long a client may stay quiet before its limiter is
// dropped. A limiter idle this long has refilled its whole burst, so
// evicting it changes nothing for the client.
const limiterIdleTTL = time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LoginLimiter throttles credential attempts per client IP.
type LoginLimiter struct {
	perMinute int
	limiters  map[string]*clientLimiter
	mu        sync.Mutex
	lastSweep time.Time
	now       func() time.Time
}

// NewLoginLimiter returns nil when perMinute is not positive, which disables throttling.
func NewLoginLimiter(perMinute int) *LoginLimiter {
	if perMinute <= 0 {
		return nil
	}
	return &LoginLimiter{
		perMinute: perMinute,
		limiters:  make(map[string]*clientLimiter),
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (l *LoginLimiter) getLimiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= limiterIdleTTL {
		l.sweep(now)
	}

	entry, exists := l.limiters[key]
	if !exists {
		entry = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(l.perMinute)/60, l.perMinute)}
		l.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// sweep drops limiters idle for at least limiterIdleTTL. Callers hold mu.
func (l *LoginLimiter) sweep(now time.Time) {
	for key, entry := range l.limiters {
		if now.Sub(entry.lastSeen) >= limiterIdleTTL {
			delete(l.limiters, key)
		}
	}
	l.lastSweep = now
}

// Handle rejects the request with 429 once the caller's burst is spent.
func (l *LoginLimiter) Handle(c *fiber.Ctx) error {
	if l == nil {
		return c.Next()
	}
	if !l.getLimiter(c.IP()).Allow() {
		return apperrors.NewTooManyRequests("too many login attempts, try again later")
	}
	return c.Next()
}
