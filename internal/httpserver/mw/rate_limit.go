package mw

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/MrSnakeDoc/rouse/internal/utils"
)

type RateLimitConfig struct {
	PerMinute     int // sustained requests per client IP per minute (0 = passthrough)
	Burst         int
	MaxEntries    int
	SweepInterval time.Duration
	IdleTTL       time.Duration
	TrustProxy    bool // resolve IP from proxy headers when true
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type limiter struct {
	cfg       RateLimitConfig
	limit     rate.Limit
	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
}

func newLimiter(cfg RateLimitConfig) *limiter {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 15 * time.Minute
	}
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	return &limiter{
		cfg:       cfg,
		limit:     rate.Limit(float64(cfg.PerMinute) / 60.0),
		visitors:  make(map[string]*visitor, 1024),
		lastSweep: time.Now(),
	}
}

func (l *limiter) get(key string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cfg.MaxEntries > 0 && len(l.visitors) >= l.cfg.MaxEntries {
		l.sweepLocked(now)
	}
	v := l.visitors[key]
	if v == nil {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.cfg.Burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter
}

func (l *limiter) sweepLocked(now time.Time) {
	ttl := l.cfg.IdleTTL
	for ip, v := range l.visitors {
		if now.Sub(v.lastSeen) > ttl {
			delete(l.visitors, ip)
		}
	}
	l.lastSweep = now
}

func (l *limiter) sweepMaybe(now time.Time) {
	l.mu.Lock()
	if now.Sub(l.lastSweep) >= l.cfg.SweepInterval {
		l.sweepLocked(now)
	}
	l.mu.Unlock()
}

// RateLimit throttles per client IP with a token bucket per visitor.
// Browsers poll the waiting page while a host boots, so the limit must
// stay comfortably above one request per refresh cycle.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	if cfg.PerMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	l := newLimiter(cfg)
	limitStr := strconv.Itoa(cfg.PerMinute)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			now := time.Now()
			l.sweepMaybe(now)

			key := utils.ClientIP(r, cfg.TrustProxy)
			lim := l.get(key, now)

			res := lim.ReserveN(now, 1)
			delay := time.Duration(0)
			if res.OK() {
				delay = res.DelayFrom(now)
			}
			if !res.OK() || delay > 0 {
				if res.OK() {
					res.CancelAt(now)
				}
				retry := int(math.Ceil(delay.Seconds()))
				if retry < 1 {
					retry = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				w.Header().Set("X-RateLimit-Limit", limitStr)
				w.Header().Set("X-RateLimit-Remaining", "0")
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}

			remaining := int(lim.TokensAt(now))
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Limit", limitStr)
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			next.ServeHTTP(w, r)
		})
	}
}
