package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type sourceLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a token-bucket limiter keyed by the TCP peer address. It runs
// before signature verification, so caller-supplied headers never pick the
// bucket. Idle entries are evicted.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*sourceLimiter
	r        rate.Limit
	burst    int
	idle     time.Duration
	stop     chan struct{}
	once     sync.Once
}

// NewRateLimiter allows r requests/second per source with the given burst.
// Call Stop to end the eviction loop.
func NewRateLimiter(r rate.Limit, burst int) *RateLimiter {
	rl := &RateLimiter{
		limiters: make(map[string]*sourceLimiter),
		r:        r,
		burst:    burst,
		idle:     10 * time.Minute,
		stop:     make(chan struct{}),
	}
	go rl.evictLoop(5 * time.Minute)
	return rl
}

func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) get(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if v, ok := rl.limiters[key]; ok {
		v.lastSeen = time.Now()
		return v.limiter
	}
	l := rate.NewLimiter(rl.r, rl.burst)
	rl.limiters[key] = &sourceLimiter{limiter: l, lastSeen: time.Now()}
	return l
}

func (rl *RateLimiter) evictLoop(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case now := <-t.C:
			rl.evict(now)
		}
	}
}

func (rl *RateLimiter) evict(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for k, v := range rl.limiters {
		if now.Sub(v.lastSeen) > rl.idle {
			delete(rl.limiters, k)
		}
	}
}

// Limit rejects requests over the per-source rate with 429. SNS treats 429 as
// retryable and backs off.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.get(sourceKey(r)).Allow() {
			writeJSONError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func sourceKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
