package middleware

import (
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/ndewijer/Investment-Planner-Backend/internal/api/response"
)

// limiterIdleTTL is how long a client may stay silent before its bucket is
// dropped. A dropped client starts again with a full burst.
const limiterIdleTTL = 10 * time.Minute

// RateLimiter hands out one token bucket per client address.
type RateLimiter struct {
	limiters  map[string]*clientLimiter
	mu        sync.RWMutex
	lastSweep time.Time

	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanoseconds
}

// NewRateLimiter creates a limiter allowing rps requests per second per
// client, with bursts of up to burst requests.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiters:  make(map[string]*clientLimiter),
		lastSweep: time.Now(),
		limit:     rate.Limit(rps),
		burst:     burst,
		idleTTL:   limiterIdleTTL,
		now:       time.Now,
	}
}

// getLimiter returns the limiter for a client, creating it on first use.
// Creating a client also sweeps idle ones at most once per idleTTL, so the
// map only holds clients seen within roughly two TTLs.
func (rl *RateLimiter) getLimiter(client string) *rate.Limiter {
	now := rl.now()

	rl.mu.RLock()
	cl, exists := rl.limiters[client]
	rl.mu.RUnlock()
	if exists {
		cl.lastSeen.Store(now.UnixNano())
		return cl.limiter
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.Sub(rl.lastSweep) >= rl.idleTTL {
		if n := rl.evictIdleLocked(now); n > 0 {
			log.Debug().Int("evicted", n).Int("clients", len(rl.limiters)).Msg("dropped idle rate limit buckets")
		}
		rl.lastSweep = now
	}

	// Another request may have created it in between.
	if cl, exists := rl.limiters[client]; exists {
		cl.lastSeen.Store(now.UnixNano())
		return cl.limiter
	}
	cl = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
	cl.lastSeen.Store(now.UnixNano())
	rl.limiters[client] = cl
	return cl.limiter
}

// evictIdleLocked drops clients not seen for idleTTL. rl.mu must be held.
func (rl *RateLimiter) evictIdleLocked(now time.Time) int {
	cutoff := now.Add(-rl.idleTTL).UnixNano()
	evicted := 0
	for client, cl := range rl.limiters {
		if cl.lastSeen.Load() < cutoff {
			delete(rl.limiters, client)
			evicted++
		}
	}
	return evicted
}

// clients returns the number of tracked clients.
func (rl *RateLimiter) clients() int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return len(rl.limiters)
}

// Handler rejects requests over the client's budget with 429.
// Run it after chi's RealIP so proxied clients are told apart.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.getLimiter(clientAddr(r)).Allow() {
			w.Header().Set("Retry-After", "1")
			response.RespondError(w, http.StatusTooManyRequests, "rate limit exceeded", "please try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientAddr strips the port from RemoteAddr.
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
