package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"qrgen/internal/pkg/errors"
	"qrgen/internal/platform/metrics"
)

const idleBucketTTL = 10 * time.Minute

type RateLimiter struct {
	store *sync.Map // map[string]*Bucket
	now   func() time.Time
	stop  chan struct{}
	once  sync.Once
}

type Bucket struct {
	tokens     int
	lastRefill time.Time
	mu         sync.Mutex
	// We need to know when it was last accessed to clean it up
	lastAccess time.Time
}

func NewRateLimiter() *RateLimiter {
	rl := &RateLimiter{
		store: &sync.Map{},
		now:   time.Now,
		stop:  make(chan struct{}),
	}

	// Start cleanup routine
	go rl.cleanupLoop()

	return rl
}

// Stop ends the cleanup routine.
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(idleBucketTTL)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.cleanup()
		}
	}
}

func (rl *RateLimiter) cleanup() {
	now := rl.now()
	rl.store.Range(func(key, value interface{}) bool {
		bucket := value.(*Bucket)
		bucket.mu.Lock()
		// If not accessed recently, delete it
		if now.Sub(bucket.lastAccess) > idleBucketTTL {
			rl.store.Delete(key)
		}
		bucket.mu.Unlock()
		return true
	})
}

// Allow takes one token from key's bucket, which refills at limit tokens per minute.
func (rl *RateLimiter) Allow(key string, limit int) bool {
	now := rl.now()

	val, _ := rl.store.LoadOrStore(key, &Bucket{
		tokens:     limit,
		lastRefill: now,
		lastAccess: now,
	})

	bucket := val.(*Bucket)
	bucket.mu.Lock()
	defer bucket.mu.Unlock()

	bucket.lastAccess = now

	// Refill bucket
	elapsed := now.Sub(bucket.lastRefill)

	// Rate is limit / 60 seconds
	refillRate := float64(limit) / 60.0
	refillTokens := int(elapsed.Seconds() * refillRate)

	if refillTokens > 0 {
		if bucket.tokens+refillTokens > limit {
			bucket.tokens = limit
		} else {
			bucket.tokens += refillTokens
		}
		bucket.lastRefill = now
	}

	// Check availability
	if bucket.tokens > 0 {
		bucket.tokens--
		return true
	}

	return false
}

// RateLimit limits each client IP to perMinute requests on the wrapped route. A non-positive
// perMinute disables the check.
func RateLimit(rl *RateLimiter, scope string, perMinute int, m *metrics.Metrics) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		if rl == nil || perMinute <= 0 {
			return next
		}
		retryAfter := strconv.Itoa(60/perMinute + 1)

		return func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r) + ":" + scope

			if !rl.Allow(key, perMinute) {
				if m != nil {
					m.RateLimited.Inc()
				}
				log.Warn().Str("key", key).Str("path", r.URL.Path).Msg("Rate limit exceeded")
				w.Header().Set("Retry-After", retryAfter)
				errors.WriteError(w, http.StatusTooManyRequests, errors.ErrCodeRateLimitExceeded, "Rate limit exceeded", nil)
				return
			}

			next(w, r)
		}
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
