package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// limiterPool hands out one token bucket per client IP and forgets
// buckets nobody has used for a while.
type limiterPool struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rps     rate.Limit
	burst   int
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func newLimiterPool(rps rate.Limit, burst int) *limiterPool {
	p := &limiterPool{
		buckets: make(map[string]*bucket),
		rps:     rps,
		burst:   burst,
	}
	go p.evictLoop()
	return p
}

func (p *limiterPool) allow(ip string) bool {
	p.mu.Lock()
	b, ok := p.buckets[ip]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(p.rps, p.burst)}
		p.buckets[ip] = b
	}
	b.lastSeen = time.Now()
	p.mu.Unlock()
	return b.lim.Allow()
}

func (p *limiterPool) evictLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-10 * time.Minute)
		p.mu.Lock()
		for ip, b := range p.buckets {
			if b.lastSeen.Before(cutoff) {
				delete(p.buckets, ip)
			}
		}
		p.mu.Unlock()
	}
}

// RateLimit throttles requests per client IP with a token bucket of
// rps requests per second and the given burst.
func RateLimit(rps rate.Limit, burst int) gin.HandlerFunc {
	pool := newLimiterPool(rps, burst)
	return func(c *gin.Context) {
		if !pool.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
