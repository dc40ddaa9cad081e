package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/clinsim-backend/internal/response"
)

// RateLimiter implements a simple token bucket rate limiter keyed by
// student, falling back to the client IP.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int           // Tokens per interval
	interval time.Duration // Refill interval
	now      func() time.Time
}

type visitor struct {
	tokens   int
	lastSeen time.Time
}

// NewRateLimiter creates a RateLimiter (e.g., 120 requests per minute).
func NewRateLimiter(rate int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		interval: interval,
		now:      time.Now,
	}
}

// StartCleanup removes visitors idle for more than three intervals until
// stop is closed.
func (rl *RateLimiter) StartCleanup(stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(rl.interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				rl.cleanup()
			}
		}
	}()
}

// Middleware returns a Gin middleware that rate-limits requests per student.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(StudentKey(c)) {
			response.AbortFail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
			return
		}
		c.Next()
	}
}

// Allow takes one token from key's bucket.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, exists := rl.visitors[key]
	if !exists {
		v = &visitor{tokens: rl.rate, lastSeen: now}
		rl.visitors[key] = v
	}

	// Refill tokens based on elapsed time.
	elapsed := now.Sub(v.lastSeen)
	refill := int(elapsed/rl.interval) * rl.rate
	if refill > 0 {
		v.tokens += refill
		if v.tokens > rl.rate {
			v.tokens = rl.rate
		}
		v.lastSeen = now
	}

	if v.tokens <= 0 {
		return false
	}
	v.tokens--
	return true
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	for key, v := range rl.visitors {
		if now.Sub(v.lastSeen) > 3*rl.interval {
			delete(rl.visitors, key)
		}
	}
}

// maxKeyPeek bounds how much of a body StudentKey reads to find studentId.
const maxKeyPeek = 1 << 20

// readCloser replays the peeked prefix then the rest of the original body.
type readCloser struct {
	io.Reader
	io.Closer
}

// StudentKey identifies the caller: the :student_id path parameter, else
// the studentId field of a JSON body, else the client IP. The body is
// restored for the handler.
func StudentKey(c *gin.Context) string {
	if id := c.Param("student_id"); id != "" {
		return "student:" + id
	}

	if c.Request.Body != nil && c.Request.Method == http.MethodPost {
		orig := c.Request.Body
		raw, err := io.ReadAll(io.LimitReader(orig, maxKeyPeek))
		c.Request.Body = readCloser{io.MultiReader(bytes.NewReader(raw), orig), orig}
		if err == nil {
			var body struct {
				StudentID string `json:"studentId"`
			}
			if json.Unmarshal(raw, &body) == nil && body.StudentID != "" {
				return "student:" + body.StudentID
			}
		}
	}

	return "ip:" + c.ClientIP()
}
