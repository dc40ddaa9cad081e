package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimiter_AllowAndRefill(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("student:a"))
	assert.True(t, rl.Allow("student:a"))
	assert.False(t, rl.Allow("student:a"))
	assert.True(t, rl.Allow("student:b"), "buckets are per key")

	now = now.Add(time.Minute)
	assert.True(t, rl.Allow("student:a"))
}

func TestRateLimiter_Cleanup(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, time.Minute)
	rl.now = func() time.Time { return now }

	rl.Allow("student:a")
	now = now.Add(4 * time.Minute)
	rl.cleanup()
	assert.Empty(t, rl.visitors)
}

func TestRateLimiter_MiddlewareRejects(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour)
	r := gin.New()
	r.POST("/action", rl.Middleware(), func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		c.String(http.StatusOK, string(body))
	})

	send := func(student string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/action", strings.NewReader(`{"studentId":"`+student+`"}`))
		r.ServeHTTP(w, req)
		return w
	}

	first := send("s1")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, `{"studentId":"s1"}`, first.Body.String(), "body is restored for the handler")

	second := send("s1")
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Contains(t, second.Body.String(), "RATE_LIMIT_EXCEEDED")

	assert.Equal(t, http.StatusOK, send("s2").Code)
}

func TestRateLimiter_MiddlewareKeepsLargeBody(t *testing.T) {
	rl := NewRateLimiter(5, time.Hour)
	r := gin.New()
	var got []byte
	r.POST("/action", rl.Middleware(), func(c *gin.Context) {
		got, _ = io.ReadAll(c.Request.Body)
		c.Status(http.StatusNoContent)
	})

	payload := `{"studentId":"s1","details":"` + strings.Repeat("x", 2<<20) + `"}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/action", strings.NewReader(payload)))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, len(payload), len(got))
	assert.Equal(t, payload, string(got))
}

func TestStudentKey(t *testing.T) {
	r := gin.New()
	var got string
	handler := func(c *gin.Context) { got = StudentKey(c) }
	r.GET("/students/:student_id/active", handler)
	r.POST("/start", handler)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/students/abc/active", nil))
	assert.Equal(t, "student:abc", got)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/start", strings.NewReader(`{"studentId":"xyz"}`)))
	assert.Equal(t, "student:xyz", got)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/start", strings.NewReader(`not json`))
	req.RemoteAddr = "10.0.0.7:1234"
	r.ServeHTTP(w, req)
	assert.Equal(t, "ip:10.0.0.7", got)
}

func TestBrotli_CompressesLargeResponses(t *testing.T) {
	payload := strings.Repeat("clinical simulation ", 200)
	r := gin.New()
	r.Use(Brotli())
	r.GET("/big", func(c *gin.Context) {
		c.String(http.StatusOK, payload[:1500])
		c.Writer.WriteString(payload[1500:])
	})
	r.GET("/small", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/big", nil)
	req.Header.Set("Accept-Encoding", "gzip, br")
	r.ServeHTTP(w, req)

	require.Equal(t, "br", w.Header().Get("Content-Encoding"))
	decoded, err := io.ReadAll(brotli.NewReader(w.Body))
	require.NoError(t, err)
	assert.Equal(t, payload, string(decoded))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/small", nil)
	req.Header.Set("Accept-Encoding", "br")
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, "ok", w.Body.String())
}

func TestBrotli_SkipsWithoutAcceptEncoding(t *testing.T) {
	r := gin.New()
	r.Use(Brotli())
	r.GET("/big", func(c *gin.Context) { c.String(http.StatusOK, strings.Repeat("x", 4096)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/big", nil))
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Len(t, w.Body.String(), 4096)
}

func TestCacheControl(t *testing.T) {
	r := gin.New()
	r.GET("/scenarios", CacheControl(60), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/scenarios", nil))
	assert.Equal(t, "public, max-age=60", w.Header().Get("Cache-Control"))
}
