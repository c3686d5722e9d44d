package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	r.Any("/api/vm", func(c *gin.Context) {
		c.Header("X-Trace-ID", "req_1")
		c.JSON(http.StatusOK, gin.H{"state": "inactive"})
	})
	return r
}

func do(r http.Handler, method, remote string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/api/vm", nil)
	if remote != "" {
		req.RemoteAddr = remote
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCORSDefaultsToAnyOrigin(t *testing.T) {
	r := newEngine(CORS())
	origin := map[string]string{"Origin": "http://localhost:3000"}

	w := do(r, http.MethodGet, "", origin)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, strings.ToLower(w.Header().Get("Access-Control-Expose-Headers")), "x-trace-id")

	w = do(r, http.MethodOptions, "", map[string]string{
		"Origin":                        "http://localhost:3000",
		"Access-Control-Request-Method": "POST",
	})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(r, http.MethodGet, "", nil)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSAllowList(t *testing.T) {
	r := newEngine(CORS("http://localhost:3000"))

	w := do(r, http.MethodGet, "", map[string]string{"Origin": "http://localhost:3000"})
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	w = do(r, http.MethodGet, "", map[string]string{"Origin": "http://evil.example"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCORSConfig(t *testing.T) {
	cfg := CORSConfig()
	assert.Equal(t, []string{"*"}, cfg.AllowOrigins)
	assert.NotContains(t, cfg.AllowMethods, "DELETE")
	assert.False(t, cfg.AllowCredentials)
	assert.Equal(t, 12*time.Hour, cfg.MaxAge)
}

func TestRateLimitPerClient(t *testing.T) {
	r := newEngine(RateLimit(1, 2))

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "10.0.0.1:1", nil).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "10.0.0.1:1", nil).Code)

	w := do(r, http.MethodGet, "10.0.0.1:1", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"rate limit exceeded"}`, w.Body.String())

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "10.0.0.2:1", nil).Code)
}

func TestVisitorsForgetIdleClients(t *testing.T) {
	clock := time.Unix(1_700_000_000, 0)
	v := newVisitors(1, 1, time.Minute)
	v.now = func() time.Time { return clock }
	v.swept = clock

	assert.True(t, v.allow("a"))
	assert.False(t, v.allow("a"))
	assert.True(t, v.allow("b"))
	assert.Equal(t, 2, v.len())

	clock = clock.Add(2 * time.Minute)
	assert.True(t, v.allow("a"), "bucket refilled and entry recreated")
	assert.Equal(t, 1, v.len())
}

func TestCompress(t *testing.T) {
	body := strings.Repeat(`<div class="os-taskbar"></div>`, 100)
	handler, err := Compress(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, body)
	}))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/vm/display", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
	zr, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	plain, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, body, string(plain))
}

func TestCompressSkipsUpgrade(t *testing.T) {
	handler, err := Compress(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, strings.Repeat("x", 2048))
	}))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/stream", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("Upgrade", "websocket")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, 2048, w.Body.Len())
}

func BenchmarkRateLimit(b *testing.B) {
	r := newEngine(RateLimit(1_000_000, 1_000_000))
	for b.Loop() {
		do(r, http.MethodGet, "10.0.0.1:1", nil)
	}
}
