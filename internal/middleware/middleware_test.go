package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/pilates-studio/internal/config"
	"github.com/iliyamo/pilates-studio/internal/utils"
)

const secret = "test-secret"

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func do(e *echo.Echo, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func token(t *testing.T, id uint64, role string) string {
	t.Helper()
	at, err := utils.NewAccessToken(secret, id, role, 5)
	require.NoError(t, err)
	return at.Token
}

func TestJWTAuthAndRole(t *testing.T) {
	e := echo.New()
	g := e.Group("", JWTAuth(secret))
	g.GET("/me", func(c echo.Context) error {
		id, ok := UserID(c)
		require.True(t, ok)
		return c.JSON(http.StatusOK, echo.Map{"id": id, "role": Role(c)})
	})
	g.GET("/staff", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) },
		RequireRole("ADMIN", "INSTRUCTOR"))

	assert.Equal(t, http.StatusUnauthorized, do(e, http.MethodGet, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(e, http.MethodGet, "/me", "garbage").Code)

	rec := do(e, http.MethodGet, "/me", token(t, 7, "CUSTOMER"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":7,"role":"CUSTOMER"}`, rec.Body.String())

	assert.Equal(t, http.StatusForbidden, do(e, http.MethodGet, "/staff", token(t, 7, "CUSTOMER")).Code)
	assert.Equal(t, http.StatusNoContent, do(e, http.MethodGet, "/staff", token(t, 8, "INSTRUCTOR")).Code)
}

func rateCfg(capacity int) config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled:        true,
		Capacity:       capacity,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            5 * time.Hour,
		KeyStrategy:    "ip_user_route",
		Prefix:         "rl",
	}
}

func limitedEcho(mw echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.GET("/classes", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, mw)
	e.GET("/other", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, mw)
	return e
}

func TestTokenBucketRedis(t *testing.T) {
	_, rdb := newRedis(t)
	e := limitedEcho(NewTokenBucket(rateCfg(2), rdb, zap.NewNop()))

	first := do(e, http.MethodGet, "/classes", "")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/classes", "").Code)

	blocked := do(e, http.MethodGet, "/classes", "")
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.NotEmpty(t, blocked.Header().Get("Retry-After"))

	// separate route, separate bucket
	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/other", "").Code)
}

func TestTokenBucketRedisDownFailsOpen(t *testing.T) {
	mr, rdb := newRedis(t)
	mr.Close()
	e := limitedEcho(NewTokenBucket(rateCfg(1), rdb, zap.NewNop()))

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/classes", "").Code)
	}
}

func TestTokenBucketLocal(t *testing.T) {
	e := limitedEcho(NewTokenBucket(rateCfg(2), nil, zap.NewNop()))

	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/classes", "").Code)
	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/classes", "").Code)
	rec := do(e, http.MethodGet, "/classes", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
}

func TestTokenBucketDisabled(t *testing.T) {
	cfg := rateCfg(1)
	cfg.Enabled = false
	e := limitedEcho(NewTokenBucket(cfg, nil, zap.NewNop()))
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/classes", "").Code)
	}
}

func TestRedisCache(t *testing.T) {
	_, rdb := newRedis(t)
	cfg := config.CacheConfig{
		Enabled:      true,
		Methods:      map[string]bool{http.MethodGet: true},
		TTL:          time.Minute,
		KeyStrategy:  "route_query",
		Prefix:       "cache",
		MaxBodyBytes: 1 << 20,
	}
	var calls atomic.Int32
	e := echo.New()
	mw := NewRedisCache(cfg, rdb, zap.NewNop())
	e.GET("/studios", func(c echo.Context) error {
		calls.Add(1)
		return c.JSON(http.StatusOK, echo.Map{"items": []string{"Main Studio"}})
	}, mw)
	e.GET("/broken", func(c echo.Context) error {
		calls.Add(1)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}, mw)

	miss := do(e, http.MethodGet, "/studios", "")
	assert.Equal(t, "MISS", miss.Header().Get("X-Cache"))
	hit := do(e, http.MethodGet, "/studios", "")
	assert.Equal(t, "HIT", hit.Header().Get("X-Cache"))
	assert.Equal(t, http.StatusOK, hit.Code)
	assert.Equal(t, miss.Body.String(), hit.Body.String())
	assert.Equal(t, miss.Header().Get(echo.HeaderContentType), hit.Header().Get(echo.HeaderContentType))
	assert.Equal(t, int32(1), calls.Load())

	other := do(e, http.MethodGet, "/studios?page=2", "")
	assert.Equal(t, "MISS", other.Header().Get("X-Cache"))
	assert.Equal(t, int32(2), calls.Load())

	do(e, http.MethodGet, "/broken", "")
	do(e, http.MethodGet, "/broken", "")
	assert.Equal(t, int32(4), calls.Load())
}

func TestPayloadCodec(t *testing.T) {
	h := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, h, []byte(`{"a":1}`))
	require.NoError(t, err)

	status, hdr, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", hdr.Get("Content-Type"))
	assert.Equal(t, `{"a":1}`, string(body))

	_, _, _, ok = decodePayload(bs[:5])
	assert.False(t, ok)
}
