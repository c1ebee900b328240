package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/train-station-reservation/internal/config"
)

func cacheTestConfig() config.CacheConfig {
	return config.CacheConfig{
		Enabled:      true,
		Methods:      map[string]bool{"GET": true},
		TTL:          10 * time.Second,
		KeyStrategy:  "route_query",
		Prefix:       "cache",
		MaxBodyBytes: 1 << 20,
	}
}

func TestRedisCache_HitServesStoredPayload(t *testing.T) {
	cfg := cacheTestConfig()
	rdb, mock := redismock.NewClientMock()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/stations", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/stations")

	hdr := make(http.Header)
	hdr.Set("Content-Type", "application/json")
	body := []byte(`[{"id":1,"name":"Central"}]`)
	payload, err := encodePayload(http.StatusOK, hdr, body)
	require.NoError(t, err)

	mock.ExpectGet(cacheKeyFrom(cfg, c)).SetVal(string(payload))

	handlerRan := false
	mw := NewRedisCache(cfg, rdb)
	err = mw(func(c echo.Context) error {
		handlerRan = true
		return c.String(http.StatusOK, "fresh")
	})(c)
	require.NoError(t, err)

	assert.False(t, handlerRan, "cached response must short-circuit the handler")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, string(body), rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCache_MissRunsHandlerAndStores(t *testing.T) {
	cfg := cacheTestConfig()
	rdb, mock := redismock.NewClientMock()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/stations", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/stations")

	key := cacheKeyFrom(cfg, c)
	mock.ExpectGet(key).RedisNil()
	// Stored payload embeds the captured headers, so match on the key only.
	mock.Regexp().ExpectSetEx(key, `.*`, cfg.TTL).SetVal("OK")

	mw := NewRedisCache(cfg, rdb)
	err := mw(func(c echo.Context) error {
		return c.String(http.StatusOK, "fresh")
	})(c)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Equal(t, "fresh", rec.Body.String())
}

func TestRedisCache_DisabledPassesThrough(t *testing.T) {
	cfg := cacheTestConfig()
	cfg.Enabled = false

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/stations", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := NewRedisCache(cfg, nil)
	err := mw(func(c echo.Context) error {
		return c.String(http.StatusOK, "fresh")
	})(c)
	require.NoError(t, err)

	assert.Equal(t, "fresh", rec.Body.String())
	assert.Empty(t, rec.Header().Get("X-Cache"))
}

func TestRedisCache_SkipsNonCachedMethods(t *testing.T) {
	cfg := cacheTestConfig()
	rdb, _ := redismock.NewClientMock()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/orders", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/orders")

	mw := NewRedisCache(cfg, rdb)
	err := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusCreated)
	})(c)
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
}

func TestCacheKeyFrom_PartitionsPerUser(t *testing.T) {
	// Default strategy: the authenticated user must still be part of
	// the key, or order listings would be shared across accounts.
	cfg := cacheTestConfig()

	e := echo.New()
	mk := func(uid interface{}) string {
		req := httptest.NewRequest(http.MethodGet, "/v1/orders?page=1", nil)
		c := e.NewContext(req, httptest.NewRecorder())
		c.SetPath("/v1/orders")
		if uid != nil {
			c.Set("user_id", uid)
		}
		return cacheKeyFrom(cfg, c)
	}

	keyA := mk(float64(1))
	keyB := mk(float64(2))
	keyAnon := mk(nil)

	assert.NotEqual(t, keyA, keyB)
	assert.NotEqual(t, keyA, keyAnon)
	assert.Equal(t, keyA, mk(float64(1)), "key must be stable per user")
}

func TestRedisCache_DoesNotServeAcrossUsers(t *testing.T) {
	// One user's cached order listing must never be replayed to another
	// user issuing the same request under the default configuration.
	cfg := cacheTestConfig()
	rdb, mock := redismock.NewClientMock()
	mw := NewRedisCache(cfg, rdb)

	e := echo.New()
	get := func(uid float64) (echo.Context, *httptest.ResponseRecorder) {
		req := httptest.NewRequest(http.MethodGet, "/v1/orders", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/v1/orders")
		c.Set("user_id", uid)
		return c, rec
	}

	// First user populates the cache with their own listing.
	cA, recA := get(1)
	keyA := cacheKeyFrom(cfg, cA)
	mock.ExpectGet(keyA).RedisNil()
	mock.Regexp().ExpectSetEx(keyA, `.*`, cfg.TTL).SetVal("OK")
	err := mw(func(c echo.Context) error {
		return c.String(http.StatusOK, "orders of user 1")
	})(cA)
	require.NoError(t, err)
	assert.Equal(t, "MISS", recA.Header().Get("X-Cache"))

	// Second user, same route and query: different key, so the stored
	// payload is not found and their own handler output is returned.
	cB, recB := get(2)
	keyB := cacheKeyFrom(cfg, cB)
	require.NotEqual(t, keyA, keyB)
	mock.ExpectGet(keyB).RedisNil()
	mock.Regexp().ExpectSetEx(keyB, `.*`, cfg.TTL).SetVal("OK")
	err = mw(func(c echo.Context) error {
		return c.String(http.StatusOK, "orders of user 2")
	})(cB)
	require.NoError(t, err)

	assert.Equal(t, "MISS", recB.Header().Get("X-Cache"))
	assert.Equal(t, "orders of user 2", recB.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}
