package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Igor-Lacko/wis2-backend-sub000/internal/config"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/model"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/utils"
)

const (
	testSecret = "test-secret"
	testIssuer = "wis2-test"
)

func okHandler(c echo.Context) error { return c.String(http.StatusOK, "ok") }

func signed(t *testing.T, u model.User) string {
	t.Helper()
	tok, err := utils.NewAccessToken(testSecret, testIssuer, u, time.Now(), time.Minute)
	require.NoError(t, err)
	return tok.Token
}

func TestJWTAuthBearer(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed(t, model.User{ID: 7, Username: "ann", Role: model.RoleTeacher}))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var gotID uint64
	var gotRole model.Role
	h := JWTAuth(testSecret, testIssuer)(func(c echo.Context) error {
		gotID, _ = UserID(c)
		gotRole, _ = Role(c)
		assert.Equal(t, "ann", Username(c))
		return okHandler(c)
	})
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(7), gotID)
	assert.Equal(t, model.RoleTeacher, gotRole)
}

func TestJWTAuthCookie(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: AccessCookie, Value: signed(t, model.User{ID: 3, Username: "bob", Role: model.RoleUser})})
	rec := httptest.NewRecorder()

	require.NoError(t, JWTAuth(testSecret, testIssuer)(okHandler)(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJWTAuthRejects(t *testing.T) {
	e := echo.New()
	cases := map[string]string{
		"missing":      "",
		"garbage":      "Bearer not-a-jwt",
		"wrong scheme": "Basic abc",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			require.NoError(t, JWTAuth(testSecret, testIssuer)(okHandler)(e.NewContext(req, rec)))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}

	t.Run("wrong issuer", func(t *testing.T) {
		tok, err := utils.NewAccessToken(testSecret, "someone-else", model.User{ID: 1}, time.Now(), time.Minute)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+tok.Token)
		rec := httptest.NewRecorder()
		require.NoError(t, JWTAuth(testSecret, testIssuer)(okHandler)(e.NewContext(req, rec)))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	run := func(role *model.Role) int {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		if role != nil {
			c.Set(ctxUserID, uint64(1))
			c.Set(ctxRole, *role)
		}
		_ = RequireRole(model.RoleAdmin)(okHandler)(c)
		return rec.Code
	}
	admin, user := model.RoleAdmin, model.RoleUser
	assert.Equal(t, http.StatusOK, run(&admin))
	assert.Equal(t, http.StatusForbidden, run(&user))
	assert.Equal(t, http.StatusUnauthorized, run(nil))
}

// fakeScripter answers EVALSHA with a canned bucket result.
type fakeScripter struct {
	redis.Scripter
	result []interface{}
	err    error
	keys   []string
}

func (f *fakeScripter) EvalSha(ctx context.Context, sha1 string, keys []string, args ...interface{}) *redis.Cmd {
	f.keys = append(f.keys, keys...)
	return redis.NewCmdResult(f.result, f.err)
}

func rateCfg() config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled:        true,
		Capacity:       5,
		RefillTokens:   1,
		RefillInterval: time.Second,
		TTL:            time.Minute,
		KeyStrategy:    "ip_route",
		Prefix:         "rl",
	}
}

func TestRateLimiterAllows(t *testing.T) {
	f := &fakeScripter{result: []interface{}{int64(1), int64(4), int64(0)}}
	e := echo.New()
	e.POST("/auth/login", okHandler, NewRateLimiter(rateCfg(), f, nil).Middleware())

	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "5", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "4", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, []string{"rl:ip:10.0.0.1:route:POST /auth/login"}, f.keys)
}

func TestRateLimiterBlocks(t *testing.T) {
	f := &fakeScripter{result: []interface{}{int64(0), int64(0), int64(1500)}}
	e := echo.New()
	e.POST("/auth/login", okHandler, NewRateLimiter(rateCfg(), f, nil).Middleware())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", nil))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
}

func TestRateLimiterFailsOpen(t *testing.T) {
	f := &fakeScripter{err: context.DeadlineExceeded}
	e := echo.New()
	e.POST("/auth/login", okHandler, NewRateLimiter(rateCfg(), f, nil).Middleware())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDisabledMiddlewarePassThrough(t *testing.T) {
	e := echo.New()
	e.GET("/courses", okHandler,
		NewRateLimiter(config.RateLimitConfig{}, nil, nil).Middleware(),
		NewResponseCache(config.CacheConfig{Enabled: true}, nil, nil).Middleware(),
	)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/courses", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
}

func TestRecorderOverflow(t *testing.T) {
	rec := &recorder{ResponseWriter: httptest.NewRecorder(), limit: 4}
	_, _ = rec.Write([]byte("ab"))
	assert.False(t, rec.overflow)
	_, _ = rec.Write([]byte("cde"))
	assert.True(t, rec.overflow)
	assert.Zero(t, rec.buf.Len())
}
