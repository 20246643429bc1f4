package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tours-backend/internal/domains/user"
	"tours-backend/internal/shared/apperror"
	"tours-backend/internal/shared/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubAuth accepts exactly one token.
type stubAuth struct {
	token string
	user  *user.User
}

func (s *stubAuth) Signup(context.Context, user.SignupRequest, string) (*user.Session, error) {
	return nil, nil
}

func (s *stubAuth) Login(context.Context, user.LoginRequest) (*user.Session, error) {
	return nil, nil
}

func (s *stubAuth) Authenticate(_ context.Context, token string) (*user.User, error) {
	if token != s.token {
		return nil, apperror.InvalidToken()
	}
	return s.user, nil
}

func (s *stubAuth) ForgotPassword(context.Context, user.ForgotPasswordRequest, string) error {
	return nil
}

func (s *stubAuth) ResetPassword(context.Context, string, user.ResetPasswordRequest) (*user.Session, error) {
	return nil, nil
}

func (s *stubAuth) UpdatePassword(context.Context, uuid.UUID, user.UpdatePasswordRequest) (*user.Session, error) {
	return nil, nil
}

// memCache is an in-memory cache.Cache good enough for the limiter.
type memCache struct {
	mu       sync.Mutex
	counters map[string]int64
	ttls     map[string]time.Duration
}

func newMemCache() *memCache {
	return &memCache{counters: map[string]int64{}, ttls: map[string]time.Duration{}}
}

func (m *memCache) Get(context.Context, string, interface{}) (bool, error) { return false, nil }
func (m *memCache) Set(context.Context, string, interface{}, time.Duration) error {
	return nil
}
func (m *memCache) Delete(context.Context, ...string) error { return nil }
func (m *memCache) Ping(context.Context) error              { return nil }

func (m *memCache) Increment(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[key]++
	return m.counters[key], nil
}

func (m *memCache) Expire(_ context.Context, key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ttls[key] = ttl
	return nil
}

func (m *memCache) TTL(_ context.Context, key string) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ttls[key], nil
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var body response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestErrorHandlerDevelopmentIncludesDetail(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler(ErrorHandlerConfig{}))
	r.GET("/api/v1/tours/x", func(c *gin.Context) {
		response.Fail(c, apperror.NotFound("No tour found with that ID"))
	})

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/tours/x", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "fail", body.Status)
	assert.Equal(t, "No tour found with that ID", body.Message)
	assert.Equal(t, string(apperror.KindNotFound), body.Error)
	assert.NotEmpty(t, body.Detail)
}

func TestErrorHandlerProductionMasksUnknownErrors(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler(ErrorHandlerConfig{Production: true}))
	r.GET("/boom", func(c *gin.Context) {
		response.Fail(c, errors.New("pq: connection reset by peer"))
	})
	r.GET("/gone", func(c *gin.Context) {
		response.Fail(c, apperror.NotFound("No review found with that ID"))
	})

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "error", body.Status)
	assert.Equal(t, "Something went very wrong!", body.Message)
	assert.Empty(t, body.Detail)
	assert.NotContains(t, rec.Body.String(), "connection reset")

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/gone", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No review found with that ID", decode(t, rec).Message)
}

func protectedEngine(auth user.AuthService, gates ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(ErrorHandler(ErrorHandlerConfig{}))
	handlers := append([]gin.HandlerFunc{Protect(auth)}, gates...)
	handlers = append(handlers, func(c *gin.Context) {
		u, ok := CurrentUser(c)
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		ctxUser, _ := UserFromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"id": u.ID.String(), "same": ctxUser == u})
	})
	r.GET("/private", handlers...)
	return r
}

func TestProtect(t *testing.T) {
	u := &user.User{ID: uuid.New(), Role: user.RoleUser}
	r := protectedEngine(&stubAuth{token: "good", user: u})

	t.Run("no token", func(t *testing.T) {
		rec := serve(r, httptest.NewRequest(http.MethodGet, "/private", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "You are not logged in! Please log in to get access.", decode(t, rec).Message)
	})

	t.Run("bad token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set("Authorization", "Bearer forged")
		rec := serve(r, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid token. Please log in again!", decode(t, rec).Message)
	})

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set("Authorization", "Bearer good")
		rec := serve(r, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), u.ID.String())
		assert.Contains(t, rec.Body.String(), `"same":true`)
	})

	t.Run("cookie fallback", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: "good"})
		rec := serve(r, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRestrictTo(t *testing.T) {
	guide := &user.User{ID: uuid.New(), Role: user.RoleGuide}
	r := protectedEngine(&stubAuth{token: "good", user: guide}, Require(user.CapManageTours))

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := serve(r, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "You do not have permission to perform this action", decode(t, rec).Message)

	lead := &user.User{ID: uuid.New(), Role: user.RoleLeadGuide}
	r = protectedEngine(&stubAuth{token: "good", user: lead}, Require(user.CapManageTours))
	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer good")
	assert.Equal(t, http.StatusOK, serve(r, req).Code)
}

func TestIsLoggedInNeverFails(t *testing.T) {
	u := &user.User{ID: uuid.New(), Name: "Leo Gillespie"}
	r := gin.New()
	r.GET("/", IsLoggedIn(&stubAuth{token: "good", user: u}), func(c *gin.Context) {
		if current, ok := CurrentUser(c); ok {
			c.String(http.StatusOK, current.Name)
			return
		}
		c.String(http.StatusOK, "anonymous")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "loggedout"})
	assert.Equal(t, "anonymous", serve(r, req).Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "good"})
	assert.Equal(t, "Leo Gillespie", serve(r, req).Body.String())
}

func TestRateLimit(t *testing.T) {
	store := newMemCache()
	r := gin.New()
	r.Use(ErrorHandler(ErrorHandlerConfig{}), ClientIP(), RateLimit(store, 2, time.Hour))
	r.GET("/api/v1/tours", func(c *gin.Context) { c.Status(http.StatusOK) })

	request := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/tours", nil)
		req.RemoteAddr = "203.0.113.9:40000"
		return serve(r, req)
	}

	assert.Equal(t, http.StatusOK, request().Code)
	second := request()
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "0", second.Header().Get("X-RateLimit-Remaining"))

	third := request()
	assert.Equal(t, http.StatusTooManyRequests, third.Code)
	assert.Equal(t, "Too many requests from this IP, please try again in an hour!", decode(t, third).Message)
	assert.Equal(t, "3600", third.Header().Get("Retry-After"))
	assert.Equal(t, time.Hour, store.ttls["rate-limit:203.0.113.9"])
}

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler(ErrorHandlerConfig{}), BodyLimit(32))
	r.POST("/api/v1/reviews", func(c *gin.Context) {
		var body map[string]interface{}
		if err := c.ShouldBindJSON(&body); err != nil {
			response.Fail(c, err)
			return
		}
		c.Status(http.StatusCreated)
	})

	small := httptest.NewRequest(http.MethodPost, "/api/v1/reviews", strings.NewReader(`{"review":"ok"}`))
	assert.Equal(t, http.StatusCreated, serve(r, small).Code)

	large := httptest.NewRequest(http.MethodPost, "/api/v1/reviews",
		strings.NewReader(`{"review":"`+strings.Repeat("a", 100)+`"}`))
	assert.Equal(t, http.StatusRequestEntityTooLarge, serve(r, large).Code)
}

func TestRecoveryCallsPanicHook(t *testing.T) {
	var got interface{}
	r := gin.New()
	r.Use(Recovery(func(rec interface{}) { got = rec }))
	r.GET("/panic", func(c *gin.Context) { panic("nil map write") })

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "error", decode(t, rec).Status)
	assert.Equal(t, "nil map write", got)
}

func TestRequestIDAndSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), SecurityHeaders())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextKeyRequestID)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	rec := serve(r, req)
	assert.Equal(t, "abc-123", rec.Body.String())
	assert.Equal(t, "abc-123", rec.Header().Get(HeaderRequestID))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(rec.Body.String())
	assert.NoError(t, err)
}
