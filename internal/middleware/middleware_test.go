package middleware

import (
	"ctchen222/Simple-Blog/internal/auth"
	"ctchen222/Simple-Blog/internal/logger"
	"ctchen222/Simple-Blog/internal/repository"
	"html/template"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func whoami(c *gin.Context) {
	if user, ok := CurrentUser(c); ok {
		c.String(http.StatusOK, "%d:%s", user.UserID, user.Username)
		return
	}
	c.String(http.StatusOK, "anonymous")
}

func newAuthEngine(tokens *auth.TokenService) *gin.Engine {
	r := gin.New()
	r.Use(Authenticate(tokens))
	r.GET("/whoami", whoami)
	r.GET("/private", RequireAuth(), whoami)
	return r
}

func get(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticate(t *testing.T) {
	tokens := auth.NewTokenService([]byte("secret"), time.Hour)
	r := newAuthEngine(tokens)

	valid, err := tokens.Issue(5, "alice")
	require.NoError(t, err)

	expired, err := tokens.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }).Issue(5, "alice")
	require.NoError(t, err)

	forged, err := auth.NewTokenService([]byte("other"), time.Hour).Issue(5, "alice")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  string
	}{
		{"valid", valid, "5:alice"},
		{"no cookie", "", "anonymous"},
		{"expired", expired, "anonymous"},
		{"wrong secret", forged, "anonymous"},
		{"garbage", "abc", "anonymous"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(r, "/whoami", tt.token)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, w.Body.String())
		})
	}
}

func TestRequireAuth(t *testing.T) {
	tokens := auth.NewTokenService([]byte("secret"), time.Hour)
	r := newAuthEngine(tokens)

	w := get(r, "/private", "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.Empty(t, w.Body.String())

	expired, err := tokens.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }).Issue(1, "bob")
	require.NoError(t, err)
	w = get(r, "/private", expired)
	assert.Equal(t, http.StatusFound, w.Code)

	valid, err := tokens.Issue(1, "bob")
	require.NoError(t, err)
	w = get(r, "/private", valid)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1:bob", w.Body.String())
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), RequestLogger())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, logger.RequestID(c.Request.Context()))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("x", 100))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}

func newThrottleEngine(attempts repository.AttemptRepository, limit int) *gin.Engine {
	r := gin.New()
	r.SetHTMLTemplate(template.Must(template.New("").Parse(`{{define "login"}}{{range .errors}}{{.}}{{end}}{{end}}`)))
	r.POST("/login", Throttle(attempts, limit, time.Minute, "login"), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func post(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, nil))
	return w
}

func TestThrottle(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	r := newThrottleEngine(repository.NewAttemptRepository(rdb, "login"), 2)

	assert.Equal(t, http.StatusOK, post(r, "/login").Code)
	assert.Equal(t, http.StatusOK, post(r, "/login").Code)

	w := post(r, "/login")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, MsgTooManyAttempts, w.Body.String())

	mr.FastForward(2 * time.Minute)
	assert.Equal(t, http.StatusOK, post(r, "/login").Code)
}

func TestThrottle_SuccessClearsCounter(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	fail := true
	r := gin.New()
	r.SetHTMLTemplate(template.Must(template.New("").Parse(`{{define "login"}}{{range .errors}}{{.}}{{end}}{{end}}`)))
	r.POST("/login", Throttle(repository.NewAttemptRepository(rdb, "login"), 2, time.Minute, "login"), func(c *gin.Context) {
		if fail {
			c.String(http.StatusOK, "invalid")
			return
		}
		c.Redirect(http.StatusFound, "/")
	})

	assert.Equal(t, http.StatusOK, post(r, "/login").Code)
	assert.True(t, mr.Exists("attempts:login:192.0.2.1"))

	fail = false
	assert.Equal(t, http.StatusFound, post(r, "/login").Code)
	assert.False(t, mr.Exists("attempts:login:192.0.2.1"))

	fail = true
	assert.Equal(t, http.StatusOK, post(r, "/login").Code)
	assert.Equal(t, http.StatusOK, post(r, "/login").Code)
	assert.Equal(t, http.StatusTooManyRequests, post(r, "/login").Code)
}

func TestThrottle_FailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	r := newThrottleEngine(repository.NewAttemptRepository(rdb, "login"), 1)
	mr.Close()

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, post(r, "/login").Code)
	}
}

func TestThrottle_Disabled(t *testing.T) {
	r := newThrottleEngine(nil, 1)
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, post(r, "/login").Code)
	}
}
