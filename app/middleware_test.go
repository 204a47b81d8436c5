package main

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sushihentaime/portfolio/internal/authservice"
)

// newBareApplication is enough for middleware that never touches storage.
func newBareApplication(t *testing.T, logs *bytes.Buffer) *application {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testAdminSecret), bcrypt.MinCost)
	require.NoError(t, err)

	gate, err := authservice.NewGate(authservice.Options{SecretHash: hash, SigningKey: []byte(strings.Repeat("s", 32))})
	require.NoError(t, err)

	return &application{
		config:  testConfig(),
		logger:  slog.New(slog.NewTextHandler(logs, nil)),
		auth:    gate,
		metrics: newMetrics(nil),
	}
}

func TestRecoverPanic(t *testing.T) {
	app := newBareApplication(t, &bytes.Buffer{})

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("something went wrong")
	})

	res := httptest.NewRecorder()
	app.recoverPanic(handler).ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, res.Code)
	assert.Equal(t, "close", res.Header().Get("Connection"))
}

func TestRequestID(t *testing.T) {
	app := newBareApplication(t, &bytes.Buffer{})

	var seen string
	handler := app.requestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = app.contextGetRequestID(r)
	}))

	t.Run("generated", func(t *testing.T) {
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, res.Header().Get("X-Request-ID"))
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "abc-123")

		res := httptest.NewRecorder()
		handler.ServeHTTP(res, req)

		assert.Equal(t, "abc-123", seen)
		assert.Equal(t, "abc-123", res.Header().Get("X-Request-ID"))
	})
}

func TestLogRequest(t *testing.T) {
	var logs bytes.Buffer
	app := newBareApplication(t, &logs)

	handler := app.requestID(app.logRequest(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))

	req := httptest.NewRequest(http.MethodGet, "/api/blogs?x=1", nil)
	req.Header.Set("X-Request-ID", "req-1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	line := logs.String()
	assert.Contains(t, line, "method=GET")
	assert.Contains(t, line, `uri="/api/blogs?x=1"`)
	assert.Contains(t, line, "status=418")
	assert.Contains(t, line, "request_id=req-1")
}

func TestInstrument(t *testing.T) {
	app := newBareApplication(t, &bytes.Buffer{})

	handler := app.instrument("/api/blogs/:slug", func(w http.ResponseWriter, r *http.Request) {
		app.notFoundErrorResponse(w, r)
	})

	for i := 0; i < 2; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/blogs/a", nil))
	}

	counter := app.metrics.requests.WithLabelValues(http.MethodGet, "/api/blogs/:slug", "404")
	assert.Equal(t, float64(2), testutil.ToFloat64(counter))
}

func TestRequireAdmin(t *testing.T) {
	app := newBareApplication(t, &bytes.Buffer{})

	handler := app.requireAdmin(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("without session", func(t *testing.T) {
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/api/blogs", nil))

		assert.Equal(t, http.StatusUnauthorized, res.Code)
		assert.Equal(t, "Cookie", res.Header().Get("Vary"))
	})

	t.Run("with session", func(t *testing.T) {
		login := httptest.NewRecorder()
		require.NoError(t, app.auth.Login(login, httptest.NewRequest(http.MethodPost, "/api/auth/login", nil), testAdminSecret))

		req := httptest.NewRequest(http.MethodPost, "/api/blogs", nil)
		for _, c := range login.Result().Cookies() {
			req.AddCookie(c)
		}

		res := httptest.NewRecorder()
		handler.ServeHTTP(res, req)

		assert.Equal(t, http.StatusNoContent, res.Code)
	})
}

func TestClientIP(t *testing.T) {
	app := newBareApplication(t, &bytes.Buffer{})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = "10.0.0.7:5123"
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")

	assert.Equal(t, "10.0.0.7", app.clientIP(req))

	app.config.TrustProxy = true
	assert.Equal(t, "203.0.113.9", app.clientIP(req))

	req.Header.Del("X-Forwarded-For")
	req.Header.Set("X-Real-IP", "198.51.100.4")
	assert.Equal(t, "198.51.100.4", app.clientIP(req))
}
