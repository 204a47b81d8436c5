package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sushihentaime/portfolio/internal/authservice"
	"github.com/sushihentaime/portfolio/internal/blogservice"
	"github.com/sushihentaime/portfolio/internal/common"
	"github.com/sushihentaime/portfolio/internal/contactservice"
	"github.com/sushihentaime/portfolio/internal/imagehost"
	"github.com/sushihentaime/portfolio/internal/photoservice"
)

const testAdminSecret = "admin-secret"

// stubProducer records published messages instead of talking to a broker.
type stubProducer struct {
	mu       sync.Mutex
	messages [][]byte
	err      error
}

func (p *stubProducer) Publish(ctx context.Context, msg []byte, key common.BindingKey, exchange common.Exchange) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, msg)
	return nil
}

func (p *stubProducer) published() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.messages
}

type testEnv struct {
	app      *application
	db       *sql.DB
	images   *imagehost.FakeHost
	producer *stubProducer
}

func testConfig() *Config {
	return &Config{
		Port:        "4000",
		Environment: "development",
		Version:     "test",
		CacheTTL:    time.Minute,
		Auth: AuthConfig{
			SessionSecret:  strings.Repeat("s", 32),
			SessionTTL:     authservice.DefaultSessionTTL,
			LoginRateLimit: 5,
		},
	}
}

func newTestApplication(t *testing.T) *testEnv {
	t.Helper()

	cfg := testConfig()
	db := common.TestDB(t)

	hash, err := bcrypt.GenerateFromPassword([]byte(testAdminSecret), bcrypt.MinCost)
	require.NoError(t, err)

	gate, err := authservice.NewGate(authservice.Options{
		SecretHash: hash,
		SigningKey: []byte(cfg.Auth.SessionSecret),
		TTL:        cfg.Auth.SessionTTL,
	})
	require.NoError(t, err)

	m := newMetrics(db)

	fake := imagehost.NewFakeHost(t)
	hostCfg := fake.Config
	hostCfg.Timeout = 500 * time.Millisecond
	images, err := imagehost.New(hostCfg, imagehost.WithObserver(m.observeImageHost))
	require.NoError(t, err)

	producer := &stubProducer{}
	cache := common.NewCache(cfg.CacheTTL, 2*cfg.CacheTTL)

	app := &application{
		config:         cfg,
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		db:             db,
		auth:           gate,
		loginLimiter:   authservice.NewLoginLimiter(cfg.Auth.LoginRateLimit),
		blogService:    blogservice.NewPostService(db, cache),
		photoService:   photoservice.NewPhotoService(db, cache, images),
		contactService: contactservice.NewContactService(producer),
		metrics:        m,
	}

	return &testEnv{app: app, db: db, images: fake, producer: producer}
}

type testServer struct {
	*httptest.Server
}

// newTestServer starts h behind a client that keeps cookies between calls.
func newTestServer(t *testing.T, h http.Handler) *testServer {
	t.Helper()

	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	ts.Client().Jar = jar

	return &testServer{ts}
}

func (ts *testServer) do(t *testing.T, method, path string, data any) (int, http.Header, []byte) {
	t.Helper()

	var body io.Reader
	if data != nil {
		switch v := data.(type) {
		case string:
			body = strings.NewReader(v)
		default:
			payload, err := json.Marshal(v)
			require.NoError(t, err)
			body = bytes.NewReader(payload)
		}
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	require.NoError(t, err)
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	return res.StatusCode, res.Header, raw
}

func (ts *testServer) get(t *testing.T, path string) (int, http.Header, []byte) {
	return ts.do(t, http.MethodGet, path, nil)
}

func (ts *testServer) post(t *testing.T, path string, data any) (int, http.Header, []byte) {
	return ts.do(t, http.MethodPost, path, data)
}

func (ts *testServer) put(t *testing.T, path string, data any) (int, http.Header, []byte) {
	return ts.do(t, http.MethodPut, path, data)
}

func (ts *testServer) delete(t *testing.T, path string) (int, http.Header, []byte) {
	return ts.do(t, http.MethodDelete, path, nil)
}

func (ts *testServer) login(t *testing.T) {
	t.Helper()

	status, _, body := ts.post(t, "/api/auth/login", map[string]string{"password": testAdminSecret})
	require.Equal(t, http.StatusOK, status, string(body))
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

// errorFields returns the field map of a failed validation response.
func errorFields(t *testing.T, raw []byte) map[string]string {
	t.Helper()
	return decode[struct {
		Error map[string]string `json:"error"`
	}](t, raw).Error
}

func encodePNG(t *testing.T, width, height int) string {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))))

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}
