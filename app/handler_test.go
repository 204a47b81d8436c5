package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sushihentaime/portfolio/internal/authservice"
	"github.com/sushihentaime/portfolio/internal/blogservice"
	"github.com/sushihentaime/portfolio/internal/contactservice"
	"github.com/sushihentaime/portfolio/internal/imagehost"
	"github.com/sushihentaime/portfolio/internal/photoservice"
)

func TestAuthHandlers(t *testing.T) {
	env := newTestApplication(t)
	ts := newTestServer(t, env.app.routes())

	verify := func(t *testing.T) bool {
		status, _, body := ts.get(t, "/api/auth/verify")
		require.Equal(t, http.StatusOK, status)
		return decode[map[string]bool](t, body)["authenticated"]
	}

	t.Run("not authenticated before login", func(t *testing.T) {
		assert.False(t, verify(t))
	})

	t.Run("wrong password", func(t *testing.T) {
		status, _, body := ts.post(t, "/api/auth/login", map[string]string{"password": "wrong"})
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.JSONEq(t, `{"error":"invalid authentication credentials"}`, string(body))
		assert.False(t, verify(t))
	})

	t.Run("missing password", func(t *testing.T) {
		status, _, body := ts.post(t, "/api/auth/login", map[string]string{})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, map[string]string{"password": "must be provided"}, errorFields(t, body))
	})

	t.Run("malformed body", func(t *testing.T) {
		status, _, _ := ts.post(t, "/api/auth/login", `{"password":`)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("login sets a session cookie", func(t *testing.T) {
		status, header, body := ts.post(t, "/api/auth/login", map[string]string{"password": testAdminSecret})
		require.Equal(t, http.StatusOK, status)
		assert.JSONEq(t, `{"success":true}`, string(body))

		cookie := header.Get("Set-Cookie")
		assert.Contains(t, cookie, authservice.SessionName+"=")
		assert.Contains(t, cookie, "HttpOnly")
		assert.Contains(t, cookie, "SameSite=Strict")

		assert.True(t, verify(t))
	})

	t.Run("logout clears the session", func(t *testing.T) {
		status, _, body := ts.post(t, "/api/auth/logout", nil)
		require.Equal(t, http.StatusOK, status)
		assert.JSONEq(t, `{"success":true}`, string(body))
		assert.False(t, verify(t))

		status, _, _ = ts.post(t, "/api/blogs", map[string]string{"title": "x", "content": "y"})
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("logout is idempotent", func(t *testing.T) {
		status, _, _ := ts.post(t, "/api/auth/logout", nil)
		assert.Equal(t, http.StatusOK, status)
	})

	t.Run("login is rate limited", func(t *testing.T) {
		env.app.loginLimiter = authservice.NewLoginLimiter(2)

		for i := 0; i < 2; i++ {
			status, _, _ := ts.post(t, "/api/auth/login", map[string]string{"password": "wrong"})
			require.Equal(t, http.StatusUnauthorized, status)
		}

		status, header, _ := ts.post(t, "/api/auth/login", map[string]string{"password": testAdminSecret})
		assert.Equal(t, http.StatusTooManyRequests, status)
		assert.Equal(t, "60", header.Get("Retry-After"))
		assert.False(t, verify(t))
	})
}

func TestProtectedRoutes(t *testing.T) {
	env := newTestApplication(t)
	ts := newTestServer(t, env.app.routes())

	testCases := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodPost, "/api/blogs", map[string]string{"title": "t", "content": "c"}},
		{http.MethodPut, "/api/blogs/1", map[string]string{"title": "t", "content": "c"}},
		{http.MethodDelete, "/api/blogs/1", nil},
		{http.MethodGet, "/api/photos/upload-credential", nil},
		{http.MethodPost, "/api/photos", map[string]string{"title": "t"}},
		{http.MethodPut, "/api/photos", map[string]any{"id": 1}},
		{http.MethodDelete, "/api/photos?id=1", nil},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			status, header, body := ts.do(t, tc.method, tc.path, tc.body)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.JSONEq(t, `{"error":"authentication required"}`, string(body))
			assert.Contains(t, header.Values("Vary"), "Cookie")
		})
	}

	t.Run("forged cookie", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/photos/upload-credential", nil)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: authservice.SessionName, Value: "forged"})

		res, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer res.Body.Close()

		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	})
}

func TestBlogHandlers(t *testing.T) {
	env := newTestApplication(t)
	ts := newTestServer(t, env.app.routes())
	ts.login(t)

	t.Run("empty list", func(t *testing.T) {
		status, _, body := ts.get(t, "/api/blogs")
		require.Equal(t, http.StatusOK, status)
		assert.JSONEq(t, `[]`, string(body))
	})

	var created blogservice.Post

	t.Run("create derives slug and read time", func(t *testing.T) {
		status, header, body := ts.post(t, "/api/blogs", map[string]any{
			"title":       "Hello World",
			"description": "first post",
			"content":     "some words in a post",
			"tags":        "go, web, go",
		})
		require.Equal(t, http.StatusCreated, status, string(body))

		created = decode[blogservice.Post](t, body)
		assert.NotZero(t, created.ID)
		assert.Equal(t, "hello-world", created.Slug)
		assert.Equal(t, "1 min read", created.ReadTime)
		assert.Equal(t, blogservice.Tags{"go", "web"}, created.Tags)
		assert.Equal(t, "/api/blogs/hello-world", header.Get("Location"))
	})

	t.Run("duplicate slug", func(t *testing.T) {
		status, _, _ := ts.post(t, "/api/blogs", map[string]any{"title": "Hello World", "content": "again"})
		assert.Equal(t, http.StatusConflict, status)
	})

	t.Run("validation", func(t *testing.T) {
		status, _, body := ts.post(t, "/api/blogs", map[string]any{"title": "No Content", "slug": "Bad Slug"})
		require.Equal(t, http.StatusBadRequest, status)

		fields := errorFields(t, body)
		assert.Contains(t, fields, "content")
		assert.Contains(t, fields, "slug")
	})

	t.Run("unknown field", func(t *testing.T) {
		status, _, _ := ts.post(t, "/api/blogs", map[string]any{"title": "t", "content": "c", "author": "me"})
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("get by slug", func(t *testing.T) {
		status, _, body := ts.get(t, "/api/blogs/hello-world")
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, created.ID, decode[blogservice.Post](t, body).ID)

		status, _, _ = ts.get(t, "/api/blogs/missing-post")
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("list", func(t *testing.T) {
		status, _, body := ts.get(t, "/api/blogs")
		require.Equal(t, http.StatusOK, status)

		posts := decode[[]blogservice.Post](t, body)
		require.Len(t, posts, 1)
		assert.Equal(t, created.Slug, posts[0].Slug)
	})

	t.Run("update", func(t *testing.T) {
		status, _, body := ts.put(t, fmt.Sprintf("/api/blogs/%d", created.ID), map[string]any{
			"title":   "Hello Again",
			"content": strings.Repeat("word ", 450),
			"tags":    []string{"rewrite"},
		})
		require.Equal(t, http.StatusOK, status, string(body))

		updated := decode[blogservice.Post](t, body)
		assert.Equal(t, "Hello Again", updated.Title)
		assert.Equal(t, "hello-world", updated.Slug)
		assert.Equal(t, "3 min read", updated.ReadTime)
		assert.Equal(t, blogservice.Tags{"rewrite"}, updated.Tags)

		// the cached list must reflect the update
		_, _, body = ts.get(t, "/api/blogs")
		assert.Equal(t, "Hello Again", decode[[]blogservice.Post](t, body)[0].Title)
	})

	t.Run("update errors", func(t *testing.T) {
		status, _, _ := ts.put(t, "/api/blogs/9999", map[string]any{"title": "t", "content": "c"})
		assert.Equal(t, http.StatusNotFound, status)

		status, _, _ = ts.put(t, "/api/blogs/abc", map[string]any{"title": "t", "content": "c"})
		assert.Equal(t, http.StatusBadRequest, status)

		// ids past the range of the integer column are rejected before the query
		status, _, body := ts.put(t, "/api/blogs/4294967296", map[string]any{"title": "t", "content": "c"})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.JSONEq(t, `{"error":"invalid ID parameter"}`, string(body))

		status, _, _ = ts.delete(t, "/api/blogs/2147483648")
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("delete", func(t *testing.T) {
		status, _, body := ts.delete(t, fmt.Sprintf("/api/blogs/%d", created.ID))
		require.Equal(t, http.StatusOK, status)
		assert.JSONEq(t, fmt.Sprintf(`{"success":true,"id":%d}`, created.ID), string(body))

		status, _, _ = ts.get(t, "/api/blogs/hello-world")
		assert.Equal(t, http.StatusNotFound, status)

		status, _, _ = ts.delete(t, fmt.Sprintf("/api/blogs/%d", created.ID))
		assert.Equal(t, http.StatusNotFound, status)
	})
}

func TestPhotoHandlers(t *testing.T) {
	env := newTestApplication(t)
	ts := newTestServer(t, env.app.routes())
	ts.login(t)

	var uploaded photoservice.Photo

	t.Run("server upload", func(t *testing.T) {
		status, _, body := ts.post(t, "/api/photos", map[string]any{
			"title":    "Harbour",
			"location": "Lisbon",
			"image":    encodePNG(t, 300, 100),
		})
		require.Equal(t, http.StatusCreated, status, string(body))

		uploaded = decode[photoservice.Photo](t, body)
		assert.Equal(t, photoservice.SizeWide, uploaded.SizeClass)
		assert.Equal(t, 300, uploaded.Width)
		assert.Equal(t, 100, uploaded.Height)
		assert.True(t, env.images.Has(uploaded.ImageRef))
	})

	t.Run("direct upload", func(t *testing.T) {
		status, _, body := ts.post(t, "/api/photos", map[string]any{
			"title":     "Tower",
			"image_url": "https://res.example.com/demo/image/upload/photography/tower.jpg",
			"image_ref": "photography/tower",
			"width":     600,
			"height":    1000,
		})
		require.Equal(t, http.StatusCreated, status, string(body))
		assert.Equal(t, photoservice.SizeTall, decode[photoservice.Photo](t, body).SizeClass)
	})

	t.Run("caller size class is rejected", func(t *testing.T) {
		status, _, body := ts.post(t, "/api/photos", map[string]any{
			"title":      "Tower",
			"image":      encodePNG(t, 10, 10),
			"size_class": "wide",
		})
		require.Equal(t, http.StatusBadRequest, status)
		assert.Contains(t, errorFields(t, body), "size_class")
	})

	t.Run("not an image", func(t *testing.T) {
		status, _, body := ts.post(t, "/api/photos", map[string]any{"title": "Text", "image": "aGVsbG8gd29ybGQ="})
		require.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "must be a jpeg, png, gif or webp image", errorFields(t, body)["image"])
	})

	t.Run("list", func(t *testing.T) {
		status, _, body := ts.get(t, "/api/photos")
		require.Equal(t, http.StatusOK, status)
		assert.Len(t, decode[[]photoservice.Photo](t, body), 2)
	})

	t.Run("update size", func(t *testing.T) {
		status, _, body := ts.put(t, "/api/photos", map[string]any{"id": uploaded.ID, "size": "normal", "title": "Harbour at dusk"})
		require.Equal(t, http.StatusOK, status, string(body))

		updated := decode[photoservice.Photo](t, body)
		assert.Equal(t, photoservice.SizeNormal, updated.SizeClass)
		assert.Equal(t, "Harbour at dusk", updated.Title)
		assert.Equal(t, "Lisbon", updated.Location)
	})

	t.Run("update errors", func(t *testing.T) {
		status, _, body := ts.put(t, "/api/photos", map[string]any{"title": "no id"})
		require.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "must be provided", errorFields(t, body)["id"])

		status, _, _ = ts.put(t, "/api/photos", map[string]any{"id": 9999, "title": "ghost"})
		assert.Equal(t, http.StatusNotFound, status)

		status, _, body = ts.put(t, "/api/photos", map[string]any{"id": uploaded.ID, "size_class": "huge"})
		require.Equal(t, http.StatusBadRequest, status)
		assert.Contains(t, errorFields(t, body), "size_class")
	})

	t.Run("upload credential", func(t *testing.T) {
		status, header, body := ts.get(t, "/api/photos/upload-credential")
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "no-store", header.Get("Cache-Control"))

		cred := decode[imagehost.Credential](t, body)
		assert.NotEmpty(t, cred.Signature)
		assert.Equal(t, "demo", cred.CloudName)
		assert.Equal(t, imagehost.DefaultFolder, cred.Folder)
	})

	t.Run("delete keeps the row when the host fails", func(t *testing.T) {
		env.images.Fail(imagehost.OpDestroy, http.StatusInternalServerError)

		status, _, _ := ts.delete(t, fmt.Sprintf("/api/photos?id=%d", uploaded.ID))
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.True(t, env.images.Has(uploaded.ImageRef))

		_, _, body := ts.get(t, "/api/photos")
		assert.Len(t, decode[[]photoservice.Photo](t, body), 2)

		env.images.Fail(imagehost.OpDestroy, 0)
	})

	t.Run("delete", func(t *testing.T) {
		status, _, body := ts.delete(t, fmt.Sprintf("/api/photos?id=%d", uploaded.ID))
		require.Equal(t, http.StatusOK, status, string(body))
		assert.Contains(t, decode[map[string]string](t, body), "message")
		assert.False(t, env.images.Has(uploaded.ImageRef))

		status, _, _ = ts.delete(t, fmt.Sprintf("/api/photos?id=%d", uploaded.ID))
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("delete without id", func(t *testing.T) {
		status, _, body := ts.delete(t, "/api/photos")
		require.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "must be provided", errorFields(t, body)["id"])

		status, _, _ = ts.delete(t, "/api/photos?id=abc")
		assert.Equal(t, http.StatusBadRequest, status)

		status, _, body = ts.delete(t, "/api/photos?id=4294967296")
		require.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "must not be greater than 2147483647", errorFields(t, body)["id"])

		status, _, body = ts.put(t, "/api/photos", map[string]any{"id": 4294967296, "title": "x"})
		require.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "must not be greater than 2147483647", errorFields(t, body)["id"])
	})

	t.Run("host timeout", func(t *testing.T) {
		env.images.Delay(2 * time.Second)
		defer env.images.Delay(0)

		status, header, _ := ts.post(t, "/api/photos", map[string]any{"title": "Slow", "image": encodePNG(t, 20, 20)})
		assert.Equal(t, http.StatusServiceUnavailable, status)
		assert.NotEmpty(t, header.Get("Retry-After"))
	})
}

func TestContactHandler(t *testing.T) {
	env := newTestApplication(t)
	ts := newTestServer(t, env.app.routes())

	t.Run("accepted", func(t *testing.T) {
		status, _, body := ts.post(t, "/api/contact", map[string]string{
			"name":    "Ada",
			"email":   "ada@example.com",
			"subject": "Prints for sale?",
			"message": "I would like to buy the harbour print.",
		})
		require.Equal(t, http.StatusAccepted, status, string(body))

		res := decode[map[string]string](t, body)
		require.NotEmpty(t, res["id"])

		published := env.producer.published()
		require.Len(t, published, 1)

		var msg contactservice.Message
		require.NoError(t, json.Unmarshal(published[0], &msg))
		assert.Equal(t, res["id"], msg.ID)
		assert.Equal(t, "ada@example.com", msg.Email)
	})

	t.Run("invalid", func(t *testing.T) {
		status, _, body := ts.post(t, "/api/contact", map[string]string{"name": "A", "email": "nope"})
		require.Equal(t, http.StatusBadRequest, status)

		fields := errorFields(t, body)
		for _, field := range []string{"name", "email", "subject", "message"} {
			assert.Contains(t, fields, field)
		}
		assert.Len(t, env.producer.published(), 1)
	})
}

func TestHealthCheckHandler(t *testing.T) {
	env := newTestApplication(t)
	ts := newTestServer(t, env.app.routes())

	status, _, body := ts.get(t, "/api/healthcheck")
	require.Equal(t, http.StatusOK, status)

	res := decode[struct {
		Status     string            `json:"status"`
		SystemInfo map[string]string `json:"system_info"`
	}](t, body)
	assert.Equal(t, "available", res.Status)
	assert.Equal(t, "up", res.SystemInfo["database"])
	assert.Equal(t, "test", res.SystemInfo["version"])
}

func TestRouterErrors(t *testing.T) {
	env := newTestApplication(t)
	ts := newTestServer(t, env.app.routes())

	status, _, body := ts.get(t, "/api/nothing-here")
	assert.Equal(t, http.StatusNotFound, status)
	assert.JSONEq(t, `{"error":"resource not found"}`, string(body))

	status, _, _ = ts.do(t, http.MethodPatch, "/api/blogs", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, status)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestApplication(t)
	ts := newTestServer(t, env.app.routes())

	ts.get(t, "/api/blogs")
	ts.get(t, "/api/blogs/missing-post")

	status, _, body := ts.get(t, "/metrics")
	require.Equal(t, http.StatusOK, status)

	text := string(body)
	assert.Contains(t, text, `portfolio_http_requests_total{method="GET",route="/api/blogs",status="200"} 1`)
	assert.Contains(t, text, `portfolio_http_requests_total{method="GET",route="/api/blogs/:slug",status="404"} 1`)
	assert.Contains(t, text, "go_goroutines")
	assert.Contains(t, text, "go_sql_open_connections")
}
