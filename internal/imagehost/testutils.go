package imagehost

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// FakeHost is an in-memory stand-in for the image host API. It checks request
// signatures and reads real pixel dimensions from uploaded files.
type FakeHost struct {
	Server *httptest.Server
	Config Config

	mu       sync.Mutex
	images   map[string]UploadResult
	seq      int
	failures map[string]int
	delay    time.Duration
}

func NewFakeHost(t *testing.T) *FakeHost {
	t.Helper()

	f := &FakeHost{
		images:   make(map[string]UploadResult),
		failures: make(map[string]int),
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serveHTTP))
	f.Config = Config{
		CloudName:    "demo",
		APIKey:       "123456789",
		APISecret:    "fake-secret",
		Folder:       DefaultFolder,
		BaseURL:      f.Server.URL,
		DeliveryHost: "res.example.com",
		Timeout:      2 * time.Second,
	}

	t.Cleanup(f.Server.Close)

	return f
}

// Fail makes every later call of op answer with status until cleared with status 0.
func (f *FakeHost) Fail(op string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if status == 0 {
		delete(f.failures, op)
		return
	}
	f.failures[op] = status
}

// Delay holds every response for d.
func (f *FakeHost) Delay(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delay = d
}

// Put stores an image as if a client had uploaded it directly.
func (f *FakeHost) Put(res UploadResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.images[res.PublicID] = res
}

func (f *FakeHost) Has(publicID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.images[publicID]
	return ok
}

func (f *FakeHost) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.images)
}

func (f *FakeHost) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (f *FakeHost) writeError(w http.ResponseWriter, status int, msg string) {
	f.writeJSON(w, status, map[string]any{"error": map[string]string{"message": msg}})
}

func (f *FakeHost) serveHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	delay := f.delay
	f.mu.Unlock()
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	// /v1_1/<cloud>/<resource type>/<action>
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if r.Method != http.MethodPost || len(parts) != 4 || parts[0] != "v1_1" || parts[1] != f.Config.CloudName ||
		(parts[2] != "image" && parts[2] != "auto") {
		f.writeError(w, http.StatusNotFound, "not found")
		return
	}
	op := parts[3]

	f.mu.Lock()
	status := f.failures[op]
	f.mu.Unlock()
	if status != 0 {
		f.writeError(w, status, "injected failure")
		return
	}

	switch op {
	case OpUpload:
		f.upload(w, r)
	case OpDestroy:
		f.destroy(w, r)
	default:
		f.writeError(w, http.StatusNotFound, "unknown action")
	}
}

// unsignedParams are sent with a request but never part of its signature.
var unsignedParams = map[string]bool{
	"file":          true,
	"api_key":       true,
	"signature":     true,
	"resource_type": true,
	"cloud_name":    true,
}

// verify parses a form or multipart request and checks its api key and
// signature. It answers the request itself when the check fails.
func (f *FakeHost) verify(w http.ResponseWriter, r *http.Request) (map[string]string, bool) {
	err := r.ParseMultipartForm(MaxPayloadBytes + 1<<20)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		f.writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}

	params := make(map[string]string)
	for k := range r.PostForm {
		if !unsignedParams[k] {
			params[k] = r.PostForm.Get(k)
		}
	}

	signature, err := Sign(params, f.Config.APISecret)
	if err != nil || r.PostForm.Get("api_key") != f.Config.APIKey || r.PostForm.Get("signature") != signature {
		f.writeError(w, http.StatusUnauthorized, "Invalid Signature")
		return nil, false
	}

	return params, true
}

func (f *FakeHost) upload(w http.ResponseWriter, r *http.Request) {
	params, ok := f.verify(w, r)
	if !ok {
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		f.writeError(w, http.StatusBadRequest, "Missing required parameter - file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		f.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	format, width, height, err := Inspect(data)
	if err != nil {
		f.writeError(w, http.StatusBadRequest, "Invalid image file")
		return
	}

	f.mu.Lock()
	f.seq++
	id := fmt.Sprintf("%s/img%d", params["folder"], f.seq)
	res := UploadResult{
		PublicID:  id,
		SecureURL: fmt.Sprintf("https://%s/%s/image/upload/%s.%s", f.Config.DeliveryHost, f.Config.CloudName, id, format),
		Width:     width,
		Height:    height,
		Format:    format,
	}
	f.images[id] = res
	f.mu.Unlock()

	f.writeJSON(w, http.StatusOK, res)
}

func (f *FakeHost) destroy(w http.ResponseWriter, r *http.Request) {
	params, ok := f.verify(w, r)
	if !ok {
		return
	}

	f.mu.Lock()
	_, ok = f.images[params["public_id"]]
	delete(f.images, params["public_id"])
	f.mu.Unlock()

	result := "ok"
	if !ok {
		result = "not found"
	}
	f.writeJSON(w, http.StatusOK, map[string]string{"result": result})
}
