package whatsrb

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

const testAPIKey = "wrb_live_secret"

type recordedRequest struct {
	Method  string
	Path    string
	Escaped string
	Query   string
	Header  http.Header
	Body    []byte
}

func (r recordedRequest) jsonBody(t *testing.T) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(r.Body, &body); err != nil {
		t.Fatalf("request body %q is not a JSON object: %v", r.Body, err)
	}
	return body
}

type recorder struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (r *recorder) add(req recordedRequest) {
	r.mu.Lock()
	r.requests = append(r.requests, req)
	r.mu.Unlock()
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.requests)
}

func (r *recorder) last(t *testing.T) recordedRequest {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.requests) == 0 {
		t.Fatalf("expected at least one request")
	}
	return r.requests[len(r.requests)-1]
}

// newTestClient points a Client at an httptest server on 127.0.0.1, which the
// transport policy accepts over plain HTTP.
func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) (*Client, *recorder) {
	t.Helper()
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		rec.add(recordedRequest{
			Method:  r.Method,
			Path:    r.URL.Path,
			Escaped: r.URL.EscapedPath(),
			Query:   r.URL.RawQuery,
			Header:  r.Header.Clone(),
			Body:    body,
		})
		r.Body = io.NopCloser(bytes.NewReader(body))
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{APIKey: testAPIKey, BaseURL: srv.URL, Timeout: 5 * time.Second}, opts...)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return client, rec
}

func respondJSON(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

// sequence answers successive requests with the given bodies, repeating the
// last one once exhausted.
func sequence(bodies ...string) http.HandlerFunc {
	var mu sync.Mutex
	n := 0
	return func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		body := bodies[n]
		if n < len(bodies)-1 {
			n++
		}
		mu.Unlock()
		respondJSON(http.StatusOK, body)(w, r)
	}
}

type httpClientFunc func(*http.Request) (*http.Response, error)

func (f httpClientFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }
