package whatsrb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"testing"
)

func TestTransportMapsStatusToErrorKind(t *testing.T) {
	cases := []struct {
		status int
		kind   error
	}{
		{http.StatusUnauthorized, ErrAuthentication},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusConflict, ErrConflict},
		{http.StatusUnprocessableEntity, ErrValidation},
		{http.StatusInternalServerError, ErrServer},
		{http.StatusBadGateway, ErrServer},
		{599, ErrServer},
		{http.StatusTeapot, ErrUnexpectedStatus},
		{http.StatusBadRequest, ErrUnexpectedStatus},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprint(tc.status), func(t *testing.T) {
			client, _ := newTestClient(t, respondJSON(tc.status, `{"error":"boom","code":7}`))

			_, err := client.Transport().Get(context.Background(), "/sessions")
			if !errors.Is(err, tc.kind) {
				t.Fatalf("expected %v, got %v", tc.kind, err)
			}
			if !errors.Is(err, ErrAPI) {
				t.Fatalf("expected every taxonomy error to match ErrAPI, got %v", err)
			}

			var apiErr *Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *Error, got %T", err)
			}
			if apiErr.StatusCode != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, apiErr.StatusCode)
			}
			if apiErr.Message != "boom" {
				t.Fatalf("expected message boom, got %q", apiErr.Message)
			}
			wantBody := map[string]any{"error": "boom", "code": json.Number("7")}
			if !reflect.DeepEqual(apiErr.Body, wantBody) {
				t.Fatalf("expected body %v, got %v", wantBody, apiErr.Body)
			}
			if apiErr.RetryAfter != nil {
				t.Fatalf("expected no retry-after on %d", tc.status)
			}
		})
	}
}

func TestTransportErrorBodyKeepsLargeIntegers(t *testing.T) {
	client, _ := newTestClient(t, respondJSON(http.StatusUnprocessableEntity,
		`{"error":"x","count":12345678901234567890,"ratio":0.5}`))

	_, err := client.Transport().Get(context.Background(), "/sessions")
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	body, ok := apiErr.Body.(map[string]any)
	if !ok {
		t.Fatalf("expected object body, got %T", apiErr.Body)
	}
	if got := body["count"]; got != json.Number("12345678901234567890") {
		t.Fatalf("expected exact count, got %#v", got)
	}
	if got := body["ratio"]; got != json.Number("0.5") {
		t.Fatalf("expected ratio as number literal, got %#v", got)
	}
	if apiErr.Message != "x" {
		t.Fatalf("expected message x, got %q", apiErr.Message)
	}
}

func TestTransportErrorMessageFallbacks(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		message string
		nilBody bool
	}{
		{"message field", `{"message":"slow down"}`, "slow down", false},
		{"error wins", `{"error":"first","message":"second"}`, "first", false},
		{"no known field", `{"detail":"x"}`, "Unknown error", false},
		{"invalid json", `<html>oops</html>`, "Unknown error", true},
		{"empty body", ``, "Unknown error", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, _ := newTestClient(t, respondJSON(http.StatusNotFound, tc.body))

			_, err := client.Transport().Get(context.Background(), "/sessions/missing")
			var apiErr *Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *Error, got %v", err)
			}
			if apiErr.Message != tc.message {
				t.Fatalf("expected message %q, got %q", tc.message, apiErr.Message)
			}
			if tc.nilBody && apiErr.Body != nil {
				t.Fatalf("expected nil body, got %v", apiErr.Body)
			}
		})
	}
}

func TestTransportRateLimitRetryAfter(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   *int
	}{
		{"numeric", "30", intPtr(30)},
		{"missing", "", nil},
		{"http date", "Wed, 21 Oct 2026 07:28:00 GMT", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if tc.header != "" {
					w.Header().Set("Retry-After", tc.header)
				}
				respondJSON(http.StatusTooManyRequests, `{"error":"Rate limit exceeded"}`)(w, r)
			})

			_, err := client.Transport().Get(context.Background(), "/usage")
			if !errors.Is(err, ErrRateLimit) {
				t.Fatalf("expected ErrRateLimit, got %v", err)
			}
			var apiErr *Error
			errors.As(err, &apiErr)
			switch {
			case tc.want == nil && apiErr.RetryAfter != nil:
				t.Fatalf("expected nil retry-after, got %d", *apiErr.RetryAfter)
			case tc.want != nil && (apiErr.RetryAfter == nil || *apiErr.RetryAfter != *tc.want):
				t.Fatalf("expected retry-after %d, got %v", *tc.want, apiErr.RetryAfter)
			}
		})
	}
}

func intPtr(v int) *int { return &v }

func TestTransportSuccessBodies(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"empty", "", ""},
		{"whitespace", "  \n", ""},
		{"malformed", "{not json", ""},
		{"object", `{"ok":true}`, `{"ok":true}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, _ := newTestClient(t, respondJSON(http.StatusOK, tc.body))

			raw, err := client.Transport().Delete(context.Background(), "/sessions/1")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.want == "" && raw != nil {
				t.Fatalf("expected nil result, got %s", raw)
			}
			if tc.want != "" && string(raw) != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, raw)
			}
		})
	}
}

func TestTransportSendsStandardHeaders(t *testing.T) {
	client, rec := newTestClient(t, respondJSON(http.StatusOK, `{}`),
		WithRequestIDGenerator(func() string { return "req-123" }))

	if _, err := client.Transport().Post(context.Background(), "/sessions", map[string]any{"name": "bot"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := rec.last(t)
	if req.Path != "/api/v1/sessions" {
		t.Fatalf("expected versioned path, got %s", req.Path)
	}
	wantHeaders := map[string]string{
		"Authorization": "Bearer " + testAPIKey,
		"Content-Type":  "application/json",
		"Accept":        "application/json",
		"User-Agent":    "whatsrb-cloud-go/" + Version,
		"X-Request-Id":  "req-123",
	}
	for name, want := range wantHeaders {
		if got := req.Header.Get(name); got != want {
			t.Fatalf("expected header %s=%q, got %q", name, want, got)
		}
	}
	if string(req.Body) != `{"name":"bot"}` {
		t.Fatalf("unexpected body %s", req.Body)
	}
}

func TestTransportNilBodySendsNothing(t *testing.T) {
	client, rec := newTestClient(t, respondJSON(http.StatusOK, `{}`))

	if _, err := client.Transport().Post(context.Background(), "/business_accounts/connect", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body := rec.last(t).Body; len(body) != 0 {
		t.Fatalf("expected empty body, got %q", body)
	}
}

func TestTransportRejectsInsecureRemoteURL(t *testing.T) {
	called := false
	noNetwork := httpClientFunc(func(*http.Request) (*http.Response, error) {
		called = true
		return nil, errors.New("should not be called")
	})

	cases := []string{
		"http://api.whatsrb.com",
		"http://10.0.0.1:3000",
		"ftp://api.whatsrb.com",
		"api.whatsrb.com",
	}
	for _, baseURL := range cases {
		transport, err := NewTransport(Config{APIKey: testAPIKey, BaseURL: baseURL}, WithHTTPClient(noNetwork))
		if err != nil {
			t.Fatalf("NewTransport(%q) returned error: %v", baseURL, err)
		}
		_, err = transport.Get(context.Background(), "/sessions")
		if !errors.Is(err, ErrConfiguration) {
			t.Fatalf("expected ErrConfiguration for %q, got %v", baseURL, err)
		}
	}
	if called {
		t.Fatalf("expected no request to be issued for insecure urls")
	}
}

func TestTransportAllowsLoopbackHTTP(t *testing.T) {
	for _, baseURL := range []string{"http://localhost:3000", "http://127.0.0.1:3000", "https://api.whatsrb.com"} {
		transport, err := NewTransport(Config{APIKey: testAPIKey, BaseURL: baseURL})
		if err != nil {
			t.Fatalf("NewTransport(%q) returned error: %v", baseURL, err)
		}
		endpoint, err := transport.resolve("/sessions")
		if err != nil {
			t.Fatalf("resolve for %q returned error: %v", baseURL, err)
		}
		if !strings.HasSuffix(endpoint, "/api/v1/sessions") {
			t.Fatalf("unexpected endpoint %s", endpoint)
		}
	}
}

func TestTransportRequiresAPIKey(t *testing.T) {
	for _, key := range []string{"", "   "} {
		_, err := NewTransport(Config{APIKey: key})
		if !errors.Is(err, ErrAuthentication) {
			t.Fatalf("expected ErrAuthentication for key %q, got %v", key, err)
		}
	}
}

func TestTransportWrapsNetworkFailures(t *testing.T) {
	injected := errors.New("connection refused")
	transport, err := NewTransport(
		Config{APIKey: testAPIKey},
		WithHTTPClient(httpClientFunc(func(*http.Request) (*http.Response, error) { return nil, injected })),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = transport.Get(context.Background(), "/usage")
	if !errors.Is(err, injected) {
		t.Fatalf("expected wrapped network error, got %v", err)
	}
	if errors.Is(err, ErrAPI) {
		t.Fatalf("network failures must not carry a taxonomy kind")
	}
}

func TestTransportBodyLimit(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		limit  int64
		want   string
	}{
		{name: "fits exactly", status: http.StatusOK, body: `{"data":1}`, limit: 10, want: `{"data":1}`},
		{name: "success too long", status: http.StatusOK, body: `{"data":"truncated"}`, limit: 4},
		{name: "error too long", status: http.StatusUnprocessableEntity, body: `{"error":"invalid phone number"}`, limit: 8},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			transport, err := NewTransport(
				Config{APIKey: testAPIKey},
				WithBodyLimit(tc.limit),
				WithHTTPClient(httpClientFunc(func(*http.Request) (*http.Response, error) {
					return &http.Response{
						StatusCode: tc.status,
						Header:     http.Header{},
						Body:       io.NopCloser(strings.NewReader(tc.body)),
					}, nil
				})),
			)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			raw, err := transport.Get(context.Background(), "/usage")
			if tc.want != "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if string(raw) != tc.want {
					t.Fatalf("expected %s, got %s", tc.want, raw)
				}
				return
			}
			if !errors.Is(err, ErrResponseTooLarge) {
				t.Fatalf("expected ErrResponseTooLarge, got %v", err)
			}
			wantMsg := fmt.Sprintf("whatsrb transport: response body exceeds %d bytes", tc.limit)
			if err.Error() != wantMsg {
				t.Fatalf("expected %q, got %q", wantMsg, err.Error())
			}
			if errors.Is(err, ErrAPI) {
				t.Fatalf("oversized bodies must not carry a taxonomy kind")
			}
			if raw != nil {
				t.Fatalf("expected no body, got %s", raw)
			}
		})
	}
}

func TestSecretsAreFiltered(t *testing.T) {
	cfg := Config{APIKey: testAPIKey, BaseURL: "https://api.whatsrb.com"}
	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	outputs := []string{
		fmt.Sprintf("%v", cfg),
		fmt.Sprintf("%+v", cfg),
		fmt.Sprintf("%#v", cfg),
		fmt.Sprintf("%v", client),
		fmt.Sprintf("%s", client.Transport()),
	}
	for _, out := range outputs {
		if strings.Contains(out, testAPIKey) {
			t.Fatalf("api key leaked in %q", out)
		}
	}
}
