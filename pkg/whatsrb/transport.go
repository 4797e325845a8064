package whatsrb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ErrResponseTooLarge is returned when a response body is longer than the
// configured body limit (see WithBodyLimit).
var ErrResponseTooLarge = errors.New("whatsrb transport: response body too large")

type bodyLimitError struct {
	limit int64
}

func (e *bodyLimitError) Error() string {
	return fmt.Sprintf("whatsrb transport: response body exceeds %d bytes", e.limit)
}

func (e *bodyLimitError) Is(target error) bool { return target == ErrResponseTooLarge }

// Transport issues single JSON requests against the API and maps failures onto
// the error taxonomy. It holds no mutable state and is safe for concurrent use
// when its HTTPClient is.
type Transport struct {
	logger       zerolog.Logger
	apiKey       string
	baseURL      string
	timeout      time.Duration
	httpClient   HTTPClient
	userAgent    string
	maxBodyBytes int64
	requestID    func() string
}

// NewTransport constructs a Transport from cfg. An empty API key is rejected
// with ErrAuthentication.
func NewTransport(cfg Config, opts ...Option) (*Transport, error) {
	return newTransport(cfg.withDefaults(), applyOptions(opts))
}

func newTransport(cfg Config, o *options) (*Transport, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, newError(ErrAuthentication, "API key is required")
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = defaultHTTPClient(cfg.Timeout)
	}

	return &Transport{
		logger:       o.logger,
		apiKey:       cfg.APIKey,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		timeout:      cfg.Timeout,
		httpClient:   httpClient,
		userAgent:    "whatsrb-cloud-go/" + Version,
		maxBodyBytes: o.maxBodyBytes,
		requestID:    o.requestID,
	}, nil
}

func defaultHTTPClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{Timeout: timeout}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           dialer.DialContext,
			TLSHandshakeTimeout:   timeout,
			ResponseHeaderTimeout: timeout,
		},
	}
}

// String keeps the API key out of logs and fmt output.
func (t *Transport) String() string {
	return fmt.Sprintf("whatsrb.Transport{base_url=%q api_key=[FILTERED]}", t.baseURL)
}

// Get issues a GET request. The result is nil when the body is empty or not JSON.
func (t *Transport) Get(ctx context.Context, path string) (json.RawMessage, error) {
	return t.do(ctx, http.MethodGet, path, nil)
}

// Post issues a POST request with body encoded as JSON. A nil body sends no payload.
func (t *Transport) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return t.do(ctx, http.MethodPost, path, body)
}

// Patch issues a PATCH request with body encoded as JSON.
func (t *Transport) Patch(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return t.do(ctx, http.MethodPatch, path, body)
}

// Delete issues a DELETE request.
func (t *Transport) Delete(ctx context.Context, path string) (json.RawMessage, error) {
	return t.do(ctx, http.MethodDelete, path, nil)
}

func (t *Transport) do(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	endpoint, err := t.resolve(path)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("whatsrb transport: encode body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("whatsrb transport: new request: %w", err)
	}
	requestID := t.requestID()
	req.Header.Set("Authorization", "Bearer "+t.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", t.userAgent)
	req.Header.Set("X-Request-Id", requestID)

	start := time.Now()
	resp, err := t.httpClient.Do(req)
	if err != nil {
		t.logger.Warn().
			Str("method", method).
			Str("path", path).
			Str("request_id", requestID).
			Err(err).
			Msg("whatsrb request failed")
		return nil, fmt.Errorf("whatsrb transport: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := t.readBody(resp.Body)
	if err != nil {
		t.logger.Warn().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Str("request_id", requestID).
			Err(err).
			Msg("whatsrb response unreadable")
		return nil, err
	}

	event := t.logger.Debug()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		event = t.logger.Warn()
	}
	event.
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Str("request_id", requestID).
		Msg("whatsrb request completed")

	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return successBody(raw), nil
	}
	return nil, errorFromResponse(resp.StatusCode, decodeLenient(raw), resp.Header)
}

// resolve enforces the transport policy: https everywhere except loopback.
func (t *Transport) resolve(path string) (string, error) {
	endpoint := t.baseURL + apiPrefix + path
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", newError(ErrConfiguration, fmt.Sprintf("invalid url %q: %v", endpoint, err))
	}
	host := u.Hostname()
	switch {
	case u.Scheme == "https" && host != "":
	case u.Scheme == "http" && (host == "localhost" || host == "127.0.0.1"):
	default:
		return "", newError(ErrConfiguration, fmt.Sprintf("Only HTTPS connections are allowed (got %s://%s)", u.Scheme, host))
	}
	return endpoint, nil
}

// readBody reads at most maxBodyBytes. A longer body is an error rather than
// a silently truncated document.
func (t *Transport) readBody(rc io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(rc, t.maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("whatsrb transport: read body: %w", err)
	}
	if int64(len(data)) > t.maxBodyBytes {
		return nil, &bodyLimitError{limit: t.maxBodyBytes}
	}
	return data, nil
}

func successBody(raw []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return nil
	}
	return json.RawMessage(trimmed)
}

func decodeLenient(raw []byte) any {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}
	if !json.Valid(trimmed) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var parsed any
	if err := dec.Decode(&parsed); err != nil {
		return nil
	}
	return parsed
}
