package whatsrb

import (
	"net/http"
	"reflect"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// HTTPClient abstracts the http.Client Do method for easier testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option customises a Client or Transport at construction time.
type Option func(*options)

type options struct {
	httpClient   HTTPClient
	logger       zerolog.Logger
	clock        Clock
	maxBodyBytes int64
	requestID    func() string
}

const defaultMaxBodyBytes = 8 * 1024 * 1024

func defaultOptions() *options {
	return &options{
		logger:       zerolog.Nop(),
		clock:        realClock{},
		maxBodyBytes: defaultMaxBodyBytes,
		requestID:    uuid.NewString,
	}
}

// WithHTTPClient overrides the HTTP client used for requests. The client is
// responsible for honouring its own timeouts; the configured per-request
// timeout is still applied through the request context.
func WithHTTPClient(client HTTPClient) Option {
	return func(o *options) {
		if client != nil {
			o.httpClient = client
		}
	}
}

// WithLogger attaches a zerolog logger. A zero logger is replaced with Nop.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		if !reflect.ValueOf(logger).IsZero() {
			o.logger = logger
		}
	}
}

// WithClock swaps out the clock used by polling loops.
func WithClock(clock Clock) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithBodyLimit caps how many response bytes are read per request. A longer
// body fails with ErrResponseTooLarge.
func WithBodyLimit(limit int64) Option {
	return func(o *options) {
		if limit > 0 {
			o.maxBodyBytes = limit
		}
	}
}

// WithRequestIDGenerator replaces the X-Request-Id generator.
func WithRequestIDGenerator(gen func() string) Option {
	return func(o *options) {
		if gen != nil {
			o.requestID = gen
		}
	}
}

func applyOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}
