// Package webhooksig verifies the signatures the API attaches to webhook
// deliveries.
//
// A delivery carries the hex HMAC-SHA256 of the raw request body, keyed with
// the webhook secret, in the X-Whatsrb-Signature header as "sha256=<hex>", and
// the Unix time it was signed in X-Whatsrb-Timestamp. Pass the body exactly as
// received; re-encoding it changes the digest.
package webhooksig

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

const (
	// SignatureHeader carries "sha256=<hex>".
	SignatureHeader = "X-Whatsrb-Signature"
	// TimestampHeader carries the signing time in Unix seconds.
	TimestampHeader = "X-Whatsrb-Timestamp"
	// Prefix is the algorithm tag every signature must start with.
	Prefix = "sha256="
	// DefaultTolerance is the maximum accepted age (or clock skew) of a
	// timestamped delivery.
	DefaultTolerance = 300 * time.Second
)

// Option adjusts a single verification.
type Option func(*settings)

type settings struct {
	timestamp    string
	hasTimestamp bool
	tolerance    time.Duration
	now          func() time.Time
}

// WithTimestamp enables replay protection: ts must be an integer Unix time
// within the tolerance of now.
func WithTimestamp(ts string) Option {
	return func(s *settings) {
		s.timestamp = ts
		s.hasTimestamp = true
	}
}

// WithTolerance overrides DefaultTolerance.
func WithTolerance(d time.Duration) Option {
	return func(s *settings) {
		if d >= 0 {
			s.tolerance = d
		}
	}
}

// WithNow replaces the clock used for the replay check.
func WithNow(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// Verify reports whether signature is the signature of payload under secret.
// Any malformed or missing input yields false; Verify never panics, so the
// result can gate a request directly.
func Verify(payload []byte, secret, signature string, opts ...Option) bool {
	s := settings{tolerance: DefaultTolerance, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}

	if payload == nil || secret == "" || signature == "" {
		return false
	}
	if !strings.HasPrefix(signature, Prefix) {
		return false
	}
	if s.hasTimestamp && !fresh(s.timestamp, s.now(), s.tolerance) {
		return false
	}

	expected := Sign(payload, secret)
	if len(expected) != len(signature) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}

// Sign returns the "sha256=<hex>" signature of payload under secret.
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return Prefix + hex.EncodeToString(mac.Sum(nil))
}

func fresh(ts string, now time.Time, tolerance time.Duration) bool {
	unix, err := strconv.ParseInt(strings.TrimSpace(ts), 10, 64)
	if err != nil {
		return false
	}
	age := now.Unix() - unix
	if age < 0 {
		age = -age
	}
	return age <= int64(tolerance/time.Second)
}
