package relay

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/example/whatsrb-cloud-go/internal/models"
	"github.com/example/whatsrb-cloud-go/pkg/webhooksig"
)

const defaultMaxBodyBytes = 1 << 20

// EventPublisher forwards verified events downstream.
type EventPublisher interface {
	PublishEvent(ctx context.Context, event models.WebhookEvent) error
}

// ReadinessChecker reports whether the downstream is reachable.
type ReadinessChecker interface {
	IsReady() bool
}

// Option customises a Handler.
type Option func(*Handler)

// WithReadiness makes the health endpoint reflect checker.
func WithReadiness(checker ReadinessChecker) Option {
	return func(h *Handler) {
		h.ready = checker
	}
}

// WithMaxBodyBytes bounds accepted delivery bodies.
func WithMaxBodyBytes(limit int64) Option {
	return func(h *Handler) {
		if limit > 0 {
			h.maxBodyBytes = limit
		}
	}
}

// WithNow replaces the clock used for replay protection and receive times.
func WithNow(now func() time.Time) Option {
	return func(h *Handler) {
		if now != nil {
			h.now = now
		}
	}
}

// WithIDGenerator replaces the generator used for deliveries without an id.
func WithIDGenerator(gen func() string) Option {
	return func(h *Handler) {
		if gen != nil {
			h.newID = gen
		}
	}
}

// Handler verifies webhook deliveries and relays them to an EventPublisher.
type Handler struct {
	secret       string
	tolerance    time.Duration
	maxBodyBytes int64
	publisher    EventPublisher
	ready        ReadinessChecker
	logger       zerolog.Logger
	now          func() time.Time
	newID        func() string
}

// NewHandler builds a Handler. The secret is the one returned when the
// webhook was created.
func NewHandler(secret string, tolerance time.Duration, publisher EventPublisher, logger zerolog.Logger, opts ...Option) (*Handler, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("relay: webhook secret is required")
	}
	if publisher == nil {
		return nil, errors.New("relay: publisher is required")
	}
	if reflect.ValueOf(logger).IsZero() {
		logger = zerolog.Nop()
	}

	h := &Handler{
		secret:       secret,
		tolerance:    tolerance,
		maxBodyBytes: defaultMaxBodyBytes,
		publisher:    publisher,
		logger:       logger,
		now:          time.Now,
		newID:        uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h, nil
}

// Webhook handles POST deliveries. The raw body is verified before it is
// parsed; invalid signatures get 401 and are never published.
func (h *Handler) Webhook(c *gin.Context) {
	requestID := RequestIDFromContext(c.Request.Context())

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "payload too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read body"})
		return
	}

	signature := c.GetHeader(webhooksig.SignatureHeader)
	timestamp := c.GetHeader(webhooksig.TimestampHeader)
	verifyOpts := []webhooksig.Option{
		webhooksig.WithTolerance(h.tolerance),
		webhooksig.WithNow(h.now),
	}
	if timestamp != "" {
		verifyOpts = append(verifyOpts, webhooksig.WithTimestamp(timestamp))
	}
	if !webhooksig.Verify(body, h.secret, signature, verifyOpts...) {
		h.logger.Warn().
			Str("request_id", requestID).
			Bool("has_signature", signature != "").
			Bool("has_timestamp", timestamp != "").
			Msg("rejected webhook delivery")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	var delivery models.WebhookDelivery
	if err := json.Unmarshal(body, &delivery); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json", "detail": err.Error()})
		return
	}
	if strings.TrimSpace(delivery.Event) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "event is required"})
		return
	}

	event := models.WebhookEvent{
		ID:         delivery.ID,
		Event:      delivery.Event,
		Data:       delivery.Data,
		SignedAt:   signedAt(timestamp),
		ReceivedAt: h.now().UTC(),
		RequestID:  requestID,
	}
	if event.ID == "" {
		event.ID = h.newID()
	}

	if err := h.publisher.PublishEvent(c.Request.Context(), event); err != nil {
		h.logger.Error().
			Err(err).
			Str("request_id", requestID).
			Str("event_id", event.ID).
			Str("event", event.Event).
			Msg("publish webhook event failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "publish failed"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"id": event.ID, "status": "accepted"})
}

// Health reports readiness of the downstream publisher.
func (h *Handler) Health(c *gin.Context) {
	if h.ready != nil && !h.ready.IsReady() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func signedAt(timestamp string) *time.Time {
	if timestamp == "" {
		return nil
	}
	unix, err := strconv.ParseInt(strings.TrimSpace(timestamp), 10, 64)
	if err != nil {
		return nil
	}
	ts := time.Unix(unix, 0).UTC()
	return &ts
}
