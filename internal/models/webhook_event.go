package models

import (
	"encoding/json"
	"time"
)

// WebhookDelivery is the body the API posts to a webhook endpoint.
type WebhookDelivery struct {
	ID    string          `json:"id,omitempty"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// WebhookEvent is a verified delivery as published to Kafka.
type WebhookEvent struct {
	ID         string          `json:"id"`
	Event      string          `json:"event"`
	Data       json.RawMessage `json:"data,omitempty"`
	SignedAt   *time.Time      `json:"signed_at,omitempty"`
	ReceivedAt time.Time       `json:"received_at"`
	RequestID  string          `json:"request_id,omitempty"`
}
