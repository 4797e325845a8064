package whatsrb

import (
	"encoding/json"
	"fmt"
)

// Webhook is a snapshot of a webhook endpoint registration.
type Webhook struct {
	ID     string   `json:"id"`
	URL    string   `json:"url"`
	Events []string `json:"events"`
	Active bool     `json:"active"`
	// Secret is only returned when the webhook is created. Keep it to verify
	// deliveries with the webhooksig package.
	Secret    string    `json:"secret"`
	CreatedAt Timestamp `json:"created_at"`
	UpdatedAt Timestamp `json:"updated_at"`

	raw json.RawMessage
}

// decodeWebhook treats a missing active flag as true and missing events as
// an empty subscription list.
func decodeWebhook(data json.RawMessage) (*Webhook, error) {
	w := Webhook{Active: true}
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("whatsrb: decode webhook: %w", err)
	}
	if w.Events == nil {
		w.Events = []string{}
	}
	w.raw = data
	return &w, nil
}

// Raw returns the JSON the webhook was built from.
func (w *Webhook) Raw() json.RawMessage { return w.raw }

// IsActive reports whether deliveries are enabled.
func (w *Webhook) IsActive() bool { return w.Active }
