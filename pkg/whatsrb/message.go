package whatsrb

import (
	"encoding/json"
	"fmt"
)

// Message is a snapshot of an outbound or inbound message. Content is a string
// for most message types but may be any JSON value. Timestamps that the server
// sends in an unparsable form are left zero.
type Message struct {
	ID                string `json:"id"`
	SessionID         string `json:"session_id"`
	BusinessAccountID string `json:"business_account_id"`
	To                string `json:"to"`
	Status            string `json:"status"`
	MessageType       string `json:"message_type"`
	Content           any    `json:"content"`
	Direction         string `json:"direction"`
	WhatsAppMessageID string `json:"whatsapp_message_id"`
	WAMID             string `json:"wamid"`
	ErrorMessage      string `json:"error_message"`
	TemplateName      string `json:"template_name"`
	TemplateLanguage  string `json:"template_language"`

	SentAt      Timestamp `json:"sent_at"`
	DeliveredAt Timestamp `json:"delivered_at"`
	ReadAt      Timestamp `json:"read_at"`
	CreatedAt   Timestamp `json:"created_at"`

	raw json.RawMessage
}

func decodeMessage(data json.RawMessage) (*Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("whatsrb: decode message: %w", err)
	}
	m.raw = data
	return &m, nil
}

// Raw returns the JSON the message was built from.
func (m *Message) Raw() json.RawMessage { return m.raw }

// ContentString returns Content when it is a string.
func (m *Message) ContentString() (string, bool) {
	s, ok := m.Content.(string)
	return s, ok
}
