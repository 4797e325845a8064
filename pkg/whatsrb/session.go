package whatsrb

import (
	"context"
	"encoding/json"
	"fmt"
)

// Session statuses.
const (
	SessionInitializing = "initializing"
	SessionQRPending    = "qr_pending"
	SessionConnected    = "connected"
	SessionDisconnected = "disconnected"
)

// Session is a snapshot of a QR-paired WhatsApp session.
type Session struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Status      string    `json:"status"`
	PhoneNumber string    `json:"phone_number"`
	QRCode      string    `json:"qr_code"`
	CreatedAt   Timestamp `json:"created_at"`
	UpdatedAt   Timestamp `json:"updated_at"`

	b   backend
	raw json.RawMessage
}

func decodeSession(data json.RawMessage, b backend) (*Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("whatsrb: decode session: %w", err)
	}
	s.b = b
	s.raw = data
	return &s, nil
}

// Raw returns the JSON the session was first built from.
func (s *Session) Raw() json.RawMessage { return s.raw }

// IsConnected reports whether the session is paired.
func (s *Session) IsConnected() bool { return s.Status == SessionConnected }

// Messages returns the accessor for messages sent through this session.
func (s *Session) Messages() *MessagesResource {
	return &MessagesResource{b: bound(s.b), sessionID: s.ID}
}

// Reload re-fetches the session and replaces its status, phone number, QR
// code, name and update time.
func (s *Session) Reload(ctx context.Context) (*Session, error) {
	fresh, err := (&SessionsResource{b: bound(s.b)}).Retrieve(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	s.Status = fresh.Status
	s.PhoneNumber = fresh.PhoneNumber
	s.QRCode = fresh.QRCode
	s.Name = fresh.Name
	s.UpdatedAt = fresh.UpdatedAt
	return s, nil
}

// WaitForQR polls until the session is connected. While the session is
// waiting for a scan, onQR (if non-nil) receives the QR payload on every
// poll; callers that only want changes must deduplicate. Zero options mean a
// 60s timeout and a 2s interval.
func (s *Session) WaitForQR(ctx context.Context, opts WaitOptions, onQR func(qrCode string)) (*Session, error) {
	b := bound(s.b)
	opts = opts.withDefaults(defaultQRTimeout)
	logger := b.log()

	err := pollUntil(ctx, b.pollClock(), opts, "Timed out waiting for QR scan", func(ctx context.Context) (bool, error) {
		if _, err := s.Reload(ctx); err != nil {
			return false, err
		}
		logger.Debug().Str("session_id", s.ID).Str("status", s.Status).Msg("polled session")

		if s.Status == SessionQRPending && s.QRCode != "" && onQR != nil {
			onQR(s.QRCode)
		}
		return s.IsConnected(), nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// SendMessage sends a text message.
func (s *Session) SendMessage(ctx context.Context, to, text string) (*Message, error) {
	return s.Messages().Create(ctx, MessageParams{To: to, Text: text})
}

// SendImage sends an image by URL.
func (s *Session) SendImage(ctx context.Context, to, url string) (*Message, error) {
	return s.sendMedia(ctx, to, MessageTypeImage, url)
}

// SendDocument sends a document by URL.
func (s *Session) SendDocument(ctx context.Context, to, url string) (*Message, error) {
	return s.sendMedia(ctx, to, MessageTypeDocument, url)
}

// SendVideo sends a video by URL.
func (s *Session) SendVideo(ctx context.Context, to, url string) (*Message, error) {
	return s.sendMedia(ctx, to, MessageTypeVideo, url)
}

// SendAudio sends an audio file by URL.
func (s *Session) SendAudio(ctx context.Context, to, url string) (*Message, error) {
	return s.sendMedia(ctx, to, MessageTypeAudio, url)
}

// SendLocation sends a location pin, encoded as "<lat>,<lon>".
func (s *Session) SendLocation(ctx context.Context, to string, latitude, longitude float64) (*Message, error) {
	return s.sendMedia(ctx, to, MessageTypeLocation, LocationContent(latitude, longitude))
}

// SendContact sends a contact card, encoded as "<name>:<phone>".
func (s *Session) SendContact(ctx context.Context, to, name, phone string) (*Message, error) {
	return s.sendMedia(ctx, to, MessageTypeContact, ContactContent(name, phone))
}

func (s *Session) sendMedia(ctx context.Context, to, messageType, content string) (*Message, error) {
	return s.Messages().Create(ctx, MessageParams{To: to, MessageType: messageType, Content: content})
}
