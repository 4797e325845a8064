package whatsrb

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/example/whatsrb-cloud-go/internal/util"
)

// Message types.
const (
	MessageTypeText     = "text"
	MessageTypeImage    = "image"
	MessageTypeVideo    = "video"
	MessageTypeAudio    = "audio"
	MessageTypeDocument = "document"
	MessageTypeLocation = "location"
	MessageTypeContact  = "contact"
	MessageTypeTemplate = "template"
)

type typeSet map[string]struct{}

func newTypeSet(types ...string) typeSet {
	set := make(typeSet, len(types))
	for _, t := range types {
		set[t] = struct{}{}
	}
	return set
}

func (s typeSet) has(t string) bool {
	_, ok := s[t]
	return ok
}

var (
	sessionMessageTypes = newTypeSet(
		MessageTypeText, MessageTypeImage, MessageTypeVideo, MessageTypeAudio,
		MessageTypeDocument, MessageTypeLocation, MessageTypeContact,
	)
	businessMessageTypes = newTypeSet(
		MessageTypeText, MessageTypeTemplate, MessageTypeImage, MessageTypeVideo,
		MessageTypeAudio, MessageTypeDocument,
	)
)

// MessageParams describes an outbound message.
type MessageParams struct {
	// To is the recipient in +<digits> form.
	To string
	// Text is a shorthand for a text message: it implies MessageType "text"
	// and becomes the content.
	Text string
	// MessageType is one of the MessageType constants allowed for the
	// collection the message is sent through.
	MessageType string
	// Content is the payload. Media types take a URL string; location and
	// contact use the LocationContent and ContactContent encodings. Any JSON
	// value is accepted and sent as is.
	Content any

	TemplateName     string
	TemplateLanguage string
}

// LocationContent encodes a coordinate pair as "<lat>,<lon>". Numbers are
// written the way the API's own SDKs print floats: always with a fractional
// part ("48.0"), and in exponent form below 1e-4 or from 1e16 ("1.0e-07").
func LocationContent(latitude, longitude float64) string {
	return formatCoordinate(latitude) + "," + formatCoordinate(longitude)
}

func formatCoordinate(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}

	abs := math.Abs(f)
	if abs == 0 || (abs >= 1e-4 && abs < 1e16) {
		s := strconv.FormatFloat(f, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	}

	s := strconv.FormatFloat(f, 'e', -1, 64)
	mantissa, exp, _ := strings.Cut(s, "e")
	if !strings.Contains(mantissa, ".") {
		mantissa += ".0"
	}
	return mantissa + "e" + exp
}

// ContactContent encodes a contact card as "<name>:<phone>".
func ContactContent(name, phone string) string {
	return name + ":" + phone
}

// body validates p against the allowed types and builds the request payload.
// It never touches the network.
func (p MessageParams) body(allowed typeSet) (map[string]any, error) {
	if err := checkRecipient(p.To); err != nil {
		return nil, err
	}

	messageType := p.MessageType
	content := p.Content
	if p.Text != "" {
		if messageType == "" {
			messageType = MessageTypeText
		}
		if content == nil {
			content = p.Text
		}
	}
	if messageType == "" && content != nil {
		messageType = MessageTypeText
	}
	if messageType != "" && !allowed.has(messageType) {
		return nil, validationError("Invalid message type: %s", messageType)
	}

	body := map[string]any{"to": p.To}
	if messageType != "" {
		body["message_type"] = messageType
	}
	if content != nil {
		body["content"] = content
	}
	if p.TemplateName != "" {
		body["template_name"] = p.TemplateName
	}
	if p.TemplateLanguage != "" {
		body["template_language"] = p.TemplateLanguage
	}
	return body, nil
}

func checkRecipient(to string) error {
	err := util.CheckPhone(to)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, util.ErrPhoneRequired):
		return validationError("Phone number is required")
	default:
		return validationError("Invalid phone number format")
	}
}
