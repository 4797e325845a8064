package whatsrb

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// responseShape describes where an endpoint family puts the entity in its
// response body. The API is not uniform, so every accessor declares its own.
type responseShape int

const (
	// shapeBare: the body is the entity.
	shapeBare responseShape = iota
	// shapeData: the entity sits under "data".
	shapeData
	// shapeDataOrBare: both forms have been observed from this family; the
	// "data" object wins when present.
	shapeDataOrBare
)

// resourceContract is the per-accessor wire contract.
type resourceContract struct {
	name     string
	entity   responseShape
	envelope string
}

var (
	sessionsContract         = resourceContract{name: "session", entity: shapeDataOrBare}
	sessionMessagesContract  = resourceContract{name: "message", entity: shapeDataOrBare, envelope: "message"}
	webhooksContract         = resourceContract{name: "webhook", entity: shapeDataOrBare, envelope: "webhook"}
	businessAccountsContract = resourceContract{name: "business_account", entity: shapeData, envelope: "business_account"}
	businessMessagesContract = resourceContract{name: "message", entity: shapeData, envelope: "message"}
	templatesContract        = resourceContract{name: "template", entity: shapeData, envelope: "template"}
	connectsContract         = resourceContract{name: "connect_request", entity: shapeData}
	usageContract            = resourceContract{name: "usage", entity: shapeDataOrBare}
)

// wrap places params under the contract's envelope key, if it has one.
func (c resourceContract) wrap(params any) any {
	if c.envelope == "" {
		return params
	}
	return map[string]any{c.envelope: params}
}

// entityJSON extracts the entity from a single-object response. A nil result
// means the server returned no usable entity.
func (c resourceContract) entityJSON(raw json.RawMessage) (json.RawMessage, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	switch c.entity {
	case shapeBare:
		return raw, nil
	case shapeData:
		var env struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, fmt.Errorf("whatsrb: decode %s envelope: %w", c.name, err)
		}
		return nullToNil(env.Data), nil
	case shapeDataOrBare:
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("whatsrb: decode %s response: %w", c.name, err)
		}
		if data, ok := fields["data"]; ok && isJSONObject(data) {
			return data, nil
		}
		return raw, nil
	default:
		return nil, fmt.Errorf("whatsrb: unknown response shape %d", c.entity)
	}
}

func isJSONObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func nullToNil(raw json.RawMessage) json.RawMessage {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}
	return raw
}

// emptyBody is sent on action endpoints that take no parameters; the server
// expects an empty JSON object rather than no body.
var emptyBody = map[string]any{}
