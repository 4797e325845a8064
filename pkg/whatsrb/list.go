package whatsrb

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// List is a page of entities plus the server's pagination metadata. Meta is
// passed through untouched; numbers are kept as json.Number.
type List[T any] struct {
	Data []T
	Meta map[string]any
}

// Len returns the number of entities in the page.
func (l *List[T]) Len() int { return len(l.Data) }

func decodeList[T any](name string, raw json.RawMessage, build func(json.RawMessage) (T, error)) (*List[T], error) {
	var env struct {
		Data []json.RawMessage `json:"data"`
		Meta map[string]any    `json:"meta"`
	}
	if len(raw) > 0 {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&env); err != nil {
			return nil, fmt.Errorf("whatsrb: decode %s list: %w", name, err)
		}
	}

	items := make([]T, 0, len(env.Data))
	for i, elem := range env.Data {
		item, err := build(elem)
		if err != nil {
			return nil, fmt.Errorf("whatsrb: decode %s list item %d: %w", name, i, err)
		}
		items = append(items, item)
	}

	meta := env.Meta
	if meta == nil {
		meta = map[string]any{}
	}
	return &List[T]{Data: items, Meta: meta}, nil
}
