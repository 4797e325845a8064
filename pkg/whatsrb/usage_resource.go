package whatsrb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// UsageResource accesses /usage.
type UsageResource struct {
	b backend
}

// Fetch returns the account's usage counters. The shape is defined by the
// server and returned as is; numbers are json.Number.
func (r *UsageResource) Fetch(ctx context.Context) (map[string]any, error) {
	raw, err := r.b.Get(ctx, "/usage")
	if err != nil {
		return nil, err
	}
	data, err := usageContract.entityJSON(raw)
	if err != nil {
		return nil, err
	}
	usage := map[string]any{}
	if data == nil {
		return usage, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&usage); err != nil {
		return nil, fmt.Errorf("whatsrb: decode usage: %w", err)
	}
	return usage, nil
}
