package whatsrb

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/example/whatsrb-cloud-go/internal/util"
)

// Timestamp is a server timestamp decoded leniently: null, non-string or
// unparsable values decode to the zero Timestamp instead of failing the
// enclosing object. Use IsZero to test for absence.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON never returns an error.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	t.Time = time.Time{}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	if ts, err := util.ParseTimestamp(raw); err == nil {
		t.Time = ts
	}
	return nil
}

// MarshalJSON writes RFC 3339, or null when absent.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}
