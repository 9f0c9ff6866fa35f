package kafka

import (
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
)

// HeaderEventType names the event carried by a message.
const HeaderEventType = "x-event-type"

func MustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

// UnwrapPayload decodes an event payload into T.
func UnwrapPayload[T any](payload json.RawMessage) (T, error) {
	var t T
	if err := json.Unmarshal(payload, &t); err != nil {
		return t, fmt.Errorf("decode payload: %w", err)
	}
	return t, nil
}

// Header returns the first value of key, or "" when m has none.
func Header(m kafka.Message, key string) string {
	for _, h := range m.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

// IsEvent reports whether m may carry eventType. Messages without the
// header are let through so the envelope decides.
func IsEvent(m kafka.Message, eventType string) bool {
	v := Header(m, HeaderEventType)
	return v == "" || v == eventType
}
