package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	topic   string
	key     []byte
	value   []byte
	headers []kafkago.Header
}

type recorder struct{ msgs []recorded }

func (r *recorder) Publish(topic string, key, value []byte, headers ...kafkago.Header) error {
	r.msgs = append(r.msgs, recorded{topic, key, value, headers})
	return nil
}

func TestEmitterWrapsEnvelope(t *testing.T) {
	rec := &recorder{}
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	em := &Emitter{Publisher: rec, Service: "storefront-api", Now: func() time.Time { return at }}

	ctx := WithTrace(context.Background(), "req-42")
	require.NoError(t, em.ProductChanged(ctx, "p1", ChangeStock, 3))
	require.Len(t, rec.msgs, 1)

	m := rec.msgs[0]
	assert.Equal(t, TopicProductChanged, m.topic)
	assert.Equal(t, []byte("p1"), m.key)
	assert.Equal(t, "x-event-type", m.headers[0].Key)
	assert.Equal(t, EventProductChanged, string(m.headers[0].Value))

	var env Envelope
	require.NoError(t, json.Unmarshal(m.value, &env))
	assert.Equal(t, EventProductChanged, env.EventType)
	assert.Equal(t, 1, env.EventVersion)
	assert.Equal(t, "req-42", env.TraceID)
	assert.Equal(t, "p1", env.CorrelationID)
	assert.True(t, at.Equal(env.OccurredAt))
	assert.NotEmpty(t, env.EventID)

	var p ProductChangedPayload
	require.NoError(t, json.Unmarshal(env.Payload, &p))
	assert.Equal(t, ProductChangedPayload{ProductID: "p1", Change: ChangeStock, Stock: 3}, p)
}

func TestNilEmitterIsNoop(t *testing.T) {
	var em *Emitter
	assert.NoError(t, em.Emit(context.Background(), TopicOrderPlaced, EventOrderPlaced, "o1", nil))
}
