package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	kafkax "github.com/ariefcatur/go-storefront/internal/kafka"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

// Publisher is satisfied by *kafka.Producer.
type Publisher interface {
	Publish(topic string, key, value []byte, headers ...kafkago.Header) error
}

type traceKey struct{}

// WithTrace stores the request id that becomes the envelope trace id.
func WithTrace(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceKey{}, traceID)
}

func traceFrom(ctx context.Context) string {
	s, _ := ctx.Value(traceKey{}).(string)
	return s
}

// Emitter wraps payloads in an Envelope (v1) and hands them to a Publisher.
type Emitter struct {
	Publisher Publisher
	Service   string
	Now       func() time.Time
}

func (e *Emitter) Emit(ctx context.Context, topic, eventType, aggregateID string, payload any) error {
	if e == nil || e.Publisher == nil {
		return nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	env := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    now().UTC(),
		Producer:      e.Service,
		TraceID:       traceFrom(ctx),
		CorrelationID: aggregateID,
		Payload:       body,
	}
	return e.Publisher.Publish(topic, PartitionKey(aggregateID), kafkax.MustMarshal(env),
		kafkago.Header{Key: kafkax.HeaderEventType, Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte(strconv.Itoa(env.EventVersion))},
	)
}

// ProductChanged is a shorthand used by catalog writes and checkout.
func (e *Emitter) ProductChanged(ctx context.Context, productID, change string, stock int) error {
	return e.Emit(ctx, TopicProductChanged, EventProductChanged, productID,
		ProductChangedPayload{ProductID: productID, Change: change, Stock: stock})
}
