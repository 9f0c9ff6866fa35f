package events

import (
	"encoding/json"
	"time"
)

const (
	EventProductChanged     = "ProductChanged"
	EventOrderPlaced        = "OrderPlaced"
	EventOrderStatusChanged = "OrderStatusChanged"
)

const (
	TopicProductChanged     = "catalog.product.changed"
	TopicOrderPlaced        = "order.placed"
	TopicOrderStatusChanged = "order.status.changed"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// Change kinds carried by ProductChangedPayload.
const (
	ChangeCreated = "created"
	ChangeUpdated = "updated"
	ChangeDeleted = "deleted"
	ChangeStock   = "stock"
)

type ProductChangedPayload struct {
	ProductID string `json:"product_id"`
	Change    string `json:"change"`
	Stock     int    `json:"stock"`
}

type OrderItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
}

type OrderPlacedPayload struct {
	OrderID string      `json:"order_id"`
	UID     string      `json:"uid"`
	Items   []OrderItem `json:"items"`
	Total   string      `json:"total"`
}

type OrderStatusChangedPayload struct {
	OrderID string `json:"order_id"`
	From    string `json:"from"`
	To      string `json:"to"`
}

// Partition key = aggregate id, so every event of one product/order keeps its order.
func PartitionKey(id string) []byte { return []byte(id) }
