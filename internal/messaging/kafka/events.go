package kafka

import "time"

// EventType определяет тип публикуемого события
type EventType string

const (
	// Saga события
	EventTypeSagaStarted   EventType = "saga.started"
	EventTypeSagaCompleted EventType = "saga.completed"
	EventTypeSagaFailed    EventType = "saga.failed"
	EventTypeSagaCanceled  EventType = "saga.canceled"

	// Order события
	EventTypeOrderCreated   EventType = "order.created"
	EventTypeOrderConfirmed EventType = "order.confirmed"
	EventTypeOrderCanceled  EventType = "order.canceled"
)

// Topics для Kafka
const (
	TopicSagaEvents  = "fos.saga.events"
	TopicOrderEvents = "fos.order.events"
)

// SagaEvent представляет событие саги размещения заказа
type SagaEvent struct {
	EventType EventType              `json:"event_type"`
	OrderID   string                 `json:"order_id"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// OrderEvent представляет событие заказа
type OrderEvent struct {
	EventType    EventType              `json:"event_type"`
	OrderID      string                 `json:"order_id"`
	RestaurantID string                 `json:"restaurant_id"`
	Status       string                 `json:"status"`
	Timestamp    time.Time              `json:"timestamp"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// NewSagaEvent создает новое событие саги
func NewSagaEvent(eventType EventType, orderID string, metadata map[string]interface{}) *SagaEvent {
	return &SagaEvent{
		EventType: eventType,
		OrderID:   orderID,
		Timestamp: time.Now(),
		Metadata:  metadata,
	}
}

// NewOrderEvent создает новое событие заказа
func NewOrderEvent(eventType EventType, orderID, restaurantID, status string, metadata map[string]interface{}) *OrderEvent {
	return &OrderEvent{
		EventType:    eventType,
		OrderID:      orderID,
		RestaurantID: restaurantID,
		Status:       status,
		Timestamp:    time.Now(),
		Metadata:     metadata,
	}
}
