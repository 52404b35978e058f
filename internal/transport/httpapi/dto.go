package httpapi

import (
	"time"

	"github.com/vladislavdragonenkov/fos/internal/domain"
)

// OrderItemRequest — позиция заказа в запросе клиента.
type OrderItemRequest struct {
	MenuItemID string `json:"menu_item_id" validate:"required"`
	Quantity   int32  `json:"quantity" validate:"required,gt=0"`
}

// CreateOrderRequest — тело POST /orders.
type CreateOrderRequest struct {
	// OrderID опционален: клиент может задать собственный идентификатор.
	OrderID           string             `json:"order_id" validate:"omitempty,max=128"`
	RestaurantID      string             `json:"restaurant_id" validate:"required"`
	CustomerReference string             `json:"customer_reference" validate:"omitempty,max=256"`
	Items             []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	// SimulationMode форсирует отказ нижестоящего сервиса (для демонстрации саги).
	SimulationMode string `json:"simulation_mode" validate:"omitempty,oneof=restaurant_failure payment_failure"`
}

// CancelOrderRequest — тело POST /orders/:id/cancel.
type CancelOrderRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=512"`
}

// OrderResponse — представление заказа в ответах API.
type OrderResponse struct {
	ID                string                  `json:"id"`
	RestaurantID      string                  `json:"restaurant_id"`
	Status            string                  `json:"status"`
	TotalAmount       *float64                `json:"total_amount"`
	Items             []domain.PricedLineItem `json:"items"`
	PaymentReference  *string                 `json:"payment_reference"`
	FailureReason     *string                 `json:"failure_reason"`
	CustomerReference string                  `json:"customer_reference,omitempty"`
	CreatedAt         time.Time               `json:"created_at"`
	UpdatedAt         time.Time               `json:"updated_at"`
}

// TimelineEventResponse — событие аудита в ответах API.
type TimelineEventResponse struct {
	Type     string    `json:"type"`
	Reason   string    `json:"reason,omitempty"`
	Occurred time.Time `json:"occurred"`
}

func toOrderResponse(order domain.OrderRecord) OrderResponse {
	return OrderResponse{
		ID:                order.ID,
		RestaurantID:      order.RestaurantID,
		Status:            string(order.Status),
		TotalAmount:       order.TotalAmount,
		Items:             order.Items,
		PaymentReference:  order.PaymentReference,
		FailureReason:     order.FailureReason,
		CustomerReference: order.CustomerReference,
		CreatedAt:         order.CreatedAt,
		UpdatedAt:         order.UpdatedAt,
	}
}

func toTimelineResponse(events []domain.TimelineEvent) []TimelineEventResponse {
	result := make([]TimelineEventResponse, 0, len(events))
	for _, event := range events {
		result = append(result, TimelineEventResponse{
			Type:     event.Type,
			Reason:   event.Reason,
			Occurred: event.Occurred,
		})
	}
	return result
}
