package restaurant

import (
	"github.com/vladislavdragonenkov/fos/internal/domain"
)

// Цена позиции по умолчанию в mock-режиме.
const mockUnitPrice = 10.0

// Mock — конфигурируемая заглушка RestaurantGateway для тестов и локального запуска.
type Mock struct {
	ConfirmErr error
	CancelErr  error
	// Decision переопределяет ответ Confirm; при нулевом значении позиции
	// оцениваются по mockUnitPrice за единицу.
	Decision domain.ConfirmationDecision

	ConfirmCalls     int
	CancelCalls      int
	LastCancelReason string
}

// NewMock возвращает заглушку с успешным сценарием по умолчанию.
func NewMock() *Mock {
	return &Mock{}
}

// Confirm возвращает настроенное решение и считает вызовы.
func (m *Mock) Confirm(restaurantID, orderID string, items []domain.OrderLineItem) (domain.ConfirmationDecision, error) {
	m.ConfirmCalls++
	if m.ConfirmErr != nil {
		return domain.ConfirmationDecision{}, m.ConfirmErr
	}
	if m.Decision.Items != nil || m.Decision.TotalAmount != 0 {
		return m.Decision, nil
	}
	return priceItems(items), nil
}

// Cancel возвращает настроенную ошибку и считает вызовы.
func (m *Mock) Cancel(restaurantID, orderID, reason string) error {
	m.CancelCalls++
	m.LastCancelReason = reason
	return m.CancelErr
}

// priceItems оценивает запрошенные позиции по фиксированной цене за единицу.
func priceItems(items []domain.OrderLineItem) domain.ConfirmationDecision {
	decision := domain.ConfirmationDecision{
		Items: make([]domain.PricedLineItem, 0, len(items)),
	}
	for _, item := range items {
		lineTotal := mockUnitPrice * float64(item.Quantity)
		decision.Items = append(decision.Items, domain.PricedLineItem{
			MenuItemID: item.MenuItemID,
			Quantity:   item.Quantity,
			LineTotal:  lineTotal,
		})
		decision.TotalAmount += lineTotal
	}
	return decision
}

var _ domain.RestaurantGateway = (*Mock)(nil)
