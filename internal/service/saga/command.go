package saga

import "github.com/vladislavdragonenkov/fos/internal/domain"

// SimulationMode — тестовый крючок: принудительно проваливает шаг саги,
// не обращаясь к реальному нижестоящему сервису.
type SimulationMode string

const (
	// SimulationNone — обычное выполнение без симуляции.
	SimulationNone SimulationMode = ""
	// SimulationRestaurantFailure проваливает шаг подтверждения ресторана.
	SimulationRestaurantFailure SimulationMode = "restaurant_failure"
	// SimulationPaymentFailure проваливает шаг списания оплаты.
	SimulationPaymentFailure SimulationMode = "payment_failure"
)

// Сообщения симулированных отказов; попадают в failure_reason записи.
const (
	simulatedRestaurantFailure = "Simulated restaurant failure"
	simulatedPaymentFailure    = "Simulated payment failure"
)

// PlaceOrderCommand — неизменяемый набор входных данных саги размещения заказа.
// OrderID опционален: пустое значение означает «сгенерировать на стороне саги».
type PlaceOrderCommand struct {
	RestaurantID      string
	Items             []domain.OrderLineItem
	CustomerReference string
	OrderID           string
	SimulationMode    SimulationMode
}
