package domain

// PaymentStatus описывает состояние платежа у провайдера.
type PaymentStatus string

const (
	// PaymentStatusCaptured — деньги списаны в пользу мерчанта.
	PaymentStatusCaptured PaymentStatus = "CAPTURED"
	// PaymentStatusRefunded — деньги возвращены клиенту.
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
	// PaymentStatusFailed — провайдер отклонил операцию.
	PaymentStatusFailed PaymentStatus = "FAILED"
)

// PaymentResult — результат успешной операции платёжного шлюза.
// Reference — внешний идентификатор платежа, который сага сохраняет в записи заказа.
type PaymentResult struct {
	Reference string
	Status    PaymentStatus
}
