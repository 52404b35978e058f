package domain

import "errors"

var (
	// Ошибка отсутствующего идентификатора заказа.
	ErrOrderIDRequired = errors.New("order_id is required")
	// Ошибка отсутствующего идентификатора ресторана.
	ErrRestaurantIDRequired = errors.New("restaurant_id is required")
	// Ошибка отсутствия хотя бы одной позиции в заказе.
	ErrItemsRequired = errors.New("order must contain at least one item")
	// Ошибка при некорректном количестве позиции (<= 0).
	ErrItemQtyInvalid = errors.New("item quantity must be greater than zero")
	// Ошибка несоответствия итога заказа сумме подтверждённых позиций.
	ErrAmountMismatch = errors.New("order total does not match items sum")
	// ErrPaymentReferenceInvalid — payment_reference допустим только у CONFIRMED-записи.
	ErrPaymentReferenceInvalid = errors.New("payment_reference is only valid for a confirmed order")
	// ErrFailureReasonInvalid — failure_reason допустим только у CANCELED-записи.
	ErrFailureReasonInvalid = errors.New("failure_reason is only valid for a canceled order")
	// ErrDuplicateOrderID возвращается хранилищем, если запись с таким ID уже существует.
	ErrDuplicateOrderID = errors.New("order id already exists")
	// ErrOrderNotFound возвращается, если заказ не найден в хранилище.
	ErrOrderNotFound = errors.New("order not found")
)

// RestaurantError помечает сбой взаимодействия с ресторанным сервисом:
// сервис недоступен либо отклонил заказ.
type RestaurantError struct {
	Reason string
	Err    error
}

func (e *RestaurantError) Error() string { return e.Reason }

func (e *RestaurantError) Unwrap() error { return e.Err }

// NewRestaurantError оборачивает причину сбоя ресторанного шлюза.
func NewRestaurantError(reason string, cause error) error {
	return &RestaurantError{Reason: reason, Err: cause}
}

// PaymentError помечает сбой взаимодействия с платёжным сервисом.
type PaymentError struct {
	Reason string
	Err    error
}

func (e *PaymentError) Error() string { return e.Reason }

func (e *PaymentError) Unwrap() error { return e.Err }

// NewPaymentError оборачивает причину сбоя платёжного шлюза.
func NewPaymentError(reason string, cause error) error {
	return &PaymentError{Reason: reason, Err: cause}
}

// IsRestaurantError проверяет, относится ли ошибка к ресторанному шлюзу.
func IsRestaurantError(err error) bool {
	var re *RestaurantError
	return errors.As(err, &re)
}

// IsPaymentError проверяет, относится ли ошибка к платёжному шлюзу.
func IsPaymentError(err error) bool {
	var pe *PaymentError
	return errors.As(err, &pe)
}

// IsDuplicateOrderID проверяет, является ли ошибка конфликтом идентификаторов.
func IsDuplicateOrderID(err error) bool {
	return errors.Is(err, ErrDuplicateOrderID)
}

// IsOrderNotFound проверяет, является ли ошибка отсутствием записи.
func IsOrderNotFound(err error) bool {
	return errors.Is(err, ErrOrderNotFound)
}
