package domain

import "time"

// OrderStatus описывает жизненный цикл заказа в саге размещения.
type OrderStatus string

const (
	// OrderStatusPending — запись создана, подтверждение ресторана и оплата ещё не выполнены.
	OrderStatusPending OrderStatus = "PENDING"
	// OrderStatusConfirmed — ресторан подтвердил заказ и оплата списана. Терминальный статус.
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	// OrderStatusCanceled — сага завершилась отказом либо заказ отменён оператором. Терминальный статус.
	OrderStatusCanceled OrderStatus = "CANCELED"
)

// IsTerminal сообщает, достиг ли статус конечного состояния саги.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusConfirmed || s == OrderStatusCanceled
}

// OrderLineItem — позиция заказа в том виде, в котором её запросил клиент.
// Цены здесь нет: ценообразование принадлежит ресторану.
type OrderLineItem struct {
	MenuItemID string
	Quantity   int32
}

// PricedLineItem — позиция, подтверждённая рестораном вместе с итогом строки.
type PricedLineItem struct {
	MenuItemID string  `json:"menu_item_id"`
	Quantity   int32   `json:"quantity"`
	LineTotal  float64 `json:"line_total"`
}

// OrderRecord агрегирует персистентное состояние саги по одному заказу.
// TotalAmount и Items заполняются только из решения ресторана,
// PaymentReference — только при успешном списании, FailureReason — только при отмене.
type OrderRecord struct {
	ID                string
	RestaurantID      string
	Status            OrderStatus
	TotalAmount       *float64
	Items             []PricedLineItem
	PaymentReference  *string
	FailureReason     *string
	CustomerReference string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ValidateInvariants проверяет базовые инварианты записи и возвращает список замечаний.
func (o *OrderRecord) ValidateInvariants() []error {
	var errs []error

	if o.ID == "" {
		errs = append(errs, ErrOrderIDRequired)
	}
	if o.RestaurantID == "" {
		errs = append(errs, ErrRestaurantIDRequired)
	}
	if o.PaymentReference != nil && o.Status != OrderStatusConfirmed {
		errs = append(errs, ErrPaymentReferenceInvalid)
	}
	if o.FailureReason != nil && o.Status != OrderStatusCanceled {
		errs = append(errs, ErrFailureReasonInvalid)
	}

	// Сверяем итог с суммой подтверждённых позиций, когда ресторан уже ответил.
	if o.TotalAmount != nil && len(o.Items) > 0 {
		var calc float64
		for _, item := range o.Items {
			if item.Quantity <= 0 {
				errs = append(errs, ErrItemQtyInvalid)
			}
			calc += item.LineTotal
		}
		if calc != *o.TotalAmount {
			errs = append(errs, ErrAmountMismatch)
		}
	}

	return errs
}

// Clone возвращает глубокую копию записи, безопасную для мутаций извне.
func (o OrderRecord) Clone() OrderRecord {
	out := o
	if o.Items != nil {
		out.Items = make([]PricedLineItem, len(o.Items))
		copy(out.Items, o.Items)
	}
	if o.TotalAmount != nil {
		v := *o.TotalAmount
		out.TotalAmount = &v
	}
	if o.PaymentReference != nil {
		v := *o.PaymentReference
		out.PaymentReference = &v
	}
	if o.FailureReason != nil {
		v := *o.FailureReason
		out.FailureReason = &v
	}
	return out
}
