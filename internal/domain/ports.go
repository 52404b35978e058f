package domain

// OrderRepository описывает требования к хранилищу состояния саги.
// Каждый вызов — одна долговременная запись, немедленно видимая последующим чтениям.
type OrderRepository interface {
	// Create сохраняет новую PENDING-запись. Возвращает ErrDuplicateOrderID, если ID уже занят.
	Create(order OrderRecord) error
	// Update применяет частичное обновление и обновляет updated_at.
	// Возвращает ErrOrderNotFound, если записи нет.
	Update(id string, patch OrderUpdate) error
	// Get возвращает запись или ErrOrderNotFound.
	Get(id string) (OrderRecord, error)
	// List возвращает записи, отсортированные по updated_at по убыванию.
	// limit <= 0 означает «без ограничения».
	List(limit int) ([]OrderRecord, error)
}

// OrderUpdate описывает частичное обновление записи заказа.
// Status записывается всегда. Nil-поля TotalAmount, Items и PaymentReference
// оставляют прежние значения: однажды установленные, они не откатываются в null.
// FailureReason перезаписывается, только когда указатель не nil;
// ClearFailureReason явно очищает причину (успешное завершение саги).
type OrderUpdate struct {
	Status             OrderStatus
	TotalAmount        *float64
	Items              []PricedLineItem
	PaymentReference   *string
	FailureReason      *string
	ClearFailureReason bool
}

// TimelineRepository хранит события жизненного цикла заказа.
type TimelineRepository interface {
	Append(event TimelineEvent) error
	List(orderID string) ([]TimelineEvent, error)
}

// ConfirmationDecision — авторитетное решение ресторана: цены позиций и итоговая сумма.
// Клиентская сторона никогда не вычисляет эти значения самостоятельно.
type ConfirmationDecision struct {
	TotalAmount float64
	Items       []PricedLineItem
}

// RestaurantGateway описывает взаимодействие с ресторанным сервисом.
type RestaurantGateway interface {
	// Confirm резервирует заказ у ресторана и возвращает авторитетные цены.
	// Возвращает RestaurantError, если сервис недоступен или отклонил заказ.
	Confirm(restaurantID, orderID string, items []OrderLineItem) (ConfirmationDecision, error)
	// Cancel снимает бронь по заказу (компенсация). Идемпотентен на стороне
	// ресторана: повторный или неизвестный заказ — no-op.
	Cancel(restaurantID, orderID, reason string) error
}

// PaymentGateway описывает взаимодействие с платёжным сервисом.
type PaymentGateway interface {
	// AuthorizeAndCapture списывает сумму по заказу одним вызовом.
	// Возвращает PaymentError при отказе или недоступности провайдера.
	AuthorizeAndCapture(orderID string, amount float64) (PaymentResult, error)
	// Refund возвращает средства по ранее выданному reference.
	// Идемпотентен для уже возвращённого или неизвестного reference.
	Refund(reference string, amount float64) (PaymentResult, error)
}
