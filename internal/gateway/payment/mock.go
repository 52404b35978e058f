package payment

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/fos/internal/domain"
)

// Mock — конфигурируемая заглушка PaymentGateway для тестов и запуска
// без реального платёжного сервиса.
type Mock struct {
	AuthorizeErr error
	RefundErr    error
	// Reference переопределяет внешний идентификатор платежа;
	// пустое значение — сгенерировать "mock-pay-<uuid>".
	Reference string

	AuthorizeCalls int
	RefundCalls    int
	LastAmount     float64
}

// NewMock возвращает заглушку с успешным сценарием по умолчанию.
func NewMock() *Mock {
	return &Mock{}
}

// AuthorizeAndCapture возвращает настроенный результат и считает вызовы.
func (m *Mock) AuthorizeAndCapture(orderID string, amount float64) (domain.PaymentResult, error) {
	m.AuthorizeCalls++
	m.LastAmount = amount
	if m.AuthorizeErr != nil {
		return domain.PaymentResult{}, m.AuthorizeErr
	}

	reference := m.Reference
	if reference == "" {
		reference = fmt.Sprintf("mock-pay-%s", uuid.NewString())
	}
	return domain.PaymentResult{Reference: reference, Status: domain.PaymentStatusCaptured}, nil
}

// Refund возвращает настроенный результат и считает вызовы.
func (m *Mock) Refund(reference string, amount float64) (domain.PaymentResult, error) {
	m.RefundCalls++
	m.LastAmount = amount
	if m.RefundErr != nil {
		return domain.PaymentResult{}, m.RefundErr
	}
	return domain.PaymentResult{Reference: reference, Status: domain.PaymentStatusRefunded}, nil
}

var _ domain.PaymentGateway = (*Mock)(nil)
