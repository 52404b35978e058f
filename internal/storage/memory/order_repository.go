package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/fos/internal/domain"
)

// orderRepositoryInMemory — простая in-memory реализация OrderRepository.
type orderRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.OrderRecord
}

// NewOrderRepository возвращает in-memory репозиторий для локальной разработки и тестов.
func NewOrderRepository() domain.OrderRepository {
	return &orderRepositoryInMemory{
		items: make(map[string]domain.OrderRecord),
	}
}

// Create сохраняет новый заказ, если ID ещё не занят.
func (r *orderRepositoryInMemory) Create(order domain.OrderRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[order.ID]; exists {
		return domain.ErrDuplicateOrderID
	}
	// Сохраняем глубокую копию, чтобы избежать мутаций извне.
	r.items[order.ID] = order.Clone()
	return nil
}

// Update применяет частичное обновление к существующему заказу.
// Status перезаписывается всегда; nil-поля патча оставляют текущие значения.
func (r *orderRepositoryInMemory) Update(id string, patch domain.OrderUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[id]
	if !ok {
		return domain.ErrOrderNotFound
	}

	current.Status = patch.Status
	if patch.TotalAmount != nil {
		amount := *patch.TotalAmount
		current.TotalAmount = &amount
	}
	if patch.Items != nil {
		items := make([]domain.PricedLineItem, len(patch.Items))
		copy(items, patch.Items)
		current.Items = items
	}
	if patch.PaymentReference != nil {
		reference := *patch.PaymentReference
		current.PaymentReference = &reference
	}
	switch {
	case patch.ClearFailureReason:
		current.FailureReason = nil
	case patch.FailureReason != nil:
		reason := *patch.FailureReason
		current.FailureReason = &reason
	}
	current.UpdatedAt = time.Now().UTC()

	r.items[id] = current
	return nil
}

// Get возвращает заказ или ErrOrderNotFound, если его нет.
func (r *orderRepositoryInMemory) Get(id string) (domain.OrderRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.items[id]
	if !ok {
		return domain.OrderRecord{}, domain.ErrOrderNotFound
	}
	return order.Clone(), nil
}

// List возвращает заказы от самых свежих к старым, ограничивая выборку limit (если >0).
func (r *orderRepositoryInMemory) List(limit int) ([]domain.OrderRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.OrderRecord, 0, len(r.items))
	for _, order := range r.items {
		result = append(result, order.Clone())
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].UpdatedAt.Equal(result[j].UpdatedAt) {
			return result[i].UpdatedAt.After(result[j].UpdatedAt)
		}
		return result[i].ID > result[j].ID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

var _ domain.OrderRepository = (*orderRepositoryInMemory)(nil)
