package saga

import (
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/fos/internal/domain"
	"github.com/vladislavdragonenkov/fos/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/fos/internal/metrics"
)

// Причина, с которой ресторану сообщается о компенсации после сбоя оплаты.
const compensationReasonPaymentFailed = "payment_failed"

// Orchestrator описывает интерфейс управления сагой размещения заказа.
type Orchestrator interface {
	// PlaceOrder выполняет сагу: PENDING-запись → подтверждение ресторана →
	// списание оплаты → терминальный статус. Возвращает итоговую запись
	// при успехе либо ошибку нижестоящего сервиса при отказе.
	PlaceOrder(cmd PlaceOrderCommand) (domain.OrderRecord, error)
	// Cancel — ручная (операторская) отмена существующего заказа.
	Cancel(order domain.OrderRecord, reason string) (domain.OrderRecord, error)
}

// orchestrator реализует последовательность шагов: Create → Confirm → Capture → Finalize.
// Подтверждение ресторана всегда предшествует списанию: цена должна быть
// известна до движения денег.
type orchestrator struct {
	orders        domain.OrderRepository
	timeline      domain.TimelineRepository
	restaurant    domain.RestaurantGateway
	payments      domain.PaymentGateway
	logger        *log.Entry
	metrics       *metrics.SagaMetrics
	kafkaProducer *kafka.Producer // опциональный producer для событий саги
}

// NewOrchestrator создаёт рабочий экземпляр оркестратора.
func NewOrchestrator(
	orders domain.OrderRepository,
	timeline domain.TimelineRepository,
	restaurant domain.RestaurantGateway,
	payments domain.PaymentGateway,
	logger *log.Entry,
) Orchestrator {
	if logger == nil {
		logger = log.New().WithField("component", "saga")
	}
	return &orchestrator{
		orders:     orders,
		timeline:   timeline,
		restaurant: restaurant,
		payments:   payments,
		logger:     logger,
		metrics:    metrics.NewSagaMetrics(),
	}
}

// NewOrchestratorWithKafka создаёт оркестратор, публикующий события саги в Kafka.
func NewOrchestratorWithKafka(
	orders domain.OrderRepository,
	timeline domain.TimelineRepository,
	restaurant domain.RestaurantGateway,
	payments domain.PaymentGateway,
	kafkaProducer *kafka.Producer,
	logger *log.Entry,
) Orchestrator {
	if logger == nil {
		logger = log.New().WithField("component", "saga")
	}
	return &orchestrator{
		orders:        orders,
		timeline:      timeline,
		restaurant:    restaurant,
		payments:      payments,
		logger:        logger,
		metrics:       metrics.NewSagaMetrics(),
		kafkaProducer: kafkaProducer,
	}
}

// NewOrchestratorWithoutMetrics создаёт оркестратор без метрик (для тестов).
func NewOrchestratorWithoutMetrics(
	orders domain.OrderRepository,
	timeline domain.TimelineRepository,
	restaurant domain.RestaurantGateway,
	payments domain.PaymentGateway,
	logger *log.Entry,
) Orchestrator {
	if logger == nil {
		logger = log.New().WithField("component", "saga")
	}
	return &orchestrator{
		orders:     orders,
		timeline:   timeline,
		restaurant: restaurant,
		payments:   payments,
		logger:     logger,
		metrics:    nil, // Отключаем метрики для тестов
	}
}

// PlaceOrder проводит заказ через все шаги саги до терминального статуса.
// После того как PENDING-запись создана, сага всегда доходит до CONFIRMED
// либо CANCELED прежде, чем вернуть управление вызывающему.
func (o *orchestrator) PlaceOrder(cmd PlaceOrderCommand) (domain.OrderRecord, error) {
	start := time.Now()
	if o.metrics != nil {
		o.metrics.RecordSagaStarted()
		defer func() {
			o.metrics.RecordSagaFinished(time.Since(start))
		}()
	}

	orderID := cmd.OrderID
	if orderID == "" {
		orderID = uuid.NewString()
	}
	logger := o.logger.WithField("order_id", orderID)

	// Контрольная точка долговечности: запись существует до первого
	// удалённого вызова, падение процесса после этого места оставляет след.
	now := time.Now().UTC()
	record := domain.OrderRecord{
		ID:                orderID,
		RestaurantID:      cmd.RestaurantID,
		Status:            domain.OrderStatusPending,
		CustomerReference: cmd.CustomerReference,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := o.orders.Create(record); err != nil {
		logger.WithError(err).Warn("create pending order failed")
		if o.metrics != nil {
			o.metrics.RecordSagaFailed()
		}
		return domain.OrderRecord{}, err
	}
	o.appendTimeline(orderID, "OrderCreated", "")
	o.publishSagaEvent(kafka.EventTypeSagaStarted, orderID, map[string]interface{}{
		"restaurant_id": cmd.RestaurantID,
	})
	o.publishOrderEvent(kafka.EventTypeOrderCreated, orderID, cmd.RestaurantID, domain.OrderStatusPending, nil)

	decision, err := o.confirmRestaurant(cmd, orderID)
	if err != nil {
		logger.WithError(err).Warn("restaurant confirmation failed")
		// Компенсация не нужна: ресторан ничего не зарезервировал.
		o.failOrder(orderID, cmd.RestaurantID, domain.OrderUpdate{}, err)
		return domain.OrderRecord{}, err
	}

	result, err := o.capturePayment(cmd, orderID, decision.TotalAmount)
	if err != nil {
		logger.WithError(err).Warn("payment capture failed")
		// Сумма и позиции сохраняются, чтобы неудачная попытка была аудируема.
		o.failOrder(orderID, cmd.RestaurantID, domain.OrderUpdate{
			TotalAmount: &decision.TotalAmount,
			Items:       decision.Items,
		}, err)
		o.compensateRestaurant(cmd.RestaurantID, orderID, compensationReasonPaymentFailed)
		return domain.OrderRecord{}, err
	}

	patch := domain.OrderUpdate{
		Status:             domain.OrderStatusConfirmed,
		TotalAmount:        &decision.TotalAmount,
		Items:              decision.Items,
		PaymentReference:   &result.Reference,
		ClearFailureReason: true,
	}
	if err := o.orders.Update(orderID, patch); err != nil {
		logger.WithError(err).Error("persist confirmed order failed")
		if o.metrics != nil {
			o.metrics.RecordSagaFailed()
		}
		return domain.OrderRecord{}, err
	}

	logger.WithField("payment_reference", result.Reference).Info("saga completed successfully")
	if o.metrics != nil {
		o.metrics.RecordSagaCompleted()
	}
	o.appendTimeline(orderID, "OrderConfirmed", "")
	o.publishSagaEvent(kafka.EventTypeSagaCompleted, orderID, map[string]interface{}{
		"restaurant_id":     cmd.RestaurantID,
		"total_amount":      decision.TotalAmount,
		"payment_reference": result.Reference,
	})
	o.publishOrderEvent(kafka.EventTypeOrderConfirmed, orderID, cmd.RestaurantID, domain.OrderStatusConfirmed, map[string]interface{}{
		"total_amount":      decision.TotalAmount,
		"payment_reference": result.Reference,
	})

	return o.orders.Get(orderID)
}

// Cancel отменяет заказ по запросу оператора: компенсация ресторана
// best-effort, затем запись переводится в CANCELED независимо от её исхода.
// Возврат платежа здесь сознательно не выполняется — refund является
// отдельной операцией PaymentGateway, инициируемой оператором.
func (o *orchestrator) Cancel(order domain.OrderRecord, reason string) (domain.OrderRecord, error) {
	// Существование проверяется до метрик и компенсации: отмена несуществующего
	// заказа не должна дёргать ресторан.
	current, err := o.orders.Get(order.ID)
	if err != nil {
		return domain.OrderRecord{}, err
	}

	if o.metrics != nil {
		o.metrics.RecordManualCancel()
	}

	compReason := reason
	if compReason == "" {
		compReason = "manual_cancel"
	}
	o.compensateRestaurant(current.RestaurantID, current.ID, compReason)

	patch := domain.OrderUpdate{Status: domain.OrderStatusCanceled}
	if reason != "" {
		patch.FailureReason = &reason
	}
	if err := o.orders.Update(current.ID, patch); err != nil {
		o.logger.WithError(err).WithField("order_id", current.ID).Error("persist canceled order failed")
		return domain.OrderRecord{}, err
	}

	o.appendTimeline(current.ID, "OrderCanceled", reason)
	o.publishSagaEvent(kafka.EventTypeSagaCanceled, current.ID, map[string]interface{}{
		"reason": reason,
	})
	o.publishOrderEvent(kafka.EventTypeOrderCanceled, current.ID, current.RestaurantID, domain.OrderStatusCanceled, map[string]interface{}{
		"reason": reason,
	})

	return o.orders.Get(current.ID)
}

// confirmRestaurant выполняет шаг подтверждения. Симулированный отказ
// срабатывает до обращения к реальному шлюзу.
func (o *orchestrator) confirmRestaurant(cmd PlaceOrderCommand, orderID string) (domain.ConfirmationDecision, error) {
	start := time.Now()
	defer func() {
		if o.metrics != nil {
			o.metrics.RecordStepDuration("confirm", time.Since(start))
		}
	}()

	if cmd.SimulationMode == SimulationRestaurantFailure {
		return domain.ConfirmationDecision{}, domain.NewRestaurantError(simulatedRestaurantFailure, nil)
	}
	return o.restaurant.Confirm(cmd.RestaurantID, orderID, cmd.Items)
}

// capturePayment выполняет шаг списания. Симулированный отказ
// срабатывает до обращения к реальному шлюзу.
func (o *orchestrator) capturePayment(cmd PlaceOrderCommand, orderID string, amount float64) (domain.PaymentResult, error) {
	start := time.Now()
	defer func() {
		if o.metrics != nil {
			o.metrics.RecordStepDuration("capture", time.Since(start))
		}
	}()

	if cmd.SimulationMode == SimulationPaymentFailure {
		return domain.PaymentResult{}, domain.NewPaymentError(simulatedPaymentFailure, nil)
	}
	return o.payments.AuthorizeAndCapture(orderID, amount)
}

// failOrder переводит запись в терминальный CANCELED с причиной отказа.
// Каждая неудачная попытка саги заканчивается долговечной CANCELED-записью:
// система не оставляет заказ в PENDING после завершения попытки.
func (o *orchestrator) failOrder(orderID, restaurantID string, patch domain.OrderUpdate, cause error) {
	if o.metrics != nil {
		o.metrics.RecordSagaFailed()
	}

	reason := cause.Error()
	patch.Status = domain.OrderStatusCanceled
	patch.FailureReason = &reason
	if err := o.orders.Update(orderID, patch); err != nil {
		o.logger.WithError(err).WithField("order_id", orderID).Error("persist canceled order failed")
	}

	o.appendTimeline(orderID, "OrderCanceled", reason)
	o.publishSagaEvent(kafka.EventTypeSagaFailed, orderID, map[string]interface{}{
		"reason": reason,
	})
	o.publishOrderEvent(kafka.EventTypeOrderCanceled, orderID, restaurantID, domain.OrderStatusCanceled, map[string]interface{}{
		"reason": reason,
	})
}

// compensateRestaurant снимает бронь у ресторана best-effort: ошибка
// компенсации логируется и никогда не влияет на исход саги.
func (o *orchestrator) compensateRestaurant(restaurantID, orderID, reason string) {
	start := time.Now()
	defer func() {
		if o.metrics != nil {
			o.metrics.RecordStepDuration("compensate", time.Since(start))
		}
	}()

	if err := o.restaurant.Cancel(restaurantID, orderID, reason); err != nil {
		o.logger.WithError(err).WithFields(log.Fields{
			"order_id":      orderID,
			"restaurant_id": restaurantID,
		}).Warn("restaurant compensation failed")
		o.appendTimeline(orderID, "CompensationFailed", err.Error())
		if o.metrics != nil {
			o.metrics.RecordCompensationFailed()
		}
		return
	}

	o.appendTimeline(orderID, "RestaurantCompensated", reason)
	if o.metrics != nil {
		o.metrics.RecordCompensation()
	}
}

// appendTimeline добавляет событие аудита; сбой записи не прерывает сагу.
func (o *orchestrator) appendTimeline(orderID, eventType, reason string) {
	if o.timeline == nil {
		return
	}

	event := domain.TimelineEvent{
		OrderID:  orderID,
		Type:     eventType,
		Reason:   reason,
		Occurred: time.Now().UTC(),
	}
	if err := o.timeline.Append(event); err != nil {
		o.logger.WithError(err).WithFields(log.Fields{
			"order_id": orderID,
			"event":    eventType,
		}).Warn("append timeline event failed")
	} else if o.metrics != nil {
		o.metrics.RecordTimelineEvent()
	}
}

// publishSagaEvent публикует событие саги в Kafka (если producer настроен)
func (o *orchestrator) publishSagaEvent(eventType kafka.EventType, orderID string, metadata map[string]interface{}) {
	if o.kafkaProducer == nil {
		return
	}

	event := kafka.NewSagaEvent(eventType, orderID, metadata)
	if err := o.kafkaProducer.PublishSagaEvent(event); err != nil {
		// Kafka опциональна: ошибку логируем, сагу не прерываем.
		o.logger.WithError(err).WithFields(log.Fields{
			"event_type": eventType,
			"order_id":   orderID,
		}).Warn("failed to publish saga event to kafka")
	}
}

// publishOrderEvent публикует событие заказа в Kafka (если producer настроен)
func (o *orchestrator) publishOrderEvent(eventType kafka.EventType, orderID, restaurantID string, status domain.OrderStatus, metadata map[string]interface{}) {
	if o.kafkaProducer == nil {
		return
	}

	event := kafka.NewOrderEvent(eventType, orderID, restaurantID, string(status), metadata)
	if err := o.kafkaProducer.PublishOrderEvent(event); err != nil {
		o.logger.WithError(err).WithFields(log.Fields{
			"event_type": eventType,
			"order_id":   orderID,
		}).Warn("failed to publish order event to kafka")
	}
}

var _ Orchestrator = (*orchestrator)(nil)
