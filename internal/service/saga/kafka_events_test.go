package saga

import (
	"encoding/json"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"

	"github.com/vladislavdragonenkov/fos/internal/domain"
	"github.com/vladislavdragonenkov/fos/internal/gateway/payment"
	"github.com/vladislavdragonenkov/fos/internal/gateway/restaurant"
	"github.com/vladislavdragonenkov/fos/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/fos/internal/storage/memory"
)

func newKafkaFixture(t *testing.T) (*sagaFixture, *mocks.SyncProducer) {
	t.Helper()
	mockProducer := mocks.NewSyncProducer(t, nil)
	producer := kafka.NewProducerFromSyncProducer(mockProducer)

	orders := memory.NewOrderRepository()
	timeline := memory.NewTimelineRepository()
	restaurantMock := restaurant.NewMock()
	paymentMock := payment.NewMock()

	f := &sagaFixture{
		orders:     orders,
		timeline:   timeline,
		restaurant: restaurantMock,
		payments:   paymentMock,
		saga:       NewOrchestratorWithKafka(orders, timeline, restaurantMock, paymentMock, producer, nil),
	}
	return f, mockProducer
}

type publishedEvent struct {
	topic string
	body  map[string]interface{}
}

// expectAndCapture собирает публикуемые сообщения для проверки тем и типов событий.
func expectAndCapture(mockProducer *mocks.SyncProducer, count int, sink *[]publishedEvent) {
	for i := 0; i < count; i++ {
		mockProducer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
			raw, err := msg.Value.Encode()
			if err != nil {
				return err
			}
			var body map[string]interface{}
			if err := json.Unmarshal(raw, &body); err != nil {
				return err
			}
			*sink = append(*sink, publishedEvent{topic: msg.Topic, body: body})
			return nil
		})
	}
}

func countEvents(events []publishedEvent, topic, eventType string) int {
	n := 0
	for _, event := range events {
		if event.topic == topic && event.body["event_type"] == eventType {
			n++
		}
	}
	return n
}

func TestPlaceOrderPublishesSagaAndOrderEvents(t *testing.T) {
	f, mockProducer := newKafkaFixture(t)

	var published []publishedEvent
	// Успешная сага: saga.started + order.created + saga.completed + order.confirmed.
	expectAndCapture(mockProducer, 4, &published)

	if _, err := f.saga.PlaceOrder(singleItemCommand()); err != nil {
		t.Fatalf("PlaceOrder() error = %v", err)
	}

	if got := countEvents(published, kafka.TopicSagaEvents, "saga.started"); got != 1 {
		t.Errorf("saga.started events = %d, want 1", got)
	}
	if got := countEvents(published, kafka.TopicSagaEvents, "saga.completed"); got != 1 {
		t.Errorf("saga.completed events = %d, want 1", got)
	}
	if got := countEvents(published, kafka.TopicOrderEvents, "order.created"); got != 1 {
		t.Errorf("order.created events = %d, want 1", got)
	}
	if got := countEvents(published, kafka.TopicOrderEvents, "order.confirmed"); got != 1 {
		t.Errorf("order.confirmed events = %d, want 1", got)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestFailedSagaPublishesCanceledOrderEvent(t *testing.T) {
	f, mockProducer := newKafkaFixture(t)
	f.payments.AuthorizeErr = domain.NewPaymentError("card declined", nil)

	var published []publishedEvent
	// saga.started + order.created + saga.failed + order.canceled.
	expectAndCapture(mockProducer, 4, &published)

	cmd := singleItemCommand()
	cmd.OrderID = "order-kafka-pf"
	if _, err := f.saga.PlaceOrder(cmd); !domain.IsPaymentError(err) {
		t.Fatalf("PlaceOrder() error = %v, want PaymentError", err)
	}

	if got := countEvents(published, kafka.TopicSagaEvents, "saga.failed"); got != 1 {
		t.Errorf("saga.failed events = %d, want 1", got)
	}
	if got := countEvents(published, kafka.TopicOrderEvents, "order.canceled"); got != 1 {
		t.Errorf("order.canceled events = %d, want 1", got)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestCancelPublishesCanceledOrderEvent(t *testing.T) {
	f, mockProducer := newKafkaFixture(t)

	var published []publishedEvent
	// Размещение (4) + отмена: saga.canceled + order.canceled (2).
	expectAndCapture(mockProducer, 6, &published)

	order, err := f.saga.PlaceOrder(singleItemCommand())
	if err != nil {
		t.Fatalf("PlaceOrder() error = %v", err)
	}
	if _, err := f.saga.Cancel(order, "operator request"); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}

	if got := countEvents(published, kafka.TopicSagaEvents, "saga.canceled"); got != 1 {
		t.Errorf("saga.canceled events = %d, want 1", got)
	}
	if got := countEvents(published, kafka.TopicOrderEvents, "order.canceled"); got != 1 {
		t.Errorf("order.canceled events = %d, want 1", got)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestPublishFailureDoesNotAffectSaga(t *testing.T) {
	f, mockProducer := newKafkaFixture(t)

	// Kafka недоступна на каждом событии — сага обязана завершиться как обычно.
	for i := 0; i < 4; i++ {
		mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)
	}

	order, err := f.saga.PlaceOrder(singleItemCommand())
	if err != nil {
		t.Fatalf("PlaceOrder() error = %v, publish failures must be swallowed", err)
	}
	if order.Status != domain.OrderStatusConfirmed {
		t.Errorf("Status = %q, want CONFIRMED despite kafka being down", order.Status)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}
