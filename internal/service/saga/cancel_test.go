package saga

import (
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/fos/internal/domain"
)

func placeConfirmedOrder(t *testing.T, f *sagaFixture, orderID string) domain.OrderRecord {
	t.Helper()
	cmd := singleItemCommand()
	cmd.OrderID = orderID
	order, err := f.saga.PlaceOrder(cmd)
	if err != nil {
		t.Fatalf("PlaceOrder() error = %v", err)
	}
	return order
}

func TestCancelConfirmedOrder(t *testing.T) {
	f := newSagaFixture()
	order := placeConfirmedOrder(t, f, "order-1")

	canceled, err := f.saga.Cancel(order, "customer changed mind")
	if err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}

	if canceled.Status != domain.OrderStatusCanceled {
		t.Errorf("Status = %q, want CANCELED", canceled.Status)
	}
	if canceled.FailureReason == nil || *canceled.FailureReason != "customer changed mind" {
		t.Errorf("FailureReason = %v, want customer changed mind", canceled.FailureReason)
	}
	if f.restaurant.CancelCalls != 1 {
		t.Errorf("restaurant Cancel calls = %d, want 1", f.restaurant.CancelCalls)
	}
	if f.restaurant.LastCancelReason != "customer changed mind" {
		t.Errorf("compensation reason = %q", f.restaurant.LastCancelReason)
	}
	// Ручная отмена не трогает платёж: refund — отдельная операция оператора.
	if f.payments.RefundCalls != 0 {
		t.Errorf("Refund calls = %d, want 0", f.payments.RefundCalls)
	}
	// Цены остаются для аудита.
	if canceled.TotalAmount == nil || *canceled.TotalAmount != 10.0 {
		t.Errorf("TotalAmount = %v, want preserved 10.0", canceled.TotalAmount)
	}
}

func TestCancelWithEmptyReason(t *testing.T) {
	f := newSagaFixture()
	order := placeConfirmedOrder(t, f, "order-1")

	canceled, err := f.saga.Cancel(order, "")
	if err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}

	if canceled.Status != domain.OrderStatusCanceled {
		t.Errorf("Status = %q, want CANCELED", canceled.Status)
	}
	if canceled.FailureReason != nil {
		t.Errorf("FailureReason = %v, want nil for empty reason", canceled.FailureReason)
	}
	// Ресторану уходит служебная причина по умолчанию.
	if f.restaurant.LastCancelReason != "manual_cancel" {
		t.Errorf("compensation reason = %q, want manual_cancel", f.restaurant.LastCancelReason)
	}
}

func TestCancelIdempotent(t *testing.T) {
	f := newSagaFixture()
	order := placeConfirmedOrder(t, f, "order-1")

	first, err := f.saga.Cancel(order, "first reason")
	if err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}

	// Повторная отмена без причины не затирает первую.
	second, err := f.saga.Cancel(first, "")
	if err != nil {
		t.Fatalf("second Cancel() error = %v", err)
	}
	if second.Status != domain.OrderStatusCanceled {
		t.Errorf("Status = %q, want CANCELED", second.Status)
	}
	if second.FailureReason == nil || *second.FailureReason != "first reason" {
		t.Errorf("FailureReason = %v, want first reason preserved", second.FailureReason)
	}

	// Повторная отмена с новой причиной её перезаписывает.
	third, err := f.saga.Cancel(second, "new reason")
	if err != nil {
		t.Fatalf("third Cancel() error = %v", err)
	}
	if third.FailureReason == nil || *third.FailureReason != "new reason" {
		t.Errorf("FailureReason = %v, want new reason", third.FailureReason)
	}
}

func TestCancelCompensationFailureSwallowed(t *testing.T) {
	f := newSagaFixture()
	order := placeConfirmedOrder(t, f, "order-1")
	f.restaurant.CancelErr = errors.New("restaurant unreachable")

	canceled, err := f.saga.Cancel(order, "operator request")
	if err != nil {
		t.Fatalf("Cancel() error = %v, compensation failure must not surface", err)
	}
	if canceled.Status != domain.OrderStatusCanceled {
		t.Errorf("Status = %q, want CANCELED", canceled.Status)
	}

	gotEvents := timelineTypes(t, f.timeline, "order-1")
	var sawCompensationFailed bool
	for _, eventType := range gotEvents {
		if eventType == "CompensationFailed" {
			sawCompensationFailed = true
		}
	}
	if !sawCompensationFailed {
		t.Errorf("timeline = %v, want CompensationFailed event", gotEvents)
	}
}

func TestCancelMissingOrder(t *testing.T) {
	f := newSagaFixture()

	_, err := f.saga.Cancel(domain.OrderRecord{ID: "ghost", RestaurantID: "rest-1"}, "reason")
	if !domain.IsOrderNotFound(err) {
		t.Errorf("Cancel() error = %v, want ErrOrderNotFound", err)
	}
	// Несуществующий заказ не должен порождать компенсацию у ресторана.
	if f.restaurant.CancelCalls != 0 {
		t.Errorf("restaurant Cancel calls = %d, want 0 for unknown order", f.restaurant.CancelCalls)
	}
}
