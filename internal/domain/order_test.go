package domain

import (
	"testing"
	"time"
)

func validRecord() OrderRecord {
	now := time.Now().UTC()
	return OrderRecord{
		ID:           "order-1",
		RestaurantID: "resto-roma",
		Status:       OrderStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestOrderStatus_IsTerminal(t *testing.T) {
	if OrderStatusPending.IsTerminal() {
		t.Error("pending must not be terminal")
	}
	if !OrderStatusConfirmed.IsTerminal() {
		t.Error("confirmed must be terminal")
	}
	if !OrderStatusCanceled.IsTerminal() {
		t.Error("canceled must be terminal")
	}
}

func TestOrderRecord_ValidateInvariants_Valid(t *testing.T) {
	record := validRecord()
	if errs := record.ValidateInvariants(); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestOrderRecord_ValidateInvariants_Required(t *testing.T) {
	record := validRecord()
	record.ID = ""
	record.RestaurantID = ""

	errs := record.ValidateInvariants()
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %v", errs)
	}
}

func TestOrderRecord_ValidateInvariants_PaymentReferenceOnlyWhenConfirmed(t *testing.T) {
	record := validRecord()
	ref := "pay-123"
	record.PaymentReference = &ref

	errs := record.ValidateInvariants()
	if len(errs) != 1 || errs[0] != ErrPaymentReferenceInvalid {
		t.Fatalf("expected ErrPaymentReferenceInvalid, got %v", errs)
	}

	record.Status = OrderStatusConfirmed
	if errs := record.ValidateInvariants(); len(errs) != 0 {
		t.Fatalf("expected no errors for confirmed order, got %v", errs)
	}
}

func TestOrderRecord_ValidateInvariants_FailureReasonOnlyWhenCanceled(t *testing.T) {
	record := validRecord()
	reason := "card declined"
	record.FailureReason = &reason

	errs := record.ValidateInvariants()
	if len(errs) != 1 || errs[0] != ErrFailureReasonInvalid {
		t.Fatalf("expected ErrFailureReasonInvalid, got %v", errs)
	}

	record.Status = OrderStatusCanceled
	if errs := record.ValidateInvariants(); len(errs) != 0 {
		t.Fatalf("expected no errors for canceled order, got %v", errs)
	}
}

func TestOrderRecord_ValidateInvariants_AmountMismatch(t *testing.T) {
	record := validRecord()
	record.Status = OrderStatusConfirmed
	total := 25.0
	record.TotalAmount = &total
	record.Items = []PricedLineItem{
		{MenuItemID: "roma-carbonara", Quantity: 1, LineTotal: 10.0},
	}

	errs := record.ValidateInvariants()
	if len(errs) != 1 || errs[0] != ErrAmountMismatch {
		t.Fatalf("expected ErrAmountMismatch, got %v", errs)
	}
}

func TestOrderRecord_Clone_Isolated(t *testing.T) {
	record := validRecord()
	total := 10.0
	record.TotalAmount = &total
	record.Items = []PricedLineItem{{MenuItemID: "roma-carbonara", Quantity: 1, LineTotal: 10.0}}

	clone := record.Clone()
	*clone.TotalAmount = 99.0
	clone.Items[0].LineTotal = 99.0

	if *record.TotalAmount != 10.0 {
		t.Errorf("clone mutation leaked into total: %v", *record.TotalAmount)
	}
	if record.Items[0].LineTotal != 10.0 {
		t.Errorf("clone mutation leaked into items: %v", record.Items[0].LineTotal)
	}
}
