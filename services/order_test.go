package services

import (
	"strings"
	"testing"

	"streetkitchen/models"
)

func TestValidStatusTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{OrderStatusDraft, OrderStatusPending, true},
		{OrderStatusPending, OrderStatusPlaced, true},
		{OrderStatusPlaced, OrderStatusConfirmed, true},
		{OrderStatusConfirmed, OrderStatusDispatched, true},
		{OrderStatusDispatched, OrderStatusDelivered, true},
		{OrderStatusPlaced, OrderStatusDispatched, false},
		{OrderStatusConfirmed, OrderStatusPlaced, false},
		{OrderStatusPlaced, OrderStatusPlaced, false},
		{OrderStatusDraft, OrderStatusCancelled, true},
		{OrderStatusPlaced, OrderStatusCancelled, true},
		{OrderStatusDispatched, OrderStatusCancelled, true},
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusPlaced, false},
		{OrderStatusCancelled, OrderStatusCancelled, false},
		{"", OrderStatusPending, false},
		{OrderStatusPlaced, "", false},
		{OrderStatusPlaced, "preparing", false},
	}
	for _, tt := range tests {
		got := ValidStatusTransition(tt.from, tt.to)
		if got != tt.want {
			t.Errorf("ValidStatusTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestCustomerMessageForOrderStatus(t *testing.T) {
	o := &models.Order{ID: 123, TotalPrice: dec("77")}
	m := CustomerMessageForOrderStatus(o, OrderStatusPlaced)
	if !strings.Contains(m, "123") || !strings.Contains(m, "77.00") {
		t.Errorf("message should contain order id and total: %s", m)
	}
	m = CustomerMessageForOrderStatus(o, OrderStatusDelivered)
	if !strings.Contains(m, "delivered") {
		t.Errorf("delivered message should say delivered: %s", m)
	}
	if m := CustomerMessageForOrderStatus(o, OrderStatusDraft); m != "" {
		t.Errorf("draft should have no customer message, got %q", m)
	}
}
