package services

import (
	"strings"
	"testing"

	"streetkitchen/models"
)

func cardOrder(status string) *models.Order {
	return &models.Order{
		ID:            42,
		Status:        status,
		PaymentMethod: models.PaymentCOD,
		DeliveryName:  "Ravi",
		Subtotal:      dec("60"),
		DiscountTotal: dec("6"),
		TaxAmount:     dec("3"),
		DeliveryFee:   dec("20"),
		TotalPrice:    dec("77"),
		Items: []models.OrderItem{
			{Name: "Idli", Quantity: 4, UnitPrice: dec("10"), LineTotal: dec("40")},
			{Name: "Sambar", Quantity: 1, UnitPrice: dec("20"), LineTotal: dec("20")},
		},
	}
}

func TestBuildVendorOrderCard(t *testing.T) {
	v := &models.Vendor{ID: 1, Name: "Amma Idli", Code: "SOT001"}
	card := BuildVendorOrderCard(cardOrder(OrderStatusPlaced), v)

	for _, want := range []string{"Order #42", "SOT001", "4 × Idli = ₹40.00", "Discount: -₹6.00", "Total: ₹77.00 (COD)", "Ravi"} {
		if !strings.Contains(card.Text, want) {
			t.Errorf("card text missing %q:\n%s", want, card.Text)
		}
	}
	if len(card.Buttons) != 2 {
		t.Fatalf("buttons = %d rows, want 2", len(card.Buttons))
	}
	if got := card.Buttons[0][0].CallbackData; got != "order_status:42:confirmed" {
		t.Errorf("next button = %q", got)
	}
	if got := card.Buttons[1][0].CallbackData; got != "order_status:42:cancelled" {
		t.Errorf("cancel button = %q", got)
	}
}

func TestBuildVendorOrderCardButtonsByStatus(t *testing.T) {
	v := &models.Vendor{Code: "SOT001"}
	tests := []struct {
		status string
		want   []string
	}{
		{OrderStatusConfirmed, []string{"order_status:42:dispatched", "order_status:42:cancelled"}},
		{OrderStatusDispatched, []string{"order_status:42:delivered", "order_status:42:cancelled"}},
		{OrderStatusDelivered, nil},
		{OrderStatusCancelled, nil},
	}
	for _, tt := range tests {
		card := BuildVendorOrderCard(cardOrder(tt.status), v)
		var got []string
		for _, row := range card.Buttons {
			for _, b := range row {
				got = append(got, b.CallbackData)
			}
		}
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("%s buttons = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestParseOrderStatusCallback(t *testing.T) {
	tests := []struct {
		data   string
		id     int64
		status string
		ok     bool
	}{
		{"order_status:42:confirmed", 42, OrderStatusConfirmed, true},
		{"order_status:7:cancelled", 7, OrderStatusCancelled, true},
		{"order_status:7:eaten", 0, "", false},
		{"order_status:x:confirmed", 0, "", false},
		{"order_status:42", 0, "", false},
		{"driver_status:42:confirmed", 0, "", false},
	}
	for _, tt := range tests {
		id, status, ok := ParseOrderStatusCallback(tt.data)
		if id != tt.id || status != tt.status || ok != tt.ok {
			t.Errorf("ParseOrderStatusCallback(%q) = %d, %q, %v; want %d, %q, %v",
				tt.data, id, status, ok, tt.id, tt.status, tt.ok)
		}
	}
}
