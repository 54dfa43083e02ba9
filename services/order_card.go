package services

import (
	"fmt"
	"strconv"
	"strings"

	"streetkitchen/models"
)

// OrderCardButton is one inline button (text + callback_data or url).
type OrderCardButton struct {
	Text         string
	CallbackData string
	URL          string // if set, use as URL button instead of callback
}

// OrderCardContent is the text and optional inline keyboard for an order card.
type OrderCardContent struct {
	Text    string
	Buttons [][]OrderCardButton
}

// OrderStatusCallbackPrefix starts the callback data of status buttons:
// "order_status:<order id>:<status>".
const OrderStatusCallbackPrefix = "order_status:"

func OrderStatusCallback(orderID int64, status string) string {
	return OrderStatusCallbackPrefix + strconv.FormatInt(orderID, 10) + ":" + status
}

// ParseOrderStatusCallback is the inverse of OrderStatusCallback.
func ParseOrderStatusCallback(data string) (orderID int64, status string, ok bool) {
	if !strings.HasPrefix(data, OrderStatusCallbackPrefix) {
		return 0, "", false
	}
	parts := strings.Split(strings.TrimPrefix(data, OrderStatusCallbackPrefix), ":")
	if len(parts) != 2 {
		return 0, "", false
	}
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || id <= 0 || !IsKnownStatus(parts[1]) {
		return 0, "", false
	}
	return id, parts[1], true
}

func statusLabel(status string) string {
	switch status {
	case OrderStatusDraft:
		return "📝 Draft"
	case OrderStatusPending:
		return "⏳ Pending"
	case OrderStatusPlaced:
		return "🆕 New"
	case OrderStatusConfirmed:
		return "👨‍🍳 Confirmed"
	case OrderStatusDispatched:
		return "🛵 On the way"
	case OrderStatusDelivered:
		return "✅ Delivered"
	case OrderStatusCancelled:
		return "❌ Cancelled"
	default:
		return status
	}
}

// nextStatus is the status a vendor moves the order to from the card.
func nextStatus(status string) (string, bool) {
	i := flowIndex(status)
	if i < 0 || i+1 >= len(orderFlow) || IsTerminalStatus(status) {
		return "", false
	}
	return orderFlow[i+1], true
}

var nextStatusButton = map[string]string{
	OrderStatusConfirmed:  "👨‍🍳 Confirm",
	OrderStatusDispatched: "🛵 Dispatch",
	OrderStatusDelivered:  "✅ Mark delivered",
}

// BuildVendorOrderCard returns the card a vendor (or admin) chat gets for an
// order, with buttons for the next step and cancellation while it is open.
func BuildVendorOrderCard(o *models.Order, vendor *models.Vendor) OrderCardContent {
	var b strings.Builder
	fmt.Fprintf(&b, "Order #%d · %s\n", o.ID, vendor.Code)
	if vendor.Name != "" {
		fmt.Fprintf(&b, "%s\n", vendor.Name)
	}
	b.WriteString("\n")
	for _, it := range o.Items {
		fmt.Fprintf(&b, "%d × %s = ₹%s\n", it.Quantity, it.Name, it.LineTotal.StringFixed(2))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Subtotal: ₹%s\n", o.Subtotal.StringFixed(2))
	if o.DiscountTotal.IsPositive() {
		fmt.Fprintf(&b, "Discount: -₹%s\n", o.DiscountTotal.StringFixed(2))
	}
	fmt.Fprintf(&b, "Tax: ₹%s\n", o.TaxAmount.StringFixed(2))
	if o.DeliveryFee.IsPositive() {
		fmt.Fprintf(&b, "Delivery: ₹%s\n", o.DeliveryFee.StringFixed(2))
	}
	fmt.Fprintf(&b, "Total: ₹%s (%s)\n", o.TotalPrice.StringFixed(2), strings.ToUpper(o.PaymentMethod))

	if o.DeliveryName != "" || o.DeliveryPhone != "" {
		fmt.Fprintf(&b, "\n👤 %s %s", o.DeliveryName, o.DeliveryPhone)
	}
	if o.DeliveryAddress != "" {
		fmt.Fprintf(&b, "\n📍 %s %s", o.DeliveryAddress, o.Pincode)
	}
	if o.SpecialInstructions != "" {
		fmt.Fprintf(&b, "\n💬 %s", o.SpecialInstructions)
	}
	fmt.Fprintf(&b, "\n\nStatus: %s", statusLabel(o.Status))

	var buttons [][]OrderCardButton
	if next, ok := nextStatus(o.Status); ok {
		if label, ok := nextStatusButton[next]; ok {
			buttons = append(buttons, []OrderCardButton{{Text: label, CallbackData: OrderStatusCallback(o.ID, next)}})
		}
	}
	if !IsTerminalStatus(o.Status) {
		buttons = append(buttons, []OrderCardButton{{Text: "❌ Cancel", CallbackData: OrderStatusCallback(o.ID, OrderStatusCancelled)}})
	}
	return OrderCardContent{Text: b.String(), Buttons: buttons}
}
