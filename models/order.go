package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item kinds an order line may reference.
const (
	ItemKindMenuItem    = "menu_item"
	ItemKindCombo       = "combo"
	ItemKindCustomCombo = "custom_combo"
)

const (
	PaymentCOD    = "cod"
	PaymentOnline = "online"
)

// Order is a placed order header. Money fields are derived from Items and
// never edited directly.
type Order struct {
	ID                  int64
	Reference           uuid.UUID
	VendorID            int64
	VendorCode          string
	CustomerID          *int64
	DeliveryName        string
	DeliveryPhone       string
	DeliveryAddress     string
	Pincode             string
	SpecialInstructions string
	PaymentMethod       string
	Status              string
	Subtotal            decimal.Decimal
	DiscountTotal       decimal.Decimal
	TaxAmount           decimal.Decimal
	DeliveryFee         decimal.Decimal
	TotalPrice          decimal.Decimal
	Items               []OrderItem
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// OrderItem references exactly one of menu item, combo or custom combo.
// UnitPrice is snapshotted at creation.
type OrderItem struct {
	ID            int64
	Kind          string
	MenuItemID    *int64
	ComboID       *int64
	CustomComboID *int64
	Name          string
	Quantity      int
	UnitPrice     decimal.Decimal
	LineTotal     decimal.Decimal
}

type OrderTracking struct {
	ID        int64
	OrderID   int64
	Status    string
	Note      string
	CreatedAt time.Time
}

// DailyStats summarises one vendor's orders placed on a given day.
// Cancelled orders are counted but excluded from revenue.
type DailyStats struct {
	Date           string
	OrdersCount    int
	CancelledCount int
	Subtotal       decimal.Decimal
	DiscountTotal  decimal.Decimal
	TaxAmount      decimal.Decimal
	DeliveryFees   decimal.Decimal
	Revenue        decimal.Decimal
}

// OrderEvent is what notification channels receive once an order is stored.
type OrderEvent struct {
	Vendor Vendor
	Order  Order
}
