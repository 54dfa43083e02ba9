package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	CategoryIdli    = "idli"
	CategoryChutney = "chutney"
	CategorySambar  = "sambar"
	CategoryOther   = "other"
)

type Vendor struct {
	ID             int64
	Name           string
	City           string
	Pincode        string
	OwnerName      string
	Code           string // SOT001, SOT002, ...
	TelegramChatID *int64
	WebhookURL     string
	IsActive       bool
	CreatedAt      time.Time
}

type CreateVendorInput struct {
	Name           string
	City           string
	Pincode        string
	OwnerName      string
	TelegramChatID *int64
	WebhookURL     string
}

// MenuItem is a vendor-scoped catalog entry.
type MenuItem struct {
	ID          int64
	VendorID    int64
	Name        string
	Category    string
	Price       decimal.Decimal
	IsAvailable bool
}

// Combo is a predefined bundle sold at a fixed price, offered by one or more vendors.
type Combo struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
	IsAvailable bool
	VendorIDs   []int64
}

// OfferedBy reports whether vendorID sells this combo.
func (c *Combo) OfferedBy(vendorID int64) bool {
	for _, id := range c.VendorIDs {
		if id == vendorID {
			return true
		}
	}
	return false
}

// ComboRule fires a percentage discount when an order holds at least
// MinQuantity of MenuItemID.
type ComboRule struct {
	ID                 int64
	MenuItemID         int64
	MenuItemName       string
	VendorID           int64
	MinQuantity        int
	DiscountPercentage decimal.Decimal
	IsActive           bool
}

type CustomCombo struct {
	ID          int64
	VendorID    int64
	CustomerID  *int64
	SessionKey  string
	Title       string
	Description string
	Items       []CustomComboItem
	CreatedAt   time.Time
}

// CustomComboItem carries the menu item's current vendor, price and
// availability so an order can be checked against them.
type CustomComboItem struct {
	MenuItemID  int64
	VendorID    int64
	Name        string
	Price       decimal.Decimal
	IsAvailable bool
	Quantity    int
}

// Total is the sum of price x quantity over the combo's items.
func (c *CustomCombo) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}
