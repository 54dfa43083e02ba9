package api

import (
	"context"

	"streetkitchen/models"
	"streetkitchen/services"

	"github.com/shopspring/decimal"
)

// Store is everything the handlers read or write outside checkout.
type Store interface {
	CreateVendor(ctx context.Context, in models.CreateVendorInput) (*models.Vendor, error)
	VendorByCode(ctx context.Context, code string) (*models.Vendor, error)
	Vendors(ctx context.Context) ([]models.Vendor, error)

	Menu(ctx context.Context, vendorID int64, onlyAvailable bool) ([]models.MenuItem, error)
	AddMenuItem(ctx context.Context, vendorID int64, category, name string, price decimal.Decimal) (int64, error)
	SetMenuItemAvailability(ctx context.Context, vendorID, itemID int64, available bool) error
	Combos(ctx context.Context, vendorID int64) ([]models.Combo, error)
	AddCombo(ctx context.Context, vendorID int64, name, description string, price decimal.Decimal) (int64, error)
	ActiveComboRules(ctx context.Context, vendorID int64) ([]models.ComboRule, error)
	AddComboRule(ctx context.Context, vendorID, menuItemID int64, minQuantity int, pct decimal.Decimal) (int64, error)
	DeactivateComboRule(ctx context.Context, ruleID int64) error

	CreateCustomCombo(ctx context.Context, in services.CreateCustomComboInput) (*models.CustomCombo, error)
	ValidateCustomCombo(ctx context.Context, id int64) (*models.CustomCombo, []string, error)

	Order(ctx context.Context, id int64) (*models.Order, error)
	VendorOrders(ctx context.Context, vendorID int64, limit int) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status, note string) (*models.Order, error)
	OrderTracking(ctx context.Context, id int64) ([]models.OrderTracking, error)
	DailyStats(ctx context.Context, vendorID int64, date string) (*models.DailyStats, error)
}

// Checkout prices and places orders.
type Checkout interface {
	Quote(ctx context.Context, in services.PlaceOrderInput) (*services.CheckoutResult, error)
	Place(ctx context.Context, in services.PlaceOrderInput) (*models.Order, error)
}

// PgStore is the Postgres-backed Store.
type PgStore struct {
	Allocator *services.VendorCodeAllocator
}

func (s PgStore) CreateVendor(ctx context.Context, in models.CreateVendorInput) (*models.Vendor, error) {
	return s.Allocator.Create(ctx, in)
}

func (PgStore) VendorByCode(ctx context.Context, code string) (*models.Vendor, error) {
	return services.GetVendorByCode(ctx, code)
}

func (PgStore) Vendors(ctx context.Context) ([]models.Vendor, error) {
	return services.ListVendors(ctx)
}

func (PgStore) Menu(ctx context.Context, vendorID int64, onlyAvailable bool) ([]models.MenuItem, error) {
	return services.ListMenuByVendor(ctx, vendorID, onlyAvailable)
}

func (PgStore) AddMenuItem(ctx context.Context, vendorID int64, category, name string, price decimal.Decimal) (int64, error) {
	return services.AddMenuItem(ctx, vendorID, category, name, price)
}

func (PgStore) SetMenuItemAvailability(ctx context.Context, vendorID, itemID int64, available bool) error {
	return services.SetMenuItemAvailability(ctx, vendorID, itemID, available)
}

func (PgStore) Combos(ctx context.Context, vendorID int64) ([]models.Combo, error) {
	return services.ListCombosForVendor(ctx, vendorID)
}

func (PgStore) AddCombo(ctx context.Context, vendorID int64, name, description string, price decimal.Decimal) (int64, error) {
	return services.AddCombo(ctx, name, description, price, []int64{vendorID})
}

func (PgStore) ActiveComboRules(ctx context.Context, vendorID int64) ([]models.ComboRule, error) {
	return services.ListActiveComboRules(ctx, vendorID)
}

func (PgStore) AddComboRule(ctx context.Context, vendorID, menuItemID int64, minQuantity int, pct decimal.Decimal) (int64, error) {
	return services.AddComboRule(ctx, vendorID, menuItemID, minQuantity, pct)
}

func (PgStore) DeactivateComboRule(ctx context.Context, ruleID int64) error {
	return services.SetComboRuleActive(ctx, ruleID, false)
}

func (PgStore) CreateCustomCombo(ctx context.Context, in services.CreateCustomComboInput) (*models.CustomCombo, error) {
	return services.CreateCustomCombo(ctx, in)
}

func (PgStore) ValidateCustomCombo(ctx context.Context, id int64) (*models.CustomCombo, []string, error) {
	return services.ValidateStoredCustomCombo(ctx, id)
}

func (PgStore) Order(ctx context.Context, id int64) (*models.Order, error) {
	return services.GetOrder(ctx, id)
}

func (PgStore) VendorOrders(ctx context.Context, vendorID int64, limit int) ([]models.Order, error) {
	return services.ListVendorOrders(ctx, vendorID, limit)
}

func (PgStore) UpdateOrderStatus(ctx context.Context, id int64, status, note string) (*models.Order, error) {
	return services.UpdateOrderStatus(ctx, id, status, note)
}

func (PgStore) OrderTracking(ctx context.Context, id int64) ([]models.OrderTracking, error) {
	return services.ListOrderTracking(ctx, id)
}

func (PgStore) DailyStats(ctx context.Context, vendorID int64, date string) (*models.DailyStats, error) {
	return services.GetDailyStats(ctx, vendorID, date)
}
