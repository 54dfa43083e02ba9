package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"streetkitchen/metrics"
	"streetkitchen/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Catalog is the read side checkout resolves order lines against.
type Catalog interface {
	VendorByCode(ctx context.Context, code string) (*models.Vendor, error)
	MenuItemsByIDs(ctx context.Context, ids []int64) (map[int64]models.MenuItem, error)
	CombosByIDs(ctx context.Context, ids []int64) (map[int64]models.Combo, error)
	CustomCombo(ctx context.Context, id int64) (*models.CustomCombo, error)
	ActiveComboRules(ctx context.Context, vendorID int64) ([]models.ComboRule, error)
}

// OrderStore persists an order and all its lines atomically.
type OrderStore interface {
	CreateOrder(ctx context.Context, o *models.Order) error
}

// Notifier is told about every stored order. Its errors are logged only.
type Notifier interface {
	OrderPlaced(ctx context.Context, ev models.OrderEvent) error
}

// PgCatalog implements Catalog with the package's SQL helpers.
type PgCatalog struct{}

func (PgCatalog) VendorByCode(ctx context.Context, code string) (*models.Vendor, error) {
	return GetVendorByCode(ctx, code)
}

func (PgCatalog) MenuItemsByIDs(ctx context.Context, ids []int64) (map[int64]models.MenuItem, error) {
	return GetMenuItemsByIDs(ctx, ids)
}

func (PgCatalog) CombosByIDs(ctx context.Context, ids []int64) (map[int64]models.Combo, error) {
	return GetCombosByIDs(ctx, ids)
}

func (PgCatalog) CustomCombo(ctx context.Context, id int64) (*models.CustomCombo, error) {
	return GetCustomCombo(ctx, id)
}

func (PgCatalog) ActiveComboRules(ctx context.Context, vendorID int64) ([]models.ComboRule, error) {
	return ListActiveComboRules(ctx, vendorID)
}

// LineInput is one requested order line.
type LineInput struct {
	Kind     string
	ID       int64
	Quantity int
}

type PlaceOrderInput struct {
	VendorCode          string
	CustomerID          *int64
	DeliveryName        string
	DeliveryPhone       string
	DeliveryAddress     string
	Pincode             string
	SpecialInstructions string
	PaymentMethod       string
	Items               []LineInput
	// CustomComboID adds one unit of a saved custom combo to Items.
	CustomComboID *int64
}

// CheckoutResult is a resolved and priced order that has not been stored.
type CheckoutResult struct {
	Vendor *models.Vendor
	Lines  []PricedLine
	Quote  Quote
}

const defaultNotifyTimeout = 15 * time.Second

type Checkout struct {
	Catalog       Catalog
	Orders        OrderStore
	Notifier      Notifier
	Policy        PricingPolicy
	NotifyTimeout time.Duration

	wg sync.WaitGroup
}

func NewCheckout(catalog Catalog, orders OrderStore, notifier Notifier, policy PricingPolicy) *Checkout {
	return &Checkout{
		Catalog:       catalog,
		Orders:        orders,
		Notifier:      notifier,
		Policy:        policy,
		NotifyTimeout: defaultNotifyTimeout,
	}
}

// Quote resolves in against the catalog and prices it without writing.
// Custom combo rule violations are reported in Quote.Violations; every other
// problem comes back as a *ValidationError.
func (c *Checkout) Quote(ctx context.Context, in PlaceOrderInput) (*CheckoutResult, error) {
	vendor, err := c.Catalog.VendorByCode(ctx, strings.TrimSpace(in.VendorCode))
	if err != nil {
		return nil, err
	}

	lines := append([]LineInput(nil), in.Items...)
	if in.CustomComboID != nil {
		lines = append(lines, LineInput{Kind: models.ItemKindCustomCombo, ID: *in.CustomComboID, Quantity: 1})
	}

	verr := &ValidationError{}
	if len(lines) == 0 {
		verr.add(ErrEmptyOrder, "order has no items")
		return nil, verr
	}
	if !validPaymentMethod(in.PaymentMethod) {
		verr.add(ErrInvalidPaymentMethod, "payment method must be %q or %q, got %q",
			models.PaymentCOD, models.PaymentOnline, in.PaymentMethod)
	}

	var menuIDs, comboIDs []int64
	for i, l := range lines {
		if l.Quantity <= 0 {
			verr.add(ErrInvalidQuantity, "line %d: quantity must be a positive integer, got %d", i+1, l.Quantity)
			continue
		}
		switch l.Kind {
		case models.ItemKindMenuItem:
			menuIDs = append(menuIDs, l.ID)
		case models.ItemKindCombo:
			comboIDs = append(comboIDs, l.ID)
		case models.ItemKindCustomCombo:
		default:
			verr.add(ErrUnknownItemKind, "line %d: unknown item kind %q", i+1, l.Kind)
		}
	}

	menu, err := c.Catalog.MenuItemsByIDs(ctx, menuIDs)
	if err != nil {
		return nil, fmt.Errorf("load menu items: %w", err)
	}
	combos, err := c.Catalog.CombosByIDs(ctx, comboIDs)
	if err != nil {
		return nil, fmt.Errorf("load combos: %w", err)
	}
	rules, err := c.Catalog.ActiveComboRules(ctx, vendor.ID)
	if err != nil {
		return nil, fmt.Errorf("load combo rules: %w", err)
	}

	var priced []PricedLine
	var violations []string
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		switch l.Kind {
		case models.ItemKindMenuItem:
			m, ok := menu[l.ID]
			switch {
			case !ok:
				verr.add(ErrUnknownItem, "menu item #%d does not exist", l.ID)
			case m.VendorID != vendor.ID:
				verr.add(ErrCrossVendorItem, "%s is not sold by %s", m.Name, vendor.Code)
			case !m.IsAvailable:
				verr.add(ErrItemUnavailable, "%s is currently unavailable", m.Name)
			default:
				priced = append(priced, PricedLine{
					Kind:      models.ItemKindMenuItem,
					RefID:     m.ID,
					Name:      m.Name,
					UnitPrice: m.Price,
					Quantity:  l.Quantity,
				})
			}

		case models.ItemKindCombo:
			cb, ok := combos[l.ID]
			switch {
			case !ok:
				verr.add(ErrUnknownItem, "combo #%d does not exist", l.ID)
			case !cb.OfferedBy(vendor.ID):
				verr.add(ErrCrossVendorItem, "%s is not sold by %s", cb.Name, vendor.Code)
			case !cb.IsAvailable:
				verr.add(ErrItemUnavailable, "%s is currently unavailable", cb.Name)
			default:
				priced = append(priced, PricedLine{
					Kind:      models.ItemKindCombo,
					RefID:     cb.ID,
					Name:      cb.Name,
					UnitPrice: cb.Price,
					Quantity:  l.Quantity,
				})
			}

		case models.ItemKindCustomCombo:
			cc, err := c.Catalog.CustomCombo(ctx, l.ID)
			if errors.Is(err, ErrCustomComboNotFound) {
				verr.add(ErrUnknownItem, "custom combo #%d does not exist", l.ID)
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("load custom combo #%d: %w", l.ID, err)
			}
			if cc.VendorID != vendor.ID {
				verr.add(ErrCrossVendorItem, "custom combo %q belongs to another vendor", cc.Title)
				continue
			}
			if len(cc.Items) == 0 {
				verr.add(ErrUnknownItem, "custom combo %q has no items", cc.Title)
				continue
			}
			usable := true
			for _, it := range cc.Items {
				switch {
				case it.VendorID != 0 && it.VendorID != vendor.ID:
					verr.add(ErrCrossVendorItem, "custom combo %q: %s is not sold by %s", cc.Title, it.Name, vendor.Code)
					usable = false
				case !it.IsAvailable:
					verr.add(ErrItemUnavailable, "custom combo %q: %s is currently unavailable", cc.Title, it.Name)
					usable = false
				}
			}
			if !usable {
				continue
			}
			violations = append(violations, ValidateCustomCombo(cc.Items, rules)...)
			contents := make([]ComboContent, 0, len(cc.Items))
			for _, it := range cc.Items {
				contents = append(contents, ComboContent{MenuItemID: it.MenuItemID, Quantity: it.Quantity})
			}
			priced = append(priced, PricedLine{
				Kind:      models.ItemKindCustomCombo,
				RefID:     cc.ID,
				Name:      cc.Title,
				UnitPrice: roundCents(cc.Total()),
				Quantity:  l.Quantity,
				Contents:  contents,
			})
		}
	}

	if !verr.empty() {
		return nil, verr
	}
	if len(priced) == 0 {
		verr.add(ErrEmptyOrder, "order has no items")
		return nil, verr
	}

	q := Price(priced, rules, c.Policy)
	q.Violations = violations
	return &CheckoutResult{Vendor: vendor, Lines: priced, Quote: q}, nil
}

// Place validates, prices and stores an order, then notifies in the
// background. Nothing is written unless every check passes.
func (c *Checkout) Place(ctx context.Context, in PlaceOrderInput) (*models.Order, error) {
	res, err := c.Quote(ctx, in)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			metrics.OrdersTotal.WithLabelValues("validation_failed").Inc()
		}
		return nil, err
	}
	if len(res.Quote.Violations) > 0 {
		metrics.ComboValidationFailures.Inc()
		metrics.OrdersTotal.WithLabelValues("validation_failed").Inc()
		verr := &ValidationError{}
		for _, v := range res.Quote.Violations {
			verr.add(ErrComboRequirements, "%s", v)
		}
		return nil, verr
	}

	order := newOrder(res, in)
	if err := c.Orders.CreateOrder(ctx, order); err != nil {
		metrics.OrdersTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("create order: %w", err)
	}
	metrics.OrdersTotal.WithLabelValues("placed").Inc()
	metrics.OrderAmount.Observe(order.TotalPrice.InexactFloat64())

	log.WithFields(log.Fields{
		"order_id":  order.ID,
		"reference": order.Reference.String(),
		"vendor":    order.VendorCode,
		"total":     order.TotalPrice.StringFixed(2),
	}).Info("Order placed")

	c.notify(*res.Vendor, *order)
	return order, nil
}

// Wait blocks until background notifications have finished.
func (c *Checkout) Wait() {
	c.wg.Wait()
}

func (c *Checkout) notify(v models.Vendor, o models.Order) {
	if c.Notifier == nil {
		return
	}
	timeout := c.NotifyTimeout
	if timeout <= 0 {
		timeout = defaultNotifyTimeout
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := c.Notifier.OrderPlaced(ctx, models.OrderEvent{Vendor: v, Order: o}); err != nil {
			log.WithError(err).WithField("order_id", o.ID).Warn("Order notification failed")
		}
	}()
}

func validPaymentMethod(m string) bool {
	return m == "" || m == models.PaymentCOD || m == models.PaymentOnline
}

func newOrder(res *CheckoutResult, in PlaceOrderInput) *models.Order {
	payment := in.PaymentMethod
	if payment == "" {
		payment = models.PaymentCOD
	}
	o := &models.Order{
		Reference:           uuid.New(),
		VendorID:            res.Vendor.ID,
		VendorCode:          res.Vendor.Code,
		CustomerID:          in.CustomerID,
		DeliveryName:        strings.TrimSpace(in.DeliveryName),
		DeliveryPhone:       strings.TrimSpace(in.DeliveryPhone),
		DeliveryAddress:     strings.TrimSpace(in.DeliveryAddress),
		Pincode:             strings.TrimSpace(in.Pincode),
		SpecialInstructions: strings.TrimSpace(in.SpecialInstructions),
		PaymentMethod:       payment,
		Status:              OrderStatusPlaced,
		Subtotal:            res.Quote.Subtotal,
		DiscountTotal:       res.Quote.DiscountTotal,
		TaxAmount:           res.Quote.TaxAmount,
		DeliveryFee:         res.Quote.DeliveryFee,
		TotalPrice:          res.Quote.TotalPrice,
	}
	for _, l := range res.Lines {
		ref := l.RefID
		it := models.OrderItem{
			Kind:      l.Kind,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			LineTotal: l.Total(),
		}
		switch l.Kind {
		case models.ItemKindMenuItem:
			it.MenuItemID = &ref
		case models.ItemKindCombo:
			it.ComboID = &ref
		case models.ItemKindCustomCombo:
			it.CustomComboID = &ref
		}
		o.Items = append(o.Items, it)
	}
	return o
}
