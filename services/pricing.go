package services

import (
	"streetkitchen/config"
	"streetkitchen/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// PricingPolicy holds the flat charges applied on top of an order's lines.
type PricingPolicy struct {
	TaxPercent            decimal.Decimal
	DeliveryFee           decimal.Decimal
	FreeDeliveryThreshold decimal.Decimal
	// MaxDiscountPercent caps the stacked rule discount as a share of the
	// subtotal. Zero leaves stacking uncapped.
	MaxDiscountPercent decimal.Decimal
}

func DefaultPricingPolicy() PricingPolicy {
	return PricingPolicy{
		TaxPercent:            decimal.NewFromInt(5),
		DeliveryFee:           decimal.NewFromInt(20),
		FreeDeliveryThreshold: decimal.NewFromInt(200),
	}
}

func PolicyFromConfig(cfg config.PricingConfig) PricingPolicy {
	return PricingPolicy{
		TaxPercent:            cfg.TaxPercent,
		DeliveryFee:           cfg.DeliveryFee,
		FreeDeliveryThreshold: cfg.FreeDeliveryThreshold,
		MaxDiscountPercent:    cfg.MaxDiscountPercent,
	}
}

// ComboContent is one menu item inside a custom combo line.
type ComboContent struct {
	MenuItemID int64
	Quantity   int
}

// PricedLine is an order line resolved against the catalog, with its unit
// price already snapshotted.
type PricedLine struct {
	Kind      string
	RefID     int64
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
	Contents  []ComboContent // custom combo lines only
}

func (l PricedLine) Total() decimal.Decimal {
	return roundCents(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
}

// AppliedRule records a combo rule that fired for a quote.
type AppliedRule struct {
	RuleID          int64
	MenuItemID      int64
	MenuItemName    string
	MinQuantity     int
	MatchedQuantity int
	Percentage      decimal.Decimal
	Amount          decimal.Decimal
}

// Quote is the priced breakdown of an order.
type Quote struct {
	Subtotal      decimal.Decimal
	DiscountTotal decimal.Decimal
	TaxAmount     decimal.Decimal
	DeliveryFee   decimal.Decimal
	TotalPrice    decimal.Decimal
	AppliedRules  []AppliedRule
	Violations    []string
}

// Balanced reports whether TotalPrice equals
// Subtotal - DiscountTotal + TaxAmount + DeliveryFee.
func (q Quote) Balanced() bool {
	want := q.Subtotal.Sub(q.DiscountTotal).Add(q.TaxAmount).Add(q.DeliveryFee)
	return q.TotalPrice.Equal(want)
}

// Price computes the quote for lines under the given rules and policy.
// Tax is charged on the pre-discount subtotal. Every active rule whose item
// quantity reaches its minimum adds subtotal * percentage / 100; discounts
// from several rules add up. Price has no side effects.
func Price(lines []PricedLine, rules []models.ComboRule, policy PricingPolicy) Quote {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Total())
	}
	subtotal = roundCents(subtotal)

	matched := MatchedQuantities(lines)

	q := Quote{Subtotal: subtotal}
	discount := decimal.Zero
	for _, r := range rules {
		if !r.IsActive {
			continue
		}
		qty := matched[r.MenuItemID]
		if qty < r.MinQuantity {
			continue
		}
		amount := roundCents(subtotal.Mul(r.DiscountPercentage).Div(hundred))
		discount = discount.Add(amount)
		q.AppliedRules = append(q.AppliedRules, AppliedRule{
			RuleID:          r.ID,
			MenuItemID:      r.MenuItemID,
			MenuItemName:    r.MenuItemName,
			MinQuantity:     r.MinQuantity,
			MatchedQuantity: qty,
			Percentage:      r.DiscountPercentage,
			Amount:          amount,
		})
	}
	if policy.MaxDiscountPercent.IsPositive() {
		limit := roundCents(subtotal.Mul(policy.MaxDiscountPercent).Div(hundred))
		if discount.GreaterThan(limit) {
			discount = limit
		}
	}
	q.DiscountTotal = discount

	q.TaxAmount = roundCents(subtotal.Mul(policy.TaxPercent).Div(hundred))
	q.DeliveryFee = DeliveryFeeFor(subtotal, policy)
	q.TotalPrice = q.Subtotal.Sub(q.DiscountTotal).Add(q.TaxAmount).Add(q.DeliveryFee)
	return q
}

// DeliveryFeeFor returns the flat fee when subtotal is below the free
// delivery threshold, zero otherwise.
func DeliveryFeeFor(subtotal decimal.Decimal, policy PricingPolicy) decimal.Decimal {
	if subtotal.LessThan(policy.FreeDeliveryThreshold) {
		return roundCents(policy.DeliveryFee)
	}
	return decimal.Zero
}

// MatchedQuantities sums, per menu item, the quantity ordered directly plus
// the quantity carried inside custom combo lines. Predefined combos are
// fixed-price bundles and do not count toward rules.
func MatchedQuantities(lines []PricedLine) map[int64]int {
	out := make(map[int64]int)
	for _, l := range lines {
		switch l.Kind {
		case models.ItemKindMenuItem:
			out[l.RefID] += l.Quantity
		case models.ItemKindCustomCombo:
			for _, c := range l.Contents {
				out[c.MenuItemID] += c.Quantity * l.Quantity
			}
		}
	}
	return out
}

// roundCents rounds half away from zero to two places; money here is never
// negative, so that is half-up.
func roundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
