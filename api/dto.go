package api

import (
	"time"

	"streetkitchen/models"
	"streetkitchen/services"

	"github.com/shopspring/decimal"
)

func money(d decimal.Decimal) string { return d.StringFixed(2) }

type vendorJSON struct {
	ID         int64     `json:"id"`
	Code       string    `json:"vendor_code"`
	Name       string    `json:"name"`
	City       string    `json:"city,omitempty"`
	Pincode    string    `json:"pincode,omitempty"`
	OwnerName  string    `json:"owner_name,omitempty"`
	WebhookURL string    `json:"webhook_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func toVendorJSON(v *models.Vendor) vendorJSON {
	return vendorJSON{
		ID:         v.ID,
		Code:       v.Code,
		Name:       v.Name,
		City:       v.City,
		Pincode:    v.Pincode,
		OwnerName:  v.OwnerName,
		WebhookURL: v.WebhookURL,
		CreatedAt:  v.CreatedAt,
	}
}

type menuItemJSON struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Price       string `json:"price"`
	IsAvailable bool   `json:"is_available"`
}

func toMenuItemJSON(m models.MenuItem) menuItemJSON {
	return menuItemJSON{ID: m.ID, Name: m.Name, Category: m.Category, Price: money(m.Price), IsAvailable: m.IsAvailable}
}

type comboJSON struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       string `json:"price"`
}

type comboRuleJSON struct {
	ID                 int64  `json:"id"`
	MenuItemID         int64  `json:"menu_item_id"`
	MenuItemName       string `json:"menu_item_name"`
	MinQuantity        int    `json:"min_quantity"`
	DiscountPercentage string `json:"discount_percentage"`
}

func toComboRuleJSON(r models.ComboRule) comboRuleJSON {
	return comboRuleJSON{
		ID:                 r.ID,
		MenuItemID:         r.MenuItemID,
		MenuItemName:       r.MenuItemName,
		MinQuantity:        r.MinQuantity,
		DiscountPercentage: money(r.DiscountPercentage),
	}
}

type lineRequest struct {
	Kind     string `json:"kind"`
	ID       int64  `json:"id"`
	Quantity int    `json:"quantity"`
}

type orderRequest struct {
	CustomerID          *int64        `json:"customer_id"`
	DeliveryName        string        `json:"delivery_name"`
	DeliveryPhone       string        `json:"delivery_phone"`
	DeliveryAddress     string        `json:"delivery_address"`
	Pincode             string        `json:"pincode"`
	SpecialInstructions string        `json:"special_instructions"`
	PaymentMethod       string        `json:"payment_method"`
	Items               []lineRequest `json:"items"`
	CustomComboID       *int64        `json:"custom_combo_id"`
}

func (r orderRequest) toInput(vendorCode string) services.PlaceOrderInput {
	in := services.PlaceOrderInput{
		VendorCode:          vendorCode,
		CustomerID:          r.CustomerID,
		DeliveryName:        r.DeliveryName,
		DeliveryPhone:       r.DeliveryPhone,
		DeliveryAddress:     r.DeliveryAddress,
		Pincode:             r.Pincode,
		SpecialInstructions: r.SpecialInstructions,
		PaymentMethod:       r.PaymentMethod,
		CustomComboID:       r.CustomComboID,
	}
	for _, it := range r.Items {
		kind := it.Kind
		if kind == "" {
			kind = models.ItemKindMenuItem
		}
		in.Items = append(in.Items, services.LineInput{Kind: kind, ID: it.ID, Quantity: it.Quantity})
	}
	return in
}

type lineJSON struct {
	Kind      string `json:"kind"`
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	LineTotal string `json:"line_total"`
}

type appliedRuleJSON struct {
	RuleID          int64  `json:"rule_id"`
	MenuItemName    string `json:"menu_item_name"`
	MinQuantity     int    `json:"min_quantity"`
	MatchedQuantity int    `json:"matched_quantity"`
	Percentage      string `json:"percentage"`
	Amount          string `json:"amount"`
}

type totalsJSON struct {
	Subtotal      string `json:"subtotal"`
	DiscountTotal string `json:"discount_total"`
	TaxAmount     string `json:"tax_amount"`
	DeliveryFee   string `json:"delivery_fee"`
	TotalPrice    string `json:"total_price"`
}

type quoteJSON struct {
	VendorCode string `json:"vendor_code"`
	totalsJSON
	Lines        []lineJSON        `json:"lines,omitempty"`
	AppliedRules []appliedRuleJSON `json:"applied_rules"`
	Violations   []string          `json:"violations"`
}

func toQuoteJSON(vendorCode string, lines []services.PricedLine, q services.Quote) quoteJSON {
	out := quoteJSON{
		VendorCode: vendorCode,
		totalsJSON: totalsJSON{
			Subtotal:      money(q.Subtotal),
			DiscountTotal: money(q.DiscountTotal),
			TaxAmount:     money(q.TaxAmount),
			DeliveryFee:   money(q.DeliveryFee),
			TotalPrice:    money(q.TotalPrice),
		},
		AppliedRules: []appliedRuleJSON{},
		Violations:   []string{},
	}
	for _, l := range lines {
		out.Lines = append(out.Lines, lineJSON{
			Kind:      l.Kind,
			ID:        l.RefID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: money(l.UnitPrice),
			LineTotal: money(l.Total()),
		})
	}
	for _, r := range q.AppliedRules {
		out.AppliedRules = append(out.AppliedRules, appliedRuleJSON{
			RuleID:          r.RuleID,
			MenuItemName:    r.MenuItemName,
			MinQuantity:     r.MinQuantity,
			MatchedQuantity: r.MatchedQuantity,
			Percentage:      money(r.Percentage),
			Amount:          money(r.Amount),
		})
	}
	out.Violations = append(out.Violations, q.Violations...)
	return out
}

type orderJSON struct {
	ID                  int64  `json:"id"`
	Reference           string `json:"reference"`
	VendorCode          string `json:"vendor_code"`
	Status              string `json:"status"`
	PaymentMethod       string `json:"payment_method"`
	DeliveryName        string `json:"delivery_name,omitempty"`
	DeliveryPhone       string `json:"delivery_phone,omitempty"`
	DeliveryAddress     string `json:"delivery_address,omitempty"`
	Pincode             string `json:"pincode,omitempty"`
	SpecialInstructions string `json:"special_instructions,omitempty"`
	totalsJSON
	Items     []lineJSON `json:"items,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func toOrderJSON(o *models.Order) orderJSON {
	out := orderJSON{
		ID:                  o.ID,
		Reference:           o.Reference.String(),
		VendorCode:          o.VendorCode,
		Status:              o.Status,
		PaymentMethod:       o.PaymentMethod,
		DeliveryName:        o.DeliveryName,
		DeliveryPhone:       o.DeliveryPhone,
		DeliveryAddress:     o.DeliveryAddress,
		Pincode:             o.Pincode,
		SpecialInstructions: o.SpecialInstructions,
		totalsJSON: totalsJSON{
			Subtotal:      money(o.Subtotal),
			DiscountTotal: money(o.DiscountTotal),
			TaxAmount:     money(o.TaxAmount),
			DeliveryFee:   money(o.DeliveryFee),
			TotalPrice:    money(o.TotalPrice),
		},
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
	for _, it := range o.Items {
		var id int64
		switch {
		case it.MenuItemID != nil:
			id = *it.MenuItemID
		case it.ComboID != nil:
			id = *it.ComboID
		case it.CustomComboID != nil:
			id = *it.CustomComboID
		}
		out.Items = append(out.Items, lineJSON{
			Kind:      it.Kind,
			ID:        id,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: money(it.UnitPrice),
			LineTotal: money(it.LineTotal),
		})
	}
	return out
}

type customComboItemJSON struct {
	MenuItemID  int64  `json:"menu_item_id"`
	Name        string `json:"name"`
	Price       string `json:"price"`
	IsAvailable bool   `json:"is_available"`
	Quantity    int    `json:"quantity"`
}

type customComboJSON struct {
	ID          int64                 `json:"id"`
	VendorID    int64                 `json:"vendor_id"`
	Title       string                `json:"title"`
	Description string                `json:"description,omitempty"`
	Items       []customComboItemJSON `json:"items"`
	Total       string                `json:"total"`
}

func toCustomComboJSON(c *models.CustomCombo) customComboJSON {
	out := customComboJSON{
		ID:          c.ID,
		VendorID:    c.VendorID,
		Title:       c.Title,
		Description: c.Description,
		Items:       []customComboItemJSON{},
		Total:       money(c.Total()),
	}
	for _, it := range c.Items {
		out.Items = append(out.Items, customComboItemJSON{
			MenuItemID:  it.MenuItemID,
			Name:        it.Name,
			Price:       money(it.Price),
			IsAvailable: it.IsAvailable,
			Quantity:    it.Quantity,
		})
	}
	return out
}

type suggestionItemJSON struct {
	MenuItemID int64  `json:"menu_item_id,omitempty"`
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	Price      string `json:"price"`
}

type suggestionJSON struct {
	Mood      string               `json:"mood"`
	Profile   string               `json:"profile"`
	Items     []suggestionItemJSON `json:"items"`
	Nutrition services.Nutrition   `json:"nutrition"`
	Tip       string               `json:"tip"`
	quoteJSON
}

type randomComboJSON struct {
	Items     []menuItemJSON     `json:"items"`
	Nutrition services.Nutrition `json:"nutrition"`
	quoteJSON
}

type trackingJSON struct {
	Status    string    `json:"status"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type statsJSON struct {
	Date           string `json:"date"`
	OrdersCount    int    `json:"orders_count"`
	CancelledCount int    `json:"cancelled_count"`
	Subtotal       string `json:"subtotal"`
	DiscountTotal  string `json:"discount_total"`
	TaxAmount      string `json:"tax_amount"`
	DeliveryFees   string `json:"delivery_fees"`
	Revenue        string `json:"revenue"`
}
