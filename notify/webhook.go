package notify

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"streetkitchen/models"

	"github.com/go-resty/resty/v2"
)

// OrderPayload is the JSON body posted to order webhooks.
type OrderPayload struct {
	Event         string             `json:"event"`
	OrderID       int64              `json:"order_id"`
	Reference     string             `json:"reference"`
	VendorCode    string             `json:"vendor_code"`
	Status        string             `json:"status"`
	PaymentMethod string             `json:"payment_method"`
	Subtotal      string             `json:"subtotal"`
	DiscountTotal string             `json:"discount_total"`
	TaxAmount     string             `json:"tax_amount"`
	DeliveryFee   string             `json:"delivery_fee"`
	TotalPrice    string             `json:"total_price"`
	Items         []OrderItemPayload `json:"items"`
	CreatedAt     time.Time          `json:"created_at"`
}

type OrderItemPayload struct {
	Kind      string `json:"kind"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	LineTotal string `json:"line_total"`
}

func NewOrderPayload(ev models.OrderEvent) OrderPayload {
	o := ev.Order
	p := OrderPayload{
		Event:         "order.placed",
		OrderID:       o.ID,
		Reference:     o.Reference.String(),
		VendorCode:    ev.Vendor.Code,
		Status:        o.Status,
		PaymentMethod: o.PaymentMethod,
		Subtotal:      o.Subtotal.StringFixed(2),
		DiscountTotal: o.DiscountTotal.StringFixed(2),
		TaxAmount:     o.TaxAmount.StringFixed(2),
		DeliveryFee:   o.DeliveryFee.StringFixed(2),
		TotalPrice:    o.TotalPrice.StringFixed(2),
		CreatedAt:     o.CreatedAt,
	}
	for _, it := range o.Items {
		p.Items = append(p.Items, OrderItemPayload{
			Kind:      it.Kind,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice.StringFixed(2),
			LineTotal: it.LineTotal.StringFixed(2),
		})
	}
	return p
}

// WebhookNotifier POSTs order events as JSON. A vendor's own webhook URL
// wins over the default one; with neither set the event is skipped.
// Every destination URL has its own circuit breaker, so one vendor's broken
// endpoint never stops deliveries to the others.
type WebhookNotifier struct {
	client     *resty.Client
	defaultURL string

	breakers sync.Map // map[url]*CircuitBreaker
}

func NewWebhookNotifier(defaultURL string, timeout time.Duration) *WebhookNotifier {
	return &WebhookNotifier{
		client: resty.New().
			SetTimeout(timeout).
			SetRetryCount(0).
			SetHeader("Content-Type", "application/json"),
		defaultURL: defaultURL,
	}
}

func (w *WebhookNotifier) OrderPlaced(ctx context.Context, ev models.OrderEvent) error {
	target := ev.Vendor.WebhookURL
	if target == "" {
		target = w.defaultURL
	}
	if target == "" {
		return nil
	}

	return w.breaker(target).Run(func() error {
		resp, err := w.client.R().
			SetContext(ctx).
			SetHeader("X-Order-Reference", ev.Order.Reference.String()).
			SetBody(NewOrderPayload(ev)).
			Post(target)
		if err != nil {
			return fmt.Errorf("post order webhook: %w", err)
		}
		if resp.IsError() {
			return fmt.Errorf("order webhook returned status %d: %s", resp.StatusCode(), resp.String())
		}
		return nil
	})
}

func (w *WebhookNotifier) breaker(target string) *CircuitBreaker {
	if cb, ok := w.breakers.Load(target); ok {
		return cb.(*CircuitBreaker)
	}
	cb, _ := w.breakers.LoadOrStore(target, NewCircuitBreaker("notify_webhook_"+webhookHost(target)))
	return cb.(*CircuitBreaker)
}

// webhookHost keeps credentials and paths out of circuit names and metric labels.
func webhookHost(target string) string {
	u, err := url.Parse(target)
	if err != nil || u.Host == "" {
		return "invalid"
	}
	return u.Host
}

// Circuits reports the breaker state per destination host.
func (w *WebhookNotifier) Circuits() map[string]string {
	out := make(map[string]string)
	w.breakers.Range(func(k, v interface{}) bool {
		out[webhookHost(k.(string))] = v.(*CircuitBreaker).StateName()
		return true
	})
	return out
}
