package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"streetkitchen/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func testEvent() models.OrderEvent {
	return models.OrderEvent{
		Vendor: models.Vendor{ID: 1, Name: "Amma Idli", Code: "SOT001"},
		Order: models.Order{
			ID:            9,
			Reference:     uuid.MustParse("6f1c1d2e-1111-4a2b-9c3d-000000000009"),
			Status:        "placed",
			PaymentMethod: "cod",
			Subtotal:      decimal.NewFromInt(60),
			DiscountTotal: decimal.NewFromInt(6),
			TaxAmount:     decimal.NewFromInt(3),
			DeliveryFee:   decimal.NewFromInt(20),
			TotalPrice:    decimal.NewFromInt(77),
			Items: []models.OrderItem{
				{Kind: "menu_item", Name: "Idli", Quantity: 4, UnitPrice: decimal.NewFromInt(10), LineTotal: decimal.NewFromInt(40)},
			},
		},
	}
}

type funcNotifier func(context.Context, models.OrderEvent) error

func (f funcNotifier) OrderPlaced(ctx context.Context, ev models.OrderEvent) error { return f(ctx, ev) }

func TestFanoutCallsEveryChannel(t *testing.T) {
	var mu sync.Mutex
	got := map[string]int64{}
	record := func(name string) Notifier {
		return funcNotifier(func(_ context.Context, ev models.OrderEvent) error {
			mu.Lock()
			defer mu.Unlock()
			got[name] = ev.Order.ID
			return nil
		})
	}

	f := NewFanout()
	f.Add("a", record("a"))
	f.Add("b", record("b"))
	f.Add("nil", nil)

	if err := f.OrderPlaced(context.Background(), testEvent()); err != nil {
		t.Fatalf("OrderPlaced: %v", err)
	}
	if f.Len() != 2 {
		t.Errorf("Len = %d, want 2", f.Len())
	}
	if got["a"] != 9 || got["b"] != 9 {
		t.Errorf("deliveries = %v", got)
	}
}

func TestFanoutSwallowsChannelErrors(t *testing.T) {
	var okCalls int32
	f := NewFanout()
	f.Add("broken", funcNotifier(func(context.Context, models.OrderEvent) error {
		return errors.New("boom")
	}))
	f.Add("ok", funcNotifier(func(context.Context, models.OrderEvent) error {
		atomic.AddInt32(&okCalls, 1)
		return nil
	}))

	if err := f.OrderPlaced(context.Background(), testEvent()); err != nil {
		t.Fatalf("OrderPlaced returned %v, want nil", err)
	}
	if atomic.LoadInt32(&okCalls) != 1 {
		t.Errorf("healthy channel calls = %d, want 1", okCalls)
	}
}

func TestFanoutOpensCircuitOnRepeatedFailures(t *testing.T) {
	var calls int32
	f := NewFanout()
	f.Add("flaky", funcNotifier(func(context.Context, models.OrderEvent) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("down")
	}))

	for i := 0; i < 5; i++ {
		_ = f.OrderPlaced(context.Background(), testEvent())
	}
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Errorf("calls = %d, want 3 before the circuit opened", n)
	}
	if s := f.States()["flaky"]; s != "open" {
		t.Errorf("state = %q, want open", s)
	}
}

func TestWebhookNotifierPostsPayload(t *testing.T) {
	var body OrderPayload
	var ref string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		ref = r.Header.Get("X-Order-Reference")
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	w := NewWebhookNotifier(srv.URL, 2*time.Second)
	if err := w.OrderPlaced(context.Background(), testEvent()); err != nil {
		t.Fatalf("OrderPlaced: %v", err)
	}
	if body.OrderID != 9 || body.VendorCode != "SOT001" || body.TotalPrice != "77.00" {
		t.Errorf("payload = %+v", body)
	}
	if len(body.Items) != 1 || body.Items[0].LineTotal != "40.00" {
		t.Errorf("items = %+v", body.Items)
	}
	if ref != "6f1c1d2e-1111-4a2b-9c3d-000000000009" {
		t.Errorf("reference header = %q", ref)
	}
}

func TestWebhookNotifierPrefersVendorURL(t *testing.T) {
	var hits int32
	vendorSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer vendorSrv.Close()

	ev := testEvent()
	ev.Vendor.WebhookURL = vendorSrv.URL
	w := NewWebhookNotifier("http://127.0.0.1:1/unused", time.Second)
	if err := w.OrderPlaced(context.Background(), ev); err != nil {
		t.Fatalf("OrderPlaced: %v", err)
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Errorf("vendor webhook hits = %d, want 1", hits)
	}
}

func TestWebhookNotifierReportsHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	w := NewWebhookNotifier(srv.URL, time.Second)
	if err := w.OrderPlaced(context.Background(), testEvent()); err == nil {
		t.Fatal("expected error for 502 response")
	}
}

func TestWebhookNotifierWithoutURLIsNoop(t *testing.T) {
	w := NewWebhookNotifier("", time.Second)
	if err := w.OrderPlaced(context.Background(), testEvent()); err != nil {
		t.Fatalf("OrderPlaced: %v", err)
	}
}

func TestWebhookCircuitIsPerDestination(t *testing.T) {
	var brokenHits, healthyHits int32
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&brokenHits, 1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer broken.Close()
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&healthyHits, 1)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer healthy.Close()

	f := NewFanout()
	f.Add("webhook", NewWebhookNotifier("", time.Second))

	failing := testEvent()
	failing.Vendor.WebhookURL = broken.URL
	for i := 0; i < 5; i++ {
		_ = f.OrderPlaced(context.Background(), failing)
	}
	if n := atomic.LoadInt32(&brokenHits); n != 3 {
		t.Errorf("broken webhook hits = %d, want 3 before its circuit opened", n)
	}

	ok := testEvent()
	ok.Vendor = models.Vendor{ID: 2, Name: "Dosa Corner", Code: "SOT002", WebhookURL: healthy.URL}
	_ = f.OrderPlaced(context.Background(), ok)
	if n := atomic.LoadInt32(&healthyHits); n != 1 {
		t.Errorf("healthy webhook hits = %d, want 1", n)
	}

	states := f.States()
	brokenHost := strings.TrimPrefix(broken.URL, "http://")
	healthyHost := strings.TrimPrefix(healthy.URL, "http://")
	if s := states["webhook:"+brokenHost]; s != "open" {
		t.Errorf("broken circuit = %q, want open (states %v)", s, states)
	}
	if s := states["webhook:"+healthyHost]; s != "closed" {
		t.Errorf("healthy circuit = %q, want closed (states %v)", s, states)
	}
}
