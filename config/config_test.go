package config

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("TAX_PERCENT", "")
	t.Setenv("DELIVERY_FEE", "")
	t.Setenv("FREE_DELIVERY_THRESHOLD", "")
	t.Setenv("VENDOR_CODE_PREFIX", "")
	t.Setenv("VENDOR_CODE_ATTEMPTS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Pricing.TaxPercent.Equal(decimal.NewFromInt(5)) {
		t.Errorf("TaxPercent = %s, want 5", cfg.Pricing.TaxPercent)
	}
	if !cfg.Pricing.DeliveryFee.Equal(decimal.NewFromInt(20)) {
		t.Errorf("DeliveryFee = %s, want 20", cfg.Pricing.DeliveryFee)
	}
	if !cfg.Pricing.FreeDeliveryThreshold.Equal(decimal.NewFromInt(200)) {
		t.Errorf("FreeDeliveryThreshold = %s, want 200", cfg.Pricing.FreeDeliveryThreshold)
	}
	if cfg.VendorCode.Prefix != "SOT" || cfg.VendorCode.Attempts != 5 {
		t.Errorf("VendorCode = %+v, want SOT/5", cfg.VendorCode)
	}
}

func TestLoadRejectsBadNumbers(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"DB_PORT", "five"},
		{"TAX_PERCENT", "abc"},
		{"DELIVERY_FEE", "-1"},
		{"ADMIN_CHAT_ID", "x"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load with %s=%q: expected error", tt.key, tt.value)
			}
		})
	}
}

func TestDSN(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5433, User: "u", Password: "p", Database: "sk"}
	if got, want := c.DSN(), "postgres://u:p@db:5433/sk"; got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
	c.URL = "postgres://override"
	if got := c.DSN(); got != "postgres://override" {
		t.Errorf("DSN() with URL = %q", got)
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" a, ,b ,")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("splitList = %v, want [a b]", got)
	}
}
