package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	DB         DBConfig
	HTTP       HTTPConfig
	Pricing    PricingConfig
	Telegram   TelegramConfig
	Webhook    WebhookConfig
	Log        LogConfig
	VendorCode VendorCodeConfig
}

type DBConfig struct {
	URL      string // DATABASE_URL; overrides the discrete fields when set
	Host     string
	Port     int
	User     string
	Password string
	Database string
	MaxConns int32
}

// DSN returns the connection string for pgxpool.
func (c DBConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s",
		c.User, c.Password, c.Host, c.Port, c.Database,
	)
}

type HTTPConfig struct {
	Addr        string
	CORSOrigins []string
}

type PricingConfig struct {
	TaxPercent            decimal.Decimal
	DeliveryFee           decimal.Decimal
	FreeDeliveryThreshold decimal.Decimal
	MaxDiscountPercent    decimal.Decimal // zero means uncapped
}

type TelegramConfig struct {
	NotifyToken string // bot used for order notifications; empty disables Telegram
	AdminChatID int64  // receives a copy of every order card
}

type WebhookConfig struct {
	URL            string
	TimeoutSeconds int
}

type LogConfig struct {
	Level  string
	Format string // "json" or "text"
}

type VendorCodeConfig struct {
	Prefix   string
	Attempts int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := getInt("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}
	maxConns, err := getInt("DB_MAX_CONNS", 10)
	if err != nil {
		return nil, err
	}
	adminChat, err := getInt64("ADMIN_CHAT_ID", 0)
	if err != nil {
		return nil, err
	}
	webhookTimeout, err := getInt("WEBHOOK_TIMEOUT", 5)
	if err != nil {
		return nil, err
	}
	attempts, err := getInt("VENDOR_CODE_ATTEMPTS", 5)
	if err != nil {
		return nil, err
	}

	pricing := PricingConfig{}
	if pricing.TaxPercent, err = getDecimal("TAX_PERCENT", "5"); err != nil {
		return nil, err
	}
	if pricing.DeliveryFee, err = getDecimal("DELIVERY_FEE", "20"); err != nil {
		return nil, err
	}
	if pricing.FreeDeliveryThreshold, err = getDecimal("FREE_DELIVERY_THRESHOLD", "200"); err != nil {
		return nil, err
	}
	if pricing.MaxDiscountPercent, err = getDecimal("MAX_DISCOUNT_PERCENT", "0"); err != nil {
		return nil, err
	}

	return &Config{
		DB: DBConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     port,
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "streetkitchen"),
			MaxConns: int32(maxConns),
		},
		HTTP: HTTPConfig{
			Addr:        getEnv("HTTP_ADDR", ":8080"),
			CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		},
		Pricing: pricing,
		Telegram: TelegramConfig{
			NotifyToken: getEnv("NOTIFY_TOKEN", ""),
			AdminChatID: adminChat,
		},
		Webhook: WebhookConfig{
			URL:            getEnv("ORDER_WEBHOOK_URL", ""),
			TimeoutSeconds: webhookTimeout,
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		VendorCode: VendorCodeConfig{
			Prefix:   getEnv("VENDOR_CODE_PREFIX", "SOT"),
			Attempts: attempts,
		},
	}, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getInt64(key string, def int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getDecimal(key, def string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(getEnv(key, def)))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", key, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s: must be >= 0", key)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
