package app

import (
	"os"
	"strings"
	"time"
)

// Режимы платёжного шлюза.
const (
	PaymentModeMock = "mock"
	PaymentModeHTTP = "http"
)

// Config описывает настройки запуска сервиса заказов.
type Config struct {
	// HTTPAddr — адрес REST API заказов.
	HTTPAddr string
	// OpsAddr — адрес служебного сервера (/metrics, /healthz, /livez, /readyz).
	OpsAddr string
	// PostgresDSN переключает хранилище с in-memory на PostgreSQL.
	PostgresDSN string
	// RestaurantURL — базовый URL ресторанного сервиса; пустое значение
	// означает mock-шлюз с фиксированными ценами.
	RestaurantURL string
	// PaymentMode — mock|http.
	PaymentMode string
	// PaymentURL — базовый URL платёжного сервиса (для PaymentMode=http).
	PaymentURL string
	// KafkaBrokers — список брокеров для публикации событий саги (опционально).
	KafkaBrokers []string
	// GatewayTimeout ограничивает каждый HTTP-вызов нижестоящих сервисов.
	GatewayTimeout time.Duration
}

// DefaultConfig возвращает конфигурацию для локального запуска без внешних сервисов.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:       ":8080",
		OpsAddr:        ":9090",
		PaymentMode:    PaymentModeMock,
		GatewayTimeout: 5 * time.Second,
	}
}

// ConfigFromEnv читает конфигурацию из переменных окружения FOS_*
// поверх значений по умолчанию.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if v := os.Getenv("FOS_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("FOS_OPS_ADDR"); v != "" {
		cfg.OpsAddr = v
	}
	if v := os.Getenv("FOS_POSTGRES_DSN"); v != "" {
		cfg.PostgresDSN = v
	}
	if v := os.Getenv("FOS_RESTAURANT_URL"); v != "" {
		cfg.RestaurantURL = v
	}
	if v := os.Getenv("FOS_PAYMENT_MODE"); v != "" {
		cfg.PaymentMode = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("FOS_PAYMENT_URL"); v != "" {
		cfg.PaymentURL = v
	}
	if v := os.Getenv("FOS_KAFKA_BROKERS"); v != "" {
		brokers := make([]string, 0)
		for _, broker := range strings.Split(v, ",") {
			if b := strings.TrimSpace(broker); b != "" {
				brokers = append(brokers, b)
			}
		}
		cfg.KafkaBrokers = brokers
	}
	if v := os.Getenv("FOS_GATEWAY_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.GatewayTimeout = d
		}
	}
	return cfg
}
