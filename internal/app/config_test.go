package app

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.OpsAddr != ":9090" {
		t.Errorf("OpsAddr = %q, want :9090", cfg.OpsAddr)
	}
	if cfg.PaymentMode != PaymentModeMock {
		t.Errorf("PaymentMode = %q, want mock", cfg.PaymentMode)
	}
	if cfg.GatewayTimeout != 5*time.Second {
		t.Errorf("GatewayTimeout = %v, want 5s", cfg.GatewayTimeout)
	}
	if cfg.PostgresDSN != "" {
		t.Errorf("PostgresDSN = %q, want empty (in-memory)", cfg.PostgresDSN)
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("FOS_HTTP_ADDR", ":18080")
	t.Setenv("FOS_OPS_ADDR", ":19090")
	t.Setenv("FOS_POSTGRES_DSN", "postgres://localhost/fos")
	t.Setenv("FOS_RESTAURANT_URL", "http://restaurant:8000")
	t.Setenv("FOS_PAYMENT_MODE", "HTTP")
	t.Setenv("FOS_PAYMENT_URL", "http://payment:8000")
	t.Setenv("FOS_KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("FOS_GATEWAY_TIMEOUT", "2s")

	cfg := ConfigFromEnv()

	if cfg.HTTPAddr != ":18080" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.OpsAddr != ":19090" {
		t.Errorf("OpsAddr = %q", cfg.OpsAddr)
	}
	if cfg.PostgresDSN != "postgres://localhost/fos" {
		t.Errorf("PostgresDSN = %q", cfg.PostgresDSN)
	}
	if cfg.RestaurantURL != "http://restaurant:8000" {
		t.Errorf("RestaurantURL = %q", cfg.RestaurantURL)
	}
	if cfg.PaymentMode != PaymentModeHTTP {
		t.Errorf("PaymentMode = %q, want http (normalized)", cfg.PaymentMode)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[0] != "kafka-1:9092" || cfg.KafkaBrokers[1] != "kafka-2:9092" {
		t.Errorf("KafkaBrokers = %v", cfg.KafkaBrokers)
	}
	if cfg.GatewayTimeout != 2*time.Second {
		t.Errorf("GatewayTimeout = %v, want 2s", cfg.GatewayTimeout)
	}
}

func TestConfigFromEnvIgnoresBadTimeout(t *testing.T) {
	t.Setenv("FOS_GATEWAY_TIMEOUT", "soon")

	cfg := ConfigFromEnv()
	if cfg.GatewayTimeout != 5*time.Second {
		t.Errorf("GatewayTimeout = %v, want default 5s", cfg.GatewayTimeout)
	}
}
