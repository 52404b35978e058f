package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/fos/internal/domain"
	"github.com/vladislavdragonenkov/fos/internal/gateway/payment"
	"github.com/vladislavdragonenkov/fos/internal/gateway/restaurant"
	"github.com/vladislavdragonenkov/fos/internal/storage/memory"
	"github.com/vladislavdragonenkov/fos/internal/storage/postgres"
)

// Dependencies содержит собранные зависимости сервиса заказов.
type Dependencies struct {
	Orders     domain.OrderRepository
	Timeline   domain.TimelineRepository
	Restaurant domain.RestaurantGateway
	Payments   domain.PaymentGateway
	// Store не nil, когда выбрано PostgreSQL-хранилище.
	Store  *postgres.Store
	Logger *log.Entry
}

// NewDependencies собирает хранилище и шлюзы согласно конфигурации.
// Пустой PostgresDSN даёт in-memory хранилище, пустой RestaurantURL
// и PaymentMode=mock — заглушки шлюзов для локального запуска.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	deps := &Dependencies{Logger: logger}

	if cfg.PostgresDSN != "" {
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		deps.Store = store
		deps.Orders = postgres.NewOrderRepository(store)
		deps.Timeline = postgres.NewTimelineRepository(store)
		logger.Info("using postgres storage")
	} else {
		deps.Orders = memory.NewOrderRepository()
		deps.Timeline = memory.NewTimelineRepository()
		logger.Info("using in-memory storage")
	}

	if cfg.RestaurantURL != "" {
		deps.Restaurant = restaurant.NewClient(cfg.RestaurantURL, cfg.GatewayTimeout,
			logger.WithField("component", "restaurant-gateway"))
		logger.WithField("url", cfg.RestaurantURL).Info("using http restaurant gateway")
	} else {
		deps.Restaurant = restaurant.NewMock()
		logger.Info("using mock restaurant gateway")
	}

	switch cfg.PaymentMode {
	case PaymentModeHTTP:
		if cfg.PaymentURL == "" {
			deps.close()
			return nil, fmt.Errorf("FOS_PAYMENT_URL is required for payment mode %q", PaymentModeHTTP)
		}
		deps.Payments = payment.NewClient(cfg.PaymentURL, cfg.GatewayTimeout,
			logger.WithField("component", "payment-gateway"))
		logger.WithField("url", cfg.PaymentURL).Info("using http payment gateway")
	case PaymentModeMock, "":
		deps.Payments = payment.NewMock()
		logger.Info("using mock payment gateway")
	default:
		deps.close()
		return nil, fmt.Errorf("unsupported payment mode: %q", cfg.PaymentMode)
	}

	return deps, nil
}

// Close освобождает ресурсы зависимостей.
func (d *Dependencies) Close() {
	d.close()
}

func (d *Dependencies) close() {
	if d.Store != nil {
		if err := d.Store.Close(); err != nil {
			d.Logger.WithError(err).Warn("close postgres store failed")
		}
	}
}
