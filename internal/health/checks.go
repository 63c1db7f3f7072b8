package health

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/config"
	"github.com/hellofresh/health-go/v5"
	"github.com/hellofresh/health-go/v5/checks/postgres"
	healthRedis "github.com/hellofresh/health-go/v5/checks/redis"
)

// Pinger is satisfied by the RabbitMQ channel pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Endpoints struct {
	// Broker is nil when order events are not published.
	Broker Pinger
}

func NewHealthHandler(cfg *config.Config, endpoints *Endpoints) (*health.Health, error) {

	checks := []health.Config{
		{
			Name:      "database",
			Timeout:   3 * time.Second,
			SkipOnErr: false,
			Check: postgres.New(postgres.Config{
				DSN: cfg.Database.GetDSN(),
			}),
		},
		{
			// rate limiting and order caching fail open, so redis only degrades
			Name:      "redis",
			Timeout:   2 * time.Second,
			SkipOnErr: true,
			Check: healthRedis.New(
				healthRedis.Config{
					DSN: cfg.RedisConnect.GetDSN(),
				},
			),
		},
	}

	if endpoints != nil && endpoints.Broker != nil {
		checks = append(checks, health.Config{
			Name:      "rabbitmq",
			Timeout:   2 * time.Second,
			SkipOnErr: true,
			Check:     brokerCheck(endpoints.Broker),
		})
	}

	h, err := health.New(
		health.WithComponent(health.Component{
			Name:    cfg.Otel.ServiceName,
			Version: "1.0.0",
		}),
		health.WithSystemInfo(),
		health.WithChecks(checks...),
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create health instance: %w", err)
	}

	return h, nil
}

func brokerCheck(broker Pinger) health.CheckFunc {
	return func(ctx context.Context) error {
		if broker == nil {
			return errors.New("rabbitmq pool is not initialized")
		}

		if err := broker.Ping(ctx); err != nil {
			return fmt.Errorf("failed to reach rabbitmq: %w", err)
		}

		return nil
	}
}
