package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/uniformdesk/uniformdesk/internal/notify"
	"github.com/uniformdesk/uniformdesk/internal/stock"
	"github.com/uniformdesk/uniformdesk/jobs"
)

// NewStockService assembles the report service over Postgres and Redis.
func NewStockService(cfg *Config, pool *pgxpool.Pool, client *redis.Client, registerer prometheus.Registerer, logger *slog.Logger) *stock.Service {
	var source stock.SnapshotSource
	if pool != nil {
		source = stock.NewRepository(pool)
	}
	var cache *stock.Cache
	if client != nil {
		cache = stock.NewCache(client, cfg.CacheTTL)
	}
	return stock.NewService(source, cache, stock.ServiceConfig{
		Metrics: stock.NewMetrics(registerer),
		Logger:  logger,
	})
}

// NewSubscriber selects the change-notification transport. It returns nil
// when notifications are disabled.
func NewSubscriber(cfg *Config, client *redis.Client, logger *slog.Logger) (notify.Subscriber, error) {
	switch cfg.NotifyDriver {
	case NotifyNone:
		return nil, nil
	case NotifyKafka:
		return notify.NewKafkaSubscriber(kafkaConfig(cfg), logger), nil
	case NotifyRedis:
		if client == nil {
			return nil, errors.New("redis notifications need a redis client")
		}
		return notify.NewRedisSubscriber(client, cfg.NotifyChannel, logger), nil
	default:
		return nil, fmt.Errorf("unknown notify driver %q", cfg.NotifyDriver)
	}
}

// PublisherCloser is a notify.Publisher owning connections.
type PublisherCloser interface {
	notify.Publisher
	Close() error
}

type redisPublisher struct {
	*notify.RedisPublisher
}

func (redisPublisher) Close() error { return nil }

// NewPublisher mirrors NewSubscriber for the producing side.
func NewPublisher(cfg *Config, client *redis.Client) (PublisherCloser, error) {
	switch cfg.NotifyDriver {
	case NotifyKafka:
		return notify.NewKafkaPublisher(kafkaConfig(cfg)), nil
	case NotifyRedis:
		if client == nil {
			return nil, errors.New("redis notifications need a redis client")
		}
		return redisPublisher{notify.NewRedisPublisher(client, cfg.NotifyChannel)}, nil
	default:
		return nil, fmt.Errorf("notifications disabled (driver %q)", cfg.NotifyDriver)
	}
}

func kafkaConfig(cfg *Config) notify.KafkaConfig {
	return notify.KafkaConfig{Brokers: cfg.KafkaBrokers, Topic: cfg.KafkaTopic, GroupID: cfg.KafkaGroupID}
}

// Invalidator discards cached reports.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// RefreshEnqueuer schedules a background recompute.
type RefreshEnqueuer interface {
	EnqueueStockRefresh(ctx context.Context, payload jobs.StockRefreshPayload) error
}

// RecomputeTrigger invalidates cached reports and queues a warm-up for each
// change notification.
func RecomputeTrigger(stockSvc Invalidator, queue RefreshEnqueuer) notify.Trigger {
	return notify.TriggerFunc(func(ctx context.Context, evt notify.Event) error {
		if err := stockSvc.Invalidate(ctx); err != nil {
			return fmt.Errorf("invalidate after %s: %w", evt.Kind, err)
		}
		if queue == nil {
			return nil
		}
		return queue.EnqueueStockRefresh(ctx, jobs.StockRefreshPayload{Reason: jobs.ReasonNotification})
	})
}
