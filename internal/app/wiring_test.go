package app

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/uniformdesk/uniformdesk/internal/notify"
	"github.com/uniformdesk/uniformdesk/internal/stock"
	"github.com/uniformdesk/uniformdesk/jobs"
)

type countingInvalidator struct {
	calls int
	err   error
}

func (c *countingInvalidator) Invalidate(ctx context.Context) error {
	c.calls++
	return c.err
}

type recordingQueue struct {
	payloads []jobs.StockRefreshPayload
}

func (q *recordingQueue) EnqueueStockRefresh(ctx context.Context, payload jobs.StockRefreshPayload) error {
	q.payloads = append(q.payloads, payload)
	return nil
}

func TestRecomputeTrigger(t *testing.T) {
	inv := &countingInvalidator{}
	queue := &recordingQueue{}
	trigger := RecomputeTrigger(inv, queue)

	require.NoError(t, trigger.Recompute(context.Background(), notify.NewEvent(notify.KindOrderCreated, "o1", time.Now())))
	require.Equal(t, 1, inv.calls)
	require.Equal(t, []jobs.StockRefreshPayload{{Reason: jobs.ReasonNotification}}, queue.payloads)

	inv.err = errors.New("redis down")
	require.Error(t, trigger.Recompute(context.Background(), notify.NewEvent(notify.KindItemUpdated, "i1", time.Now())))
	require.Len(t, queue.payloads, 1)

	require.NoError(t, RecomputeTrigger(&countingInvalidator{}, nil).Recompute(context.Background(), notify.Event{}))
}

func TestNewSubscriberSelectsDriver(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sub, err := NewSubscriber(&Config{NotifyDriver: NotifyRedis}, client, nil)
	require.NoError(t, err)
	require.IsType(t, &notify.RedisSubscriber{}, sub)

	sub, err = NewSubscriber(&Config{NotifyDriver: NotifyKafka, KafkaBrokers: []string{"k:9092"}, KafkaTopic: "t"}, nil, nil)
	require.NoError(t, err)
	require.IsType(t, &notify.KafkaSubscriber{}, sub)

	sub, err = NewSubscriber(&Config{NotifyDriver: NotifyNone}, nil, nil)
	require.NoError(t, err)
	require.Nil(t, sub)

	_, err = NewSubscriber(&Config{NotifyDriver: NotifyRedis}, nil, nil)
	require.Error(t, err)

	_, err = NewPublisher(&Config{NotifyDriver: NotifyNone}, client)
	require.Error(t, err)
}

func TestNewStockServiceWithoutSource(t *testing.T) {
	svc := NewStockService(&Config{CacheTTL: time.Minute}, nil, nil, prometheus.NewRegistry(), nil)
	_, err := svc.Report(context.Background(), stock.ReportFilter{})
	require.ErrorIs(t, err, stock.ErrSourceUnavailable)
}
