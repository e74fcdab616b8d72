package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/uniformdesk/uniformdesk/internal/jobs"
	"github.com/uniformdesk/uniformdesk/internal/stock"
)

// Refresher is the slice of the stock service the refresh job needs.
type Refresher interface {
	Invalidate(ctx context.Context) error
	Warm(ctx context.Context, filter stock.ReportFilter) error
}

// RefreshJob recomputes reconciliation reports in the background.
type RefreshJob struct {
	Stock   Refresher
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	// Timeout bounds a single recompute.
	Timeout time.Duration
}

// NewRefreshJob wires dependencies for the refresh handler.
func NewRefreshJob(refresher Refresher, logger *slog.Logger, metrics *jobmetrics.Metrics) *RefreshJob {
	return &RefreshJob{Stock: refresher, Logger: logger, Metrics: metrics, Timeout: time.Minute}
}

// Handle processes TaskStockRefresh tasks.
func (j *RefreshJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Stock == nil {
		return errors.New("stock refresh: handler not configured")
	}
	var payload StockRefreshPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	filter := stock.ReportFilter{From: payload.From, To: payload.To}
	if err := filter.Validate(); err != nil {
		j.logger().Warn("stock refresh: drop invalid window", slog.String("from", payload.From), slog.String("to", payload.To))
		return asynq.SkipRetry
	}

	tracker := j.Metrics.Track(TaskStockRefresh)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	if j.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.Timeout)
		defer cancel()
	}

	logger := j.logger().With(slog.String("reason", payload.Reason))
	start := time.Now()

	// Scheduled runs may follow writes that never produced a notification.
	if payload.Reason == ReasonSchedule {
		if err := j.Stock.Invalidate(ctx); err != nil {
			logger.Error("stock refresh: invalidate", slog.Any("error", err))
			return err
		}
	}
	if err := j.Stock.Warm(ctx, stock.ReportFilter{}); err != nil {
		logger.Error("stock refresh: warm", slog.Any("error", err))
		return err
	}
	if filter.From != "" || filter.To != "" {
		if err := j.Stock.Warm(ctx, filter); err != nil {
			logger.Error("stock refresh: warm window", slog.String("from", filter.From), slog.String("to", filter.To), slog.Any("error", err))
			return err
		}
	}
	logger.Info("stock refresh completed", slog.Duration("duration", time.Since(start)))
	return nil
}

func (j *RefreshJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
