package stock

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/uniformdesk/uniformdesk/internal/reconcile"
)

// Service loads snapshots, runs the reconciliation engine and caches reports.
type Service struct {
	source  SnapshotSource
	cache   *Cache
	metrics *Metrics
	logger  *slog.Logger
	flight  singleflight.Group
	timeout time.Duration
}

// DefaultComputeTimeout bounds one shared snapshot load and engine pass.
const DefaultComputeTimeout = 30 * time.Second

// ServiceConfig carries optional collaborators.
type ServiceConfig struct {
	Metrics *Metrics
	Logger  *slog.Logger
	// ComputeTimeout bounds a shared computation; zero uses DefaultComputeTimeout.
	ComputeTimeout time.Duration
}

// NewService wires a snapshot source with a cache.
func NewService(source SnapshotSource, cache *Cache, cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.ComputeTimeout
	if timeout <= 0 {
		timeout = DefaultComputeTimeout
	}
	return &Service{source: source, cache: cache, metrics: cfg.Metrics, logger: logger, timeout: timeout}
}

// Report returns the full reconciliation report for the filter window.
// Concurrent callers asking for the same key share one computation. The
// shared work is detached from the first caller's cancellation; each caller
// still returns early when its own ctx ends.
func (s *Service) Report(ctx context.Context, filter ReportFilter) (reconcile.Report, error) {
	if err := filter.Validate(); err != nil {
		return reconcile.Report{}, err
	}
	window, err := filter.Window()
	if err != nil {
		return reconcile.Report{}, err
	}
	from, to := filter.cacheToken()
	key, err := s.cache.BuildKey(ctx, "stock", "report", from, to)
	if err != nil {
		return reconcile.Report{}, err
	}

	ch := s.flight.DoChan(key, func() (any, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		var report reconcile.Report
		hit, err := s.cache.FetchJSON(shared, key, &report, func(ctx context.Context) (any, error) {
			return s.compute(ctx, window)
		})
		if err != nil {
			return reconcile.Report{}, err
		}
		if hit {
			s.metrics.observeOutcome("hit")
		} else {
			s.metrics.observeOutcome("miss")
		}
		return report, nil
	})
	select {
	case <-ctx.Done():
		return reconcile.Report{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return reconcile.Report{}, res.Err
		}
		return res.Val.(reconcile.Report), nil
	}
}

func (s *Service) compute(ctx context.Context, window *reconcile.Window) (reconcile.Report, error) {
	if s.source == nil {
		return reconcile.Report{}, ErrSourceUnavailable
	}
	start := time.Now()
	snapshot, err := s.source.Snapshot(ctx)
	if err != nil {
		return reconcile.Report{}, err
	}
	report := reconcile.Run(snapshot, window)
	s.metrics.observePass(start, len(report.Rows), report.Health.TotalItemVariants, report.Health.AtReorderPoint, report.Health.OutOfStock)
	s.logger.Debug("reconciled snapshot",
		slog.Int("items", len(snapshot.Items)),
		slog.Int("orders", len(snapshot.Orders)),
		slog.Int("groups", len(report.Groups)),
		slog.Duration("took", time.Since(start)),
	)
	return report, nil
}

// Groups returns variant groups; grouping does not depend on the order window.
func (s *Service) Groups(ctx context.Context) ([]reconcile.ItemGroup, error) {
	report, err := s.Report(ctx, ReportFilter{})
	if err != nil {
		return nil, err
	}
	return report.Groups, nil
}

// Ledger returns reconciled rows for the filter window.
func (s *Service) Ledger(ctx context.Context, filter ReportFilter) ([]reconcile.ReconciledRow, error) {
	report, err := s.Report(ctx, filter)
	if err != nil {
		return nil, err
	}
	return report.Rows, nil
}

// Health returns inventory health statistics. Every caller reads the same
// unwindowed report so the numbers agree across pages.
func (s *Service) Health(ctx context.Context) (reconcile.InventoryHealthStats, error) {
	report, err := s.Report(ctx, ReportFilter{})
	if err != nil {
		return reconcile.InventoryHealthStats{}, err
	}
	return report.Health, nil
}

// Invalidate discards every cached report.
func (s *Service) Invalidate(ctx context.Context) error {
	ver, err := s.cache.Bump(ctx)
	if err != nil {
		return err
	}
	s.logger.Info("stock cache invalidated", slog.Int64("version", ver))
	return nil
}

// Warm recomputes and caches the report for the filter window.
func (s *Service) Warm(ctx context.Context, filter ReportFilter) error {
	_, err := s.Report(ctx, filter)
	return err
}
