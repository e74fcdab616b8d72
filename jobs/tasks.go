package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskStockRefresh recomputes the reconciliation report and warms the cache.
	TaskStockRefresh = "stock:refresh"
	// DefaultRefreshCron runs the full recompute nightly.
	DefaultRefreshCron = "0 2 * * *"
)

// Refresh reasons recorded on the payload.
const (
	ReasonSchedule     = "schedule"
	ReasonNotification = "notification"
	ReasonManual       = "manual"
)

// StockRefreshPayload describes one refresh request. From and To optionally
// warm a windowed ledger in addition to the unwindowed report.
type StockRefreshPayload struct {
	Reason string `json:"reason"`
	From   string `json:"from,omitempty"`
	To     string `json:"to,omitempty"`
}

// NewStockRefreshTask constructs an Asynq task. Requests are de-duplicated
// per reason and window for a short period.
func NewStockRefreshTask(payload StockRefreshPayload) (*asynq.Task, error) {
	if payload.Reason == "" {
		payload.Reason = ReasonManual
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStockRefresh, body,
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(3),
		asynq.Unique(30*time.Second),
	), nil
}
