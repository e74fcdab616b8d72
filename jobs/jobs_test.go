package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/uniformdesk/uniformdesk/internal/jobs"
	"github.com/uniformdesk/uniformdesk/internal/stock"
)

type fakeRefresher struct {
	mu          sync.Mutex
	invalidated int
	warmed      []stock.ReportFilter
	err         error
}

func (f *fakeRefresher) Invalidate(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated++
	return nil
}

func (f *fakeRefresher) Warm(ctx context.Context, filter stock.ReportFilter) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.warmed = append(f.warmed, filter)
	return f.err
}

func task(t *testing.T, payload StockRefreshPayload) *asynq.Task {
	t.Helper()
	tk, err := NewStockRefreshTask(payload)
	require.NoError(t, err)
	require.Equal(t, TaskStockRefresh, tk.Type())
	return tk
}

func TestRefreshJobScheduledInvalidatesFirst(t *testing.T) {
	ref := &fakeRefresher{}
	job := NewRefreshJob(ref, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))

	require.NoError(t, job.Handle(context.Background(), task(t, StockRefreshPayload{Reason: ReasonSchedule})))
	require.Equal(t, 1, ref.invalidated)
	require.Equal(t, []stock.ReportFilter{{}}, ref.warmed)
}

func TestRefreshJobWarmsWindow(t *testing.T) {
	ref := &fakeRefresher{}
	job := NewRefreshJob(ref, nil, nil)

	payload := StockRefreshPayload{Reason: ReasonNotification, From: "2024-06-01", To: "2024-06-30"}
	require.NoError(t, job.Handle(context.Background(), task(t, payload)))
	require.Zero(t, ref.invalidated)
	require.Equal(t, []stock.ReportFilter{{}, {From: "2024-06-01", To: "2024-06-30"}}, ref.warmed)
}

func TestRefreshJobSkipsBadPayloads(t *testing.T) {
	ref := &fakeRefresher{}
	job := NewRefreshJob(ref, nil, nil)

	err := job.Handle(context.Background(), asynq.NewTask(TaskStockRefresh, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)

	err = job.Handle(context.Background(), task(t, StockRefreshPayload{From: "2024-07-01", To: "2024-06-01"}))
	require.ErrorIs(t, err, asynq.SkipRetry)
	require.Empty(t, ref.warmed)
}

func TestRefreshJobReturnsWarmError(t *testing.T) {
	boom := errors.New("boom")
	job := NewRefreshJob(&fakeRefresher{err: boom}, nil, nil)
	require.ErrorIs(t, job.Handle(context.Background(), task(t, StockRefreshPayload{})), boom)
}

func TestNewStockRefreshTaskDefaultsReason(t *testing.T) {
	tk := task(t, StockRefreshPayload{})
	var payload StockRefreshPayload
	require.NoError(t, json.Unmarshal(tk.Payload(), &payload))
	require.Equal(t, ReasonManual, payload.Reason)
}

type stubInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (s stubInspector) GetQueueInfo(queue string) (*asynq.QueueInfo, error) {
	return s.info, s.err
}

func TestHealthHandler(t *testing.T) {
	cases := []struct {
		name   string
		insp   QueueInspector
		status int
		want   queueHealth
	}{
		{"no inspector", nil, http.StatusOK, queueHealth{Queue: QueueDefault}},
		{"queue info", stubInspector{info: &asynq.QueueInfo{Queue: QueueDefault, Pending: 3, Failed: 1}}, http.StatusOK, queueHealth{Queue: QueueDefault, Pending: 3, Failed: 1}},
		{"missing queue", stubInspector{err: asynq.ErrQueueNotFound}, http.StatusOK, queueHealth{Queue: QueueDefault}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := chi.NewRouter()
			NewHandler(tc.insp, nil).MountRoutes(r)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
			require.Equal(t, tc.status, rec.Code)
			var got queueHealth
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			require.Equal(t, tc.want, got)
		})
	}

	r := chi.NewRouter()
	NewHandler(stubInspector{err: errors.New("redis down")}, nil).MountRoutes(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
