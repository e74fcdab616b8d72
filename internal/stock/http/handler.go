package stockhttp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/uniformdesk/uniformdesk/internal/platform/httpx"
	"github.com/uniformdesk/uniformdesk/internal/reconcile"
	"github.com/uniformdesk/uniformdesk/internal/stock"
	"github.com/uniformdesk/uniformdesk/jobs"
)

// StockService is the read and invalidation contract used by the handler.
type StockService interface {
	Groups(ctx context.Context) ([]reconcile.ItemGroup, error)
	Ledger(ctx context.Context, filter stock.ReportFilter) ([]reconcile.ReconciledRow, error)
	Health(ctx context.Context) (reconcile.InventoryHealthStats, error)
	Invalidate(ctx context.Context) error
}

// RefreshQueue schedules background recomputes.
type RefreshQueue interface {
	EnqueueStockRefresh(ctx context.Context, payload jobs.StockRefreshPayload) error
}

// Handler serves reconciliation reports over HTTP.
type Handler struct {
	service  StockService
	queue    RefreshQueue
	logger   *slog.Logger
	validate *validator.Validate
}

// NewHandler constructs the handler. queue may be nil, in which case refresh
// only invalidates and the next read recomputes.
func NewHandler(service StockService, queue RefreshQueue, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, queue: queue, logger: logger, validate: validator.New()}
}

type ledgerQuery struct {
	From   string `validate:"omitempty,datetime=2006-01-02"`
	To     string `validate:"omitempty,datetime=2006-01-02"`
	Status string `validate:"omitempty,oneof=AboveThreshold AtReorderPoint Critical OutOfStock"`
	Search string `validate:"omitempty,max=64"`
}

func (h *Handler) parseLedgerQuery(r *http.Request) (ledgerQuery, error) {
	q := r.URL.Query()
	out := ledgerQuery{
		From:   q.Get("from"),
		To:     q.Get("to"),
		Status: q.Get("status"),
		Search: q.Get("q"),
	}
	if err := h.validate.Struct(out); err != nil {
		return ledgerQuery{}, fmt.Errorf("%w: %s", httpx.ErrValidation, describe(err))
	}
	return out, nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	return fmt.Sprintf("invalid %s (%s)", fe.Field(), fe.Tag())
}

type groupsResponse struct {
	Groups []reconcile.ItemGroup `json:"groups"`
}

func (h *Handler) handleGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.service.Groups(r.Context())
	if err != nil {
		h.fail(w, r, "load groups", err)
		return
	}
	if groups == nil {
		groups = []reconcile.ItemGroup{}
	}
	httpx.JSON(w, http.StatusOK, groupsResponse{Groups: groups})
}

type ledgerResponse struct {
	From string                    `json:"from,omitempty"`
	To   string                    `json:"to,omitempty"`
	Rows []reconcile.ReconciledRow `json:"rows"`
}

func (h *Handler) handleLedger(w http.ResponseWriter, r *http.Request) {
	query, err := h.parseLedgerQuery(r)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	rows, err := h.service.Ledger(r.Context(), stock.ReportFilter{From: query.From, To: query.To})
	if err != nil {
		h.fail(w, r, "load ledger", err)
		return
	}
	search := reconcile.NormalizeName(query.Search)
	filtered := make([]reconcile.ReconciledRow, 0, len(rows))
	for _, row := range rows {
		if query.Status != "" && string(row.Status) != query.Status {
			continue
		}
		if search != "" && !strings.Contains(reconcile.NormalizeName(row.Name), search) {
			continue
		}
		filtered = append(filtered, row)
	}
	httpx.JSON(w, http.StatusOK, ledgerResponse{From: query.From, To: query.To, Rows: filtered})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Health(r.Context())
	if err != nil {
		h.fail(w, r, "load health", err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

type refreshResponse struct {
	Status string `json:"status"`
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	query, err := h.parseLedgerQuery(r)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	filter := stock.ReportFilter{From: query.From, To: query.To}
	if err := filter.Validate(); err != nil {
		h.fail(w, r, "refresh", err)
		return
	}
	if err := h.service.Invalidate(r.Context()); err != nil {
		h.fail(w, r, "invalidate", err)
		return
	}
	status := "invalidated"
	if h.queue != nil {
		payload := jobs.StockRefreshPayload{Reason: jobs.ReasonManual, From: query.From, To: query.To}
		if err := h.queue.EnqueueStockRefresh(r.Context(), payload); err != nil {
			h.logger.Warn("enqueue stock refresh", slog.Any("error", err))
		} else {
			status = "queued"
		}
	}
	httpx.JSON(w, http.StatusAccepted, refreshResponse{Status: status})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, stock.ErrInvalidWindow):
		httpx.RespondError(w, r, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
	case errors.Is(err, stock.ErrSourceUnavailable):
		h.logger.Error(op, slog.Any("error", err))
		httpx.RespondError(w, r, httpx.ErrUnavailable)
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.RespondError(w, r, err)
	}
}
