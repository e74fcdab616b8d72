package stockhttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/uniformdesk/uniformdesk/internal/platform/httpx"
)

// MountRoutes registers inventory endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(5, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			httpx.Problem(w, r, http.StatusTooManyRequests, "Too Many Requests", "refresh rate limit exceeded")
		}),
	)

	r.Get("/groups", h.handleGroups)
	r.Get("/ledger", h.handleLedger)
	r.Get("/health", h.handleHealth)
	r.With(limiter).Post("/refresh", h.handleRefresh)
}
