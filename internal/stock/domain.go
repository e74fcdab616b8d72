package stock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/uniformdesk/uniformdesk/internal/reconcile"
)

const dateLayout = "2006-01-02"

// SnapshotSource loads a consistent snapshot of items and orders.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (reconcile.Snapshot, error)
}

// ReportFilter scopes order matching to an optional date window.
type ReportFilter struct {
	From string `validate:"omitempty,datetime=2006-01-02"`
	To   string `validate:"omitempty,datetime=2006-01-02"`
}

var validate = validator.New()

var (
	// ErrInvalidWindow indicates an unparsable or inverted date window.
	ErrInvalidWindow = errors.New("stock: invalid date window")
	// ErrSourceUnavailable indicates the snapshot source is not configured.
	ErrSourceUnavailable = errors.New("stock: snapshot source unavailable")
)

// Validate ensures dates are well formed and ordered.
func (f ReportFilter) Validate() error {
	if err := validate.Struct(f); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidWindow, err)
	}
	w, err := f.Window()
	if err != nil {
		return err
	}
	if w != nil && !w.Start.IsZero() && !w.End.IsZero() && w.Start.After(w.End) {
		return fmt.Errorf("%w: from %s is after to %s", ErrInvalidWindow, f.From, f.To)
	}
	return nil
}

// Window converts the filter into an engine window; nil when unbounded.
func (f ReportFilter) Window() (*reconcile.Window, error) {
	if f.From == "" && f.To == "" {
		return nil, nil
	}
	var w reconcile.Window
	if f.From != "" {
		start, err := time.Parse(dateLayout, f.From)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidWindow, err)
		}
		w.Start = start
	}
	if f.To != "" {
		end, err := time.Parse(dateLayout, f.To)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidWindow, err)
		}
		w.End = end
	}
	return &w, nil
}

func (f ReportFilter) cacheToken() (string, string) {
	from, to := f.From, f.To
	if from == "" {
		from = "-"
	}
	if to == "" {
		to = "-"
	}
	return from, to
}
