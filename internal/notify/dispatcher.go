package notify

import (
	"context"
	"errors"
	"log/slog"
)

// Trigger performs a full recompute in response to an event.
type Trigger interface {
	Recompute(ctx context.Context, evt Event) error
}

// TriggerFunc adapts a function to Trigger.
type TriggerFunc func(ctx context.Context, evt Event) error

// Recompute implements Trigger.
func (f TriggerFunc) Recompute(ctx context.Context, evt Event) error {
	return f(ctx, evt)
}

// Dispatcher forwards recognized notifications from a Subscriber to a Trigger.
type Dispatcher struct {
	subscriber Subscriber
	trigger    Trigger
	logger     *slog.Logger
}

// NewDispatcher constructs a dispatcher.
func NewDispatcher(subscriber Subscriber, trigger Trigger, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{subscriber: subscriber, trigger: trigger, logger: logger}
}

// Run blocks until ctx is cancelled or the subscription ends. Trigger
// failures are logged and do not stop the loop.
func (d *Dispatcher) Run(ctx context.Context) error {
	if d == nil || d.subscriber == nil || d.trigger == nil {
		return errors.New("notify: dispatcher not configured")
	}
	events, err := d.subscriber.Subscribe(ctx)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-events:
			if !ok {
				return ctx.Err()
			}
			if !evt.Recognized() {
				d.logger.Debug("ignore notification", slog.String("kind", string(evt.Kind)))
				continue
			}
			if err := d.trigger.Recompute(ctx, evt); err != nil {
				d.logger.Error("recompute after notification",
					slog.String("kind", string(evt.Kind)),
					slog.String("entity_id", evt.EntityID),
					slog.Any("error", err),
				)
			}
		}
	}
}
