package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/uniformdesk/uniformdesk/internal/notify"
)

// PublishOptions defines available flags for the publish command.
type PublishOptions struct {
	Kind     string
	EntityID string
	Stdout   io.Writer
	Stderr   io.Writer
}

// PublishCommand emits one change notification, for replaying a missed
// upstream event by hand.
func PublishCommand(ctx context.Context, publisher notify.Publisher, opts PublishOptions) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	evt := notify.NewEvent(notify.Kind(opts.Kind), opts.EntityID, time.Now())
	if !evt.Recognized() {
		_, _ = fmt.Fprintf(opts.Stderr, "publish: unknown kind %q (want %s, %s or %s)\n",
			opts.Kind, notify.KindItemUpdated, notify.KindOrderCreated, notify.KindOrderUpdated)
		return 1
	}
	if err := publisher.Publish(ctx, evt); err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "publish: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintf(opts.Stdout, "published %s %s\n", evt.Kind, evt.ID)
	return 0
}
