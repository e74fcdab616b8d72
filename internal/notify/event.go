// Package notify carries item and order change notifications from upstream
// collaborators to whoever must recompute reconciliation reports.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Kind enumerates the change notifications we react to.
type Kind string

const (
	// KindItemUpdated signals that an inventory row changed.
	KindItemUpdated Kind = "item.updated"
	// KindOrderCreated signals that a new order was placed.
	KindOrderCreated Kind = "order.created"
	// KindOrderUpdated signals a status change on an existing order.
	KindOrderUpdated Kind = "order.updated"
)

// Event is one change notification.
type Event struct {
	ID       uuid.UUID `json:"id"`
	Kind     Kind      `json:"kind"`
	EntityID string    `json:"entity_id,omitempty"`
	At       time.Time `json:"at"`
}

// NewEvent stamps a notification with a fresh id.
func NewEvent(kind Kind, entityID string, at time.Time) Event {
	return Event{ID: uuid.New(), Kind: kind, EntityID: entityID, At: at.UTC()}
}

// Recognized reports whether the event should trigger a recompute.
func (e Event) Recognized() bool {
	switch e.Kind {
	case KindItemUpdated, KindOrderCreated, KindOrderUpdated:
		return true
	default:
		return false
	}
}

// ErrMalformedEvent indicates a payload that is not a notification.
var ErrMalformedEvent = errors.New("notify: malformed event")

// wireEvent is the native shape with a loosely typed id; producers outside
// this service do not always send UUIDs.
type wireEvent struct {
	ID       json.RawMessage `json:"id"`
	Kind     Kind            `json:"kind"`
	EntityID string          `json:"entity_id"`
	At       time.Time       `json:"at"`
}

// envelope is the order-service event shape, e.g. {"event_type":"OrderCreated","payload":{"id":"..."}}.
type envelope struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
	Payload   struct {
		ID string `json:"id"`
	} `json:"payload"`
}

var envelopeKinds = map[string]Kind{
	"OrderCreated": KindOrderCreated,
	"OrderUpdated": KindOrderUpdated,
	"ItemUpdated":  KindItemUpdated,
}

// Decode parses a wire payload. Both the native shape and order-service
// envelopes are accepted. Ids that are not UUIDs decode as uuid.Nil.
func Decode(payload []byte) (Event, error) {
	var wire wireEvent
	if err := json.Unmarshal(payload, &wire); err != nil {
		return Event{}, errors.Join(ErrMalformedEvent, err)
	}
	if wire.Kind != "" {
		var rawID string
		_ = json.Unmarshal(wire.ID, &rawID)
		return Event{ID: parseID(rawID), Kind: wire.Kind, EntityID: wire.EntityID, At: wire.At}, nil
	}
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil || env.EventType == "" {
		return Event{}, ErrMalformedEvent
	}
	kind, ok := envelopeKinds[env.EventType]
	if !ok {
		kind = Kind(env.EventType)
	}
	return Event{ID: parseID(env.EventID), Kind: kind, EntityID: env.Payload.ID, At: env.Timestamp.UTC()}, nil
}

func parseID(raw string) uuid.UUID {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// Encode renders the wire payload.
func Encode(evt Event) ([]byte, error) {
	return json.Marshal(evt)
}

// Subscriber delivers change notifications until ctx is cancelled, then
// closes the returned channel.
type Subscriber interface {
	Subscribe(ctx context.Context) (<-chan Event, error)
}

// Publisher emits change notifications.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}
