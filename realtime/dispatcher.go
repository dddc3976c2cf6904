package realtime

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
)

// Sender delivers a marshalled event payload to a single connection.
// Implementations must not block: they report false when the connection is
// gone or its queue is full, and the event is dropped for that connection.
type Sender interface {
	Send(connectionID string, payload []byte) bool
}

// RoomResolver re-derives the participant user ids for a room token from the
// session record. Membership is recomputed on every dispatch rather than
// tracked as a live join/leave set, so participants added after connecting
// still receive broadcasts.
type RoomResolver interface {
	RoomParticipants(ctx context.Context, roomToken string) ([]string, error)
}

// Dispatcher fans out typed events to the subset of currently-reachable
// connections addressed by user id or room token. Delivery is at-most-once,
// no-retry, fire-and-forget: participants without an open connection at
// dispatch time are skipped and must reconcile via a status fetch.
type Dispatcher struct {
	registry *Registry
	rooms    RoomResolver
	sender   Sender
}

// NewDispatcher creates a dispatcher over the given presence registry,
// room resolver and transport sender
func NewDispatcher(registry *Registry, rooms RoomResolver, sender Sender) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		rooms:    rooms,
		sender:   sender,
	}
}

// NotifyUser delivers the event to every connection the user currently holds
// open and returns the number of connections reached
func (d *Dispatcher) NotifyUser(userID, kind string, data interface{}) int {
	payload, err := json.Marshal(Event{Kind: kind, Data: data})
	if err != nil {
		zap.S().Errorw("failed to marshal event payload",
			"kind", kind,
			"error", err)
		return 0
	}

	delivered := 0
	for _, connectionID := range d.registry.LookupByUser(userID) {
		if d.sender.Send(connectionID, payload) {
			delivered++
		}
	}
	return delivered
}

// NotifyRoom delivers the event to every connection of every participant of
// the room's session. A room with zero registered connections delivers to
// nobody without error.
func (d *Dispatcher) NotifyRoom(ctx context.Context, roomToken, kind string, data interface{}) (int, error) {
	participants, err := d.rooms.RoomParticipants(ctx, roomToken)
	if err != nil {
		return 0, err
	}

	payload, err := json.Marshal(Event{Kind: kind, Data: data})
	if err != nil {
		return 0, err
	}

	delivered := 0
	for _, userID := range participants {
		for _, connectionID := range d.registry.LookupByUser(userID) {
			if d.sender.Send(connectionID, payload) {
				delivered++
			}
		}
	}

	zap.S().Debugw("room event dispatched",
		"roomToken", roomToken,
		"kind", kind,
		"participants", len(participants),
		"delivered", delivered)
	return delivered, nil
}
