package websocket

import (
	"context"
)

// Message types
const (
	TypeNotification = "notification"
	TypeChange       = "change"
)

// Relay forwards events from a subscription channel to the hub until ctx is
// done or events is closed. eventName picks the Message.Event for each value.
func Relay[T any](ctx context.Context, hub *Hub, msgType string, events <-chan T, eventName func(T) string) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := hub.Publish(msgType, eventName(ev), ev); err != nil {
				hub.logger.Error().Err(err).Str("type", msgType).Msg("Failed to relay event")
			}
		}
	}
}
