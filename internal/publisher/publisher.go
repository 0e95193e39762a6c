// Package publisher defines the event envelope emitted when a logo is
// discovered and stored.
package publisher

import "context"

// EventLogoDiscovered is published after a logo has been stored.
const EventLogoDiscovered = "logo.discovered"

// Publisher emits an event of the given type and returns the broker's
// message ID.
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload any) (string, error)
}
