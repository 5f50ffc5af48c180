// Package presence tracks which users currently hold a live connection.
// The check is a best-effort heuristic: a user can disconnect between the
// lookup and a send, so callers must not treat a positive answer as a
// delivery guarantee.
package presence

import "context"

// Tracker is the presence capability consumed by the notification router
// and fed by the websocket endpoint.
type Tracker interface {
	// MarkOnline records a live connection for the user. Safe to call
	// repeatedly; each call refreshes the expiry.
	MarkOnline(ctx context.Context, userID string) error

	// MarkOffline clears the user's presence record.
	MarkOffline(ctx context.Context, userID string) error

	// IsConnected reports whether the user currently appears connected.
	IsConnected(ctx context.Context, userID string) (bool, error)
}
