// Package push is the deferred delivery channel: durable push
// notifications dispatched to the user's registered device endpoints.
package push

import (
	"context"
	"errors"

	"sikadvoltz/progression/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNoDevices is returned when the user has no enabled push endpoint.
var ErrNoDevices = errors.New("user has no registered devices")

// Sender dispatches one push notification. Implementations own their own
// timeouts; callers treat a returned error as "not delivered".
type Sender interface {
	Send(ctx context.Context, userID primitive.ObjectID, n *domain.Notification) error
}

// NoopSender drops every push. Used when no platform application is
// configured (local development); notifications stay persisted and are
// picked up by the next unread fetch.
type NoopSender struct{}

func (NoopSender) Send(ctx context.Context, userID primitive.ObjectID, n *domain.Notification) error {
	return ErrNoDevices
}
