package service

import (
	"context"
	"log"
	"time"

	"sikadvoltz/progression/internal/domain"
	"sikadvoltz/progression/internal/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PresenceChecker answers whether a user currently appears to hold a
// live connection. Best-effort: the answer can be stale by the time a
// send happens.
type PresenceChecker interface {
	IsConnected(ctx context.Context, userID string) (bool, error)
}

// LiveSender delivers a payload in-band over an open connection.
type LiveSender interface {
	Send(userID string, payload interface{}) error
}

// PushSender dispatches one deferred push notification.
type PushSender interface {
	Send(ctx context.Context, userID primitive.ObjectID, n *domain.Notification) error
}

// NotificationService decides the delivery channel per notification and
// guarantees a single instance is never pushed on both.
type NotificationService interface {
	// Route persists the notification and delivers it on exactly one
	// channel: live when the user appears connected, otherwise one
	// deferred push. Delivery failures leave the notification persisted
	// and undelivered; they are never escalated to the caller's pipeline.
	Route(ctx context.Context, userID primitive.ObjectID, req domain.NotificationRequest) (*domain.Notification, error)

	GetUnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error)
	MarkRead(ctx context.Context, userID primitive.ObjectID, notificationID string) error
	ListRecent(ctx context.Context, userID primitive.ObjectID, limit int64) ([]domain.Notification, error)

	// CleanupExpired deletes notifications already marked read that are
	// older than daysOld days.
	CleanupExpired(ctx context.Context, daysOld int) (int64, error)
}

type notificationService struct {
	notificationRepo repository.NotificationRepository
	presence         PresenceChecker
	live             LiveSender
	push             PushSender
	now              func() time.Time
	logger           *log.Logger
}

// NewNotificationService creates a new instance of notificationService.
// A nil clock falls back to time.Now; a nil logger to the default logger.
func NewNotificationService(
	notificationRepo repository.NotificationRepository,
	presence PresenceChecker,
	live LiveSender,
	push PushSender,
	now func() time.Time,
	logger *log.Logger,
) NotificationService {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = log.Default()
	}
	return &notificationService{
		notificationRepo: notificationRepo,
		presence:         presence,
		live:             live,
		push:             push,
		now:              now,
		logger:           logger,
	}
}

func (s *notificationService) Route(ctx context.Context, userID primitive.ObjectID, req domain.NotificationRequest) (*domain.Notification, error) {
	n := req.ToNotification(uuid.NewString(), userID, s.now().UTC())

	// Persist before any delivery attempt so the achievement's record
	// survives a delivery failure; the notification id is the client's
	// dedup key if a message ever slips through on the wrong channel.
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		return nil, err
	}

	connected, err := s.presence.IsConnected(ctx, userID.Hex())
	if err != nil {
		// Presence unavailable: fall back to the deferred channel.
		s.logger.Printf("WARN: presence lookup failed for user %s: %v", userID.Hex(), err)
		connected = false
	}

	if connected {
		if err := s.live.Send(userID.Hex(), n); err != nil {
			// The user vanished between the check and the send. The
			// notification stays persisted for the next unread fetch; no
			// push follows, so the single-channel invariant holds.
			s.logger.Printf("WARN: live delivery failed for notification %s: %v", n.ID, err)
			return n, nil
		}
		if err := s.notificationRepo.MarkDelivered(ctx, n.ID, domain.ChannelLive); err != nil {
			s.logger.Printf("WARN: failed to mark notification %s delivered: %v", n.ID, err)
		}
		n.DeliveredVia = domain.ChannelLive
		return n, nil
	}

	if err := s.push.Send(ctx, userID, n); err != nil {
		s.logger.Printf("WARN: push dispatch failed for notification %s: %v", n.ID, err)
		return n, nil
	}
	if err := s.notificationRepo.MarkDelivered(ctx, n.ID, domain.ChannelPush); err != nil {
		s.logger.Printf("WARN: failed to mark notification %s delivered: %v", n.ID, err)
	}
	n.DeliveredVia = domain.ChannelPush
	return n, nil
}

func (s *notificationService) GetUnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.notificationRepo.CountUnread(ctx, userID)
}

func (s *notificationService) MarkRead(ctx context.Context, userID primitive.ObjectID, notificationID string) error {
	return s.notificationRepo.MarkRead(ctx, notificationID, userID)
}

func (s *notificationService) ListRecent(ctx context.Context, userID primitive.ObjectID, limit int64) ([]domain.Notification, error) {
	return s.notificationRepo.ListByUserID(ctx, userID, limit)
}

func (s *notificationService) CleanupExpired(ctx context.Context, daysOld int) (int64, error) {
	cutoff := s.now().UTC().AddDate(0, 0, -daysOld)
	return s.notificationRepo.DeleteReadBefore(ctx, cutoff)
}
