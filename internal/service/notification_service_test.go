package service

import (
	"context"
	"testing"
	"time"

	"sikadvoltz/progression/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func levelUpRequest() domain.NotificationRequest {
	return domain.NotificationRequest{
		Type:    domain.NotificationLevelUp,
		Title:   "Level up!",
		Message: "You reached level 2.",
	}
}

func TestRoute_ConnectedUserGetsLiveDelivery(t *testing.T) {
	repo := newFakeNotificationRepo()
	live := &fakeLive{}
	push := &fakePush{}
	svc := NewNotificationService(repo, &fakePresence{online: true}, live, push, nil, nil)
	userID := primitive.NewObjectID()

	n, err := svc.Route(context.Background(), userID, levelUpRequest())
	require.NoError(t, err)

	assert.Equal(t, domain.ChannelLive, n.DeliveredVia)
	assert.Len(t, live.sent, 1)
	assert.Empty(t, push.sent, "a live delivery must not also push")

	stored := repo.notifications[n.ID]
	require.NotNil(t, stored, "notification is persisted before delivery")
	assert.Equal(t, domain.ChannelLive, stored.DeliveredVia)
	assert.False(t, stored.Read)
}

func TestRoute_OfflineUserGetsOnePush(t *testing.T) {
	repo := newFakeNotificationRepo()
	live := &fakeLive{}
	push := &fakePush{}
	svc := NewNotificationService(repo, &fakePresence{online: false}, live, push, nil, nil)
	userID := primitive.NewObjectID()

	n, err := svc.Route(context.Background(), userID, levelUpRequest())
	require.NoError(t, err)

	assert.Equal(t, domain.ChannelPush, n.DeliveredVia)
	assert.Empty(t, live.sent)
	require.Len(t, push.sent, 1)
	assert.Equal(t, n.ID, push.sent[0].ID)
}

func TestRoute_LiveFailureDoesNotFallBackToPush(t *testing.T) {
	repo := newFakeNotificationRepo()
	live := &fakeLive{err: errBoom}
	push := &fakePush{}
	svc := NewNotificationService(repo, &fakePresence{online: true}, live, push, nil, nil)
	userID := primitive.NewObjectID()

	n, err := svc.Route(context.Background(), userID, levelUpRequest())
	require.NoError(t, err, "delivery failures never escalate")

	assert.Empty(t, push.sent, "single-channel invariant: no push after a failed live send")
	stored := repo.notifications[n.ID]
	require.NotNil(t, stored)
	assert.Empty(t, stored.DeliveredVia, "undelivered notification awaits the next unread fetch")
}

func TestRoute_PresenceErrorFallsBackToPush(t *testing.T) {
	repo := newFakeNotificationRepo()
	live := &fakeLive{}
	push := &fakePush{}
	svc := NewNotificationService(repo, &fakePresence{err: errBoom}, live, push, nil, nil)
	userID := primitive.NewObjectID()

	n, err := svc.Route(context.Background(), userID, levelUpRequest())
	require.NoError(t, err)

	assert.Empty(t, live.sent)
	assert.Len(t, push.sent, 1)
	assert.Equal(t, domain.ChannelPush, n.DeliveredVia)
}

func TestRoute_PushFailureLeavesNotificationPersisted(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := NewNotificationService(repo, &fakePresence{online: false}, &fakeLive{}, &fakePush{err: errBoom}, nil, nil)
	userID := primitive.NewObjectID()

	n, err := svc.Route(context.Background(), userID, levelUpRequest())
	require.NoError(t, err)

	stored := repo.notifications[n.ID]
	require.NotNil(t, stored)
	assert.Empty(t, stored.DeliveredVia)
}

func TestRoute_PersistFailureIsAnError(t *testing.T) {
	repo := newFakeNotificationRepo()
	repo.createErr = errBoom
	push := &fakePush{}
	svc := NewNotificationService(repo, &fakePresence{online: false}, &fakeLive{}, push, nil, nil)

	_, err := svc.Route(context.Background(), primitive.NewObjectID(), levelUpRequest())
	assert.Error(t, err)
	assert.Empty(t, push.sent, "nothing is delivered without a persisted record")
}

func TestRoute_DefaultsPriorityToMedium(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := NewNotificationService(repo, &fakePresence{online: false}, &fakeLive{}, &fakePush{}, nil, nil)

	n, err := svc.Route(context.Background(), primitive.NewObjectID(), levelUpRequest())
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityMedium, n.Priority)
	assert.NotEmpty(t, n.ID)
}

func TestMarkReadAndUnreadCount(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := NewNotificationService(repo, &fakePresence{online: false}, &fakeLive{}, &fakePush{}, nil, nil)
	userID := primitive.NewObjectID()

	first, err := svc.Route(context.Background(), userID, levelUpRequest())
	require.NoError(t, err)
	_, err = svc.Route(context.Background(), userID, levelUpRequest())
	require.NoError(t, err)

	count, err := svc.GetUnreadCount(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	require.NoError(t, svc.MarkRead(context.Background(), userID, first.ID))

	count, err = svc.GetUnreadCount(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestMarkRead_WrongUserIsRejected(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := NewNotificationService(repo, &fakePresence{online: false}, &fakeLive{}, &fakePush{}, nil, nil)
	owner := primitive.NewObjectID()

	n, err := svc.Route(context.Background(), owner, levelUpRequest())
	require.NoError(t, err)

	assert.Error(t, svc.MarkRead(context.Background(), primitive.NewObjectID(), n.ID))
}

func TestCleanupExpired_OnlyOldReadNotifications(t *testing.T) {
	repo := newFakeNotificationRepo()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := NewNotificationService(repo, &fakePresence{online: false}, &fakeLive{}, &fakePush{}, fixedClock(now), nil)
	userID := primitive.NewObjectID()

	oldRead := &domain.Notification{ID: "old-read", UserID: userID, Read: true, CreatedAt: now.AddDate(0, 0, -40)}
	oldUnread := &domain.Notification{ID: "old-unread", UserID: userID, CreatedAt: now.AddDate(0, 0, -40)}
	recentRead := &domain.Notification{ID: "recent-read", UserID: userID, Read: true, CreatedAt: now.AddDate(0, 0, -5)}
	for _, n := range []*domain.Notification{oldRead, oldUnread, recentRead} {
		require.NoError(t, repo.Create(context.Background(), n))
	}

	deleted, err := svc.CleanupExpired(context.Background(), 30)
	require.NoError(t, err)

	assert.Equal(t, int64(1), deleted)
	assert.Nil(t, repo.notifications["old-read"])
	assert.NotNil(t, repo.notifications["old-unread"], "unread rows are never pruned")
	assert.NotNil(t, repo.notifications["recent-read"])
}
