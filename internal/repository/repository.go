package repository

import (
	"context"
	"time"

	"sikadvoltz/progression/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer.
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors.
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// ProgressionRepository persists the per-user progression document.
// The counter methods are atomic against concurrent session completions
// for the same user and create the document on first touch.
type ProgressionRepository interface {
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.UserProgression, error)

	// AddXP atomically increments the XP counter and returns the
	// post-increment document.
	AddXP(ctx context.Context, userID primitive.ObjectID, delta int) (*domain.UserProgression, error)

	// AddLifetimeStats atomically folds one session into the cumulative
	// totals (distance, calories, workouts+1) and returns the
	// post-increment document.
	AddLifetimeStats(ctx context.Context, userID primitive.ObjectID, distance, calories float64) (*domain.UserProgression, error)

	// SetStreak writes the streak value and the last activity date.
	SetStreak(ctx context.Context, userID primitive.ObjectID, streak int, lastActivity time.Time) error
}

// GoalRepository persists fitness goals.
type GoalRepository interface {
	Create(ctx context.Context, goal *domain.Goal) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Goal, error)
	GetActiveByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Goal, error)

	// LinkSession adds the session id to the goal's linked set. Returns
	// false when nothing was linked, either because the session already
	// was (duplicate submission) or because the goal does not exist; a
	// follow-up GetByID tells the two apart.
	LinkSession(ctx context.Context, goalID primitive.ObjectID, sessionID string) (bool, error)

	Update(ctx context.Context, goal *domain.Goal) error
}

// MilestoneRepository persists lifetime milestones.
type MilestoneRepository interface {
	// InsertIfAbsent creates the milestone unless one already exists for
	// the same (userId, type, value). Returns false when it already
	// existed; a duplicate is not an error.
	InsertIfAbsent(ctx context.Context, m *domain.Milestone) (bool, error)

	ListByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Milestone, error)
}

// BadgeRepository persists per-session performance badges.
type BadgeRepository interface {
	// InsertIfAbsent creates the badge unless the user already holds one
	// with the same name. Returns false when it already existed.
	InsertIfAbsent(ctx context.Context, b *domain.Badge) (bool, error)

	ListByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Badge, error)
}

// QuestRepository persists time-boxed quests.
type QuestRepository interface {
	Create(ctx context.Context, q *domain.Quest) (primitive.ObjectID, error)
	ListActiveByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Quest, error)
	ListByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Quest, error)
	Update(ctx context.Context, q *domain.Quest) error

	// ExpireOverdue bulk-transitions active quests whose end date passed.
	// Returns the number of quests expired.
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
}

// NotificationRepository persists routed notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	MarkDelivered(ctx context.Context, id string, channel domain.NotificationChannel) error
	MarkRead(ctx context.Context, id string, userID primitive.ObjectID) error
	CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error)
	ListByUserID(ctx context.Context, userID primitive.ObjectID, limit int64) ([]domain.Notification, error)

	// DeleteReadBefore removes notifications already marked read that
	// were created before the cutoff. Unread rows are never touched.
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// DeviceRepository persists push endpoints for the deferred channel.
type DeviceRepository interface {
	Upsert(ctx context.Context, d *domain.Device) error
	ListEnabledByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Device, error)
}
