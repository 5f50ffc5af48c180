package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationPriority orders delivery urgency.
type NotificationPriority string

const (
	PriorityLow      NotificationPriority = "low"
	PriorityMedium   NotificationPriority = "medium"
	PriorityHigh     NotificationPriority = "high"
	PriorityCritical NotificationPriority = "critical"
)

// NotificationType identifies what triggered a notification.
type NotificationType string

const (
	NotificationLevelUp         NotificationType = "level_up"
	NotificationStreakMilestone NotificationType = "streak_milestone"
	NotificationMilestone       NotificationType = "milestone_achieved"
	NotificationBadgeUnlocked   NotificationType = "badge_unlocked"
	NotificationGoalProgress    NotificationType = "goal_progress"
	NotificationQuestCompleted  NotificationType = "quest_completed"
)

// NotificationChannel is how a notification actually reached the user.
type NotificationChannel string

const (
	ChannelLive NotificationChannel = "live"
	ChannelPush NotificationChannel = "push"
)

// NotificationAction is a client-side affordance attached to a
// notification ("View goal", "Share badge", ...).
type NotificationAction struct {
	Label  string `bson:"label" json:"label"`
	Action string `bson:"action" json:"action"`
}

// NotificationRequest is what an evaluator emits. It carries no identity
// or delivery state; the router assigns those.
type NotificationRequest struct {
	Type      NotificationType
	Title     string
	Message   string
	Priority  NotificationPriority
	Actions   []NotificationAction
	Data      map[string]interface{}
	ExpiresAt *time.Time
}

// Notification is the persisted, routable form of a request. The ID is a
// UUID and doubles as the client-side dedup key, so a message that slips
// through on the "wrong" channel can be safely ignored.
type Notification struct {
	ID           string                 `bson:"_id" json:"id"`
	UserID       primitive.ObjectID     `bson:"userId" json:"userId"`
	Type         NotificationType       `bson:"type" json:"type"`
	Title        string                 `bson:"title" json:"title"`
	Message      string                 `bson:"message" json:"message"`
	Priority     NotificationPriority   `bson:"priority" json:"priority"`
	Actions      []NotificationAction   `bson:"actions,omitempty" json:"actions,omitempty"`
	Data         map[string]interface{} `bson:"data,omitempty" json:"data,omitempty"`
	Read         bool                   `bson:"read" json:"read"`
	DeliveredVia NotificationChannel    `bson:"deliveredVia,omitempty" json:"deliveredVia,omitempty"`
	CreatedAt    time.Time              `bson:"createdAt" json:"createdAt"`
	ExpiresAt    *time.Time             `bson:"expiresAt,omitempty" json:"expiresAt,omitempty"`
}

// ToNotification materializes the request for a user with the given id.
func (r NotificationRequest) ToNotification(id string, userID primitive.ObjectID, now time.Time) *Notification {
	priority := r.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	return &Notification{
		ID:        id,
		UserID:    userID,
		Type:      r.Type,
		Title:     r.Title,
		Message:   r.Message,
		Priority:  priority,
		Actions:   r.Actions,
		Data:      r.Data,
		CreatedAt: now,
		ExpiresAt: r.ExpiresAt,
	}
}
