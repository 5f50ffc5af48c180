package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// QuestStatus is the quest lifecycle state. completed and expired are
// terminal; locked quests never accept progress.
type QuestStatus string

const (
	QuestStatusActive    QuestStatus = "active"
	QuestStatusCompleted QuestStatus = "completed"
	QuestStatusExpired   QuestStatus = "expired"
	QuestStatusLocked    QuestStatus = "locked"
)

// QuestMetric selects which session statistic advances a quest.
type QuestMetric string

const (
	QuestMetricWorkouts QuestMetric = "workouts"
	QuestMetricDistance QuestMetric = "distance"
	QuestMetricCalories QuestMetric = "calories"
)

// QuestProgress tracks advancement toward the quest target. Current is
// clamped at Target and never exceeds it.
type QuestProgress struct {
	Current float64 `bson:"current" json:"current"`
	Target  float64 `bson:"target" json:"target"`
}

// QuestRewards is what completing the quest pays out.
type QuestRewards struct {
	XP int `bson:"xp" json:"xp"`
}

// Quest is a time-boxed objective generated periodically for a user.
type Quest struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	Title       string             `bson:"title" json:"title"`
	Metric      QuestMetric        `bson:"metric" json:"metric"`
	Progress    QuestProgress      `bson:"progress" json:"progress"`
	Status      QuestStatus        `bson:"status" json:"status"`
	EndDate     time.Time          `bson:"endDate" json:"endDate"`
	Rewards     QuestRewards       `bson:"rewards" json:"rewards"`
	CompletedAt *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ContributionFrom returns the session's contribution in the quest's
// metric.
func (q *Quest) ContributionFrom(s SessionSummary) float64 {
	switch q.Metric {
	case QuestMetricWorkouts:
		return 1
	case QuestMetricDistance:
		return s.TotalDistance
	case QuestMetricCalories:
		return s.TotalCalories
	default:
		return 0
	}
}

// ApplyProgress adds delta toward the target, clamping at the target.
// Reaching the target transitions active → completed and reports true.
// Non-active quests ignore progress.
func (q *Quest) ApplyProgress(delta float64, now time.Time) bool {
	if q.Status != QuestStatusActive || delta <= 0 {
		return false
	}

	q.Progress.Current += delta
	if q.Progress.Current > q.Progress.Target {
		q.Progress.Current = q.Progress.Target
	}
	q.UpdatedAt = now

	if q.Progress.Current >= q.Progress.Target {
		q.Status = QuestStatusCompleted
		q.CompletedAt = &now
		return true
	}
	return false
}

// ExpireIfDue transitions active → expired when the end date has passed
// without completion. Reports whether a transition happened.
func (q *Quest) ExpireIfDue(now time.Time) bool {
	if q.Status != QuestStatusActive || !now.After(q.EndDate) {
		return false
	}
	q.Status = QuestStatusExpired
	q.UpdatedAt = now
	return true
}
