package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MilestoneType identifies which lifetime statistic a milestone tracks.
type MilestoneType string

const (
	MilestoneDistance MilestoneType = "distance"
	MilestoneWorkouts MilestoneType = "workouts"
	MilestoneCalories MilestoneType = "calories"
)

// MilestoneThresholds are the absolute lifetime values that earn a
// one-time award, per tracked statistic.
var MilestoneThresholds = map[MilestoneType][]int{
	MilestoneDistance: {10, 50, 100, 250, 500, 1000},
	MilestoneWorkouts: {5, 10, 25, 50, 100, 250},
	MilestoneCalories: {1000, 5000, 10000, 25000, 50000},
}

// MilestoneUnits maps each milestone type to its display unit.
var MilestoneUnits = map[MilestoneType]string{
	MilestoneDistance: "km",
	MilestoneWorkouts: "sessions",
	MilestoneCalories: "kcal",
}

// Milestone is a one-time lifetime-cumulative achievement. Records are
// append-only and unique per (userId, type, value); only the Notified
// flag changes after creation.
type Milestone struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID `bson:"userId" json:"userId"`
	Type       MilestoneType      `bson:"type" json:"type"`
	Value      int                `bson:"value" json:"value"`
	Unit       string             `bson:"unit" json:"unit"`
	AchievedAt time.Time          `bson:"achievedAt" json:"achievedAt"`
	XPReward   int                `bson:"xpReward" json:"xpReward"`
	Notified   bool               `bson:"notified" json:"notified"`
}

// MilestoneXPReward is the XP granted for reaching a threshold value.
func MilestoneXPReward(value int) int {
	return value * 5
}

// StatValue extracts the lifetime stat a milestone type is measured
// against.
func (t MilestoneType) StatValue(stats LifetimeStats) float64 {
	switch t {
	case MilestoneDistance:
		return stats.TotalDistance
	case MilestoneWorkouts:
		return float64(stats.TotalWorkouts)
	case MilestoneCalories:
		return stats.TotalCalories
	default:
		return 0
	}
}
